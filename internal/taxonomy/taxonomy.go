// Package taxonomy provides the suggestion lists offered by the entry forms.
package taxonomy

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"spendwise/internal/core"
)

// Seed file names looked up in the data directory.
const (
	CategoriesFile     = "seed_categories.txt"
	PaymentMethodsFile = "seed_payment_methods.txt"
)

// Taxonomy holds the category and payment method suggestions.
type Taxonomy struct {
	Categories     []string
	PaymentMethods []string
}

// Default returns the built-in suggestions.
func Default() Taxonomy {
	return Taxonomy{
		Categories:     append([]string(nil), core.SuggestedCategories...),
		PaymentMethods: append([]string(nil), core.SuggestedPaymentMethods...),
	}
}

// FromDir reads seed files from base, falling back to the built-in lists for
// any file that is missing or empty. Blank lines and '#' comments are skipped.
func FromDir(base string) Taxonomy {
	t := Default()
	if cats := readLines(filepath.Join(base, CategoriesFile)); len(cats) > 0 {
		t.Categories = cats
	}
	if pms := readLines(filepath.Join(base, PaymentMethodsFile)); len(pms) > 0 {
		t.PaymentMethods = pms
	}
	return t
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe drops repeats and blanks, keeping first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
