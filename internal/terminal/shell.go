// Package terminal is a line-oriented shell over the session commands.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"spendwise/internal/core"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
	"spendwise/internal/session"
)

// Prompt texts.
const (
	UsernamePrompt = "Enter your username:"
	CommandPrompt  = "> "
)

const helpText = `Commands:
  add            record a new expense
  list           show all expenses
  delete <index> delete the expense with the given index
  save           save expenses
  total          show the total of all expenses
  help           show this help
  quit           save and exit`

// errEOF ends the command loop when input runs out.
var errEOF = errors.New("end of input")

// Opener starts a session for username.
type Opener func(ctx context.Context, username string) (*session.Session, error)

type Options struct {
	Opener         Opener
	CurrencySymbol string
	Logger         *applog.Logger
}

// Shell reads commands from in and writes results to out.
type Shell struct {
	in       *bufio.Scanner
	out      io.Writer
	open     Opener
	currency string
	logger   *applog.Logger

	bucketStyles map[core.Bucket]lipgloss.Style
	errStyle     lipgloss.Style
	okStyle      lipgloss.Style
	mutedStyle   lipgloss.Style
}

func New(in io.Reader, out io.Writer, opts Options) *Shell {
	r := lipgloss.NewRenderer(out)
	currency := opts.CurrencySymbol
	if currency == "" {
		currency = core.DefaultCurrencySymbol
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Output: io.Discard})
	}
	return &Shell{
		in:       bufio.NewScanner(in),
		out:      out,
		open:     opts.Opener,
		currency: currency,
		logger:   logger.WithComponent(applog.ComponentTerminal),
		bucketStyles: map[core.Bucket]lipgloss.Style{
			core.BucketSafe:    r.NewStyle().Foreground(lipgloss.Color("#006400")),
			core.BucketAverage: r.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
			core.BucketHigh:    r.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		},
		errStyle:   r.NewStyle().Foreground(lipgloss.Color("#f38ba8")),
		okStyle:    r.NewStyle().Foreground(lipgloss.Color("#a6e3a1")),
		mutedStyle: r.NewStyle().Foreground(lipgloss.Color("#7f849c")),
	}
}

// Run performs the identity step and then executes commands until quit or
// end of input. Both end the session with a final save.
func (sh *Shell) Run(ctx context.Context) error {
	if sh.open == nil {
		return errors.New("terminal: no session opener configured")
	}
	sess, err := sh.identify(ctx)
	if err != nil {
		if errors.Is(err, errEOF) || ctx.Err() != nil {
			return nil
		}
		return err
	}
	fmt.Fprintf(sh.out, "Welcome, %s. Type help for a list of commands.\n", sess.Username())

	for {
		if ctx.Err() != nil {
			return sh.finish(ctx, sess)
		}
		line, err := sh.ask(CommandPrompt)
		if err != nil {
			return sh.finish(ctx, sess)
		}
		done, err := sh.dispatch(ctx, sess, line)
		if errors.Is(err, errEOF) {
			return sh.finish(ctx, sess)
		}
		if done {
			// A failed final save keeps the session so the user can retry.
			if err := sh.finish(ctx, sess); err == nil {
				return nil
			}
		}
	}
}

func (sh *Shell) identify(ctx context.Context) (*session.Session, error) {
	for {
		line, err := sh.ask(UsernamePrompt + " ")
		if err != nil {
			return nil, err
		}
		username, err := session.ValidateUsername(line)
		if err != nil {
			sh.fail(err)
			continue
		}
		sess, err := sh.open(ctx, username)
		if err != nil {
			sh.logger.ErrorContext(ctx, "Failed to open session", applog.FieldUsername, username, applog.FieldError, err)
			return nil, fmt.Errorf("open session for %s: %w", username, err)
		}
		return sess, nil
	}
}

// dispatch runs one command line. It reports true when the shell should exit.
func (sh *Shell) dispatch(ctx context.Context, sess *session.Session, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	switch cmd := strings.ToLower(fields[0]); cmd {
	case "add":
		return false, sh.add(ctx, sess)
	case "list", "ls":
		sh.printListing(sess.Snapshot().Listing)
	case "delete", "del", "rm":
		sh.delete(ctx, sess, fields[1:])
	case "save":
		res, err := sess.SaveAll(ctx)
		if err != nil {
			sh.fail(err)
			return false, nil
		}
		sh.ok(res.Message)
	case "total":
		sh.printTotal(sess.Snapshot().Total)
	case "help", "?":
		fmt.Fprintln(sh.out, helpText)
	case "quit", "exit", "q":
		return true, nil
	default:
		sh.fail(fmt.Errorf("unknown command %q, type help for a list of commands", cmd))
	}
	return false, nil
}

var addFields = []string{"Category", "Description", "Amount", "Date (DD/MM/YYYY)", "Location", "Payment Method"}

func (sh *Shell) add(ctx context.Context, sess *session.Session) error {
	vals := make([]string, len(addFields))
	for i, label := range addFields {
		v, err := sh.ask(label + ": ")
		if err != nil {
			return err
		}
		vals[i] = v
	}
	res, err := sess.AddExpense(ctx, core.ExpenseInput{
		Category:      vals[0],
		Description:   vals[1],
		Amount:        vals[2],
		Date:          vals[3],
		Location:      vals[4],
		PaymentMethod: vals[5],
	})
	if err != nil {
		sh.fail(err)
		return nil
	}
	sh.ok(res.Message)
	return nil
}

func (sh *Shell) delete(ctx context.Context, sess *session.Session, args []string) {
	var in session.DeleteInput
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			n = 0
		}
		in.Positions = []int{n - 1}
	}
	res, err := sess.DeleteSelected(ctx, in)
	if err != nil {
		sh.fail(err)
		return
	}
	sh.ok(res.Message)
}

func (sh *Shell) printListing(l ledger.Listing) {
	if l.Empty() {
		fmt.Fprintln(sh.out, sh.mutedStyle.Render(ledger.NoExpenses))
		return
	}
	lines := strings.Split(l.Format(sh.currency), "\n")
	for i, en := range l.Entries {
		fmt.Fprintln(sh.out, sh.bucketStyles[en.Bucket].Render(lines[i]))
	}
}

func (sh *Shell) printTotal(total core.Money) {
	fmt.Fprintf(sh.out, "Total Expenses: %s\n", total.Format(sh.currency))
}

func (sh *Shell) finish(ctx context.Context, sess *session.Session) error {
	if err := sess.Close(context.WithoutCancel(ctx)); err != nil {
		sh.fail(err)
		return err
	}
	sh.ok(ledger.SavedMessage)
	fmt.Fprintln(sh.out, "Goodbye.")
	return nil
}

func (sh *Shell) ask(prompt string) (string, error) {
	fmt.Fprint(sh.out, prompt)
	if !sh.in.Scan() {
		fmt.Fprintln(sh.out)
		if err := sh.in.Err(); err != nil {
			return "", err
		}
		return "", errEOF
	}
	return strings.TrimSpace(sh.in.Text()), nil
}

func (sh *Shell) ok(msg string) {
	fmt.Fprintln(sh.out, sh.okStyle.Render(msg))
}

// fail prints the user-facing text of err. Unexpected errors print as is.
func (sh *Shell) fail(err error) {
	msg := err.Error()
	if errors.Is(err, core.ErrValidation) || errors.Is(err, core.ErrOutOfRange) {
		msg = core.UserMessage(err)
	}
	fmt.Fprintln(sh.out, sh.errStyle.Render(msg))
}
