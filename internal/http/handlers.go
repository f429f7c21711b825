package http

import (
	"bytes"
	"errors"
	"net/http"

	"spendwise/internal/core"
	applog "spendwise/internal/log"
	"spendwise/internal/session"
)

const msgNoSession = "No session is open. Enter your username first."

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil || s.opener == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleIndex renders the username form, or sends an identified user to the tracker.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	if s.Session() != nil {
		http.Redirect(w, r, "/tracker", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", indexView{})
}

// handleOpenSession runs the identity step.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	username, err := session.ValidateUsername(r.PostForm.Get(fieldUsername))
	if err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, "index.html", indexView{Error: core.UserMessage(err)})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess != nil {
		if s.sess.Username() == username {
			s.redirect(w, r, "/tracker")
			return
		}
		ConflictError("A session is already open for " + s.sess.Username() + ". Close it first.").Write(w)
		return
	}

	if s.opener == nil {
		InternalServerError("No storage is configured").Write(w)
		return
	}
	sess, err := s.opener(r.Context(), username)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to open session",
			applog.NewFields().WithUser(username, "").WithError(err).WithOperation(applog.OpLoad).ToSlice()...)
		if errors.Is(err, core.ErrValidation) {
			s.render(w, r, http.StatusUnprocessableEntity, "index.html", indexView{Error: core.UserMessage(err)})
			return
		}
		s.render(w, r, http.StatusInternalServerError, "index.html", indexView{Error: "Could not load expenses: " + err.Error()})
		return
	}
	s.sess = sess
	s.redirect(w, r, "/tracker")
}

// handleTracker renders the full expense form with table and total.
func (s *Server) handleTracker(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "tracker.html", newTrackerView(s.sess.Username(), s.currency, s.sess.Snapshot(), s.taxonomy))
}

// handleExpensesPartial renders the table and total partial.
func (s *Server) handleExpensesPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		ConflictError(msgNoSession).Write(w)
		return
	}
	s.writePartial(w, r, NewHTMXResponse(), s.sess.Snapshot())
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		ConflictError(msgNoSession).Write(w)
		return
	}

	res, err := s.sess.AddExpense(r.Context(), ParseExpenseInput(r.PostForm))
	if err != nil {
		s.writeCommandError(w, r, applog.OpAdd, err)
		return
	}
	s.structured.LogExpenseAdded(r.Context(), s.sess.Username(), res.Expense.Category,
		res.Expense.Amount.StringFixed(2), string(core.Classify(res.Expense.Amount)))
	s.writePartial(w, r, NewHTMXResponse().
		TriggerSuccessNotification(res.Message).
		TriggerFormReset().
		TriggerExpensesChanged(), res)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		ConflictError(msgNoSession).Write(w)
		return
	}

	res, err := s.sess.DeleteSelected(r.Context(), ParseDeleteInput(r.PostForm))
	if err != nil {
		s.writeCommandError(w, r, applog.OpDelete, err)
		return
	}
	s.writePartial(w, r, NewHTMXResponse().
		TriggerSuccessNotification(res.Message).
		TriggerExpensesChanged(), res)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		ConflictError(msgNoSession).Write(w)
		return
	}

	res, err := s.sess.SaveAll(r.Context())
	if err != nil {
		s.writeCommandError(w, r, applog.OpSave, err)
		return
	}
	s.writePartial(w, r, NewHTMXResponse().TriggerSuccessNotification(res.Message), res)
}

// handleCloseSession performs the final save and returns to the username form.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.closeLocked(r.Context()); err != nil {
		InternalServerError("Failed to save expenses: " + err.Error()).Write(w)
		return
	}
	s.redirect(w, r, "/")
}

// writeCommandError reports user errors as 422 and anything else as 500.
func (s *Server) writeCommandError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, core.ErrValidation) || errors.Is(err, core.ErrOutOfRange) {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Command rejected",
			applog.FieldOperation, op, applog.FieldError, err)
		UnprocessableEntityError(core.UserMessage(err)).Write(w)
		return
	}
	s.structured.LogError(r.Context(), "Command failed", err, applog.ComponentSession, op,
		applog.NewFields().WithUser(s.sess.Username(), s.sess.Resource()))
	InternalServerError("Operation failed: " + err.Error()).Write(w)
}

func (s *Server) writePartial(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, res session.Result) {
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "expenses", newExpensesView(s.sess.Username(), s.currency, res)); err != nil {
		s.structured.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender, nil)
		InternalServerError("Failed to render expenses").Write(w)
		return
	}
	b.BodyHTML(buf.Bytes()).Write(w)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.structured.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.LogFields{"template": name})
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// redirect uses HX-Redirect for htmx requests and 303 otherwise.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, to string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
