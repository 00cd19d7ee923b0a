package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"nextcash/internal/auth"
	"nextcash/internal/core"
	"nextcash/internal/form"
)

const newTransactionPath = form.ListPath + "/new"

func editTransactionPath(id int64) string {
	return form.ListPath + "/" + strconv.FormatInt(id, 10)
}

// handleTransactionList renders the caller's transactions for ?month&year.
func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	params := ParseMonthParams(r.URL.Query(), s.now())
	items, err := s.tx.ListMonth(r.Context(), params.Year, params.Month)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "transactions_page",
		newListView(s.newPage(w, r, "Transactions"), params, items))
}

func (s *Server) handleNewTransactionForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		s.renderError(w, r, core.Unauthorized())
		return
	}
	cats, err := s.cats.List(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, formView{
		Heading: "New transaction",
		Form:    form.New(newTransactionPath, cats, form.DefaultValues(s.now())),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	f, ok := s.parseForm(w, r, newTransactionPath)
	if !ok {
		return
	}
	s.submit(w, r, formView{
		Heading: "New transaction",
		Form:    f,
	}, form.MsgCreated, func(ctx context.Context) (string, error) {
		_, err := s.tx.Create(ctx, f.Values)
		return form.ListPath, err
	})
}

func (s *Server) handleEditTransactionForm(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.renderError(w, r, core.ErrNotFound)
		return
	}
	t, err := s.tx.Get(r.Context(), id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	cats, err := s.cats.List(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, formView{
		Heading:       "Edit transaction",
		TransactionID: id,
		Form:          form.New(editTransactionPath(id), cats, form.ValuesFromTransaction(t.Transaction, cats)),
	})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.renderError(w, r, core.ErrNotFound)
		return
	}
	f, ok := s.parseForm(w, r, editTransactionPath(id))
	if !ok {
		return
	}
	s.submit(w, r, formView{
		Heading:       "Edit transaction",
		TransactionID: id,
		Form:          f,
	}, form.MsgUpdated, func(ctx context.Context) (string, error) {
		if err := s.tx.Update(ctx, id, f.Values); err != nil {
			return "", err
		}
		date, err := core.ParseDate(f.Values.TransactionDate)
		if err != nil {
			return form.ListPath, nil
		}
		return form.ListURL(date), nil
	})
}

// handleDeleteTransaction deletes after the confirmation dialog and goes
// back to the month the transaction was in.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.renderError(w, r, core.ErrNotFound)
		return
	}

	target := form.ListPath
	t, err := s.tx.Get(r.Context(), id)
	switch {
	case err == nil:
		target = form.ListURL(t.Date)
	case !errors.Is(err, core.ErrNotFound):
		s.renderError(w, r, err)
		return
	}

	if err := s.tx.Delete(r.Context(), id); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.navigate(w, r, target, form.MsgDeleted)
}

// handleCategoryOptions renders the category <option> list for the chosen
// transaction type, with nothing selected.
func (s *Server) handleCategoryOptions(w http.ResponseWriter, r *http.Request) {
	cats, err := s.cats.List(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	typ := core.TransactionType(sanitizeInput(r.URL.Query().Get(core.FieldTransactionType)))
	f := form.New("", cats, form.Values{})
	f.SetType(typ)

	s.renderFragment(w, r, NewHTMXResponse().TriggerCategoriesChanged(string(typ)), "category_options", categoryOptionsView{
		Categories: f.Categories(),
		Selected:   f.SelectedCategory(),
	})
}

// parseForm builds a form from the request body. It writes the error
// response itself and reports false when the request cannot proceed.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, action string) (*form.Form, bool) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		s.renderError(w, r, core.Unauthorized())
		return nil, false
	}
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return nil, false
	}
	cats, err := s.cats.List(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return nil, false
	}
	return form.New(action, cats, form.ValuesFrom(parser)), true
}

// submit drives the form through submitting. Violations and service
// failures re-render the form with the message; success navigates to the
// target returned by do.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, view formView, success string, do func(context.Context) (string, error)) {
	f := view.Form
	ok, err := f.Begin(s.now())
	if err != nil {
		s.renderError(w, r, core.Internal(err))
		return
	}
	if !ok {
		s.renderForm(w, r, http.StatusUnprocessableEntity, view)
		return
	}

	target, err := do(r.Context())
	if err != nil {
		_ = f.Fail(messageFor(err))
		s.renderForm(w, r, statusFor(err), view)
		return
	}

	_ = f.Succeed()
	s.navigate(w, r, target, success)
}

// navigate redirects after a successful mutation; the message is shown on
// the next page.
func (s *Server) navigate(w http.ResponseWriter, r *http.Request, target, message string) {
	setFlash(w, message)
	if isHTMX(r) {
		NewHTMXResponse().Redirect(target).Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, view formView) {
	view.MaxDate = core.MaxTransactionDate(s.now()).String()
	if isHTMX(r) {
		b := NewHTMXResponse().Status(status)
		if view.Form.Message != "" {
			b.TriggerErrorNotification(view.Form.Message)
		}
		s.renderFragment(w, r, b, "transaction_form", view)
		return
	}
	view.page = s.newPage(w, r, view.Heading)
	s.render(w, r, status, "transaction_form_page", view)
}
