package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"nextcash/internal/core"
	"nextcash/internal/log"
)

type apiCategory struct {
	ID   int64                `json:"id"`
	Name string               `json:"name"`
	Type core.TransactionType `json:"type"`
}

type apiTransaction struct {
	ID              int64                `json:"id"`
	CategoryID      int64                `json:"categoryId"`
	Category        string               `json:"category"`
	TransactionType core.TransactionType `json:"transactionType"`
	TransactionDate string               `json:"transactionDate"`
	Amount          decimal.Decimal      `json:"amount"`
	Description     string               `json:"description"`
}

type apiCashflowMonth struct {
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

type apiCashflow struct {
	Year   int                `json:"year"`
	Months []apiCashflowMonth `json:"months"`
	Totals struct {
		Income   decimal.Decimal `json:"income"`
		Expenses decimal.Decimal `json:"expenses"`
		Balance  decimal.Decimal `json:"balance"`
	} `json:"totals"`
}

type apiError struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Error: true, Message: message})
}

func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "API request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
	}
	writeJSONError(w, status, messageFor(err))
}

func toAPITransaction(t core.TransactionWithCategory) apiTransaction {
	return apiTransaction{
		ID:              t.ID,
		CategoryID:      t.CategoryID,
		Category:        t.CategoryName,
		TransactionType: t.CategoryType,
		TransactionDate: t.Date.String(),
		Amount:          t.Amount,
		Description:     t.Description,
	}
}

func (s *Server) handleAPICategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.cats.List(r.Context())
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	out := make([]apiCategory, 0, len(cats))
	for _, c := range cats {
		out = append(out, apiCategory{ID: c.ID, Name: c.Name, Type: c.Type})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPICashflow(w http.ResponseWriter, r *http.Request) {
	cf, err := s.cashflow.Annual(r.Context(), ParseCashflowYear(r.URL.Query(), s.now()))
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	out := apiCashflow{Year: cf.Year, Months: make([]apiCashflowMonth, 0, len(cf.Entries))}
	for _, e := range cf.Entries {
		out.Months = append(out.Months, apiCashflowMonth{Month: e.Month, Income: e.Income, Expenses: e.Expenses})
	}
	totals := cf.Totals()
	out.Totals.Income, out.Totals.Expenses, out.Totals.Balance = totals.Income, totals.Expenses, totals.Balance
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIListTransactions(w http.ResponseWriter, r *http.Request) {
	params := ParseMonthParams(r.URL.Query(), s.now())
	items, err := s.tx.ListMonth(r.Context(), params.Year, params.Month)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	out := make([]apiTransaction, 0, len(items))
	for _, t := range items {
		out = append(out, toAPITransaction(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeAPIError(w, r, core.ErrNotFound)
		return
	}
	t, err := s.tx.Get(r.Context(), id)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPITransaction(t))
}

func (s *Server) handleAPICreateTransaction(w http.ResponseWriter, r *http.Request) {
	parser, ok := parseAPIBody(w, r)
	if !ok {
		return
	}
	id, err := s.tx.Create(r.Context(), parser)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleAPIUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeAPIError(w, r, core.ErrNotFound)
		return
	}
	parser, ok := parseAPIBody(w, r)
	if !ok {
		return
	}
	if err := s.tx.Update(r.Context(), id, parser); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		s.writeAPIError(w, r, core.ErrNotFound)
		return
	}
	if err := s.tx.Delete(r.Context(), id); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseAPIBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request format")
		return nil, false
	}
	return parser, true
}
