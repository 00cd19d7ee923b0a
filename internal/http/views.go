package http

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/shopspring/decimal"

	"nextcash/internal/auth"
	"nextcash/internal/core"
	"nextcash/internal/form"
	"nextcash/internal/log"
)

var templateFuncs = template.FuncMap{
	"options": func(f *form.Form) categoryOptionsView {
		return categoryOptionsView{Categories: f.Categories(), Selected: f.SelectedCategory()}
	},
}

// page is embedded by every full-page view.
type page struct {
	Title         string
	Flash         string
	Authenticated bool
	Email         string
}

type transactionRow struct {
	ID          int64
	Date        string
	Description string
	Category    string
	Type        core.TransactionType
	Amount      string
}

type chartBar struct {
	Label       string
	Income      string
	Expenses    string
	IncomePct   int
	ExpensesPct int
}

type cashflowView struct {
	Year            int
	Years           []int
	Bars            []chartBar
	Income          string
	Expenses        string
	Balance         string
	BalancePositive bool
}

type dashboardView struct {
	page
	Cashflow cashflowView
	Recent   []transactionRow
}

type listView struct {
	page
	Year         int
	Month        int
	MonthName    string
	PrevMonth    int
	PrevYear     int
	NextMonth    int
	NextYear     int
	Transactions []transactionRow
}

type formView struct {
	page
	Heading       string
	TransactionID int64
	Form          *form.Form
	MaxDate       string
}

type categoryOptionsView struct {
	Categories []core.Category
	Selected   int64
}

type errorView struct {
	page
	Status  int
	Message string
}

func (s *Server) newPage(w http.ResponseWriter, r *http.Request, title string) page {
	p := page{Title: title, Flash: popFlash(w, r)}
	if id, ok := auth.FromContext(r.Context()); ok {
		p.Authenticated = true
		p.Email = id.Email
	}
	return p
}

func toRows(items []core.TransactionWithCategory) []transactionRow {
	rows := make([]transactionRow, 0, len(items))
	for _, t := range items {
		rows = append(rows, transactionRow{
			ID:          t.ID,
			Date:        t.Date.String(),
			Description: t.Description,
			Category:    t.CategoryName,
			Type:        t.CategoryType,
			Amount:      formatMoney(t.Amount),
		})
	}
	return rows
}

// newCashflowView scales the bars against the largest monthly value.
func newCashflowView(cf core.Cashflow, years []int) cashflowView {
	peak := decimal.Zero
	for _, e := range cf.Entries {
		peak = decimal.Max(peak, e.Income, e.Expenses)
	}

	totals := cf.Totals()
	v := cashflowView{
		Year:            cf.Year,
		Years:           years,
		Bars:            make([]chartBar, 0, len(cf.Entries)),
		Income:          formatMoney(totals.Income),
		Expenses:        formatMoney(totals.Expenses),
		Balance:         formatMoney(totals.Balance),
		BalancePositive: !totals.Balance.IsNegative(),
	}
	for _, e := range cf.Entries {
		v.Bars = append(v.Bars, chartBar{
			Label:       monthLabel(e.Month),
			Income:      formatMoney(e.Income),
			Expenses:    formatMoney(e.Expenses),
			IncomePct:   barPercent(e.Income, peak),
			ExpensesPct: barPercent(e.Expenses, peak),
		})
	}
	return v
}

func barPercent(v, peak decimal.Decimal) int {
	if !peak.IsPositive() || !v.IsPositive() {
		return 0
	}
	pct := int(v.Mul(decimal.NewFromInt(100)).Div(peak).Round(0).IntPart())
	// keep very small values visible
	return min(max(pct, 2), 100)
}

func newListView(p page, params MonthParams, items []core.TransactionWithCategory) listView {
	v := listView{
		page:         p,
		Year:         params.Year,
		Month:        params.Month,
		MonthName:    monthLabel(params.Month),
		PrevMonth:    params.Month - 1,
		PrevYear:     params.Year,
		NextMonth:    params.Month + 1,
		NextYear:     params.Year,
		Transactions: toRows(items),
	}
	if v.PrevMonth < 1 {
		v.PrevMonth, v.PrevYear = 12, params.Year-1
	}
	if v.NextMonth > 12 {
		v.NextMonth, v.NextYear = 1, params.Year+1
	}
	return v
}

// execute runs a template into a buffer so a failing template never leaves
// a half-written page.
func (s *Server) execute(r *http.Request, name string, data any) ([]byte, bool) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		return nil, false
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldSubcomponent, log.ComponentTemplate,
			log.FieldOperation, log.OpRender,
			log.FieldError, err,
			"template", name)
		return nil, false
	}
	return buf.Bytes(), true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	body, ok := s.execute(r, name, data)
	if !ok {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// renderFragment writes a partial through the htmx response builder.
func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	body, ok := s.execute(r, name, data)
	if !ok {
		InternalServerError(core.MsgInternal).Write(w)
		return
	}
	b.BodyHTML(string(body)).Write(w)
}

// renderError shows a full error page, or an error fragment with a
// notification for htmx requests.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err), messageFor(err)
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
	}
	if isHTMX(r) {
		ErrorResponse(status, msg).Write(w)
		return
	}
	s.render(w, r, status, "error_page", errorView{
		page:    s.newPage(w, r, msg),
		Status:  status,
		Message: msg,
	})
}
