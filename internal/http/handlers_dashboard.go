package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"nextcash/internal/core"
	"nextcash/internal/services"
)

// handleDashboard renders the cashflow chart for ?cfyear and the recent
// transactions. The three reads are independent and run concurrently.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year := ParseCashflowYear(r.URL.Query(), s.now())

	var (
		cashflow core.Cashflow
		recent   []core.TransactionWithCategory
		years    []int
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		cashflow, err = s.cashflow.Annual(ctx, year)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.tx.Recent(ctx, services.RecentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		years, err = s.tx.YearsRange(ctx, year)
		return err
	})
	if err := g.Wait(); err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "dashboard_page", dashboardView{
		page:     s.newPage(w, r, "Dashboard"),
		Cashflow: newCashflowView(cashflow, years),
		Recent:   toRows(recent),
	})
}
