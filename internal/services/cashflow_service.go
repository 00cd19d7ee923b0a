package services

import (
	"context"

	"nextcash/internal/auth"
	"nextcash/internal/core"
	"nextcash/internal/log"
	"nextcash/internal/ports"
)

// CashflowService aggregates the caller's transactions into monthly totals.
// Results are computed on every call.
type CashflowService struct {
	reader   ports.CashflowReader
	identity auth.Resolver
	logger   *log.Logger
}

func NewCashflowService(reader ports.CashflowReader, identity auth.Resolver, logger *log.Logger) *CashflowService {
	if logger == nil {
		logger = log.Discard()
	}
	return &CashflowService{
		reader:   reader,
		identity: identity,
		logger:   logger.WithComponent(log.ComponentCashflow),
	}
}

// Annual returns the 12-month series for year.
func (s *CashflowService) Annual(ctx context.Context, year int) (core.Cashflow, error) {
	owner, ok := s.identity.Resolve(ctx)
	if !ok {
		return core.Cashflow{}, core.Unauthorized()
	}
	rows, err := s.reader.MonthAmounts(ctx, owner.UserID, year)
	if err != nil {
		s.logger.LogAction(ctx, log.OpAggregate, err, false, log.NewFields().WithOwner(owner.UserID).WithPeriod(year, 0))
		return core.Cashflow{}, core.Internal(err)
	}
	return core.BuildCashflow(year, rows), nil
}
