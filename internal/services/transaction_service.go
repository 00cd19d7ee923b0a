package services

import (
	"context"
	"errors"
	"time"

	"nextcash/internal/auth"
	"nextcash/internal/core"
	"nextcash/internal/log"
	"nextcash/internal/ports"
)

// RecentLimit is the number of transactions shown on the dashboard.
const RecentLimit = 5

// TransactionStore is everything the transaction service needs from a backend.
type TransactionStore interface {
	ports.TransactionWriter
	ports.TransactionReader
	ports.CategoryReader
}

// TransactionService authorizes, validates and persists transactions. Every
// call resolves the caller first and touches only the caller's rows.
type TransactionService struct {
	store    TransactionStore
	identity auth.Resolver
	logger   *log.Logger
	now      func() time.Time
}

func NewTransactionService(store TransactionStore, identity auth.Resolver, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionService{
		store:    store,
		identity: identity,
		logger:   logger.WithComponent(log.ComponentTransaction),
		now:      time.Now,
	}
}

// Create validates raw input and inserts one transaction for the caller.
func (s *TransactionService) Create(ctx context.Context, raw core.Values) (int64, error) {
	owner, ok := s.identity.Resolve(ctx)
	if !ok {
		return 0, core.Unauthorized()
	}
	fields := log.NewFields().WithOwner(owner.UserID)

	in, err := s.validate(ctx, raw)
	if err != nil {
		s.logger.LogAction(ctx, log.OpCreate, err, core.KindOf(err) == core.KindValidation, fields)
		return 0, err
	}

	id, err := s.store.InsertTransaction(ctx, in.toTransaction(0, owner.UserID))
	if err != nil {
		s.logger.LogAction(ctx, log.OpCreate, err, false, fields)
		return 0, core.Internal(err)
	}

	s.logger.LogAction(ctx, log.OpCreate, nil, false, fields.WithTransaction(id))
	return id, nil
}

// Update replaces the caller's transaction id. A missing or foreign id is a
// silent success.
func (s *TransactionService) Update(ctx context.Context, id int64, raw core.Values) error {
	owner, ok := s.identity.Resolve(ctx)
	if !ok {
		return core.Unauthorized()
	}
	fields := log.NewFields().WithOwner(owner.UserID).WithTransaction(id)

	in, err := s.validate(ctx, raw)
	if err != nil {
		s.logger.LogAction(ctx, log.OpUpdate, err, core.KindOf(err) == core.KindValidation, fields)
		return err
	}

	n, err := s.store.UpdateTransaction(ctx, in.toTransaction(id, owner.UserID))
	if err != nil {
		s.logger.LogAction(ctx, log.OpUpdate, err, false, fields)
		return core.Internal(err)
	}
	if n == 0 {
		s.logger.DebugContext(ctx, "Update matched no rows", fields.ToSlice()...)
	}

	s.logger.LogAction(ctx, log.OpUpdate, nil, false, fields)
	return nil
}

// Delete removes the caller's transaction id. A missing or foreign id is a
// silent success.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	owner, ok := s.identity.Resolve(ctx)
	if !ok {
		return core.Unauthorized()
	}
	fields := log.NewFields().WithOwner(owner.UserID).WithTransaction(id)

	n, err := s.store.DeleteTransaction(ctx, owner.UserID, id)
	if err != nil {
		s.logger.LogAction(ctx, log.OpDelete, err, false, fields)
		return core.Internal(err)
	}
	if n == 0 {
		s.logger.DebugContext(ctx, "Delete matched no rows", fields.ToSlice()...)
	}

	s.logger.LogAction(ctx, log.OpDelete, nil, false, fields)
	return nil
}

// Get returns the caller's transaction or core.ErrNotFound.
func (s *TransactionService) Get(ctx context.Context, id int64) (core.TransactionWithCategory, error) {
	owner, ok := s.identity.Resolve(ctx)
	if !ok {
		return core.TransactionWithCategory{}, core.Unauthorized()
	}
	t, err := s.store.GetTransaction(ctx, owner.UserID, id)
	if errors.Is(err, core.ErrNotFound) {
		return core.TransactionWithCategory{}, core.ErrNotFound
	}
	if err != nil {
		s.logger.LogAction(ctx, log.OpRead, err, false, log.NewFields().WithOwner(owner.UserID).WithTransaction(id))
		return core.TransactionWithCategory{}, core.Internal(err)
	}
	return t, nil
}

// ListMonth returns the caller's transactions dated in year/month, newest first.
func (s *TransactionService) ListMonth(ctx context.Context, year, month int) ([]core.TransactionWithCategory, error) {
	owner, ok := s.identity.Resolve(ctx)
	if !ok {
		return nil, core.Unauthorized()
	}
	items, err := s.store.ListMonth(ctx, owner.UserID, year, month)
	if err != nil {
		s.logger.LogAction(ctx, log.OpList, err, false, log.NewFields().WithOwner(owner.UserID).WithPeriod(year, month))
		return nil, core.Internal(err)
	}
	return items, nil
}

// Recent returns the caller's latest limit transactions.
func (s *TransactionService) Recent(ctx context.Context, limit int) ([]core.TransactionWithCategory, error) {
	owner, ok := s.identity.Resolve(ctx)
	if !ok {
		return nil, core.Unauthorized()
	}
	if limit <= 0 {
		limit = RecentLimit
	}
	items, err := s.store.Recent(ctx, owner.UserID, limit)
	if err != nil {
		s.logger.LogAction(ctx, log.OpList, err, false, log.NewFields().WithOwner(owner.UserID))
		return nil, core.Internal(err)
	}
	return items, nil
}

// YearsRange lists selectable cashflow years, newest first: from the current
// year down to the caller's earliest transaction, widened to include selected.
func (s *TransactionService) YearsRange(ctx context.Context, selected int) ([]int, error) {
	owner, ok := s.identity.Resolve(ctx)
	if !ok {
		return nil, core.Unauthorized()
	}
	current := s.now().Year()
	earliest, found, err := s.store.EarliestYear(ctx, owner.UserID)
	if err != nil {
		s.logger.LogAction(ctx, log.OpRead, err, false, log.NewFields().WithOwner(owner.UserID))
		return nil, core.Internal(err)
	}
	if !found || earliest > current {
		earliest = current
	}
	return YearSpan(earliest, current, selected), nil
}

// YearSpan returns the years from max(latest, selected) down to
// min(earliest, selected). A selected value <= 0 is ignored.
func YearSpan(earliest, latest, selected int) []int {
	if selected > 0 {
		earliest = min(earliest, selected)
		latest = max(latest, selected)
	}
	years := make([]int, 0, latest-earliest+1)
	for y := latest; y >= earliest; y-- {
		years = append(years, y)
	}
	return years
}

type validTransaction struct {
	core.TransactionFields
}

func (v validTransaction) toTransaction(id int64, owner string) core.Transaction {
	return core.Transaction{
		ID:          id,
		OwnerID:     owner,
		CategoryID:  v.CategoryID,
		Date:        v.Date,
		Amount:      v.Amount,
		Description: v.Description,
	}
}

// validate runs the schema, then checks the category exists with the
// selected type.
func (s *TransactionService) validate(ctx context.Context, raw core.Values) (validTransaction, error) {
	in, verrs := core.ValidateTransaction(raw, s.now())
	if verrs != nil {
		return validTransaction{}, core.Invalid(verrs.First())
	}

	cat, err := s.store.GetCategory(ctx, in.CategoryID)
	if errors.Is(err, core.ErrNotFound) {
		return validTransaction{}, core.Invalid(core.MsgSelectCategory)
	}
	if err != nil {
		return validTransaction{}, core.Internal(err)
	}
	if cat.Type != in.Type {
		return validTransaction{}, core.Invalid(core.MsgSelectCategory)
	}
	return validTransaction{in}, nil
}
