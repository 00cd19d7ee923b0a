// Package form holds the state of the transaction create/edit form between
// rendering and submission.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"nextcash/internal/core"
)

type State string

const (
	Editing           State = "editing"
	Submitting        State = "submitting"
	Success           State = "success"
	EditingWithErrors State = "editing-with-errors"
)

// Success notifications shown after navigation.
const (
	MsgCreated = "Transaction created"
	MsgUpdated = "Transaction updated"
	MsgDeleted = "Transaction deleted"
)

// ListPath is the transactions list page.
const ListPath = "/dashboard/transactions"

var (
	ErrInvalidTransition    = errors.New("invalid form state transition")
	ErrCategoryNotAvailable = errors.New("category not available for the selected type")
)

// Values are the raw form inputs, kept as typed by the user so they can be
// re-rendered after a failure.
type Values struct {
	TransactionType string
	CategoryID      string
	TransactionDate string
	Amount          string
	Description     string
}

// Get implements core.Values.
func (v Values) Get(key string) string {
	switch key {
	case core.FieldTransactionType:
		return v.TransactionType
	case core.FieldCategoryID:
		return v.CategoryID
	case core.FieldTransactionDate:
		return v.TransactionDate
	case core.FieldAmount:
		return v.Amount
	case core.FieldDescription:
		return v.Description
	}
	return ""
}

func ValuesFrom(in core.Values) Values {
	return Values{
		TransactionType: in.Get(core.FieldTransactionType),
		CategoryID:      in.Get(core.FieldCategoryID),
		TransactionDate: in.Get(core.FieldTransactionDate),
		Amount:          in.Get(core.FieldAmount),
		Description:     in.Get(core.FieldDescription),
	}
}

// DefaultValues are the inputs of an empty create form.
func DefaultValues(now time.Time) Values {
	return Values{
		TransactionType: string(core.Income),
		CategoryID:      "0",
		TransactionDate: core.DateOf(now).String(),
	}
}

// ValuesFromTransaction prefills an edit form. The type is taken from the
// stored category, income when that category is unknown.
func ValuesFromTransaction(t core.Transaction, categories []core.Category) Values {
	typ := core.Income
	if c, ok := core.FindCategory(categories, t.CategoryID); ok {
		typ = c.Type
	}
	return Values{
		TransactionType: string(typ),
		CategoryID:      strconv.FormatInt(t.CategoryID, 10),
		TransactionDate: t.Date.String(),
		Amount:          t.Amount.String(),
		Description:     t.Description,
	}
}

// Form is the transaction form state machine:
// editing -> submitting -> success | editing-with-errors -> submitting ...
type Form struct {
	Action  string
	Values  Values
	State   State
	Message string
	Errors  core.ValidationErrors

	categories []core.Category
}

func New(action string, categories []core.Category, values Values) *Form {
	return &Form{
		Action:     action,
		Values:     values,
		State:      Editing,
		categories: categories,
	}
}

// Type returns the selected transaction type.
func (f *Form) Type() core.TransactionType {
	return core.TransactionType(f.Values.TransactionType)
}

// Categories returns the categories offered for the selected type.
func (f *Form) Categories() []core.Category {
	return core.FilterByType(f.categories, f.Type())
}

// SetType switches the transaction type and clears the category.
func (f *Form) SetType(t core.TransactionType) {
	f.Values.TransactionType = string(t)
	f.Values.CategoryID = "0"
}

// SelectCategory picks a category among those currently offered.
func (f *Form) SelectCategory(id int64) error {
	if _, ok := core.FindCategory(f.Categories(), id); !ok {
		return ErrCategoryNotAvailable
	}
	f.Values.CategoryID = strconv.FormatInt(id, 10)
	return nil
}

// SelectedCategory returns the selected category id, 0 when unset.
func (f *Form) SelectedCategory() int64 {
	id, err := strconv.ParseInt(f.Values.CategoryID, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// Begin validates the inputs and enters submitting. On violations it moves
// to editing-with-errors and reports false.
func (f *Form) Begin(now time.Time) (bool, error) {
	if f.State != Editing && f.State != EditingWithErrors {
		return false, fmt.Errorf("%w: begin from %s", ErrInvalidTransition, f.State)
	}
	_, errs := core.ValidateTransaction(f.Values, now)
	if errs != nil {
		f.State = EditingWithErrors
		f.Errors = errs
		f.Message = errs.First()
		return false, nil
	}
	f.State = Submitting
	f.Errors = nil
	f.Message = ""
	return true, nil
}

// Fail returns to editing with the server's message; values are kept.
func (f *Form) Fail(message string) error {
	if f.State != Submitting {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, f.State)
	}
	f.State = EditingWithErrors
	f.Message = message
	return nil
}

func (f *Form) Succeed() error {
	if f.State != Submitting {
		return fmt.Errorf("%w: succeed from %s", ErrInvalidTransition, f.State)
	}
	f.State = Success
	return nil
}

// Disabled reports whether inputs must be disabled.
func (f *Form) Disabled() bool {
	return f.State == Submitting
}

// FieldError returns the violation reported for field, if any.
func (f *Form) FieldError(field string) string {
	return f.Errors.For(field)
}

// ListURL is the list page for the month of d.
func ListURL(d core.Date) string {
	return fmt.Sprintf("%s?month=%d&year=%d", ListPath, d.MonthNumber(), d.Year())
}
