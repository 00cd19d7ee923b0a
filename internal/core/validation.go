package core

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Input field names, shared by forms, JSON bodies and error reporting.
const (
	FieldTransactionType = "transactionType"
	FieldCategoryID      = "categoryId"
	FieldTransactionDate = "transactionDate"
	FieldAmount          = "amount"
	FieldDescription     = "description"
)

const (
	DescriptionMinLen = 3
	DescriptionMaxLen = 300
)

const (
	MsgInvalidType         = "Invalid transaction type"
	MsgSelectCategory      = "Please select a category"
	MsgInvalidDate         = "Invalid transaction date"
	MsgFutureDate          = "Transaction date cannot be in the future"
	MsgAmountPositive      = "Amount must be greater than 0"
	MsgDescriptionTooShort = "Description must contain at least 3 characters"
	MsgDescriptionTooLong  = "Description must contain a maximum of 300 characters"
)

// Values is any untyped key/value input: url.Values, a parsed JSON body.
type Values interface {
	Get(key string) string
}

// TransactionFields is a transaction input that passed validation.
type TransactionFields struct {
	Type        TransactionType
	CategoryID  int64
	Date        Date
	Amount      decimal.Decimal
	Description string
}

type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors lists violations in field evaluation order.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(msgs, "; ")
}

// First returns the message of the first violated field.
func (v ValidationErrors) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Message
}

// For returns the message reported for field, if any.
func (v ValidationErrors) For(field string) string {
	for _, fe := range v {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// MaxTransactionDate is the latest date accepted relative to now.
func MaxTransactionDate(now time.Time) Date {
	return Date{Time: DateOf(now).AddDate(0, 0, 1)}
}

// ValidateTransaction checks every field of in and returns either the typed
// fields or all violations. It has no side effects; now bounds the date.
func ValidateTransaction(in Values, now time.Time) (TransactionFields, ValidationErrors) {
	var (
		out  TransactionFields
		errs ValidationErrors
	)
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	out.Type = TransactionType(strings.TrimSpace(in.Get(FieldTransactionType)))
	if !out.Type.Valid() {
		add(FieldTransactionType, MsgInvalidType)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(in.Get(FieldCategoryID)), 10, 64)
	if err != nil || id <= 0 {
		add(FieldCategoryID, MsgSelectCategory)
	}
	out.CategoryID = id

	date, err := ParseDate(strings.TrimSpace(in.Get(FieldTransactionDate)))
	switch {
	case err != nil:
		add(FieldTransactionDate, MsgInvalidDate)
	case date.After(MaxTransactionDate(now).Time):
		add(FieldTransactionDate, MsgFutureDate)
	}
	out.Date = date

	amount, err := ParseAmount(in.Get(FieldAmount))
	if err != nil {
		add(FieldAmount, MsgAmountPositive)
	}
	out.Amount = amount

	out.Description = in.Get(FieldDescription)
	switch n := utf8.RuneCountInString(out.Description); {
	case n < DescriptionMinLen:
		add(FieldDescription, MsgDescriptionTooShort)
	case n > DescriptionMaxLen:
		add(FieldDescription, MsgDescriptionTooLong)
	}

	if len(errs) > 0 {
		return TransactionFields{}, errs
	}
	return out, nil
}
