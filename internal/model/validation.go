package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
)

// FieldError describes a single invariant violation on a record.
type FieldError struct {
	Record  string
	Field   string
	Problem string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Record, e.Problem)
	}
	return fmt.Sprintf("%s.%s: %s", e.Record, e.Field, e.Problem)
}

// ValidationErrors collects every violation found on a record.
// It matches errs.ErrInvalid under errors.Is.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return errs.ErrInvalid
}

// validator accumulates FieldErrors for one record type.
type validator struct {
	record string
	errs   ValidationErrors
}

func newValidator(record string) *validator {
	return &validator{record: record}
}

func (v *validator) addf(field, format string, args ...any) {
	v.errs = append(v.errs, FieldError{Record: v.record, Field: field, Problem: fmt.Sprintf(format, args...)})
}

func (v *validator) merge(err error) {
	if err == nil {
		return
	}
	if ve, ok := err.(ValidationErrors); ok {
		v.errs = append(v.errs, ve...)
		return
	}
	v.errs = append(v.errs, FieldError{Record: v.record, Problem: err.Error()})
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

var hundred = decimal.NewFromInt(100)

// hasCents reports whether d has no more than two decimal places.
func hasCents(d decimal.Decimal) bool {
	return d.Mul(hundred).Equal(d.Mul(hundred).Floor())
}
