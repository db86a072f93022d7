package matrix

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCurrencyRequired is returned by Parse when no expected currency is supplied.
	ErrCurrencyRequired = errors.New("matrix currency is required")
	// ErrCurrencyMismatch is returned when the quoted price is denominated in a
	// different currency than the matrix.
	ErrCurrencyMismatch = errors.New("price currency does not match matrix currency")
	// ErrNegativePrice is returned when the subtotal is below zero and therefore
	// outside the matrix domain.
	ErrNegativePrice = errors.New("price amount is negative")
	// ErrUnsupportedTierKind guards against a tier kind that validation should
	// have rejected.
	ErrUnsupportedTierKind = errors.New("unsupported tier kind")
	// ErrEmptyMatrix is returned when resolving against a matrix with no tiers.
	ErrEmptyMatrix = errors.New("matrix has no tiers")
)

// RowErrorCode identifies a single ingestion validation failure.
type RowErrorCode string

const (
	CodeTooFewColumns           RowErrorCode = "too_few_columns"
	CodeInvalidThreshold        RowErrorCode = "invalid_threshold"
	CodeFirstThresholdNotZero   RowErrorCode = "first_threshold_not_zero"
	CodeInvalidKind             RowErrorCode = "invalid_kind"
	CodeInvalidValue            RowErrorCode = "invalid_value"
	CodePercentageOutOfRange    RowErrorCode = "percentage_out_of_range"
	CodeUnexpectedExtraColumns  RowErrorCode = "unexpected_extra_columns"
	CodeInvalidMin              RowErrorCode = "invalid_min"
	CodeInvalidMax              RowErrorCode = "invalid_max"
	CodeThresholdsNotIncreasing RowErrorCode = "thresholds_not_increasing"
)

// RowError pinpoints one invalid cell in the submitted table.
type RowError struct {
	Row  int          `json:"row"`
	Col  int          `json:"col"`
	Code RowErrorCode `json:"code"`
}

// Error implements the error interface.
func (e RowError) Error() string {
	return fmt.Sprintf("row %d col %d: %s", e.Row, e.Col, e.Code)
}

// RowErrors is the exhaustive list of problems found in one submission.
type RowErrors []RowError

// Error implements the error interface.
func (e RowErrors) Error() string {
	if len(e) == 0 {
		return "no row errors"
	}
	parts := make([]string, 0, len(e))
	for _, re := range e {
		parts = append(parts, re.Error())
	}
	return strings.Join(parts, "; ")
}

// AsRowErrors unwraps err into a RowErrors list when it is one.
func AsRowErrors(err error) (RowErrors, bool) {
	var rows RowErrors
	if errors.As(err, &rows) {
		return rows, true
	}
	return nil, false
}
