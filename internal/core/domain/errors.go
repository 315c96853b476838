package domain

import (
	"errors"
	"fmt"
)

// Определяем переменные-ошибки, которые могут быть возвращены из Use Cases.
var (
	ErrReferenceQuoteNotFound = errors.New("reference quote not found")
	ErrMunicipalityNotFound   = errors.New("municipality not found in reference data")
	ErrLegalRateUnavailable   = errors.New("legal interest rate unavailable")
	ErrInvalidInput           = errors.New("invalid valuation input")
	ErrInvalidAge             = errors.New("usufructuary age must be between 0 and 100")
	ErrNonPositiveBareValue   = errors.New("bare ownership value must be positive to score a deal")
)

// ReferenceNotFoundError - котировка для запрошенного ключа отсутствует.
// Несет данные для ответа пользователю с подсказками.
type ReferenceNotFoundError struct {
	Municipality string
	PriceBand    PriceBand
	ZoneCode     string
	Suggestions  []string
}

// NewReferenceNotFoundError собирает ошибку со стандартными подсказками
func NewReferenceNotFoundError(key QuoteKey) *ReferenceNotFoundError {
	return &ReferenceNotFoundError{
		Municipality: key.Municipality,
		PriceBand:    key.PriceBand,
		ZoneCode:     key.ZoneCode,
		Suggestions: []string{
			"Verifica il nome del comune",
			"Prova con una fascia diversa (B, C, D)",
			fmt.Sprintf("Comune inserito: %s", key.Municipality),
		},
	}
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("Nessuna quotazione OMI trovata per %s", e.Municipality)
}

func (e *ReferenceNotFoundError) Unwrap() error {
	return ErrReferenceQuoteNotFound
}

// InvalidInputError описывает конкретное нарушенное поле
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, format string, args ...interface{}) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
