package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation-service/internal/core/domain"
)

func TestProcessValuationRequest_Completed(t *testing.T) {
	result := &domain.ValuationResult{ID: uuid.New(), Input: pescara()}
	reporter := &fakeReporter{}
	uc := NewProcessValuationRequestUseCase(fakeValuate{result: result}, reporter)

	require.NoError(t, uc.Execute(context.Background(), "req-1", pescara()))
	assert.Equal(t, []string{"req-1"}, reporter.completed)
	require.Len(t, reporter.reports, 1)
	assert.Contains(t, reporter.reports[0], "REPORT VALUTAZIONE IMMOBILE")
	assert.Empty(t, reporter.failed)
}

func TestProcessValuationRequest_RejectionIsReportedAndAcked(t *testing.T) {
	for _, cause := range []error{
		domain.NewReferenceNotFoundError(domain.QuoteKey{Municipality: "X"}),
		fmt.Errorf("wrapped: %w", domain.ErrNonPositiveBareValue),
		&domain.InvalidInputError{Field: "superficie", Reason: "must be positive"},
	} {
		reporter := &fakeReporter{}
		uc := NewProcessValuationRequestUseCase(fakeValuate{err: cause}, reporter)

		require.NoError(t, uc.Execute(context.Background(), "req-2", pescara()))
		assert.Equal(t, []string{"req-2"}, reporter.failed)
		assert.Equal(t, []error{cause}, reporter.causes)
	}
}

func TestProcessValuationRequest_InfrastructureErrorIsRetried(t *testing.T) {
	reporter := &fakeReporter{}
	uc := NewProcessValuationRequestUseCase(fakeValuate{err: errDatabaseDown}, reporter)

	err := uc.Execute(context.Background(), "req-3", pescara())
	assert.ErrorIs(t, err, errDatabaseDown)
	assert.Empty(t, reporter.failed)
	assert.Empty(t, reporter.completed)
}

func TestProcessValuationRequest_ReporterErrorIsRetried(t *testing.T) {
	result := &domain.ValuationResult{ID: uuid.New()}
	uc := NewProcessValuationRequestUseCase(fakeValuate{result: result}, &fakeReporter{err: errDatabaseDown})

	assert.ErrorIs(t, uc.Execute(context.Background(), "req-4", pescara()), errDatabaseDown)
}
