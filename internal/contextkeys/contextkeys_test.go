package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFromContext_FallsBackToNoop(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	assert.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.WithFields(nil).Error("boom", nil, nil)
	})
}

func TestEnsureTraceID(t *testing.T) {
	ctx, id := EnsureTraceID(context.Background(), "")
	assert.NotEmpty(t, id)
	assert.Equal(t, id, TraceIDFromContext(ctx))

	ctx2, id2 := EnsureTraceID(ctx, "")
	assert.Equal(t, id, id2)
	assert.Equal(t, id, TraceIDFromContext(ctx2))

	_, explicit := EnsureTraceID(ctx, "abc")
	assert.Equal(t, "abc", explicit)
}
