package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuation-service/internal/constants"
	"valuation-service/internal/contextkeys"
	"valuation-service/internal/contracts"
	"valuation-service/internal/core/domain"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/valuation"
	"valuation-service/pkg/rabbitmq/rabbitmq_consumer"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)                 {}
func (nopLogger) Warn(string, port.Fields)                 {}
func (nopLogger) Error(string, error, port.Fields)         {}
func (nopLogger) Debug(string, port.Fields)                {}
func (n nopLogger) WithFields(port.Fields) port.LoggerPort { return n }

type publishedMessage struct {
	routingKey string
	msg        amqp.Publishing
}

type fakeProducer struct {
	mu   sync.Mutex
	sent []publishedMessage
	err  error
}

func (p *fakeProducer) Publish(_ context.Context, routingKey string, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, publishedMessage{routingKey: routingKey, msg: msg})
	return nil
}

type processCall struct {
	requestID string
	input     domain.PropertyValuationInput
	traceID   string
}

type fakeProcess struct {
	calls []processCall
	err   error
}

func (f *fakeProcess) Execute(ctx context.Context, requestID string, input domain.PropertyValuationInput) error {
	f.calls = append(f.calls, processCall{requestID: requestID, input: input, traceID: contextkeys.TraceIDFromContext(ctx)})
	return f.err
}

type failedReport struct {
	requestID string
	cause     error
}

type fakeReporter struct {
	failed []failedReport
}

func (r *fakeReporter) ReportCompleted(context.Context, string, domain.ValuationResult, string) error {
	return nil
}

func (r *fakeReporter) ReportFailed(_ context.Context, requestID string, cause error) error {
	r.failed = append(r.failed, failedReport{requestID: requestID, cause: cause})
	return nil
}

func newTestConsumerAdapter() (*ValuationRequestConsumerAdapter, *fakeProcess, *fakeReporter) {
	uc := &fakeProcess{}
	rep := &fakeReporter{}
	return &ValuationRequestConsumerAdapter{useCase: uc, reporter: rep, logger: nopLogger{}}, uc, rep
}

func delivery(body string, headers amqp.Table) amqp.Delivery {
	return amqp.Delivery{Body: []byte(body), Headers: headers}
}

func TestHandleMessage_ValidRequest(t *testing.T) {
	a, uc, rep := newTestConsumerAdapter()

	err := a.handleMessage(delivery(
		`{"request_id":"r-1","property":{"comune":"pescara","superficie":100,"eta_usufruttuario":78}}`,
		amqp.Table{constants.HeaderTraceID: "trace-1", constants.HeaderEventType: constants.EventValuationRequested},
	))
	require.NoError(t, err)
	require.Len(t, uc.calls, 1)
	assert.Equal(t, "r-1", uc.calls[0].requestID)
	assert.Equal(t, "PESCARA", uc.calls[0].input.Municipality)
	assert.Equal(t, "trace-1", uc.calls[0].traceID)
	assert.Empty(t, rep.failed)
}

func TestHandleMessage_UseCaseErrorIsRetryable(t *testing.T) {
	a, uc, _ := newTestConsumerAdapter()
	uc.err = errors.New("connection refused")

	err := a.handleMessage(delivery(
		`{"request_id":"r-1","property":{"comune":"ROMA","superficie":70,"eta_usufruttuario":80}}`, nil))
	require.Error(t, err)
	assert.False(t, errors.Is(err, rabbitmq_consumer.ErrPermanent))
	assert.NotEmpty(t, uc.calls[0].traceID)
}

func TestHandleMessage_InvalidPropertyIsReported(t *testing.T) {
	a, uc, rep := newTestConsumerAdapter()

	err := a.handleMessage(delivery(`{"request_id":"r-2","property":{"comune":"ROMA","superficie":0,"eta_usufruttuario":80}}`, nil))
	require.NoError(t, err)
	assert.Empty(t, uc.calls)
	require.Len(t, rep.failed, 1)
	assert.Equal(t, "r-2", rep.failed[0].requestID)
	assert.True(t, errors.Is(rep.failed[0].cause, domain.ErrInvalidInput))
}

func TestHandleMessage_BrokenEnvelopeIsPermanent(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		headers amqp.Table
	}{
		{"no request id", `{"property":{"comune":"ROMA"}}`, nil},
		{"not json", `{oops`, nil},
		{"wrong event type", `{"request_id":"r-3","property":{}}`, amqp.Table{constants.HeaderEventType: "SomethingElse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, uc, rep := newTestConsumerAdapter()
			err := a.handleMessage(delivery(tt.body, tt.headers))
			require.Error(t, err)
			assert.True(t, errors.Is(err, rabbitmq_consumer.ErrPermanent))
			assert.Empty(t, uc.calls)
			assert.Empty(t, rep.failed)
		})
	}
}

func TestPublisher_ReportCompleted(t *testing.T) {
	producer := &fakeProducer{}
	a, err := NewValuationResultPublisherAdapter(producer)
	require.NoError(t, err)

	in := domain.NewPropertyValuationInput("PESCARA", 100, 78, domain.WithAskingPrice(115000))
	quote := domain.NewReferenceQuote(1500, 1800, "B1", "B1", "2025/1")
	result, err := valuation.Assemble(in, quote, valuation.LegalRate{Rate: 0.025}, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-9")
	require.NoError(t, a.ReportCompleted(ctx, "r-9", result, valuation.RenderReport(result)))

	require.Len(t, producer.sent, 1)
	sent := producer.sent[0]
	assert.Equal(t, constants.RoutingKeyValuationCompleted, sent.routingKey)
	assert.Equal(t, "r-9", sent.msg.CorrelationId)
	assert.Equal(t, "trace-9", sent.msg.Headers[constants.HeaderTraceID])
	assert.Equal(t, constants.EventValuationCompleted, sent.msg.Headers[constants.HeaderEventType])
	assert.Equal(t, constants.ContractVersion, sent.msg.Headers[constants.HeaderEventVersion])
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)

	var event contracts.ValuationCompletedEventDTO
	require.NoError(t, json.Unmarshal(sent.msg.Body, &event))
	assert.Equal(t, result.ID.String(), event.ValuationID)
	assert.InDelta(t, result.Fiscal.BareValue, event.ValoreFiscale.ValoreNudaProprieta, 1e-9)
}

func TestPublisher_ReportFailed(t *testing.T) {
	producer := &fakeProducer{}
	a, err := NewValuationResultPublisherAdapter(producer)
	require.NoError(t, err)

	cause := domain.NewReferenceNotFoundError(domain.QuoteKey{Municipality: "ATLANTIDE"})
	require.NoError(t, a.ReportFailed(context.Background(), "r-5", cause))

	require.Len(t, producer.sent, 1)
	assert.Equal(t, constants.RoutingKeyValuationFailed, producer.sent[0].routingKey)
	_, hasTrace := producer.sent[0].msg.Headers[constants.HeaderTraceID]
	assert.False(t, hasTrace)

	var event contracts.ValuationFailedEventDTO
	require.NoError(t, json.Unmarshal(producer.sent[0].msg.Body, &event))
	assert.Equal(t, contracts.ReasonNotFound, event.Reason)
	assert.Len(t, event.Suggestions, 3)
}

func TestPublisher_PublishError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("channel closed")}
	a, err := NewValuationResultPublisherAdapter(producer)
	require.NoError(t, err)

	err = a.ReportFailed(context.Background(), "r-6", domain.ErrNonPositiveBareValue)
	assert.ErrorContains(t, err, "channel closed")

	_, err = NewValuationResultPublisherAdapter(nil)
	assert.Error(t, err)
}

func TestPkgLoggerBridge_ToFields(t *testing.T) {
	b := &PkgLoggerBridge{internalLogger: nopLogger{}}
	fields := b.toFields("queue", "q", 42, "skipped", "dangling")
	assert.Equal(t, port.Fields{"queue": "q"}, fields)
}
