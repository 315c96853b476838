package constants

// Входящие запросы на оценку
const (
	ExchangeValuation     = "valuation_exchange"
	ExchangeValuationType = "direct"

	QueueValuationRequests      = "valuation_requests"
	RoutingKeyValuationRequests = "valuation.request"
	ConsumerTagValuation        = "valuation-service"
)

// Результаты оценки
const (
	RoutingKeyValuationCompleted = "valuation.completed"
	RoutingKeyValuationFailed    = "valuation.failed"
)

// Ретраи и финальная DLQ
const (
	RetryExchange = "valuation_requests_retry_exchange"
	RetryQueue    = "valuation_requests_retry_wait"
	RetryTTLms    = 10000
	MaxRetries    = 3

	FinalDLXExchange   = "valuation_requests_final_dlx"
	FinalDLQ           = "valuation_requests_final_dlq"
	FinalDLQRoutingKey = "valuation.dlq.key"
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
)

// Типы событий и версия контрактов
const (
	EventValuationRequested = "ValuationRequestedEvent"
	EventValuationCompleted = "ValuationCompletedEvent"
	EventValuationFailed    = "ValuationFailedEvent"
	SchemaValuationRequest  = "ValuationRequest"
	ContractVersion         = "1.0.0"
)
