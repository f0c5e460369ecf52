package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField      Code = "REQUIRED_FIELD"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeInvalidFormat      Code = "INVALID_FORMAT"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeNotFound           Code = "NOT_FOUND"
	CodeValidationError    Code = "VALIDATION_ERROR"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Exchange adapter error codes
const (
	CodeExchangeConnectionFailed Code = "EXCHANGE_CONNECTION_FAILED"
	CodeExchangeAPIError         Code = "EXCHANGE_API_ERROR"
	CodeExchangeRateLimited      Code = "EXCHANGE_RATE_LIMITED"
	CodeMissingCredentials       Code = "MISSING_CREDENTIALS"

	CodePriceUnavailable   Code = "PRICE_UNAVAILABLE"
	CodeBalanceUnavailable Code = "BALANCE_UNAVAILABLE"
	CodeFiltersUnavailable Code = "FILTERS_UNAVAILABLE"
	CodeOrderRejected      Code = "ORDER_REJECTED"
	CodeOrderNotFound      Code = "ORDER_NOT_FOUND"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"
)

// Arbitrage error codes
const (
	CodeSpreadBelowThreshold Code = "SPREAD_BELOW_THRESHOLD"
	CodeQuantityTooLow       Code = "QUANTITY_TOO_LOW"
	CodeCooldownActive       Code = "COOLDOWN_ACTIVE"
	CodeFillTimeout          Code = "FILL_TIMEOUT"
	CodeOneSidedExposure     Code = "ONE_SIDED_EXPOSURE"

	// Cache errors
	CodeCacheMiss    Code = "CACHE_MISS"
	CodeCacheExpired Code = "CACHE_EXPIRED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
