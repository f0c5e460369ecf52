package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:      "Required field is missing",
	CodeInvalidInput:       "Invalid input provided",
	CodeInvalidFormat:      "Invalid data format",
	CodeInvalidState:       "Invalid state for this operation",
	CodeNotFound:           "Resource not found",
	CodeValidationError:    "Validation error",
	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeExchangeConnectionFailed: "Failed to connect to exchange",
	CodeExchangeAPIError:         "Exchange API error",
	CodeExchangeRateLimited:      "Exchange rate limit exceeded",
	CodeMissingCredentials:       "Exchange API credentials missing",

	CodePriceUnavailable:   "Price unavailable",
	CodeBalanceUnavailable: "Balance unavailable",
	CodeFiltersUnavailable: "Trading filters unavailable",
	CodeOrderRejected:      "Order rejected by exchange",
	CodeOrderNotFound:      "Order not found",

	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	CodeSpreadBelowThreshold: "Spread below configured threshold",
	CodeQuantityTooLow:       "Computed quantity below exchange minimum",
	CodeCooldownActive:       "Pair is in cooldown window",
	CodeFillTimeout:          "Order fill not confirmed within timeout",
	CodeOneSidedExposure:     "Second leg failed after first leg filled",

	CodeCacheMiss:    "Cache miss",
	CodeCacheExpired: "Cache entry expired",

	CodeCircuitOpen: "Circuit breaker is open",
}
