package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown  ErrorCode = 1
	ErrCodeCanceled ErrorCode = 2

	// Configuration errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidWindow        ErrorCode = 102
	ErrCodeInvalidThreshold     ErrorCode = 103
	ErrCodeInvalidSizing        ErrorCode = 104
	ErrCodeInvalidFeeModel      ErrorCode = 105
	ErrCodeInvalidSlippage      ErrorCode = 106
	ErrCodeInvalidExecutionLag  ErrorCode = 107
	ErrCodeInvalidScorePolicy   ErrorCode = 108
	ErrCodeInvalidType          ErrorCode = 109
	ErrCodeMissingParameter     ErrorCode = 110
	ErrCodeInvalidLotSize       ErrorCode = 111
	ErrCodeInvalidOrder         ErrorCode = 112

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNonMonotonicTime      ErrorCode = 203
	ErrCodeDuplicateTimestamp    ErrorCode = 204
	ErrCodeNonFinitePrice        ErrorCode = 205
	ErrCodeNonPositivePrice      ErrorCode = 206
	ErrCodeNegativeVolume        ErrorCode = 207
	ErrCodeEmptySeries           ErrorCode = 208
	ErrCodeDataParseFailed       ErrorCode = 209
	ErrCodeScoreMisaligned       ErrorCode = 210

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Strategy and model errors (400-499)
	ErrCodeUnsupportedStrategy ErrorCode = 400
	ErrCodeStrategyConfigError ErrorCode = 401
	ErrCodeNonFiniteScore      ErrorCode = 402
	ErrCodeScoreOutOfRange     ErrorCode = 403

	// Execution policy violations (500-599)
	ErrCodeNoFill              ErrorCode = 500
	ErrCodeZeroQuantity        ErrorCode = 501
	ErrCodeInsufficientCash    ErrorCode = 502
	ErrCodeLimitNotTouched     ErrorCode = 503
	ErrCodeOrderCancelledAtEnd ErrorCode = 504

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed    ErrorCode = 600
	ErrCodeBacktestStateNil      ErrorCode = 601
	ErrCodeBacktestResultsFailed ErrorCode = 602
	ErrCodeBacktestNoDatasource  ErrorCode = 603
	ErrCodeSweepFailed           ErrorCode = 604
	ErrCodeCallbackAborted       ErrorCode = 605
	ErrCodeReportIncompatible    ErrorCode = 606
)

// Category groups error codes into the engine's error taxonomy.
type Category string

const (
	CategoryUnknown                  Category = "unknown"
	CategoryConfigError              Category = "config_error"
	CategoryDataError                Category = "data_error"
	CategoryIndicatorError           Category = "indicator_error"
	CategoryStrategyError            Category = "strategy_error"
	CategoryExecutionPolicyViolation Category = "execution_policy_violation"
	CategoryBacktestError            Category = "backtest_error"
)

// Category returns the taxonomy bucket for the code.
func (c ErrorCode) Category() Category {
	switch {
	case c >= 100 && c < 200:
		return CategoryConfigError
	case c >= 200 && c < 300:
		return CategoryDataError
	case c >= 300 && c < 400:
		return CategoryIndicatorError
	case c >= 400 && c < 500:
		return CategoryStrategyError
	case c >= 500 && c < 600:
		return CategoryExecutionPolicyViolation
	case c >= 600 && c < 700:
		return CategoryBacktestError
	default:
		return CategoryUnknown
	}
}
