package types

type IndicatorType string

const (
	IndicatorTypeMA             IndicatorType = "ma"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeROC            IndicatorType = "roc"
	IndicatorTypeMomentum       IndicatorType = "momentum"
)

// AllIndicatorTypes lists every indicator family the library can build.
var AllIndicatorTypes = []any{
	IndicatorTypeMA,
	IndicatorTypeEMA,
	IndicatorTypeRSI,
	IndicatorTypeBollingerBands,
	IndicatorTypeROC,
	IndicatorTypeMomentum,
}
