package config

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/meshetar/internal/types"
)

// GenerateSchema generates a JSON schema for the StrategyConfig
func (c *StrategyConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			name := t.String()

			switch {
			case strings.HasPrefix(name, "optional.Option[float64]"):
				return &jsonschema.Schema{
					OneOf: []*jsonschema.Schema{
						{Type: "number", Minimum: json.Number("-1"), Maximum: json.Number("1")},
						{Type: "null"},
					},
				}
			case name == "config.StrategyKind":
				return &jsonschema.Schema{Type: "string", Enum: AllStrategies}
			case name == "config.ExecutionLag":
				return &jsonschema.Schema{Type: "string", Enum: AllExecutionLags}
			case name == "config.SizingPolicy":
				return &jsonschema.Schema{Type: "string", Enum: AllSizingPolicies}
			case name == "config.FeeModel":
				return &jsonschema.Schema{Type: "string", Enum: AllFeeModels}
			case name == "config.ScoreMode":
				return &jsonschema.Schema{Type: "string", Enum: AllScoreModes}
			case name == "types.IndicatorType":
				return &jsonschema.Schema{Type: "string", Enum: []any{types.IndicatorTypeMA, types.IndicatorTypeEMA}}
			case name == "types.OrderType":
				return &jsonschema.Schema{Type: "string", Enum: []any{types.OrderTypeMarket, types.OrderTypeLimit}}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "meshetar-strategy-config"
	schema.Description = "Configuration schema for a meshetar backtest run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the StrategyConfig
func (c *StrategyConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
