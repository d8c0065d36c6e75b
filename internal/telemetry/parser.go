package telemetry

import (
	"bytes"
	"encoding/json"
	"strings"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
)

const valueField = "value"

// Parser extracts the fan and temperature readings from a telemetry
// document shaped as {"<key>": {"value": <number>, ...}, ...}.
type Parser struct {
	fanKey         string
	temperatureKey string
}

func NewParser(fanKey, temperatureKey string) *Parser {
	if fanKey == "" {
		fanKey = DefaultFanKey
	}
	if temperatureKey == "" {
		temperatureKey = DefaultTemperatureKey
	}

	return &Parser{
		fanKey:         fanKey,
		temperatureKey: temperatureKey,
	}
}

// Parse decodes raw and returns both readings, or fails as a whole.
func (p *Parser) Parse(raw []byte) (Snapshot, error) {
	errFactory := errors.New()

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		if err == nil {
			return Snapshot{}, errFactory.WithData(ErrParseMalformed, "document is null")
		}
		return Snapshot{}, errFactory.Wrap(ErrParseMalformed, err)
	}

	var missing []string
	for _, key := range []string{p.fanKey, p.temperatureKey} {
		if _, ok := doc[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Snapshot{}, errFactory.WithData(ErrParseMissingField, strings.Join(missing, ", "))
	}

	speed, err := readValue(doc, p.fanKey)
	if err != nil {
		return Snapshot{}, err
	}

	temp, err := readValue(doc, p.temperatureKey)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		RotationSpeed:      speed,
		TemperatureCelsius: temp,
	}, nil
}

func readValue(doc map[string]json.RawMessage, key string) (float64, error) {
	errFactory := errors.New()

	var sensor map[string]json.RawMessage
	if err := json.Unmarshal(doc[key], &sensor); err != nil || sensor == nil {
		return 0, errFactory.WithData(ErrParseWrongType, key+": not an object")
	}

	rawValue, ok := sensor[valueField]
	if !ok {
		return 0, errFactory.WithData(ErrParseMissingField, key+"."+valueField)
	}

	// Only JSON numbers are accepted: strings, booleans and null are not.
	trimmed := bytes.TrimSpace(rawValue)
	if len(trimmed) == 0 || !isNumberStart(trimmed[0]) {
		return 0, errFactory.WithData(ErrParseWrongType, key+"."+valueField+": not a number")
	}

	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return 0, errFactory.Wrap(ErrParseWrongType, err).WithData(key + "." + valueField)
	}

	return value, nil
}

func isNumberStart(b byte) bool {
	return b == '-' || (b >= '0' && b <= '9')
}
