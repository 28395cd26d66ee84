package chordconfig

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/chordnova/chordnova/internal/logging"
)

// FieldNumOfSequentialChords is the only required configuration field
const FieldNumOfSequentialChords = "numOfSequentialChords"

// Config is a validated chord progression configuration.
type Config struct {
	NumOfSequentialChords float64 `json:"numOfSequentialChords"`

	MinNumOfPitches      *float64 `json:"minNumOfPitches,omitempty"`
	MaxNumOfPitches      *float64 `json:"maxNumOfPitches,omitempty"`
	MinPitch             *float64 `json:"minPitch,omitempty"`
	MaxPitch             *float64 `json:"maxPitch,omitempty"`
	MinThickness         *float64 `json:"minThickness,omitempty"`
	MaxThickness         *float64 `json:"maxThickness,omitempty"`
	MinRoot              *float64 `json:"minRoot,omitempty"`
	MaxRoot              *float64 `json:"maxRoot,omitempty"`
	MinGeometryCenter    *float64 `json:"minGeometryCenter,omitempty"`
	MaxGeometryCenter    *float64 `json:"maxGeometryCenter,omitempty"`
	MinPitchClassSetSize *float64 `json:"minPitchClassSetSize,omitempty"`
	MaxPitchClassSetSize *float64 `json:"maxPitchClassSetSize,omitempty"`
	MinCOFSpan           *float64 `json:"minCOFSpan,omitempty"`
	MaxCOFSpan           *float64 `json:"maxCOFSpan,omitempty"`

	// Raw is the configuration object exactly as the user wrote it,
	// including fields outside the schema.
	Raw json.RawMessage `json:"-"`
}

// extendedField binds an extended schema field name to its struct slot
type extendedField struct {
	name string
	slot func(*Config) **float64
}

func (f extendedField) get(c *Config) *float64 {
	return *f.slot(c)
}

// extendedFields lists the optional range fields of the extended schema, in
// the order they are documented.
var extendedFields = []extendedField{
	{"minNumOfPitches", func(c *Config) **float64 { return &c.MinNumOfPitches }},
	{"maxNumOfPitches", func(c *Config) **float64 { return &c.MaxNumOfPitches }},
	{"minPitch", func(c *Config) **float64 { return &c.MinPitch }},
	{"maxPitch", func(c *Config) **float64 { return &c.MaxPitch }},
	{"minThickness", func(c *Config) **float64 { return &c.MinThickness }},
	{"maxThickness", func(c *Config) **float64 { return &c.MaxThickness }},
	{"minRoot", func(c *Config) **float64 { return &c.MinRoot }},
	{"maxRoot", func(c *Config) **float64 { return &c.MaxRoot }},
	{"minGeometryCenter", func(c *Config) **float64 { return &c.MinGeometryCenter }},
	{"maxGeometryCenter", func(c *Config) **float64 { return &c.MaxGeometryCenter }},
	{"minPitchClassSetSize", func(c *Config) **float64 { return &c.MinPitchClassSetSize }},
	{"maxPitchClassSetSize", func(c *Config) **float64 { return &c.MaxPitchClassSetSize }},
	{"minCOFSpan", func(c *Config) **float64 { return &c.MinCOFSpan }},
	{"maxCOFSpan", func(c *Config) **float64 { return &c.MaxCOFSpan }},
}

// ExtendedFieldNames returns the names of the optional extended fields.
func ExtendedFieldNames() []string {
	names := make([]string, len(extendedFields))
	for i, f := range extendedFields {
		names[i] = f.name
	}
	return names
}

// Parse converts configuration text into a validated Config.
//
// It returns a *ParseError when the text is empty, is not JSON, is not a
// JSON object, lacks numOfSequentialChords, or holds a non-number in any
// schema field. Parse never panics on user input. Failures are logged at
// warn level.
func Parse(text string) (*Config, error) {
	cfg, err := parse(text)
	if err != nil {
		logging.Warn("Configuration text is not a valid chord configuration",
			zap.String("config", text),
			zap.Error(err),
		)
		return nil, err
	}
	return cfg, nil
}

func parse(text string) (*Config, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &ParseError{Reason: ReasonEmpty}
	}

	if !gjson.Valid(trimmed) {
		// Decode once more to get a positioned error message
		var v interface{}
		err := json.Unmarshal([]byte(trimmed), &v)
		return nil, &ParseError{Reason: ReasonSyntax, Err: err}
	}

	root := gjson.Parse(trimmed)
	if !root.IsObject() {
		return nil, &ParseError{Reason: ReasonNotObject, Got: typeName(root)}
	}

	// Keys match exactly; numOfSequentialChords and NumOfSequentialChords
	// are different fields, and only the first is in the schema.
	required := root.Get(FieldNumOfSequentialChords)
	if !required.Exists() {
		return nil, &ParseError{Reason: ReasonMissingField, Field: FieldNumOfSequentialChords}
	}
	n, err := number(FieldNumOfSequentialChords, required)
	if err != nil {
		return nil, err
	}

	cfg := &Config{NumOfSequentialChords: n, Raw: json.RawMessage(trimmed)}
	for _, f := range extendedFields {
		v := root.Get(f.name)
		if !v.Exists() {
			continue
		}
		n, err := number(f.name, v)
		if err != nil {
			return nil, err
		}
		*f.slot(cfg) = &n
	}

	return cfg, nil
}

// number returns the value of a schema field that must be a finite JSON number
func number(field string, v gjson.Result) (float64, error) {
	if v.Type != gjson.Number {
		return 0, &ParseError{Reason: ReasonWrongType, Field: field, Got: typeName(v)}
	}
	n := v.Float()
	if math.IsInf(n, 0) || math.IsNaN(n) {
		// Valid JSON such as 1e400 that no float64 can hold
		return 0, &ParseError{Reason: ReasonWrongType, Field: field, Got: "number out of range (" + v.Raw + ")"}
	}
	return n, nil
}

// typeName names a gjson value's JSON type for error messages
func typeName(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Null:
		return "null"
	case gjson.JSON:
		if r.IsArray() {
			return "array"
		}
		return "object"
	default:
		return "nothing"
	}
}

// IsExtended reports whether any extended range field is present.
func (c *Config) IsExtended() bool {
	for _, f := range extendedFields {
		if f.get(c) != nil {
			return true
		}
	}
	return false
}

// FieldCount returns how many schema fields are set, including the required one.
func (c *Config) FieldCount() int {
	n := 1
	for _, f := range extendedFields {
		if f.get(c) != nil {
			n++
		}
	}
	return n
}

// Extended returns the extended fields that are present, keyed by JSON name.
func (c *Config) Extended() map[string]float64 {
	out := make(map[string]float64)
	for _, f := range extendedFields {
		if v := f.get(c); v != nil {
			out[f.name] = *v
		}
	}
	return out
}

// JSON returns the configuration as sent to the engine: the raw text when
// available, otherwise the typed fields re-encoded.
func (c *Config) JSON() []byte {
	if len(c.Raw) > 0 {
		return c.Raw
	}
	data, err := json.Marshal(c)
	if err != nil {
		// Only float64 fields; Marshal fails solely on NaN/Inf which Parse never produces
		return []byte("{}")
	}
	return data
}

// String returns the compact JSON form of the configuration.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, c.JSON()); err != nil {
		return string(c.JSON())
	}
	return buf.String()
}

// FormatNumber renders a configuration number the way it was most likely
// written: integers without a fractional part, other values in shortest form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
