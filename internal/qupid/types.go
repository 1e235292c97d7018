// Package qupid holds the wire contract of the conversation analysis service
// and the HTTP client that talks to it.
package qupid

import (
	"fmt"
	"math"
	"strconv"
)

// Keys of the inferred_params object. The spellings follow the service.
const (
	ParamMutualEmpathy       = "mutualEmpathy"
	ParamMutualCompatibility = "mutualCompatability"
	ParamMutualFrequency     = "mutualFrequency"
	ParamMutualStrength      = "mutualStrength"
	ParamMutualSync          = "mutualSync"
	ParamMutualCodependence  = "mutualCodependence"

	ParamPersonATemperament = "personATemperarment"
	ParamPersonAHotCold     = "personAHotCold"
	ParamPersonADistant     = "personADistant"
	ParamPersonABurnedOut   = "personABurnedOut"

	ParamPersonBTemperament = "personBTemperarment"
	ParamPersonBHotCold     = "personBHotCold"
	ParamPersonBDistant     = "personBDistant"
	ParamPersonBBurnedOut   = "personBBurnedOut"

	ParamPersonAName = "personAName"
	ParamPersonBName = "personBName"
)

// InferredParams is the loosely typed parameter object derived by the service.
// Values are whatever JSON decoding produced: float64, string, bool, nil,
// map[string]any or []any.
type InferredParams map[string]any

// Get returns the raw value for key and whether it was present
func (p InferredParams) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p[key]
	return v, ok
}

// String returns the value for key as text, or "" when it is absent or falsy
// (null, empty, false or zero).
func (p InferredParams) String(key string) string {
	v, ok := p.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if !val {
			return ""
		}
		return "true"
	case float64:
		if val == 0 {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// Number returns the value for key as a float when it is numeric
func (p InferredParams) Number(key string) (float64, bool) {
	v, ok := p.Get(key)
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, !math.IsNaN(val)
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ServerResult is a successful analysis response. Every field is optional.
type ServerResult struct {
	HealthScore      *float64       `json:"health_score,omitempty" yaml:"health_score,omitempty"`
	ReportText       string         `json:"report_text,omitempty" yaml:"report_text,omitempty"`
	InferredParams   InferredParams `json:"inferred_params,omitempty" yaml:"inferred_params,omitempty"`
	MessagesAnalyzed *float64       `json:"messages_analyzed,omitempty" yaml:"messages_analyzed,omitempty"`
	PlotBase64       string         `json:"plot_base64,omitempty" yaml:"plot_base64,omitempty"`
	PlotCaption      string         `json:"plot_caption,omitempty" yaml:"plot_caption,omitempty"`
}

// ErrorBody is the shape of a failure response
type ErrorBody struct {
	Error string `json:"error,omitempty"`
}

// Float is a helper for building optional numeric fields
func Float(v float64) *float64 {
	return &v
}
