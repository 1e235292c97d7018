// Package presentation derives what the views show from a service result:
// the coherence badge, summary rows, labeled parameter sections, compiled
// report blocks and the decoded plot.
package presentation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yildizm/qupid/internal/qupid"
)

const (
	// CoherenceThreshold is the lowest health score labeled coherent
	CoherenceThreshold = 70.0

	DefaultReportText = "upload a text conversation and run analysis to predict the trajectory."

	PersonAFallback = "person A"
	PersonBFallback = "person B"

	// EmptyValue renders a null or missing value
	EmptyValue = "-"
)

// Coherent reports whether the result's health score reaches the threshold.
// A missing result or score is not coherent.
func Coherent(result *qupid.ServerResult) bool {
	if result == nil || result.HealthScore == nil {
		return false
	}
	return *result.HealthScore >= CoherenceThreshold
}

// StateLabel names the coherence state
func StateLabel(coherent bool) string {
	if coherent {
		return "coherent"
	}
	return "decohered"
}

// Badge is the text of the coherence badge
func Badge(result *qupid.ServerResult) string {
	return "state: " + StateLabel(Coherent(result))
}

// Row is one label/value pair as displayed
type Row struct {
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	// Raw is the value as received, kept for numeric rendering
	Raw any `json:"-" yaml:"-"`
}

// Number returns the raw value when it is numeric
func (r Row) Number() (float64, bool) {
	switch v := r.Raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Summary returns the messages analyzed count and the two participant
// names. It is empty when the result carries no inferred parameters.
func Summary(result *qupid.ServerResult) []Row {
	if result == nil || result.InferredParams == nil {
		return nil
	}

	var messages any
	if result.MessagesAnalyzed != nil {
		messages = *result.MessagesAnalyzed
	}

	return []Row{
		{Label: "messages analyzed", Value: DisplayValue(messages), Raw: messages},
		{Key: qupid.ParamPersonAName, Label: "person a", Value: personName(result.InferredParams, qupid.ParamPersonAName, PersonAFallback)},
		{Key: qupid.ParamPersonBName, Label: "person b", Value: personName(result.InferredParams, qupid.ParamPersonBName, PersonBFallback)},
	}
}

// PersonNames returns the display names of both participants
func PersonNames(result *qupid.ServerResult) (string, string) {
	var params qupid.InferredParams
	if result != nil {
		params = result.InferredParams
	}
	return personName(params, qupid.ParamPersonAName, PersonAFallback),
		personName(params, qupid.ParamPersonBName, PersonBFallback)
}

func personName(params qupid.InferredParams, key, fallback string) string {
	if name := params.String(key); name != "" {
		return name
	}
	return fallback
}

// DisplayValue renders a decoded JSON value: null as "-", objects and
// arrays as compact JSON, everything else as plain text.
func DisplayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return EmptyValue
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case map[string]any, []any, qupid.InferredParams:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	default:
		return fmt.Sprint(val)
	}
}

// ReportText returns the report to compile, or the placeholder when the
// result has none.
func ReportText(result *qupid.ServerResult) string {
	if result == nil || result.ReportText == "" {
		return DefaultReportText
	}
	return result.ReportText
}

// ExtraParams returns inferred parameters outside the known vocabulary,
// sorted by key, so nothing the service sends is silently hidden.
func ExtraParams(result *qupid.ServerResult) []Row {
	if result == nil || len(result.InferredParams) == 0 {
		return nil
	}

	known := make(map[string]bool)
	for _, spec := range ParameterSections() {
		for _, item := range spec.Items {
			known[item.Key] = true
		}
	}
	known[qupid.ParamPersonAName] = true
	known[qupid.ParamPersonBName] = true

	var rows []Row
	for key, v := range result.InferredParams {
		if known[key] {
			continue
		}
		rows = append(rows, Row{Key: key, Label: strings.ReplaceAll(key, "_", " "), Value: DisplayValue(v), Raw: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}
