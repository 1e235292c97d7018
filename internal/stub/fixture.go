package stub

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yildizm/qupid/internal/qupid"
	"gopkg.in/yaml.v3"
)

// samplePlot is a 1x1 PNG so the plot path is exercised without a renderer
const samplePlot = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

const sampleReport = `OUTLOOK
The connection is warm but uneven. Replies cluster late at night and fade during the week.
NEAR TERM (NEXT 2-4 WEEKS)
Expect a few more long exchanges; one of you will test the waters with plans.
MID TERM (1-3 MONTHS)
Coherence holds if the pacing evens out. Long silences are the main source of drift.
LONG TERM (3-12 MONTHS)
Stable if both keep initiating. Otherwise the state relaxes toward friendly acquaintances.
RISKS
Hot-cold swings from person b; burnout on both sides after busy weeks.
INTERVENTIONS
Name the pattern out loud. Agree on one low-effort check-in each day.`

// DefaultFixture is the canned result served when no fixture file is configured
func DefaultFixture() *qupid.ServerResult {
	return &qupid.ServerResult{
		HealthScore: qupid.Float(74),
		ReportText:  sampleReport,
		InferredParams: qupid.InferredParams{
			qupid.ParamMutualEmpathy:       68.0,
			qupid.ParamMutualCompatibility: 72.0,
			qupid.ParamMutualFrequency:     55.0,
			qupid.ParamMutualStrength:      61.0,
			qupid.ParamMutualSync:          47.0,
			qupid.ParamMutualCodependence:  30.0,
			qupid.ParamPersonATemperament:  58.0,
			qupid.ParamPersonAHotCold:      22.0,
			qupid.ParamPersonADistant:      35.0,
			qupid.ParamPersonABurnedOut:    40.0,
			qupid.ParamPersonBTemperament:  63.0,
			qupid.ParamPersonBHotCold:      48.0,
			qupid.ParamPersonBDistant:      27.0,
			qupid.ParamPersonBBurnedOut:    33.0,
			qupid.ParamPersonAName:         "you",
			qupid.ParamPersonBName:         "them",
		},
		PlotBase64: samplePlot,
	}
}

// LoadFixture reads a result from a YAML or JSON file, chosen by extension
func LoadFixture(path string) (*qupid.ServerResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var result qupid.ServerResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
		}
		result.InferredParams = normalizeParams(result.InferredParams)
	default:
		return nil, fmt.Errorf("unsupported fixture format %q (use .yaml, .yml or .json)", filepath.Ext(path))
	}
	return &result, nil
}

// normalizeParams turns YAML integers into floats so a YAML fixture decodes
// to the same values a client would see after a JSON round trip.
func normalizeParams(params qupid.InferredParams) qupid.InferredParams {
	for k, v := range params {
		switch n := v.(type) {
		case int:
			params[k] = float64(n)
		case int64:
			params[k] = float64(n)
		}
	}
	return params
}
