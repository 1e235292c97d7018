package presentation

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yildizm/qupid/internal/qupid"
	"github.com/yildizm/qupid/internal/report"
	"github.com/yildizm/qupid/internal/session"
)

func TestCoherent(t *testing.T) {
	tests := []struct {
		name   string
		result *qupid.ServerResult
		want   bool
	}{
		{"at threshold", &qupid.ServerResult{HealthScore: qupid.Float(70)}, true},
		{"just below", &qupid.ServerResult{HealthScore: qupid.Float(69)}, false},
		{"well above", &qupid.ServerResult{HealthScore: qupid.Float(99.5)}, true},
		{"absent score", &qupid.ServerResult{}, false},
		{"no result", nil, false},
		{"zero score", &qupid.ServerResult{HealthScore: qupid.Float(0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coherent(tt.result))
		})
	}
}

func TestBadge(t *testing.T) {
	assert.Equal(t, "state: coherent", Badge(&qupid.ServerResult{HealthScore: qupid.Float(70)}))
	assert.Equal(t, "state: decohered", Badge(nil))
}

func TestSummary(t *testing.T) {
	t.Run("name fallback", func(t *testing.T) {
		result := &qupid.ServerResult{
			MessagesAnalyzed: qupid.Float(41),
			InferredParams:   qupid.InferredParams{qupid.ParamPersonBName: "jordan"},
		}

		rows := Summary(result)
		require.Len(t, rows, 3)
		assert.Equal(t, Row{Label: "messages analyzed", Value: "41", Raw: 41.0}, rows[0])
		assert.Equal(t, "person a", rows[1].Label)
		assert.Equal(t, "person A", rows[1].Value)
		assert.Equal(t, "jordan", rows[2].Value)
	})

	t.Run("empty name falls back", func(t *testing.T) {
		rows := Summary(&qupid.ServerResult{InferredParams: qupid.InferredParams{
			qupid.ParamPersonAName: "",
			qupid.ParamPersonBName: nil,
		}})
		assert.Equal(t, "person A", rows[1].Value)
		assert.Equal(t, "person B", rows[2].Value)
		assert.Equal(t, "-", rows[0].Value)
	})

	t.Run("no params means no summary", func(t *testing.T) {
		assert.Empty(t, Summary(&qupid.ServerResult{MessagesAnalyzed: qupid.Float(3)}))
		assert.Empty(t, Summary(nil))
	})
}

func TestPersonNames(t *testing.T) {
	a, b := PersonNames(&qupid.ServerResult{InferredParams: qupid.InferredParams{qupid.ParamPersonAName: "sam"}})
	assert.Equal(t, "sam", a)
	assert.Equal(t, "person B", b)
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "-"},
		{"string", "warm", "warm"},
		{"integer float", 41.0, "41"},
		{"fraction", 0.375, "0.375"},
		{"bool", true, "true"},
		{"object", map[string]any{"b": 2.0, "a": "x"}, `{"a":"x","b":2}`},
		{"array", []any{1.0, "two", nil}, `[1,"two",null]`},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayValue(tt.value))
		})
	}
}

func TestSections(t *testing.T) {
	result := &qupid.ServerResult{InferredParams: qupid.InferredParams{
		qupid.ParamMutualEmpathy:      0.7,
		qupid.ParamPersonAHotCold:     "hot",
		qupid.ParamPersonBBurnedOut:   map[string]any{"level": 2.0},
		qupid.ParamMutualCodependence: nil,
	}}

	sections := Sections(result)
	require.Len(t, sections, 3)
	assert.Equal(t, "mutual dynamic", sections[0].Title)
	require.Len(t, sections[0].Rows, 6)
	assert.Equal(t, "mutual empathy", sections[0].Rows[0].Label)
	assert.Equal(t, "0.7", sections[0].Rows[0].Value)
	assert.Equal(t, "compatibility", sections[0].Rows[1].Label)
	assert.Equal(t, "-", sections[0].Rows[1].Value)
	assert.Equal(t, "-", sections[0].Rows[5].Value)

	assert.Equal(t, "person a", sections[1].Title)
	assert.Equal(t, "hot", sections[1].Rows[1].Value)
	assert.Equal(t, `{"level":2}`, sections[2].Rows[3].Value)

	assert.Nil(t, Sections(&qupid.ServerResult{}))
}

func TestExtraParams(t *testing.T) {
	result := &qupid.ServerResult{InferredParams: qupid.InferredParams{
		qupid.ParamMutualSync:  0.5,
		qupid.ParamPersonAName: "sam",
		"zeta_score":           1.0,
		"alpha":                "x",
	}}

	rows := ExtraParams(result)
	require.Len(t, rows, 2)
	assert.Equal(t, "alpha", rows[0].Key)
	assert.Equal(t, "zeta score", rows[1].Label)
}

func TestRowNumber(t *testing.T) {
	n, ok := Row{Raw: 0.25}.Number()
	assert.True(t, ok)
	assert.Equal(t, 0.25, n)

	_, ok = Row{Raw: "x"}.Number()
	assert.False(t, ok)
}

func TestModel_BlocksMemoized(t *testing.T) {
	m := NewModel()
	result := &qupid.ServerResult{ReportText: "OUTLOOK\nfine"}

	first := m.Blocks(result)
	second := m.Blocks(&qupid.ServerResult{ReportText: "OUTLOOK\nfine"})
	assert.Equal(t, first, second)
	assert.Equal(t, 1, m.compiles)

	m.Blocks(&qupid.ServerResult{ReportText: "RISKS\nsome"})
	assert.Equal(t, 2, m.compiles)

	first[0].Text = "mutated"
	assert.Equal(t, "fine", m.Blocks(result)[0].Text)
}

func TestModel_BlocksPlaceholder(t *testing.T) {
	blocks := NewModel().Blocks(nil)
	require.Len(t, blocks, 1)
	assert.Equal(t, report.HeadingOutlook, blocks[0].Heading)
	assert.Equal(t, DefaultReportText, blocks[0].Text)
}

func samplePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodePlot(t *testing.T) {
	encoded := samplePNG(t)

	plot, err := DecodePlot(&qupid.ServerResult{PlotBase64: encoded})
	require.NoError(t, err)
	assert.Equal(t, 4, plot.Width)
	assert.Equal(t, 3, plot.Height)
	assert.Equal(t, DefaultPlotCaption, plot.Caption)

	plot, err = DecodePlot(&qupid.ServerResult{PlotBase64: "data:image/png;base64," + encoded, PlotCaption: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", plot.Caption)

	_, err = DecodePlot(&qupid.ServerResult{})
	assert.ErrorIs(t, err, ErrNoPlot)

	_, err = DecodePlot(&qupid.ServerResult{PlotBase64: "not base64!"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoPlot)

	_, err = DecodePlot(&qupid.ServerResult{PlotBase64: base64.StdEncoding.EncodeToString([]byte("text"))})
	assert.Error(t, err)
}

func TestPlotSave(t *testing.T) {
	plot, err := DecodePlot(&qupid.ServerResult{PlotBase64: samplePNG(t)})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "plots")
	path, err := plot.Save(dir, "trajectory")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "trajectory.png"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, plot.PNG, data)
}

func TestModel_Build(t *testing.T) {
	m := NewModel()

	t.Run("submitting without result", func(t *testing.T) {
		v := m.Build(session.Submitting, nil, nil)
		assert.True(t, v.Submitting)
		assert.False(t, v.HasResult)
		assert.Equal(t, "decohered", v.State)
		assert.True(t, v.ShowReport())
		assert.Equal(t, DefaultReportText, v.Report[0].Text)
		assert.False(t, v.Plot.Available)
	})

	t.Run("failed hides report", func(t *testing.T) {
		v := m.Build(session.Failed, nil, qupid.NewServerError(500, "overloaded", nil))
		assert.Equal(t, "failed", v.Phase)
		assert.Equal(t, "overloaded", v.Error)
		assert.Equal(t, "server_failure", v.ErrorKind)
		assert.False(t, v.ShowReport())
	})

	t.Run("succeeded", func(t *testing.T) {
		result := &qupid.ServerResult{
			HealthScore:    qupid.Float(88),
			ReportText:     "OUTLOOK\ngood\nRISKS\nlow",
			InferredParams: qupid.InferredParams{qupid.ParamPersonAName: "sam"},
			PlotBase64:     samplePNG(t),
		}
		v := m.Build(session.Succeeded, result, nil)
		assert.True(t, v.Coherent)
		assert.Equal(t, "coherent", v.State)
		assert.Equal(t, 88.0, *v.HealthScore)
		assert.Len(t, v.Report, 2)
		assert.Len(t, v.Sections, 3)
		assert.True(t, v.Plot.Available)
		assert.NotNil(t, v.DecodedPlot())
	})

	t.Run("broken plot", func(t *testing.T) {
		v := m.Build(session.Succeeded, &qupid.ServerResult{PlotBase64: "%%%"}, nil)
		assert.False(t, v.Plot.Available)
		assert.Equal(t, "plot unavailable", v.Plot.Error)
	})
}
