package presentation

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/yildizm/qupid/internal/qupid"
)

const DefaultPlotCaption = "Each line tracks your emotional state over time. When the lines rise together, the connection feels aligned; when they split or dip, the situationship cools or drifts."

// ErrNoPlot is returned when the result carries no plot
var ErrNoPlot = errors.New("no plot in result")

// Plot is the decoded trajectory chart
type Plot struct {
	PNG     []byte
	Caption string
	Width   int
	Height  int
}

// PlotCaption returns the result's caption or the default one
func PlotCaption(result *qupid.ServerResult) string {
	if result != nil && strings.TrimSpace(result.PlotCaption) != "" {
		return result.PlotCaption
	}
	return DefaultPlotCaption
}

// DecodePlot decodes the base64 PNG in the result. A data URI prefix is tolerated.
func DecodePlot(result *qupid.ServerResult) (*Plot, error) {
	if result == nil || strings.TrimSpace(result.PlotBase64) == "" {
		return nil, ErrNoPlot
	}

	encoded := strings.TrimSpace(result.PlotBase64)
	if i := strings.Index(encoded, ";base64,"); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("plot unavailable: %w", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("plot unavailable: %w", err)
	}

	return &Plot{
		PNG:     data,
		Caption: PlotCaption(result),
		Width:   cfg.Width,
		Height:  cfg.Height,
	}, nil
}

// Save writes the PNG into dir under name and returns the written path
func (p *Plot) Save(dir, name string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create plot directory: %w", err)
	}
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, p.PNG, 0o600); err != nil {
		return "", fmt.Errorf("failed to write plot: %w", err)
	}
	return path, nil
}
