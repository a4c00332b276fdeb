// Package render writes the static dashboard.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"faceit-tracker/internal/config"
	"faceit-tracker/internal/domain"

	"github.com/rs/zerolog"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// PeriodDelta is one row of a period rating table as shown on the page.
type PeriodDelta struct {
	Nickname string
	Baseline int
	Current  int
	Delta    int
}

// PeriodTable is one rolling period's delta table.
type PeriodTable struct {
	Period domain.Period
	Rows   []PeriodDelta
}

// Page is everything the dashboard template consumes.
type Page struct {
	GeneratedAt time.Time
	Players     []domain.PlayerResult
	Awards      []domain.Award
	// Deltas holds one table per rolling period, in daily-to-yearly order.
	Deltas []PeriodTable
}

type Renderer struct {
	outputDir string
	tmpl      *template.Template
	logger    zerolog.Logger
}

func NewRenderer(cfg *config.Config, logger zerolog.Logger) (*Renderer, error) {
	tmpl, err := template.New("dashboard.gohtml").Funcs(template.FuncMap{
		"date": func(epoch int64) string {
			return time.Unix(epoch, 0).UTC().Format("02 Jan 15:04")
		},
		"adr": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
	}).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}
	return &Renderer{
		outputDir: cfg.OutputDir,
		tmpl:      tmpl,
		logger:    logger.With().Str("component", "renderer").Logger(),
	}, nil
}

// Render writes index.html atomically: a crash mid-write never leaves a
// truncated page behind.
func (r *Renderer) Render(page *Page) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "dashboard.gohtml", page); err != nil {
		return fmt.Errorf("failed to execute dashboard template: %w", err)
	}

	target := filepath.Join(r.outputDir, "index.html")
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to move dashboard into place: %w", err)
	}

	r.logger.Info().Str("path", target).Int("players", len(page.Players)).Msg("dashboard rendered")
	return nil
}
