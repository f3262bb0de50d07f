// Package report renders the ranked picks into the static site artifacts:
// an HTML page and a machine-readable picks file.
package report

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/moatwatch/moatwatch/internal/domain/types"
	"github.com/moatwatch/moatwatch/pkg/logger"
)

// File names written into the output directory.
const (
	indexFile = "index.html"
	picksFile = "picks.json"

	defaultTitle = "Warren Buffett Indian Stock Picks"

	filePerm = 0o644
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// pageData is the template input.
type pageData struct {
	Title           string
	GeneratedAt     string
	Count           int
	TotalMarketCapB float64
	Entries         []types.Entry
}

// Generator writes report artifacts into an output directory.
type Generator struct {
	outputDir string
	title     string
	tmpl      *template.Template
	logger    logger.Logger
}

// NewGenerator creates a report generator for the given output directory.
func NewGenerator(outputDir string, opts ...Option) (*Generator, error) {
	g := &Generator{
		outputDir: outputDir,
		title:     defaultTitle,
		logger:    logger.Get().Named("report"),
	}
	for _, opt := range opts {
		opt(g)
	}

	tmpl, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
		"money":      formatMoney,
		"billions":   formatBillions,
		"scoreClass": scoreClass,
		"scoreText":  scoreText,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	g.tmpl = tmpl

	return g, nil
}

// Generate writes index.html and picks.json for the given ranked entries.
// The entries are expected to arrive already sorted by rank.
func (g *Generator) Generate(ctx context.Context, entries []types.Entry, asOf time.Time) error {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", ErrWrite, g.outputDir, err)
	}

	data := pageData{
		Title:       g.title,
		GeneratedAt: asOf.Format("2006-01-02 15:04"),
		Count:       len(entries),
		Entries:     entries,
	}
	var total float64
	for _, e := range entries {
		total += e.MarketCap
	}
	data.TotalMarketCapB = total / 1_000_000_000

	var buf strings.Builder
	if err := g.tmpl.ExecuteTemplate(&buf, "report.html.tmpl", data); err != nil {
		return fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	indexPath := filepath.Join(g.outputDir, indexFile)
	if err := os.WriteFile(indexPath, []byte(buf.String()), filePerm); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, indexPath, err)
	}

	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: picks: %w", ErrWrite, err)
	}
	picksPath := filepath.Join(g.outputDir, picksFile)
	if err := os.WriteFile(picksPath, raw, filePerm); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, picksPath, err)
	}

	g.logger.Info(ctx, "report generated",
		logger.String("path", indexPath),
		logger.Int("picks", len(entries)),
	)
	return nil
}

// formatMoney renders a value with thousands separators and two decimals.
func formatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// formatBillions renders a raw market cap as billions with two decimals.
func formatBillions(v float64) string {
	return strconv.FormatFloat(v/1_000_000_000, 'f', 2, 64)
}

// scoreClass maps a score to a Bootstrap badge color.
func scoreClass(score float64) string {
	switch {
	case score >= 15:
		return "success"
	case score >= 12:
		return "primary"
	case score >= 10:
		return "info"
	default:
		return "secondary"
	}
}

// scoreText maps a score to its display band.
func scoreText(score float64) string {
	switch {
	case score >= 15:
		return "Excellent"
	case score >= 12:
		return "Very Good"
	case score >= 10:
		return "Good"
	default:
		return "Fair"
	}
}
