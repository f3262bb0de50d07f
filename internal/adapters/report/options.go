package report

import "github.com/moatwatch/moatwatch/pkg/logger"

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithTitle sets the report page title.
func WithTitle(title string) Option {
	return func(g *Generator) {
		if title != "" {
			g.title = title
		}
	}
}

// WithLogger sets a custom logger for the generator.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}
