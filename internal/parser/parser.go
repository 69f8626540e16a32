package parser

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Parser defines the interface for statement parsers.
type Parser interface {
	// Parse takes raw text from PDF pages and returns the transaction batch.
	Parse(pages []string) *models.Batch
	// FormatName returns the human-readable format name.
	FormatName() string
	// Grammar returns the grammar, which also tells callers how to extract text.
	Grammar() Grammar
}

// ErrUnsupportedFormat is returned by New for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported statement format")

var grammars = map[models.Format]*Grammar{
	models.FormatLocal:             &localGrammar,
	models.FormatWestpac:           &westpacGrammar,
	models.FormatWestpacCreditCard: &westpacCardGrammar,
	models.FormatAmex:              &amexGrammar,
	models.FormatANZ:               &anzGrammar,
	models.FormatCBA:               &cbaGrammar,
}

// Option configures an Engine.
type Option func(*Engine)

// WithYear sets the year used for dates that omit one. Zero keeps the
// grammar's default.
func WithYear(year int) Option {
	return func(e *Engine) {
		if year > 0 {
			e.year = year
		}
	}
}

// WithLogger sets the logger the engine reports skipped lines to.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithIDFunc replaces the transaction id generator.
func WithIDFunc(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// New returns an engine for the given format.
func New(format models.Format, opts ...Option) (*Engine, error) {
	g, ok := grammars[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	e := &Engine{
		grammar: *g,
		year:    g.DefaultYear,
		newID:   uuid.NewString,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Grammars returns every supported grammar ordered by name.
func Grammars() []Grammar {
	out := make([]Grammar, 0, len(grammars))
	for _, g := range grammars {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FormatNames returns the names of every supported format ordered by name.
func FormatNames() []string {
	gs := Grammars()
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = string(g.Name)
	}
	return names
}
