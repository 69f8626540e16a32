package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-parser/internal/models"
)

// Line is one line of extracted text and its position in the document.
type Line struct {
	Page int // 1-based
	Num  int // 1-based within the page
	Text string
}

// match is the transient result of applying a pattern to a line.
type match struct {
	day, month, year string
	marker           string
	desc             string
	tokens           []string
}

// Engine turns statement text into transactions using one grammar.
// It holds no per-document state, so one Engine may parse many documents.
type Engine struct {
	grammar Grammar
	year    int
	newID   func() string
	log     zerolog.Logger
}

// Grammar returns the grammar the engine was built with.
func (e *Engine) Grammar() Grammar {
	return e.grammar
}

// FormatName returns the human-readable format title.
func (e *Engine) FormatName() string {
	return e.grammar.Title
}

// Parse runs the grammar over the pages of one document. Lines that fail
// to resolve are recorded in the debug trace and otherwise ignored, so Parse
// always produces a batch, possibly empty.
func (e *Engine) Parse(pages []string) *models.Batch {
	lines := e.Lines(pages)
	batch := &models.Batch{Format: e.grammar.Name}

	batch.Transactions, batch.DebugLines = e.scan(lines, &e.grammar.Primary)

	if len(batch.Transactions) == 0 && e.grammar.Fallback != nil {
		e.log.Debug().
			Str("format", string(e.grammar.Name)).
			Str("pattern", e.grammar.Fallback.Name).
			Msg("primary pattern matched nothing, re-scanning with fallback")
		batch.Transactions, batch.DebugLines = e.scan(lines, e.grammar.Fallback)
		batch.Fallback = true
	}

	e.log.Debug().
		Str("format", string(e.grammar.Name)).
		Int("lines", len(lines)).
		Int("transactions", len(batch.Transactions)).
		Bool("fallback", batch.Fallback).
		Msg("statement parsed")

	return batch
}

// Lines splits the selected pages into trimmed lines in document order.
func (e *Engine) Lines(pages []string) []Line {
	var lines []Line
	for i, page := range pages {
		pageNum := i + 1
		if !e.wantsPage(pageNum) {
			continue
		}
		for j, text := range strings.Split(page, "\n") {
			lines = append(lines, Line{Page: pageNum, Num: j + 1, Text: strings.TrimSpace(text)})
		}
	}
	return lines
}

func (e *Engine) wantsPage(n int) bool {
	if len(e.grammar.Pages) == 0 {
		return true
	}
	for _, p := range e.grammar.Pages {
		if p == n {
			return true
		}
	}
	return false
}

func (e *Engine) scan(lines []Line, p *Pattern) ([]models.Transaction, []models.DebugLine) {
	if e.grammar.Continuation == UntilAmountsLine {
		return e.scanContinued(lines, p)
	}

	var txns []models.Transaction
	var debug []models.DebugLine

	for i := 0; i < len(lines); i++ {
		ln := lines[i]

		if txn, ok := e.balanceMarker(ln.Text); ok {
			txns = append(txns, txn)
			debug = append(debug, debugLine(ln, models.ResultBalance, "", p.Name))
			continue
		}

		matches := e.match(p, ln.Text)
		if len(matches) == 0 {
			debug = append(debug, debugLine(ln, models.ResultSkipped, "no pattern match", ""))
			continue
		}

		ref := ""
		if e.grammar.ReferencePrefix != "" && i+1 < len(lines) {
			if idx := strings.Index(lines[i+1].Text, e.grammar.ReferencePrefix); idx >= 0 {
				ref = strings.TrimSpace(lines[i+1].Text[idx+len(e.grammar.ReferencePrefix):])
			}
		}

		parsed := false
		for _, m := range matches {
			txn, err := e.assemble(p, m, ref)
			if err != nil {
				e.log.Debug().Int("page", ln.Page).Int("line", ln.Num).Err(err).Msg("line skipped")
				debug = append(debug, debugLine(ln, models.ResultSkipped, err.Error(), p.Name))
				continue
			}
			txns = append(txns, txn)
			debug = append(debug, debugLine(ln, models.ResultParsed, "", p.Name))
			parsed = true
		}

		if parsed && ref != "" {
			i++
			debug = append(debug, debugLine(lines[i], models.ResultReference, "", p.Name))
		}
	}

	return txns, debug
}

// scanContinued drives the SCANNING -> ACCUMULATING_DESCRIPTION ->
// AWAITING_AMOUNTS cycle for grammars whose rows span several lines.
func (e *Engine) scanContinued(lines []Line, p *Pattern) ([]models.Transaction, []models.DebugLine) {
	var txns []models.Transaction
	var debug []models.DebugLine

	for i := 0; i < len(lines); i++ {
		ln := lines[i]

		matches := e.match(p, ln.Text)
		if len(matches) == 0 {
			debug = append(debug, debugLine(ln, models.ResultSkipped, "no pattern match", ""))
			continue
		}
		m := matches[0]

		if _, err := e.date(m); err != nil {
			debug = append(debug, debugLine(ln, models.ResultSkipped, err.Error(), p.Name))
			continue
		}

		operative := ln
		parts := []string{strings.TrimSpace(m.desc)}
		var fragments []models.DebugLine
		amounts := ""
		found := false

		for i+1 < len(lines) {
			i++
			next := lines[i]
			if IsAmountsLine(next.Text) {
				amounts = next.Text
				found = true
				fragments = append(fragments, debugLine(next, models.ResultAmounts, "", p.Name))
				break
			}
			parts = append(parts, next.Text)
			fragments = append(fragments, debugLine(next, models.ResultContinuation, "", p.Name))
		}

		if !found {
			debug = append(debug, debugLine(operative, models.ResultSkipped, "no amounts line before end of document", p.Name))
			debug = append(debug, fragments...)
			continue
		}

		m.desc = strings.Join(parts, " ")
		m.tokens = AmountTokens(amounts)

		txn, err := e.assemble(p, m, "")
		if err != nil {
			e.log.Debug().Int("page", operative.Page).Int("line", operative.Num).Err(err).Msg("transaction skipped")
			debug = append(debug, debugLine(operative, models.ResultSkipped, err.Error(), p.Name))
			debug = append(debug, fragments...)
			continue
		}
		txns = append(txns, txn)
		debug = append(debug, debugLine(operative, models.ResultParsed, "", p.Name))
		debug = append(debug, fragments...)
	}

	return txns, debug
}

// match applies a pattern to one line.
func (e *Engine) match(p *Pattern, text string) []match {
	var subs [][]string
	if p.Unanchored {
		subs = p.Regexp.FindAllStringSubmatch(text, -1)
	} else if sub := p.Regexp.FindStringSubmatch(text); sub != nil {
		subs = [][]string{sub}
	}

	out := make([]match, 0, len(subs))
	for _, sub := range subs {
		g := p.groups(sub)
		m := match{
			day:    g["day"],
			month:  g["month"],
			year:   g["year"],
			marker: g["marker"],
			desc:   g["desc"],
		}

		switch p.Amounts {
		case AmountGroups:
			for _, name := range []string{"amt1", "amt2", "amt3"} {
				if v := strings.TrimSpace(g[name]); v != "" {
					m.tokens = append(m.tokens, v)
				}
			}
		case LastAmount:
			rest := strings.TrimSpace(g["rest"])
			locs := p.Amount.FindAllStringIndex(rest, -1)
			if len(locs) > 0 {
				last := locs[len(locs)-1]
				m.tokens = []string{rest[last[0]:last[1]]}
				m.desc = rest[:last[0]]
			} else {
				m.desc = rest
			}
		}

		out = append(out, m)
	}
	return out
}

func (e *Engine) date(m match) (string, error) {
	return normalizeDate(e.grammar.Months, m.day, m.month, m.year, e.year)
}

// assemble builds a transaction from a match, or reports why it cannot.
func (e *Engine) assemble(p *Pattern, m match, ref string) (models.Transaction, error) {
	date, err := e.date(m)
	if err != nil {
		return models.Transaction{}, err
	}

	policy := e.grammar.Sign
	if p.ForceDebit {
		policy = SignPolicy{}
	}
	slots, err := policy.Disambiguate(m.tokens, m.desc, m.marker)
	if err != nil {
		return models.Transaction{}, err
	}
	amount, err := slots.Signed()
	if err != nil {
		return models.Transaction{}, err
	}

	desc := CleanDescription(m.desc)
	if ref != "" {
		desc += ReferenceSeparator + ref
	}

	return models.Transaction{
		ID:          e.newID(),
		Date:        date,
		Description: desc,
		Amount:      amount,
	}, nil
}

const (
	openingBalance = "OPENING BALANCE"
	closingBalance = "CLOSING BALANCE"
)

// balanceMarker builds the zero-amount row for opening/closing balance lines.
func (e *Engine) balanceMarker(text string) (models.Transaction, bool) {
	if e.grammar.BalanceDate == nil {
		return models.Transaction{}, false
	}

	var desc string
	switch {
	case strings.Contains(text, openingBalance):
		desc = openingBalance
	case strings.Contains(text, closingBalance):
		desc = closingBalance
	default:
		return models.Transaction{}, false
	}

	date := ""
	if sub := e.grammar.BalanceDate.FindStringSubmatch(text); sub != nil {
		p := Pattern{Regexp: e.grammar.BalanceDate}
		g := p.groups(sub)
		if d, err := normalizeDate(e.grammar.Months, g["day"], g["month"], g["year"], e.year); err == nil {
			date = d
		}
	}

	return models.Transaction{
		ID:          e.newID(),
		Date:        date,
		Description: desc,
		Balance:     true,
	}, true
}

const debugTextLimit = 120

func debugLine(ln Line, result, reason, pattern string) models.DebugLine {
	text := ln.Text
	// Truncate long lines for debug display, on a rune boundary
	if utf8.RuneCountInString(text) > debugTextLimit {
		text = string([]rune(text)[:debugTextLimit]) + "..."
	}
	return models.DebugLine{
		Page:    ln.Page,
		LineNum: ln.Num,
		Text:    text,
		Result:  result,
		Reason:  reason,
		Pattern: pattern,
	}
}
