// Package convert connects PDF extraction to a statement grammar.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/insightdelivered/statement-parser/internal/extractor"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/parser"
)

// PageBreak separates pages in pre-extracted text.
const PageBreak = "\n---PAGE_BREAK---\n"

// File extracts the text of a statement PDF, using layout extraction when
// the parser's grammar asks for it, and parses it. A .txt file is read as
// text already extracted, with pages separated by PageBreak.
func File(path string, p parser.Parser) (*models.Batch, error) {
	pages, err := readPages(path, p.Grammar().Layout)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return p.Parse(pages), nil
}

func readPages(path string, layout bool) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return SplitPages(string(data)), nil
	}
	return extractor.ExtractText(path, extractor.Options{Layout: layout})
}

// SplitPages splits pre-extracted text on PageBreak. Empty pages keep their
// position so page-restricted grammars still see the right page numbers.
func SplitPages(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pages := strings.Split(text, PageBreak)
	for i, page := range pages {
		pages[i] = strings.TrimSpace(page)
	}
	return pages
}
