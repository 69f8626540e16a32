package extractor

import (
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// Options controls how page text is produced.
type Options struct {
	// Layout keeps the horizontal spacing of each row, the way
	// pdftotext -layout does. Some statement grammars depend on it.
	Layout bool
}

// ErrNoReadableText is returned when every extraction method fails or
// yields text that does not look like a statement.
var ErrNoReadableText = errors.New("no readable text could be extracted from PDF")

type method struct {
	name string
	run  func(filePath string) ([]string, error)
}

// ExtractText reads a PDF file and returns the text content of each page,
// one entry per page in page order.
//
// Plain extraction tries the ledongthuc/pdf library first and the external
// pdftotext command second. Layout extraction prefers pdftotext -layout and
// falls back to rebuilding rows from text coordinates.
func ExtractText(filePath string, opts Options) ([]string, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}

	methods := []method{
		{"library", extractWithLibrary},
		{"pdftotext", pdftotext(false)},
	}
	if opts.Layout {
		methods = []method{
			{"pdftotext-layout", pdftotext(true)},
			{"library-content", extractWithContent},
		}
	}

	var errs []error
	for _, m := range methods {
		pages, err := m.run(filePath)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.name, err))
			continue
		}
		if isReadableText(pages) {
			return pages, nil
		}
		errs = append(errs, fmt.Errorf("%s: text is not readable", m.name))
	}

	return nil, fmt.Errorf("%w: %w", ErrNoReadableText, errors.Join(errs...))
}

// textQuality returns the ratio of basic ASCII readable characters (a-z, A-Z,
// 0-9, common punctuation, whitespace) to total characters. Returns 0.0-1.0.
// Identity-encoded fonts decode to accented garbage, so unicode.IsLetter is
// too permissive here.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()'\"$%&@#!?+=*", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear in virtually every bank or card statement.
var commonWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "card",
	"opening", "closing", "transfer", "purchase", "page", "period",
}

func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires more than 50 characters, over 60% readable ASCII
// and at least one word expected in a statement.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}

func pdftotext(layout bool) func(string) ([]string, error) {
	return func(filePath string) ([]string, error) {
		return extractWithPdftotext(filePath, layout)
	}
}

// extractWithPdftotext runs pdftotext (poppler-utils) one page at a time so
// page boundaries survive.
func extractWithPdftotext(filePath string, layout bool) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	numPages := pdfinfoPageCount(filePath)
	if numPages == 0 {
		return nil, fmt.Errorf("could not determine page count")
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		out, err := exec.Command("pdftotext", pdftotextArgs(filePath, i, layout)...).Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimRight(string(out), "\f\n "))
	}
	return pages, nil
}

// pdftotextArgs extracts a single page to stdout, with -layout only when
// asked for.
func pdftotextArgs(filePath string, page int, layout bool) []string {
	pageStr := strconv.Itoa(page)
	args := []string{"-f", pageStr, "-l", pageStr}
	if layout {
		args = append([]string{"-layout"}, args...)
	}
	return append(args, filePath, "-")
}

// pdfinfoPageCount returns the number of pages reported by pdfinfo, or 0.
func pdfinfoPageCount(filePath string) int {
	out, err := exec.Command("pdfinfo", filePath).Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err == nil {
				return n
			}
		}
	}
	return 0
}

// withReader opens the PDF and converts library panics on malformed input
// into errors.
func withReader(filePath string, fn func(r *pdf.Reader, numPages int) []string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	return fn(r, numPages), nil
}

// extractWithLibrary tries row grouping first, then plain text with fonts.
func extractWithLibrary(filePath string) ([]string, error) {
	return withReader(filePath, func(r *pdf.Reader, numPages int) []string {
		pages := extractByRow(r, numPages)
		if isReadableText(pages) {
			return pages
		}
		return extractByPagePlainText(r, numPages)
	})
}

func extractWithContent(filePath string) ([]string, error) {
	return withReader(filePath, extractByContent)
}

// extractByRow uses GetTextByRow, the best method for well-structured PDFs.
// Pages the library cannot read are kept as empty strings.
func extractByRow(r *pdf.Reader, numPages int) []string {
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			pages = append(pages, "")
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// columnGap is the horizontal distance, in points, treated as a column break.
const columnGap = 15

// extractByContent groups text pieces by Y coordinate to rebuild rows, sorts
// them by X, and widens large horizontal gaps so columns stay apart.
func extractByContent(r *pdf.Reader, numPages int) []string {
	type textItem struct {
		x float64
		s string
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		rowMap := make(map[int][]textItem)
		for _, t := range page.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rowMap[y] = append(rowMap[y], textItem{x: t.X, s: t.S})
		}

		// PDF Y grows upwards
		ys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

			var sb strings.Builder
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > columnGap {
					sb.WriteString("   ")
				}
				sb.WriteString(item.s)
				prevX = item.x
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByPagePlainText uses Page.GetPlainText with the page's font map.
func extractByPagePlainText(r *pdf.Reader, numPages int) []string {
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages
}
