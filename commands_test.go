package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-parser/internal/convert"
)

// run parses args and runs the selected command, returning its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	var cli CLI
	k, err := newParser(&cli,
		kong.Writers(&stdout, &bytes.Buffer{}),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	assert.NoError(t, err)

	ctx, err := k.Parse(args)
	if err != nil {
		return "", err
	}
	err = ctx.Run(zerolog.Nop(), &cli.Globals)
	return stdout.String(), err
}

func writeStatement(t *testing.T, pages ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.txt")
	assert.NoError(t, os.WriteFile(path, []byte(strings.Join(pages, convert.PageBreak)), 0o600))
	return path
}

func TestParseCommand(t *testing.T) {
	path := writeStatement(t,
		"May28 TRANSPORTFORNSWTRAVEL SYDNEY 2.24",
		"June3 WOOLWORTHS 1234 TOWN HALL 45.10\nReference: AT251560012345678901234",
	)

	out, err := run(t, "parse", "--format", "amex", path)
	assert.NoError(t, err)

	var got []map[string]any
	assert.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "2025-05-28", got[0]["date"])
	assert.Equal(t, -2.24, got[0]["amount"].(float64))
	assert.Equal(t, "WOOLWORTHS 1234 TOWN HALL Ref:AT251560012345678901234", got[1]["description"])
}

func TestParseIsDefaultCommand(t *testing.T) {
	path := writeStatement(t, "nothing here")

	out, err := run(t, path, "-f", "cba")
	assert.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestParsePretty(t *testing.T) {
	path := writeStatement(t, "01/02/2024 01/02/2024 1234 COFFEE SHOP SYDNEY $4.50 $120.00")

	out, err := run(t, "parse", "-f", "anz", "--year", "1999", "--pretty", path)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[\n  {\n    \"id\": "))
	assert.Contains(t, out, `"date": "2024-02-01"`)
}

func TestParseMissingPath(t *testing.T) {
	_, err := run(t, "parse", "-f", "cba")
	assert.Error(t, err)
}

func TestParseUnknownFormat(t *testing.T) {
	path := writeStatement(t, "x")
	_, err := run(t, "parse", "-f", "metro", path)
	assert.Error(t, err)
}

func TestParseMissingFile(t *testing.T) {
	_, err := run(t, "parse", "-f", "cba", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestFormatFromEnvironment(t *testing.T) {
	t.Setenv("STATEMENT_FORMAT", "westpac-credit-card")
	path := writeStatement(t, "03/01/24 ONLINE PURCHASE\nAMAZON MKTPLC\n12.00 450.00")

	out, err := run(t, path)
	assert.NoError(t, err)
	assert.Contains(t, out, `"description":"ONLINE PURCHASE AMAZON MKTPLC"`)
}

func TestCSVCommand(t *testing.T) {
	path := writeStatement(t, "01 Jan 2024 OPENING BALANCE $1,000.00 CR\n03 January 2024 Transfer 50.00")
	outPath := filepath.Join(t.TempDir(), "out.csv")

	_, err := run(t, "csv", "-f", "cba", "-o", outPath, path)
	assert.NoError(t, err)

	data, err := os.ReadFile(outPath)
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, 4, len(lines))
	assert.Equal(t, "# Format,cba", lines[0])
	assert.True(t, strings.HasSuffix(lines[3], ",2024-01-03,Transfer,-50.00"))
}

func TestCSVCommandStdoutNoHeader(t *testing.T) {
	path := writeStatement(t, "12 Mar DR COFFEE HOUSE 4.50 1,200.00")

	out, err := run(t, "csv", "-f", "local", "--no-header", "--output=-", path)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "id,date,description,amount\n"))
	assert.Contains(t, out, ",2023-03-12,COFFEE HOUSE,-4.50")
}

func TestImportCommand(t *testing.T) {
	path := writeStatement(t, "01/02/2024 01/02/2024 1234 COFFEE SHOP SYDNEY $4.50 $120.00")
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	out, err := run(t, "import", "-f", "anz", "--db", dbPath, path)
	assert.NoError(t, err)
	assert.Contains(t, out, "Imported 1 of 1 transaction(s)")
}

func TestFormatsCommand(t *testing.T) {
	out, err := run(t, "formats")
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, 6, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "amex"))
	assert.Contains(t, out, "westpac-credit-card")
}

func TestUsageErrorsGoToStderr(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"missing path", []string{"-f", "amex"}},
		{"missing path with command", []string{"parse", "-f", "cba"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STATEMENT_FORMAT", "")
			os.Unsetenv("STATEMENT_FORMAT")
			var stdout, stderr bytes.Buffer

			code := execute(tt.args, &stdout, &stderr)

			assert.Equal(t, 1, code)
			assert.Equal(t, "", stdout.String())
			assert.Contains(t, stderr.String(), "Usage: statement-parser")
			assert.Contains(t, stderr.String(), "statement-parser: error:")
		})
	}
}

func TestExecuteWritesJSONToStdout(t *testing.T) {
	path := writeStatement(t, "May28 TRANSPORTFORNSWTRAVEL SYDNEY 2.24")
	var stdout, stderr bytes.Buffer

	code := execute([]string{path, "-f", "amex", "--log-level", "error"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout.String(), `[{"id":`))
	assert.Equal(t, "", stderr.String())
}

func TestExecuteReadErrorExitsOne(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := execute([]string{"-f", "cba", filepath.Join(t.TempDir(), "missing.pdf")}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Equal(t, "", stdout.String())
	assert.Contains(t, stderr.String(), "command failed")
}
