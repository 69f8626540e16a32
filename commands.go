package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-parser/internal/api"
	"github.com/insightdelivered/statement-parser/internal/convert"
	"github.com/insightdelivered/statement-parser/internal/models"
	"github.com/insightdelivered/statement-parser/internal/parser"
	"github.com/insightdelivered/statement-parser/internal/storage"
	"github.com/insightdelivered/statement-parser/internal/writer"
)

type Globals struct {
	LogLevel string           `help:"Log level (trace, debug, info, warn, error)." default:"info" env:"LOG_LEVEL" enum:"trace,debug,info,warn,error"`
	Version  kong.VersionFlag `help:"Show version information"`
}

// GrammarFlags selects the grammar for commands that parse a statement.
type GrammarFlags struct {
	Format string `help:"Statement format: ${formats}." short:"f" required:"" enum:"${formats}" env:"STATEMENT_FORMAT"`
	Year   int    `help:"Year for dates that carry none (format default if 0)." env:"STATEMENT_YEAR"`
}

func (g GrammarFlags) read(path string, log zerolog.Logger) (*models.Batch, error) {
	eng, err := parser.New(models.Format(g.Format), parser.WithYear(g.Year), parser.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return convert.File(path, eng)
}

type ParseCmd struct {
	GrammarFlags
	Path   string `help:"Statement PDF, or .txt with pre-extracted pages." arg:"" type:"path"`
	Pretty bool   `help:"Indent JSON output."`
	Debug  bool   `help:"Log what happened to every input line."`
}

func (cmd *ParseCmd) Run(ctx *kong.Context, log zerolog.Logger) error {
	if cmd.Debug {
		log = log.Level(zerolog.DebugLevel)
	}

	batch, err := cmd.read(cmd.Path, log)
	if err != nil {
		return err
	}
	if cmd.Debug {
		logTrace(log, batch)
	}

	w := &writer.JSONWriter{Pretty: cmd.Pretty}
	return w.Write(ctx.Stdout, batch)
}

func logTrace(log zerolog.Logger, batch *models.Batch) {
	for _, dl := range batch.DebugLines {
		log.Debug().
			Int("page", dl.Page).
			Int("line", dl.LineNum).
			Str("result", dl.Result).
			Str("reason", dl.Reason).
			Str("pattern", dl.Pattern).
			Msg(dl.Text)
	}
}

type CSVCmd struct {
	GrammarFlags
	Path   string `help:"Statement PDF, or .txt with pre-extracted pages." arg:"" type:"path"`
	Output string `help:"Output CSV path, '-' for stdout (defaults to the input name with .csv)." short:"o"`
	Header bool   `help:"Include format metadata rows." default:"true" negatable:""`
}

func (cmd *CSVCmd) Run(ctx *kong.Context, log zerolog.Logger) error {
	batch, err := cmd.read(cmd.Path, log)
	if err != nil {
		return err
	}

	w := &writer.CSVWriter{IncludeHeader: cmd.Header}
	if cmd.Output == "-" {
		return w.Write(ctx.Stdout, batch)
	}

	outPath := cmd.Output
	if outPath == "" {
		outPath = strings.TrimSuffix(cmd.Path, filepath.Ext(cmd.Path)) + ".csv"
	}
	if err := w.WriteToFile(outPath, batch); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	log.Info().
		Str("output", outPath).
		Int("transactions", len(batch.Transactions)).
		Bool("fallback", batch.Fallback).
		Msg("wrote CSV")
	return nil
}

type ImportCmd struct {
	GrammarFlags
	Path string `help:"Statement PDF, or .txt with pre-extracted pages." arg:"" type:"path"`
	DB   string `help:"SQLite ledger file." default:"ledger.db" env:"LEDGER_DB" type:"path"`
}

func (cmd *ImportCmd) Run(ctx *kong.Context, log zerolog.Logger) error {
	batch, err := cmd.read(cmd.Path, log)
	if err != nil {
		return err
	}

	db, err := storage.NewDatabase(cmd.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.SaveBatch(batch, filepath.Base(cmd.Path))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(ctx.Stdout, "Imported %d of %d transaction(s) into %s\n", n, len(batch.Transactions), cmd.DB)
	return nil
}

type ServeCmd struct {
	Addr string `help:"Listen address." default:":8080" env:"LISTEN_ADDR"`
	Year int    `help:"Year for dates that carry none when a request gives no year." env:"STATEMENT_YEAR"`
}

func (cmd *ServeCmd) Run(log zerolog.Logger) error {
	app := api.NewApp(&api.Handler{
		Year:    cmd.Year,
		Version: buildVersion(),
		Log:     log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(cmd.Addr)
	}()
	log.Info().Str("addr", cmd.Addr).Msg("listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		return app.Shutdown()
	}
}

type FormatsCmd struct{}

func (cmd *FormatsCmd) Run(ctx *kong.Context) error {
	tw := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	for _, g := range parser.Grammars() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", g.Name, g.Title)
	}
	return tw.Flush()
}

type Commands struct {
	Parse   ParseCmd   `cmd:"" default:"withargs" help:"Parse a statement and print its transactions as JSON."`
	CSV     CSVCmd     `cmd:"" name:"csv" help:"Parse a statement and write its transactions as CSV."`
	Import  ImportCmd  `cmd:"" help:"Parse a statement and store its transactions in a SQLite ledger."`
	Serve   ServeCmd   `cmd:"" help:"Serve the conversion API over HTTP."`
	Formats FormatsCmd `cmd:"" help:"List the supported statement formats."`
}
