package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/insightdelivered/statement-parser/internal/logger"
	"github.com/insightdelivered/statement-parser/internal/parser"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""
)

// CLI is the root of the command tree.
type CLI struct {
	Globals
	Commands
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Vars{
			"version": buildVersion(),
			"formats": strings.Join(parser.FormatNames(), ","),
		},
		kong.Name("statement-parser"),
		kong.Description("Extracts transactions from bank and card statement PDFs."),
	}, opts...)
	return kong.New(cli, opts...)
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit status. Usage
// and errors go to stderr; stdout only carries command output.
func execute(args []string, stdout, stderr io.Writer) int {
	// Variables from .env fill in flags that read the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "statement-parser: error: loading .env: %v\n", err)
		return 1
	}

	var cli CLI
	k, err := newParser(&cli, kong.Writers(stdout, stderr))
	if err != nil {
		panic(err)
	}

	ctx, err := k.Parse(args)
	if err != nil {
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) && parseErr.Context != nil {
			parseErr.Context.Stdout = stderr
			_ = parseErr.Context.PrintUsage(false)
		}
		fmt.Fprintf(stderr, "statement-parser: error: %v\n", err)
		return 1
	}

	log, err := logger.New(stderr, cli.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "statement-parser: error: %v\n", err)
		return 1
	}

	if err := ctx.Run(log, &cli.Globals); err != nil {
		log.Error().Err(err).Str("command", ctx.Command()).Msg("command failed")
		return 1
	}
	return 0
}

func buildVersion() string {
	if Version == "" {
		Version = "dev"
	}
	if CommitSHA == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitSHA)
}
