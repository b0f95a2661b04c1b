// Command bondc is a minimal demonstration binary for the schema
// compiler: parse one file and report diagnostics, or diff two revisions
// of a file for wire/text compatibility. It intentionally has no
// subcommand framework (§4.6 excludes CLI richness) — stdlib flag only,
// in the spirit of the teacher's own small command binaries.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mircodz/bbc"
	"github.com/mircodz/bbc/internal/logging"
)

func main() {
	diffOld := flag.String("diff-old", "", "previous revision of the schema file, for compatibility checking")
	ignoreImports := flag.Bool("ignore-imports", false, "parse without loading import statements")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "logfmt", "log format: logfmt, json")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bondc [-diff-old old.bond] [-ignore-imports] [-log-level level] [-log-format format] <file.bond>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := logging.New(os.Stderr, *logLevel, *logFormat)

	ctx := context.Background()
	opts := bondc.Options{IgnoreImports: *ignoreImports, Logger: logger}

	result := bondc.ParseFile(ctx, path, opts)
	reportErrors(result)

	if *diffOld != "" {
		oldResult := bondc.ParseFile(ctx, *diffOld, opts)
		reportErrors(oldResult)
		changes := bondc.CheckCompatibility(ctx, oldResult, result, opts)
		reportChanges(changes)
		if hasBreaking(changes) {
			os.Exit(1)
		}
		return
	}

	if !result.Success {
		os.Exit(1)
	}
}

func reportErrors(r bondc.ParseResult) {
	for _, e := range r.Errors {
		if e.Line != 0 {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s\n", e.FilePath, e.Line, e.Column, e.Kind, e.Message)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", e.FilePath, e.Kind, e.Message)
		}
	}
}

func reportChanges(changes []bondc.SchemaChange) {
	for _, c := range changes {
		fmt.Printf("[%s] %s: %s\n", c.Category, c.Location, c.Description)
		if c.Recommendation != "" {
			fmt.Printf("    %s\n", c.Recommendation)
		}
	}
}

func hasBreaking(changes []bondc.SchemaChange) bool {
	for _, c := range changes {
		if c.Category != bondc.Compatible {
			return true
		}
	}
	return false
}
