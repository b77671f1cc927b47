// Command efmt formats target-language source files in place: a single
// `format` subcommand that walks its file arguments, rewrites each in
// place unless --diff or --check is given, and reports per-file errors to
// stderr without aborting the remaining files.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/rogpeppe/go-internal/diff"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/efmtgo/efmt/efmt"
	"github.com/efmtgo/efmt/internal/config"
)

func main() {
	os.Exit(Main())
}

// Main runs the CLI and returns a process exit code, factored out of main
// so a test binary can re-exec itself as this command via
// testscript.RunMain.
func Main() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "efmt"}
	root.AddCommand(newFormatCmd())
	return root
}

func newFormatCmd() *cobra.Command {
	var (
		width   int
		showDiff bool
		check   bool
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "format [--width=N] [--diff] [--check] [--verbose] <file>...",
		Short: "rewrite target-language source files into canonical layout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)

			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			if width == 0 {
				width = cfg.Width
			}

			var result *multierror.Error
			badlyFormatted := false
			for _, path := range args {
				if cfg.Excludes(path) {
					logger.Debug().Str("file", path).Msg("skipped by config exclude")
					continue
				}
				logger.Debug().Str("file", path).Msg("formatting")
				changed, err := formatFile(cmd.OutOrStdout(), path, width, showDiff, check)
				if err != nil {
					result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
					continue
				}
				if changed {
					badlyFormatted = true
				}
			}
			if result.ErrorOrNil() != nil {
				return result
			}
			if check && badlyFormatted {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "soft target column width (default 80, or .efmt.yaml's width)")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a unified diff instead of rewriting the file")
	cmd.Flags().BoolVar(&check, "check", false, "exit non-zero if any file is not already canonically formatted")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log each file processed")
	return cmd
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !isTerminal()}).
		Level(level).With().Timestamp().Logger()
}

func isTerminal() bool { return isTerminalFile(os.Stderr) }

// isTerminalWriter reports whether w is a terminal, when w is an *os.File
// (the real CLI's stdout); any other io.Writer (e.g. a testscript harness's
// capture buffer) is treated as non-interactive.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminalFile(f)
}

func isTerminalFile(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// formatFile formats path and reports whether its contents changed.
func formatFile(stdout io.Writer, path string, width int, showDiff, check bool) (bool, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	formatted, err := efmt.Format(path, original, width)
	if err != nil {
		return false, err
	}
	if bytes.Equal([]byte(formatted), original) {
		return false, nil
	}
	switch {
	case showDiff:
		d := diff.Diff(path+".orig", original, path, []byte(formatted))
		if isTerminalWriter(stdout) {
			fmt.Fprint(stdout, colorizeDiff(string(d)))
		} else {
			fmt.Fprint(stdout, string(d))
		}
	case check:
		fmt.Fprintln(stdout, path)
	default:
		if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
			return false, err
		}
	}
	return true, nil
}

func colorizeDiff(d string) string {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	var out bytes.Buffer
	for _, line := range bytesSplitLines(d) {
		switch {
		case len(line) > 0 && line[0] == '-':
			out.WriteString(red.Sprint(line))
		case len(line) > 0 && line[0] == '+':
			out.WriteString(green.Sprint(line))
		default:
			out.WriteString(line)
		}
		out.WriteByte('\n')
	}
	return out.String()
}

func bytesSplitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
