package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/sqldumpfix/internal/config"
	"github.com/dshills/sqldumpfix/internal/diff"
	"github.com/dshills/sqldumpfix/internal/errors"
	"github.com/dshills/sqldumpfix/internal/feature"
	"github.com/dshills/sqldumpfix/internal/log"
	"github.com/dshills/sqldumpfix/internal/rewrite"
	"github.com/dshills/sqldumpfix/internal/textenc"
)

var (
	version = "0.1.0"
	commit  = "unknown"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitMismatch = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: sqldumpfix <command> [options]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  rewrite   Wrap description fields in JSON and write the fixed dump\n")
	fmt.Fprintf(w, "  diff      Show the lines rewrite would change, write nothing\n")
	fmt.Fprintf(w, "  check     Report how many statements would be rewritten or skipped\n")
	fmt.Fprintf(w, "  features  List feature flags\n")
	fmt.Fprintf(w, "  version   Show version information\n")
	fmt.Fprintf(w, "\nRun 'sqldumpfix <command> -h' for command options.\n")
}

// cliFlags holds the options shared by rewrite, diff and check.
type cliFlags struct {
	configFile string
	envFile    string
	overrides  config.Overrides
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *cliFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &cliFlags{overrides: config.NoOverrides()}
	o := &f.overrides
	fs.StringVar(&f.configFile, "config", "", "Path to JSON or YAML configuration file")
	fs.StringVar(&f.envFile, "env-file", ".env", "Path to .env file with SQLDUMPFIX_* variables")
	fs.StringVar(&o.Input, "in", "", "Source SQL dump (default neon_backup.sql)")
	fs.StringVar(&o.Encoding, "encoding", "", "Text encoding of the dump (default utf-8)")
	fs.StringVar(&o.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.LogFormat, "log-format", "", "Log format (text, json)")
	fs.StringVar(&o.Table, "table", "", "Table whose INSERT statements are rewritten (default tools)")
	fs.StringVar(&o.Column, "column", "", "Column name to rewrite when a column list is present (default description)")
	fs.IntVar(&o.ColumnIndex, "column-index", -1, "0-based position of the column in VALUES (default 3)")
	fs.StringVar(&o.Provider, "provider", "", "Provider prefix following the credit cost (default gemini)")
	fs.StringVar(&o.JSONKey, "key", "", "JSON key wrapping the text (default vi)")
	fs.StringVar(&o.Strategy, "strategy", "", "Field location strategy (pattern, positional)")
	fs.Func("feature", "Feature flag override as name=bool (repeatable)", func(v string) error {
		name, val, ok := strings.Cut(v, "=")
		if !ok {
			return fmt.Errorf("expected name=bool, got %q", v)
		}
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid value for feature %s: %w", name, err)
		}
		if o.Features == nil {
			o.Features = make(map[string]bool)
		}
		o.Features[strings.TrimSpace(name)] = enabled
		return nil
	})
	return fs, f
}

// loadConfig layers defaults, the config file, the environment and flags,
// in increasing precedence.
func (f *cliFlags) loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(f.envFile); err != nil {
		return nil, err
	}

	var cfg *config.Config
	if f.configFile != "" {
		var err error
		cfg, err = config.LoadFromFile(f.configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	cfg.LoadFromEnv()
	cfg.LoadFromFlags(f.overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyFeatures(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is everything a command needs once configuration is loaded.
type session struct {
	cfg      *config.Config
	logger   log.Logger
	rewriter *rewrite.Rewriter
	codec    *textenc.Codec
}

func newSession(command string, f *cliFlags, stderr io.Writer) (*session, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}

	logger := log.ConfigureWriter(cfg.ToLogConfig(), stderr).With(
		log.String("command", command),
		log.String("run_id", uuid.NewString()),
	)

	opts, err := cfg.ToRewriteOptions()
	if err != nil {
		return nil, err
	}
	rw, err := rewrite.NewRewriter(opts, logger)
	if err != nil {
		return nil, errors.InvalidConfigError("%s", err.Error())
	}
	codec, err := textenc.Lookup(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		log.String("input", cfg.Input),
		log.String("strategy", string(opts.Strategy)),
		log.String("encoding", codec.Name()),
		log.Bool("json_escape", opts.EscapeJSON),
	)
	return &session{cfg: cfg, logger: logger, rewriter: rw, codec: codec}, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "rewrite":
		return runRewrite(rest, stdout, stderr)
	case "diff":
		return runDiff(rest, stdout, stderr)
	case "check":
		return runCheck(rest, stdout, stderr)
	case "features":
		fmt.Fprint(stdout, feature.DebugString())
		return exitOK
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "sqldumpfix v%s (commit: %s)\n", version, commit)
		return exitOK
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		usage(stderr)
		return exitUsage
	}
}

// fail logs err and returns the failure exit code.
func fail(logger log.Logger, stderr io.Writer, msg string, err error) int {
	if logger == nil {
		fmt.Fprintf(stderr, "%s: %v\n", msg, err)
		return exitFailure
	}
	attrs := []any{log.Err(err)}
	if qErr := errors.GetError(err); qErr != nil {
		attrs = append(attrs, log.String("sqlstate", qErr.Code))
		if qErr.Path != "" {
			attrs = append(attrs, log.String("path", qErr.Path))
		}
	}
	logger.Error(msg, attrs...)
	return exitFailure
}

func runRewrite(args []string, stdout, stderr io.Writer) int {
	fs, f := newFlagSet("rewrite", stderr)
	fs.StringVar(&f.overrides.Output, "out", "", "Destination for the fixed dump (default <input>_fixed<ext>)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	s, err := newSession("rewrite", f, stderr)
	if err != nil {
		return fail(nil, stderr, "Failed to load configuration", err)
	}

	out := s.cfg.OutputPath()
	res, err := s.rewriter.RewriteFile(s.cfg.Input, out, s.codec)
	if err != nil {
		return fail(s.logger, stderr, "Failed to rewrite dump", err)
	}

	fmt.Fprintf(stdout, "Fixed %s: %d %s fields rewritten\n", out, res.Stats.FieldsRewritten, s.cfg.Rewrite.Column)
	fmt.Fprintf(stdout, "Only the %s column was changed, other columns untouched\n", s.cfg.Rewrite.Column)
	return exitOK
}

func runDiff(args []string, stdout, stderr io.Writer) int {
	fs, f := newFlagSet("diff", stderr)
	maxLines := fs.Int("max-lines", diff.MaxDiffLines, "Skip the diff when input and output together exceed this many lines")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	s, err := newSession("diff", f, stderr)
	if err != nil {
		return fail(nil, stderr, "Failed to load configuration", err)
	}

	input, err := rewrite.ReadDocument(s.cfg.Input, s.codec)
	if err != nil {
		return fail(s.logger, stderr, "Failed to read dump", err)
	}
	res := s.rewriter.Rewrite(input)

	hunks, truncated := diff.TextDiffWithLimit(input, res.Output, *maxLines)
	if truncated {
		s.logger.Warn("diff skipped, document too large", log.Int("max_lines", *maxLines))
		fmt.Fprintf(stdout, "%d of %d lines would change\n", res.Stats.ModifiedLines, res.Stats.Lines)
		return exitOK
	}
	if err := diff.Render(stdout, hunks, feature.IsEnabled(feature.ColouredDiff)); err != nil {
		return fail(s.logger, stderr, "Failed to write diff", err)
	}

	removed, added := diff.Changed(hunks)
	fmt.Fprintf(stdout, "%d of %d lines would change (%d hunks, -%d +%d)\n",
		res.Stats.ModifiedLines, res.Stats.Lines, len(hunks), removed, added)
	return exitOK
}

func runCheck(args []string, stdout, stderr io.Writer) int {
	fs, f := newFlagSet("check", stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	s, err := newSession("check", f, stderr)
	if err != nil {
		return fail(nil, stderr, "Failed to load configuration", err)
	}

	input, err := rewrite.ReadDocument(s.cfg.Input, s.codec)
	if err != nil {
		return fail(s.logger, stderr, "Failed to read dump", err)
	}
	st := s.rewriter.Rewrite(input).Stats

	fmt.Fprintf(stdout, "lines:            %d\n", st.Lines)
	fmt.Fprintf(stdout, "target lines:     %d\n", st.TargetLines)
	fmt.Fprintf(stdout, "would rewrite:    %d\n", st.FieldsRewritten)
	fmt.Fprintf(stdout, "already json:     %d\n", st.AlreadyJSON)
	fmt.Fprintf(stdout, "no values clause: %d\n", st.NoValues)
	fmt.Fprintf(stdout, "unmatched:        %d\n", st.Unmatched)

	if st.Unmatched > 0 {
		nums := make([]string, len(st.UnmatchedLines))
		for i, n := range st.UnmatchedLines {
			nums[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(stdout, "unmatched lines:  %s\n", strings.Join(nums, ", "))
		return exitMismatch
	}
	return exitOK
}
