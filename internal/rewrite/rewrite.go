package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/sqldumpfix/internal/log"
)

// valuesMarker must appear in a target line for it to be considered.
const valuesMarker = "VALUES ("

// Outcome describes what happened to a single line.
type Outcome int

const (
	// OutcomeSkipped means the line is not a target statement.
	OutcomeSkipped Outcome = iota
	// OutcomeRewritten means at least one description field was wrapped.
	OutcomeRewritten
	// OutcomeAlreadyJSON means the description already holds JSON.
	OutcomeAlreadyJSON
	// OutcomeNoValues means the target line has no VALUES clause.
	OutcomeNoValues
	// OutcomeUnmatched means no description field could be recognized.
	OutcomeUnmatched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRewritten:
		return "rewritten"
	case OutcomeAlreadyJSON:
		return "already_json"
	case OutcomeNoValues:
		return "no_values"
	case OutcomeUnmatched:
		return "unmatched"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Stats counts what a rewrite did.
type Stats struct {
	Lines           int // All lines in the document
	TargetLines     int // Lines starting with the INSERT prefix
	ModifiedLines   int // Target lines whose text changed
	FieldsRewritten int // Description fields wrapped in JSON
	AlreadyJSON     int // Target lines whose description was already JSON
	NoValues        int // Target lines without a VALUES clause
	Unmatched       int // Target lines with no recognizable description field

	// UnmatchedLines holds the 1-based numbers of unmatched lines.
	UnmatchedLines []int
}

// Result is the output of a rewrite.
type Result struct {
	Output string
	Stats  Stats
}

// Rewriter wraps description fields of INSERT statements in JSON.
type Rewriter struct {
	opts        Options
	logger      log.Logger
	pattern     *regexp.Regexp
	jsonPattern *regexp.Regexp
}

// NewRewriter validates opts and prepares a rewriter. A nil logger uses
// the package default.
func NewRewriter(opts Options, logger log.Logger) (*Rewriter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	provider := regexp.QuoteMeta(opts.Provider)
	return &Rewriter{
		opts:   opts,
		logger: logger,
		// , '<description>', <credit cost>, '<provider>
		pattern: regexp.MustCompile(`(, ')([^'{][^']*)(', \d+, '` + provider + `)`),
		// Same position holding a JSON object, optionally already cast.
		jsonPattern: regexp.MustCompile(`, '\{[^']*'(?:::\w+)?, \d+, '` + provider),
	}, nil
}

// Rewrite applies opts to input. It is shorthand for NewRewriter followed
// by Rewriter.Rewrite.
func Rewrite(input string, opts Options) (*Result, error) {
	r, err := NewRewriter(opts, nil)
	if err != nil {
		return nil, err
	}
	return r.Rewrite(input), nil
}

// Rewrite transforms every target line of input. The output has exactly as
// many lines as the input and every line keeps its terminator.
func (r *Rewriter) Rewrite(input string) *Result {
	lines := SplitLines(input)
	res := &Result{}
	res.Stats.Lines = len(lines)

	var out strings.Builder
	out.Grow(len(input) + len(input)/8)

	for i, line := range lines {
		fixed, outcome, fields := r.RewriteLine(line)
		out.WriteString(fixed)

		if outcome == OutcomeSkipped {
			continue
		}
		res.Stats.TargetLines++
		switch outcome {
		case OutcomeRewritten:
			res.Stats.ModifiedLines++
			res.Stats.FieldsRewritten += fields
		case OutcomeAlreadyJSON:
			res.Stats.AlreadyJSON++
		case OutcomeNoValues:
			res.Stats.NoValues++
			r.logger.Debug("target line has no VALUES clause", log.Int("line", i+1))
		case OutcomeUnmatched:
			res.Stats.Unmatched++
			res.Stats.UnmatchedLines = append(res.Stats.UnmatchedLines, i+1)
			r.logger.Debug("no description field recognized", log.Int("line", i+1))
		}
	}

	res.Output = out.String()
	return res
}

// RewriteLine transforms a single line and reports what happened along with
// the number of fields rewritten.
func (r *Rewriter) RewriteLine(line string) (string, Outcome, int) {
	if !strings.HasPrefix(line, r.opts.prefix()) {
		return line, OutcomeSkipped, 0
	}
	if !strings.Contains(line, valuesMarker) {
		return line, OutcomeNoValues, 0
	}

	switch r.opts.Strategy {
	case StrategyPositional:
		return r.rewritePositional(line)
	default:
		return r.rewritePattern(line)
	}
}

// rewritePattern substitutes every match of the anchored pattern.
func (r *Rewriter) rewritePattern(line string) (string, Outcome, int) {
	matches := r.pattern.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		if r.jsonPattern.MatchString(line) {
			return line, OutcomeAlreadyJSON, 0
		}
		return line, OutcomeUnmatched, 0
	}

	var b strings.Builder
	last := 0
	rewritten := 0
	for _, m := range matches {
		// m holds start/end pairs for the whole match and groups 1..3.
		desc := line[m[4]:m[5]]
		if strings.Contains(desc, "{") {
			continue
		}
		b.WriteString(line[last:m[4]])
		b.WriteString(Envelope(r.opts.JSONKey, desc, r.opts.EscapeJSON))
		b.WriteString("'::")
		b.WriteString(r.opts.CastType)
		// Skip the closing quote of group 3; it was written above.
		last = m[6] + 1
		rewritten++
	}
	if rewritten == 0 {
		return line, OutcomeAlreadyJSON, 0
	}
	b.WriteString(line[last:])
	return b.String(), OutcomeRewritten, rewritten
}

// SplitLines splits s after every "\n". A final line without a terminator
// is kept; an empty string has no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
