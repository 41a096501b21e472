package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sqldumpfix/internal/log"
	"github.com/dshills/sqldumpfix/internal/testutil"
)

func testOptions(strategy Strategy) Options {
	opts := DefaultOptions()
	opts.Strategy = strategy
	opts.EscapeJSON = true
	opts.ColumnListLookup = true
	return opts
}

func newTestRewriter(t *testing.T, opts Options) *Rewriter {
	t.Helper()
	r, err := NewRewriter(opts, log.Discard())
	require.NoError(t, err)
	return r
}

var strategies = []Strategy{StrategyPattern, StrategyPositional}

func TestRewriteScenarios(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		outcome  Outcome
	}{
		{
			name:     "plain description is wrapped",
			input:    "INSERT INTO tools VALUES (1, 'k', 'Name', 'A simple tool', 5, 'gemini-pro');",
			expected: `INSERT INTO tools VALUES (1, 'k', 'Name', '{"vi": "A simple tool"}'::jsonb, 5, 'gemini-pro');`,
			outcome:  OutcomeRewritten,
		},
		{
			name:     "already JSON description is untouched",
			input:    `INSERT INTO tools VALUES (1, 'k', 'Name', '{"vi": "x"}', 5, 'gemini-pro');`,
			expected: `INSERT INTO tools VALUES (1, 'k', 'Name', '{"vi": "x"}', 5, 'gemini-pro');`,
			outcome:  OutcomeAlreadyJSON,
		},
		{
			name:     "non-insert line is untouched",
			input:    "CREATE TABLE tools (id integer, description jsonb);",
			expected: "CREATE TABLE tools (id integer, description jsonb);",
			outcome:  OutcomeSkipped,
		},
		{
			name:     "comment line is untouched",
			input:    "-- INSERT INTO tools VALUES (1, 'k', 'Name', 'A simple tool', 5, 'gemini-pro');",
			expected: "-- INSERT INTO tools VALUES (1, 'k', 'Name', 'A simple tool', 5, 'gemini-pro');",
			outcome:  OutcomeSkipped,
		},
		{
			name:     "insert without VALUES clause is untouched",
			input:    "INSERT INTO tools SELECT * FROM old_tools;",
			expected: "INSERT INTO tools SELECT * FROM old_tools;",
			outcome:  OutcomeNoValues,
		},
		{
			name:     "insert into another table is untouched",
			input:    "INSERT INTO users VALUES (1, 'k', 'Name', 'A simple tool', 5, 'gemini-pro');",
			expected: "INSERT INTO users VALUES (1, 'k', 'Name', 'A simple tool', 5, 'gemini-pro');",
			outcome:  OutcomeSkipped,
		},
		{
			name:     "JSON name is left alone",
			input:    `INSERT INTO tools VALUES (2, 'img', '{"vi": "Ảnh"}', 'Tạo ảnh từ văn bản', 10, 'gemini-flash');`,
			expected: `INSERT INTO tools VALUES (2, 'img', '{"vi": "Ảnh"}', '{"vi": "Tạo ảnh từ văn bản"}'::jsonb, 10, 'gemini-flash');`,
			outcome:  OutcomeRewritten,
		},
	}

	for _, strategy := range strategies {
		r := newTestRewriter(t, testOptions(strategy))
		for _, tt := range tests {
			t.Run(string(strategy)+"/"+tt.name, func(t *testing.T) {
				out, outcome, _ := r.RewriteLine(tt.input)
				assert.Equal(t, tt.expected, out)
				assert.Equal(t, tt.outcome, outcome)
			})
		}
	}
}

func TestRewriteKeepsTerminators(t *testing.T) {
	input := "SET client_encoding = 'UTF8';\r\n" +
		"INSERT INTO tools VALUES (1, 'k', 'Name', 'A simple tool', 5, 'gemini-pro');\r\n" +
		"INSERT INTO tools VALUES (2, 'k2', 'Other', 'Second', 3, 'gemini');"
	expected := "SET client_encoding = 'UTF8';\r\n" +
		`INSERT INTO tools VALUES (1, 'k', 'Name', '{"vi": "A simple tool"}'::jsonb, 5, 'gemini-pro');` + "\r\n" +
		`INSERT INTO tools VALUES (2, 'k2', 'Other', '{"vi": "Second"}'::jsonb, 3, 'gemini');`

	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			res := newTestRewriter(t, testOptions(strategy)).Rewrite(input)
			assert.Equal(t, expected, res.Output)
			testutil.AssertOnlyTargetsChanged(t, input, res.Output, "INSERT INTO tools")
			assert.Equal(t, 3, res.Stats.Lines)
			assert.Equal(t, 2, res.Stats.TargetLines)
			assert.Equal(t, 2, res.Stats.ModifiedLines)
			assert.Equal(t, 2, res.Stats.FieldsRewritten)
		})
	}
}

func TestRewriteDocumentProperties(t *testing.T) {
	rows := testutil.GenerateToolRows(25)
	rows[4].Description = `{"vi": "already done"}`
	rows[9].Provider = "openai"
	input := testutil.GenerateDump(rows) + "INSERT INTO tools (id) SELECT 1;\n"

	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			r := newTestRewriter(t, testOptions(strategy))
			first := r.Rewrite(input)
			testutil.AssertOnlyTargetsChanged(t, input, first.Output, "INSERT INTO tools")

			second := r.Rewrite(first.Output)
			assert.Equal(t, first.Output, second.Output, "second run must be a no-op")
			assert.Equal(t, 0, second.Stats.ModifiedLines)

			assert.Equal(t, 26, first.Stats.TargetLines)
			assert.Equal(t, 1, first.Stats.NoValues)
			assert.Equal(t, 1, first.Stats.AlreadyJSON)
			assert.Equal(t, first.Stats.TargetLines,
				first.Stats.ModifiedLines+first.Stats.AlreadyJSON+first.Stats.NoValues+first.Stats.Unmatched)
			assert.Equal(t, first.Stats.Unmatched, len(first.Stats.UnmatchedLines))
		})
	}
}

func TestPatternStrategyNeedsProviderTail(t *testing.T) {
	line := "INSERT INTO tools VALUES (10, 'k', 'Name', 'Chat tool', 2, 'openai');"

	res, err := Rewrite(line+"\n", testOptions(StrategyPattern))
	require.NoError(t, err)
	assert.Equal(t, line+"\n", res.Output)
	assert.Equal(t, 1, res.Stats.Unmatched)
	assert.Equal(t, []int{1}, res.Stats.UnmatchedLines)

	res, err = Rewrite(line+"\n", testOptions(StrategyPositional))
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO tools VALUES (10, 'k', 'Name', '{"vi": "Chat tool"}'::jsonb, 2, 'openai');`+"\n", res.Output)
	assert.Equal(t, 0, res.Stats.Unmatched)
}

func TestPatternStrategyBraceInsideText(t *testing.T) {
	line := "INSERT INTO tools VALUES (1, 'k', 'Name', 'uses {braces}', 5, 'gemini-pro');"
	r := newTestRewriter(t, testOptions(StrategyPattern))

	out, outcome, n := r.RewriteLine(line)
	assert.Equal(t, line, out)
	assert.Equal(t, OutcomeAlreadyJSON, outcome)
	assert.Equal(t, 0, n)
}

func TestPositionalEscapedQuotes(t *testing.T) {
	line := "INSERT INTO tools VALUES (1, 'k', 'Name', 'It''s a \"smart\" tool', 5, 'gemini-pro');"
	r := newTestRewriter(t, testOptions(StrategyPositional))

	out, outcome, _ := r.RewriteLine(line)
	assert.Equal(t, OutcomeRewritten, outcome)
	assert.Equal(t,
		`INSERT INTO tools VALUES (1, 'k', 'Name', E'{"vi": "It''s a \\"smart\\" tool"}'::jsonb, 5, 'gemini-pro');`,
		out)

	// The pattern strategy stops at the doubled quote and cannot see the field.
	_, outcome, _ = newTestRewriter(t, testOptions(StrategyPattern)).RewriteLine(line)
	assert.Equal(t, OutcomeUnmatched, outcome)
}

func TestPositionalBackslashUsesEscapeString(t *testing.T) {
	line := `INSERT INTO tools VALUES (1, 'k', 'Name', 'C:\temp', 5, 'gemini');`
	r := newTestRewriter(t, testOptions(StrategyPositional))

	out, outcome, _ := r.RewriteLine(line)
	assert.Equal(t, OutcomeRewritten, outcome)
	assert.Equal(t, `INSERT INTO tools VALUES (1, 'k', 'Name', E'{"vi": "C:\\\\temp"}'::jsonb, 5, 'gemini');`, out)
}

func TestPositionalDecodesEscapeStrings(t *testing.T) {
	r := newTestRewriter(t, testOptions(StrategyPositional))

	tests := []struct {
		field    string
		expected string
	}{
		{`E'caf\xc3\xa9 é'`, `'{"vi": "café é"}'::jsonb`},
		{`E'caf\303\251'`, `'{"vi": "café"}'::jsonb`},
		{`E'caf\u00e9'`, `'{"vi": "café"}'::jsonb`},
		{`E'smile \U0001F600'`, `'{"vi": "smile 😀"}'::jsonb`},
	}
	for _, tt := range tests {
		line := "INSERT INTO tools VALUES (1, 'k', 'Name', " + tt.field + ", 5, 'gemini');"
		out, outcome, n := r.RewriteLine(line)
		assert.Equal(t, OutcomeRewritten, outcome, tt.field)
		assert.Equal(t, 1, n, tt.field)
		assert.Equal(t, "INSERT INTO tools VALUES (1, 'k', 'Name', "+tt.expected+", 5, 'gemini');", out)
	}

	// Undecodable escapes leave the line alone and report it.
	for _, field := range []string{`E'\xff'`, `E'\uD83D'`, `E'\u12'`} {
		line := "INSERT INTO tools VALUES (1, 'k', 'Name', " + field + ", 5, 'gemini');\n"
		res := r.Rewrite(line)
		assert.Equal(t, line, res.Output, field)
		assert.Equal(t, 1, res.Stats.Unmatched, field)
		assert.Equal(t, []int{1}, res.Stats.UnmatchedLines, field)
	}
}

func TestPositionalColumnList(t *testing.T) {
	line := `INSERT INTO tools (tool_key, description, id) VALUES ('k', 'Described', 1), ('k2', NULL, 2), ('k3', 'Third', 3);`
	r := newTestRewriter(t, testOptions(StrategyPositional))

	out, outcome, n := r.RewriteLine(line)
	assert.Equal(t, OutcomeRewritten, outcome)
	assert.Equal(t, 2, n)
	assert.Equal(t,
		`INSERT INTO tools (tool_key, description, id) VALUES ('k', '{"vi": "Described"}'::jsonb, 1), ('k2', NULL, 2), ('k3', '{"vi": "Third"}'::jsonb, 3);`,
		out)

	opts := testOptions(StrategyPositional)
	opts.ColumnListLookup = false
	opts.ColumnIndex = 0
	out, _, _ = newTestRewriter(t, opts).RewriteLine(line)
	assert.True(t, strings.HasPrefix(out, `INSERT INTO tools (tool_key, description, id) VALUES ('{"vi": "k"}'::jsonb, 'Described', 1)`))

	missing := `INSERT INTO tools (id, name) VALUES (1, 'x');`
	_, outcome, _ = r.RewriteLine(missing)
	assert.Equal(t, OutcomeUnmatched, outcome)
}

func TestPositionalNestedValues(t *testing.T) {
	line := `INSERT INTO tools VALUES (1, ARRAY['a', 'b'], lower('Name'), 'Nested', 5, 'gemini') ON CONFLICT DO NOTHING;`
	r := newTestRewriter(t, testOptions(StrategyPositional))

	out, outcome, _ := r.RewriteLine(line)
	assert.Equal(t, OutcomeRewritten, outcome)
	assert.Equal(t, `INSERT INTO tools VALUES (1, ARRAY['a', 'b'], lower('Name'), '{"vi": "Nested"}'::jsonb, 5, 'gemini') ON CONFLICT DO NOTHING;`, out)
}

func TestPositionalUnmatched(t *testing.T) {
	r := newTestRewriter(t, testOptions(StrategyPositional))

	tests := []string{
		"INSERT INTO tools VALUES (1, 'k', 'Name', 42, 5, 'gemini');",
		"INSERT INTO tools VALUES (1, 'k');",
		"INSERT INTO tools VALUES (1, 'k', 'Name', 'unterminated, 5, 'gemini');",
		"INSERT INTO tools VALUES (1, 'k', 'Name', 'typed'::text, 5, 'gemini');",
	}
	for _, line := range tests {
		out, outcome, _ := r.RewriteLine(line)
		assert.Equal(t, line, out)
		assert.Equal(t, OutcomeUnmatched, outcome, line)
	}

	already := `INSERT INTO tools VALUES (1, 'k', 'Name', '{"vi": "x"}'::jsonb, 5, 'gemini');`
	_, outcome, _ := r.RewriteLine(already)
	assert.Equal(t, OutcomeAlreadyJSON, outcome)
}

func TestEscapeDisabledKeepsRawText(t *testing.T) {
	opts := testOptions(StrategyPattern)
	opts.EscapeJSON = false
	r := newTestRewriter(t, opts)

	out, _, _ := r.RewriteLine(`INSERT INTO tools VALUES (1, 'k', 'Name', 'say "hi" <now>', 5, 'gemini');`)
	assert.Equal(t, `INSERT INTO tools VALUES (1, 'k', 'Name', '{"vi": "say "hi" <now>"}'::jsonb, 5, 'gemini');`, out)

	opts.EscapeJSON = true
	out, _, _ = newTestRewriter(t, opts).RewriteLine(`INSERT INTO tools VALUES (1, 'k', 'Name', 'say "hi" <now>', 5, 'gemini');`)
	assert.Equal(t, `INSERT INTO tools VALUES (1, 'k', 'Name', '{"vi": "say \"hi\" <now>"}'::jsonb, 5, 'gemini');`, out)
}

func TestCustomOptions(t *testing.T) {
	opts := testOptions(StrategyPattern)
	opts.Table = "plugins"
	opts.Provider = "openai"
	opts.JSONKey = "en"
	opts.CastType = "json"

	res, err := Rewrite("INSERT INTO plugins VALUES (1, 'k', 'Name', 'Helper', 1, 'openai-4');\n", opts)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO plugins VALUES (1, 'k', 'Name', '{"en": "Helper"}'::json, 1, 'openai-4');`+"\n", res.Output)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		errMsg string
	}{
		{"valid", func(o *Options) {}, ""},
		{"empty table", func(o *Options) { o.Table = " " }, "table must not be empty"},
		{"empty key", func(o *Options) { o.JSONKey = "" }, "json key must not be empty"},
		{"empty cast", func(o *Options) { o.CastType = "" }, "cast type must not be empty"},
		{"empty provider", func(o *Options) { o.Provider = "" }, "provider must not be empty"},
		{"negative index", func(o *Options) { o.Strategy = StrategyPositional; o.ColumnIndex = -1 }, "column index must not be negative"},
		{"unknown strategy", func(o *Options) { o.Strategy = "magic" }, "unknown strategy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			_, err = NewRewriter(opts, nil)
			require.Error(t, err)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy(" Positional ")
	require.NoError(t, err)
	assert.Equal(t, StrategyPositional, s)

	s, err = ParseStrategy("pattern")
	require.NoError(t, err)
	assert.Equal(t, StrategyPattern, s)

	_, err = ParseStrategy("regex")
	require.Error(t, err)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a\n"}, SplitLines("a\n"))
	assert.Equal(t, []string{"a\n", "b"}, SplitLines("a\nb"))
	assert.Equal(t, []string{"a\r\n", "\n", "b\n"}, SplitLines("a\r\n\nb\n"))
}

func TestEnvelope(t *testing.T) {
	assert.Equal(t, `{"vi": "A simple tool"}`, Envelope("vi", "A simple tool", true))
	assert.Equal(t, `{"vi": "a & b <c>"}`, Envelope("vi", "a & b <c>", true))
	assert.Equal(t, `{"vi": "tab\there"}`, Envelope("vi", "tab\there", true))
	assert.Equal(t, `{"vi": "Công cụ"}`, Envelope("vi", "Công cụ", true))
	assert.Equal(t, "{\"vi\": \"tab\there\"}", Envelope("vi", "tab\there", false))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "rewritten", OutcomeRewritten.String())
	assert.Equal(t, "unmatched", OutcomeUnmatched.String())
	assert.Equal(t, "Outcome(42)", Outcome(42).String())
}
