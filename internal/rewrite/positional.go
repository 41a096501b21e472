package rewrite

import (
	"strings"
)

// edit replaces line[start:end] with text.
type edit struct {
	start int
	end   int
	text  string
}

// statement is the parsed shape of an INSERT line: its optional column
// list and the fields of every VALUES tuple.
type statement struct {
	columns []string
	tuples  [][][]Token
}

// rewritePositional tokenizes line and rewrites the configured field of
// every VALUES tuple.
func (r *Rewriter) rewritePositional(line string) (string, Outcome, int) {
	tokens := Tokenize(line)
	stmt, ok := parseInsert(tokens)
	if !ok {
		return line, OutcomeUnmatched, 0
	}

	index := r.opts.ColumnIndex
	if r.opts.ColumnListLookup && len(stmt.columns) > 0 {
		index = -1
		for i, name := range stmt.columns {
			if strings.EqualFold(name, r.opts.Column) {
				index = i
				break
			}
		}
		if index < 0 {
			return line, OutcomeUnmatched, 0
		}
	}

	var edits []edit
	alreadyJSON := 0
	for _, fields := range stmt.tuples {
		if index >= len(fields) {
			continue
		}
		field := fields[index]
		if len(field) == 0 || field[0].Type != TokenString {
			continue
		}
		if strings.Contains(field[0].Value, "{") {
			alreadyJSON++
			continue
		}
		if len(field) != 1 {
			// Already cast to some other type; leave it alone.
			continue
		}
		edits = append(edits, edit{
			start: field[0].Position,
			end:   field[0].End,
			text:  castLiteral(Envelope(r.opts.JSONKey, field[0].Value, r.opts.EscapeJSON), r.opts.CastType),
		})
	}

	if len(edits) == 0 {
		if alreadyJSON > 0 {
			return line, OutcomeAlreadyJSON, 0
		}
		return line, OutcomeUnmatched, 0
	}
	return applyEdits(line, edits), OutcomeRewritten, len(edits)
}

// applyEdits applies non-overlapping edits given in ascending order.
func applyEdits(line string, edits []edit) string {
	var b strings.Builder
	last := 0
	for _, e := range edits {
		b.WriteString(line[last:e.start])
		b.WriteString(e.text)
		last = e.end
	}
	b.WriteString(line[last:])
	return b.String()
}

// parseInsert recognizes
//
//	INSERT INTO name [(col, ...)] VALUES (expr, ...) [, (expr, ...)]...
//
// and splits each tuple into its top-level fields. Anything after the last
// tuple (ON CONFLICT, RETURNING, the semicolon) is ignored.
func parseInsert(tokens []Token) (*statement, bool) {
	p := &insertParser{tokens: tokens}

	if !p.accept(TokenInsert) || !p.accept(TokenInto) {
		return nil, false
	}
	// Table name, possibly schema qualified.
	if !p.accept(TokenIdentifier) {
		return nil, false
	}
	for p.accept(TokenDot) {
		if !p.accept(TokenIdentifier) {
			return nil, false
		}
	}

	stmt := &statement{}
	if p.peek().Type == TokenLeftParen {
		cols, ok := p.columnList()
		if !ok {
			return nil, false
		}
		stmt.columns = cols
	}

	if !p.accept(TokenValues) {
		return nil, false
	}

	for {
		fields, ok := p.tuple()
		if !ok {
			return nil, false
		}
		stmt.tuples = append(stmt.tuples, fields)
		if !p.accept(TokenComma) {
			break
		}
	}
	return stmt, true
}

type insertParser struct {
	tokens []Token
	pos    int
}

func (p *insertParser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *insertParser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *insertParser) accept(tt TokenType) bool {
	if p.peek().Type == tt {
		p.pos++
		return true
	}
	return false
}

// columnList parses (col, col, ...).
func (p *insertParser) columnList() ([]string, bool) {
	if !p.accept(TokenLeftParen) {
		return nil, false
	}
	var cols []string
	for {
		tok := p.next()
		if tok.Type != TokenIdentifier {
			return nil, false
		}
		cols = append(cols, tok.Value)
		switch p.next().Type {
		case TokenComma:
		case TokenRightParen:
			return cols, true
		default:
			return nil, false
		}
	}
}

// tuple parses one parenthesised VALUES row into its top-level fields.
func (p *insertParser) tuple() ([][]Token, bool) {
	if !p.accept(TokenLeftParen) {
		return nil, false
	}

	var fields [][]Token
	var current []Token
	depth := 0
	for {
		tok := p.next()
		switch tok.Type {
		case TokenEOF, TokenError:
			return nil, false
		case TokenLeftParen, TokenLeftBracket:
			depth++
		case TokenRightBracket:
			depth--
		case TokenRightParen:
			if depth == 0 {
				return append(fields, current), true
			}
			depth--
		case TokenComma:
			if depth == 0 {
				fields = append(fields, current)
				current = nil
				continue
			}
		}
		current = append(current, tok)
	}
}
