package rewrite

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// Lexer tokenizes a single SQL statement line.
type Lexer struct {
	input    string
	position int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize returns every token up to and including EOF, stopping early at
// the first error token.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return tokens
		}
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.position >= len(l.input) {
		return l.makeToken(TokenEOF, "", l.position)
	}

	ch := l.input[l.position]

	switch ch {
	case '(':
		return l.consumeChars(TokenLeftParen, 1)
	case ')':
		return l.consumeChars(TokenRightParen, 1)
	case '[':
		return l.consumeChars(TokenLeftBracket, 1)
	case ']':
		return l.consumeChars(TokenRightBracket, 1)
	case ',':
		return l.consumeChars(TokenComma, 1)
	case ';':
		return l.consumeChars(TokenSemicolon, 1)
	case '.':
		return l.consumeChars(TokenDot, 1)
	case ':':
		if l.peek(1) == ':' {
			return l.consumeChars(TokenCast, 2)
		}
		return l.consumeChars(TokenOperator, 1)
	case '-':
		if l.peek(1) == '-' {
			l.skipLineComment()
			return l.NextToken()
		}
		return l.consumeChars(TokenOperator, 1)
	case '/':
		if l.peek(1) == '*' {
			if !l.skipBlockComment() {
				return l.makeToken(TokenError, "unterminated comment", l.position)
			}
			return l.NextToken()
		}
		return l.consumeChars(TokenOperator, 1)
	case '\'':
		return l.readString()
	case '"':
		return l.readQuotedIdentifier()
	}

	if ch == 'E' || ch == 'e' {
		if l.peek(1) == '\'' {
			return l.readEscapeString()
		}
	}

	if isIdentStart(ch) {
		return l.readIdentifier()
	}

	if unicode.IsDigit(rune(ch)) {
		return l.readNumber()
	}

	if strings.IndexByte("+*%=<>!~^&|#@?", ch) >= 0 {
		return l.consumeChars(TokenOperator, 1)
	}

	return l.makeToken(TokenError, fmt.Sprintf("unexpected character '%c'", ch), l.position)
}

// skipWhitespace skips whitespace, including the line terminator.
func (l *Lexer) skipWhitespace() {
	for l.position < len(l.input) {
		switch l.input[l.position] {
		case ' ', '\t', '\r', '\n':
			l.position++
		default:
			return
		}
	}
}

// skipLineComment skips SQL comments (-- to end of line).
func (l *Lexer) skipLineComment() {
	for l.position < len(l.input) && l.input[l.position] != '\n' {
		l.position++
	}
}

// skipBlockComment skips a /* */ comment and reports whether it was closed.
func (l *Lexer) skipBlockComment() bool {
	end := strings.Index(l.input[l.position+2:], "*/")
	if end == -1 {
		return false
	}
	l.position += end + 4
	return true
}

// peek looks ahead n characters without consuming.
func (l *Lexer) peek(n int) byte {
	pos := l.position + n
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

// consumeChars consumes n characters and returns a token.
func (l *Lexer) consumeChars(tokenType TokenType, n int) Token {
	start := l.position
	l.position += n
	return l.makeToken(tokenType, l.input[start:l.position], start)
}

// makeToken creates a token spanning start to the current position.
func (l *Lexer) makeToken(tokenType TokenType, value string, start int) Token {
	return Token{
		Type:     tokenType,
		Value:    value,
		Position: start,
		End:      l.position,
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch >= 0x80 || unicode.IsLetter(rune(ch))
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || unicode.IsDigit(rune(ch)) || ch == '$'
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() Token {
	start := l.position
	for l.position < len(l.input) && isIdentPart(l.input[l.position]) {
		l.position++
	}

	value := l.input[start:l.position]
	return l.makeToken(LookupKeyword(strings.ToUpper(value)), value, start)
}

// readNumber reads a numeric literal, including a decimal part and exponent.
func (l *Lexer) readNumber() Token {
	start := l.position
	hasDecimal := false

	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch {
		case unicode.IsDigit(rune(ch)):
			l.position++
		case ch == '.' && !hasDecimal && unicode.IsDigit(rune(l.peek(1))):
			hasDecimal = true
			l.position++
		case (ch == 'e' || ch == 'E') && (unicode.IsDigit(rune(l.peek(1))) ||
			((l.peek(1) == '-' || l.peek(1) == '+') && unicode.IsDigit(rune(l.peek(2))))):
			l.position += 2
		default:
			return l.makeToken(TokenNumber, l.input[start:l.position], start)
		}
	}

	return l.makeToken(TokenNumber, l.input[start:l.position], start)
}

// readQuoted reads a quoted string with the given quote character. A doubled
// quote character inside the literal stands for one quote.
func (l *Lexer) readQuoted(quoteChar byte, tokenType TokenType, errorMsg string) Token {
	start := l.position
	l.position++ // Skip opening quote

	var builder strings.Builder

	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch == quoteChar {
			if l.peek(1) == quoteChar {
				builder.WriteByte(quoteChar)
				l.position += 2
				continue
			}
			l.position++
			return l.makeToken(tokenType, builder.String(), start)
		}
		builder.WriteByte(ch)
		l.position++
	}

	return l.makeToken(TokenError, errorMsg, start)
}

// readEscapeString reads a PostgreSQL E'...' literal with backslash escapes.
// The decoded value must be valid UTF-8 without NUL bytes.
func (l *Lexer) readEscapeString() Token {
	start := l.position
	l.position += 2 // Skip E and opening quote

	var builder strings.Builder

	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch ch {
		case '\\':
			if l.peek(1) == 0 {
				return l.makeToken(TokenError, "unterminated string literal", start)
			}
			if msg := l.readBackslashEscape(&builder); msg != "" {
				return l.makeToken(TokenError, msg, start)
			}
		case '\'':
			if l.peek(1) == '\'' {
				builder.WriteByte('\'')
				l.position += 2
				continue
			}
			l.position++
			value := builder.String()
			if !utf8.ValidString(value) || strings.IndexByte(value, 0) >= 0 {
				return l.makeToken(TokenError, "invalid byte sequence in escape string", start)
			}
			return l.makeToken(TokenString, value, start)
		default:
			builder.WriteByte(ch)
			l.position++
		}
	}

	return l.makeToken(TokenError, "unterminated string literal", start)
}

// readBackslashEscape decodes the escape at l.position, which holds the
// backslash, and advances past it. It returns an error message when the
// escape is malformed.
func (l *Lexer) readBackslashEscape(b *strings.Builder) string {
	next := l.peek(1)
	l.position += 2
	switch next {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'x':
		v, n := l.readDigits(16, 2)
		if n == 0 {
			// \x without hex digits is a plain x.
			b.WriteByte('x')
			return ""
		}
		b.WriteByte(byte(v))
	case '0', '1', '2', '3', '4', '5', '6', '7':
		l.position--
		v, _ := l.readDigits(8, 3)
		b.WriteByte(byte(v))
	case 'u', 'U':
		width := 4
		if next == 'U' {
			width = 8
		}
		r, ok := l.readUnicodeEscape(width)
		if !ok {
			return "invalid Unicode escape"
		}
		if utf16.IsSurrogate(r) {
			// A high surrogate must be followed by \u and a low surrogate.
			if r >= 0xDC00 || l.peek(0) != '\\' || l.peek(1) != 'u' {
				return "invalid Unicode surrogate pair"
			}
			l.position += 2
			lo, ok := l.readUnicodeEscape(4)
			if !ok {
				return "invalid Unicode escape"
			}
			r = utf16.DecodeRune(r, lo)
			if r == utf8.RuneError {
				return "invalid Unicode surrogate pair"
			}
		}
		b.WriteRune(r)
	default:
		b.WriteByte(next)
	}
	return ""
}

// readUnicodeEscape reads exactly width hex digits and returns the code
// point they name.
func (l *Lexer) readUnicodeEscape(width int) (rune, bool) {
	v, n := l.readDigits(16, width)
	if n != width || v == 0 || v > unicode.MaxRune {
		return 0, false
	}
	return rune(v), true
}

// readDigits reads up to limit digits in base and returns their value and
// how many were read.
func (l *Lexer) readDigits(base, limit int) (int, int) {
	v, n := 0, 0
	for n < limit {
		d := digitValue(l.peek(0))
		if d < 0 || d >= base {
			break
		}
		v = v*base + d
		l.position++
		n++
	}
	return v, n
}

func digitValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	default:
		return -1
	}
}

// readString reads a string literal enclosed in single quotes.
func (l *Lexer) readString() Token {
	return l.readQuoted('\'', TokenString, "unterminated string literal")
}

// readQuotedIdentifier reads an identifier enclosed in double quotes.
func (l *Lexer) readQuotedIdentifier() Token {
	return l.readQuoted('"', TokenIdentifier, "unterminated quoted identifier")
}
