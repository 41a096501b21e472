package rewrite

import "fmt"

// TokenType represents the type of a token in an INSERT statement line.
type TokenType int

const (
	// Special tokens.
	TokenEOF TokenType = iota
	TokenError

	// Literals.
	TokenIdentifier
	TokenNumber
	TokenString
	TokenTrue
	TokenFalse
	TokenNull

	// Keywords.
	TokenInsert
	TokenInto
	TokenValues

	// Punctuation.
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenComma
	TokenSemicolon
	TokenDot
	TokenCast
	TokenOperator
)

// Token represents a lexical token. Position and End are byte offsets into
// the lexed input; input[Position:End] is the token's raw source text.
type Token struct {
	Type     TokenType
	Value    string
	Position int
	End      int
}

// String returns a string representation of the token.
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("ERROR(%s)", t.Value)
	case TokenString:
		return fmt.Sprintf("'%s'", t.Value)
	default:
		return t.Value
	}
}

var keywords = map[string]TokenType{
	"INSERT": TokenInsert,
	"INTO":   TokenInto,
	"VALUES": TokenValues,
	"NULL":   TokenNull,
	"TRUE":   TokenTrue,
	"FALSE":  TokenFalse,
}

// LookupKeyword returns the token type for an upper-cased identifier.
func LookupKeyword(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdentifier
}
