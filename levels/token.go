package levels

import "fmt"

// TokenType is the lexical class of a Token.
type TokenType int

const (
	TokenError TokenType = iota
	TokenEOF
	TokenNewline
	TokenSemicolon

	TokenIdent   // bare identifier
	TokenString  // "quoted" or r#"raw"#
	TokenNumber  // 1, -2.5, 1e3, 0x1f
	TokenKeyword // true, false, null, #inf, #-inf, #nan

	TokenLBrace    // {
	TokenRBrace    // }
	TokenLParen    // (
	TokenRParen    // )
	TokenEqual     // =
	TokenSlashdash // /-
)

var tokenNames = map[TokenType]string{
	TokenError:     "error",
	TokenEOF:       "end of file",
	TokenNewline:   "newline",
	TokenSemicolon: "`;`",
	TokenIdent:     "identifier",
	TokenString:    "string",
	TokenNumber:    "number",
	TokenKeyword:   "keyword",
	TokenLBrace:    "`{`",
	TokenRBrace:    "`}`",
	TokenLParen:    "`(`",
	TokenRParen:    "`)`",
	TokenEqual:     "`=`",
	TokenSlashdash: "`/-`",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexeme. Literal is the source text; Value is the decoded
// string for strings and keywords, and the message for TokenError.
type Token struct {
	Type    TokenType
	Literal string
	Value   string
	Span    Span
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF, TokenNewline:
		return t.Type.String()
	case TokenError:
		return fmt.Sprintf("error(%s)", t.Value)
	}
	lit := t.Literal
	if len(lit) > 20 {
		return fmt.Sprintf("%s %q...", t.Type, lit[:20])
	}
	return fmt.Sprintf("%s %q", t.Type, lit)
}

// describe is the token as it appears in diagnostics.
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF, TokenNewline, TokenSemicolon, TokenLBrace, TokenRBrace,
		TokenLParen, TokenRParen, TokenEqual, TokenSlashdash:
		return t.Type.String()
	}
	return fmt.Sprintf("%s `%s`", t.Type, t.Literal)
}
