package levels

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer turns level source into tokens. Comments, whitespace and line
// continuations never reach the parser.
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// NextToken returns the next token in the stream. After TokenEOF it keeps
// returning TokenEOF.
func (l *Lexer) NextToken() Token {
	if tok, ok := l.skipTrivia(); !ok {
		return tok
	}

	start := l.position()
	if l.pos >= len(l.input) {
		return l.token(TokenEOF, start, "")
	}

	if l.invalidByte() {
		b := l.input[l.pos]
		l.advance()
		return l.errorf(start, "invalid UTF-8 byte %#x", b)
	}

	ch := l.peek()
	switch ch {
	case '\n':
		l.advance()
		return l.token(TokenNewline, start, "")
	case ';':
		l.advance()
		return l.token(TokenSemicolon, start, "")
	case '{':
		l.advance()
		return l.token(TokenLBrace, start, "")
	case '}':
		l.advance()
		return l.token(TokenRBrace, start, "")
	case '(':
		l.advance()
		return l.token(TokenLParen, start, "")
	case ')':
		l.advance()
		return l.token(TokenRParen, start, "")
	case '=':
		l.advance()
		return l.token(TokenEqual, start, "")
	case '/':
		if l.peekAt(1) == '-' {
			l.advance()
			l.advance()
			return l.token(TokenSlashdash, start, "")
		}
		l.advance()
		return l.errorf(start, "unexpected `/`")
	case '"':
		return l.readString(start)
	case '#':
		return l.readHashKeyword(start)
	}

	if ch == 'r' && (l.peekAt(1) == '"' || l.peekAt(1) == '#') {
		return l.readRawString(start)
	}
	if isDigit(ch) || ((ch == '+' || ch == '-') && isDigit(l.peekAt(1))) {
		return l.readNumber(start)
	}
	if isIdentChar(ch) {
		return l.readIdent(start)
	}

	l.advance()
	return l.errorf(start, "unexpected character %q", ch)
}

// Tokenize reads the whole input. It stops at the first TokenError and
// returns it as the final element.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return toks
		}
	}
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Col: l.col}
}

func (l *Lexer) token(typ TokenType, start Position, value string) Token {
	return Token{
		Type:    typ,
		Literal: l.input[start.Offset:l.pos],
		Value:   value,
		Span:    Span{Start: start, End: l.position()},
	}
}

func (l *Lexer) errorf(start Position, format string, args ...any) Token {
	return l.token(TokenError, start, fmt.Sprintf(format, args...))
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// invalidByte reports whether the input at the cursor is not valid UTF-8.
func (l *Lexer) invalidByte() bool {
	if l.pos >= len(l.input) {
		return false
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	return r == utf8.RuneError && w == 1
}

func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt returns the rune n runes ahead without consuming anything.
func (l *Lexer) peekAt(n int) rune {
	pos := l.pos
	for ; n > 0 && pos < len(l.input); n-- {
		_, w := utf8.DecodeRuneInString(l.input[pos:])
		pos += w
	}
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

func (l *Lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

// skipTrivia consumes spaces, comments and line continuations. It returns
// false with an error token when a comment or continuation is malformed.
func (l *Lexer) skipTrivia() (Token, bool) {
	for l.pos < len(l.input) {
		switch {
		case isSpace(l.peek()):
			l.advance()
		case l.hasPrefix("//"):
			l.skipLineComment()
		case l.hasPrefix("/*"):
			if tok, ok := l.skipBlockComment(); !ok {
				return tok, false
			}
		case l.peek() == '\\':
			if tok, ok := l.skipContinuation(); !ok {
				return tok, false
			}
		default:
			return Token{}, true
		}
	}
	return Token{}, true
}

func (l *Lexer) skipLineComment() {
	for l.pos < len(l.input) && l.peek() != '\n' {
		l.advance()
	}
}

func (l *Lexer) skipBlockComment() (Token, bool) {
	start := l.position()
	depth := 0
	for l.pos < len(l.input) {
		switch {
		case l.hasPrefix("/*"):
			l.advance()
			l.advance()
			depth++
		case l.hasPrefix("*/"):
			l.advance()
			l.advance()
			depth--
			if depth == 0 {
				return Token{}, true
			}
		default:
			l.advance()
		}
	}
	tok := l.errorf(start, "unterminated block comment")
	tok.Literal = "/*"
	tok.Span.End = Position{Offset: start.Offset + 2, Line: start.Line, Col: start.Col + 2}
	return tok, false
}

// skipContinuation handles `\` followed by optional spaces or a line
// comment and then a newline, which joins the next line to this one.
func (l *Lexer) skipContinuation() (Token, bool) {
	start := l.position()
	l.advance()
	for l.pos < len(l.input) && isSpace(l.peek()) {
		l.advance()
	}
	if l.hasPrefix("//") {
		l.skipLineComment()
	}
	switch {
	case l.pos >= len(l.input):
		return Token{}, true
	case l.peek() == '\n':
		l.advance()
		return Token{}, true
	}
	return l.errorf(start, "expected newline after line continuation"), false
}

func (l *Lexer) readIdent(start Position) Token {
	for l.pos < len(l.input) && isIdentChar(l.peek()) && !l.invalidByte() {
		l.advance()
	}
	tok := l.token(TokenIdent, start, "")
	switch tok.Literal {
	case "true", "false", "null":
		tok.Type = TokenKeyword
	}
	tok.Value = tok.Literal
	return tok
}

func (l *Lexer) readHashKeyword(start Position) Token {
	l.advance()
	for l.pos < len(l.input) && isIdentChar(l.peek()) && !l.invalidByte() {
		l.advance()
	}
	tok := l.token(TokenKeyword, start, "")
	switch tok.Literal {
	case "#true", "#false", "#null", "#inf", "#-inf", "#nan":
		tok.Value = tok.Literal[1:]
		return tok
	}
	return l.errorf(start, "unknown keyword `%s`", tok.Literal)
}

func (l *Lexer) readNumber(start Position) Token {
	if c := l.peek(); c == '+' || c == '-' {
		l.advance()
	}

	if l.peek() == '0' && strings.ContainsRune("xXoObB", l.peekAt(1)) {
		l.advance()
		l.advance()
		digits := 0
		for l.pos < len(l.input) && (isHexDigit(l.peek()) || l.peek() == '_') {
			if l.peek() != '_' {
				digits++
			}
			l.advance()
		}
		if digits == 0 {
			return l.invalidNumber(start)
		}
		return l.finishNumber(start)
	}

	l.readDigits()
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		l.readDigits()
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		l.advance()
		if c := l.peek(); c == '+' || c == '-' {
			l.advance()
		}
		if !isDigit(l.peek()) {
			return l.invalidNumber(start)
		}
		l.readDigits()
	}
	return l.finishNumber(start)
}

func (l *Lexer) readDigits() {
	for l.pos < len(l.input) && (isDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}
}

// finishNumber rejects numbers glued to identifier characters, like 12ab.
func (l *Lexer) finishNumber(start Position) Token {
	if l.pos < len(l.input) && isIdentChar(l.peek()) {
		return l.invalidNumber(start)
	}
	tok := l.token(TokenNumber, start, "")
	tok.Value = tok.Literal
	return tok
}

func (l *Lexer) invalidNumber(start Position) Token {
	for l.pos < len(l.input) && isIdentChar(l.peek()) && !l.invalidByte() {
		l.advance()
	}
	return l.errorf(start, "invalid number `%s`", l.input[start.Offset:l.pos])
}

func (l *Lexer) readString(start Position) Token {
	l.advance()
	var b strings.Builder
	for l.pos < len(l.input) {
		ch := l.peek()
		switch ch {
		case '"':
			l.advance()
			return l.token(TokenString, start, b.String())
		case '\\':
			escStart := l.position()
			l.advance()
			r, ok := l.readEscape()
			if !ok {
				return l.errorf(escStart, "invalid escape sequence `%s`", l.input[escStart.Offset:l.pos])
			}
			b.WriteRune(r)
		default:
			if l.invalidByte() {
				bad := l.position()
				c := l.input[l.pos]
				l.advance()
				return l.errorf(bad, "invalid UTF-8 byte %#x in string", c)
			}
			b.WriteRune(l.advance())
		}
	}
	tok := l.errorf(start, "unterminated string")
	tok.Literal = `"`
	tok.Span.End = Position{Offset: start.Offset + 1, Line: start.Line, Col: start.Col + 1}
	return tok
}

func (l *Lexer) readEscape() (rune, bool) {
	ch := l.advance()
	switch ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 's':
		return ' ', true
	case '"', '\\', '/':
		return ch, true
	case 'u':
		if l.peek() != '{' {
			return 0, false
		}
		l.advance()
		var v rune
		digits := 0
		for isHexDigit(l.peek()) && digits < 6 {
			v = v<<4 | hexValue(l.advance())
			digits++
		}
		if digits == 0 || l.peek() != '}' || !utf8.ValidRune(v) {
			return 0, false
		}
		l.advance()
		return v, true
	}
	return 0, false
}

func (l *Lexer) readRawString(start Position) Token {
	l.advance() // r
	hashes := 0
	for l.peek() == '#' {
		l.advance()
		hashes++
	}
	if l.peek() != '"' {
		return l.errorf(start, "expected `\"` to open raw string")
	}
	l.advance()
	closing := "\"" + strings.Repeat("#", hashes)
	contentStart := l.pos
	for l.pos < len(l.input) {
		if l.hasPrefix(closing) {
			value := l.input[contentStart:l.pos]
			for range closing {
				l.advance()
			}
			return l.token(TokenString, start, value)
		}
		l.advance()
	}
	tok := l.errorf(start, "unterminated raw string")
	tok.Literal = l.input[start.Offset:contentStart]
	tok.Span.End = Position{Offset: contentStart, Line: start.Line, Col: start.Col + (contentStart - start.Offset)}
	return tok
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\uFEFF' ||
		(r != '\n' && unicode.IsSpace(r))
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexValue(r rune) rune {
	switch {
	case isDigit(r):
		return r - '0'
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10
	default:
		return r - 'A' + 10
	}
}

func isIdentChar(r rune) bool {
	if r == 0 || r == '\n' || isSpace(r) {
		return false
	}
	return !strings.ContainsRune(`\/(){}<>;[]=,"#`, r)
}
