package levels

import (
	"errors"
	"strings"
	"testing"
)

func TestLexerTokens(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{"node_with_args", "pos 1 -2.5 3e2", []TokenType{TokenIdent, TokenNumber, TokenNumber, TokenNumber, TokenEOF}},
		{"property", "size=1", []TokenType{TokenIdent, TokenEqual, TokenNumber, TokenEOF}},
		{"children", "spawn{pos{}}", []TokenType{TokenIdent, TokenLBrace, TokenIdent, TokenLBrace, TokenRBrace, TokenRBrace, TokenEOF}},
		{"comments", "a // x\n/* b /* nested */ */ c", []TokenType{TokenIdent, TokenNewline, TokenIdent, TokenEOF}},
		{"continuation", "a \\ // join\n b", []TokenType{TokenIdent, TokenIdent, TokenEOF}},
		{"slashdash", "/-a;", []TokenType{TokenSlashdash, TokenIdent, TokenSemicolon, TokenEOF}},
		{"keywords", "true #false null #inf", []TokenType{TokenKeyword, TokenKeyword, TokenKeyword, TokenKeyword, TokenEOF}},
		{"strings", `"a\"b" r#"raw "x""#`, []TokenType{TokenString, TokenString, TokenEOF}},
		{"annotation", "(deg)90", []TokenType{TokenLParen, TokenIdent, TokenRParen, TokenNumber, TokenEOF}},
		{"radix", "0x1F 0b1_0 -0o7", []TokenType{TokenNumber, TokenNumber, TokenNumber, TokenEOF}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			toks := NewLexer(c.input).Tokenize()
			if len(toks) != len(c.want) {
				t.Fatalf("expected %d tokens, got %d: %v", len(c.want), len(toks), toks)
			}
			for i, tok := range toks {
				if tok.Type != c.want[i] {
					t.Fatalf("token %d: expected %s, got %v", i, c.want[i], tok)
				}
			}
		})
	}
}

func TestLexerStringValues(t *testing.T) {
	toks := NewLexer(`"a\tb\u{41}" r#"c"d"#`).Tokenize()
	if toks[0].Value != "a\tbA" {
		t.Fatalf("unexpected escaped value %q", toks[0].Value)
	}
	if toks[1].Value != `c"d` {
		t.Fatalf("unexpected raw value %q", toks[1].Value)
	}
}

func TestLexerPositions(t *testing.T) {
	toks := NewLexer("spawn {\n  pos 1 2 3\n}").Tokenize()
	var pos Token
	for _, tok := range toks {
		if tok.Literal == "pos" {
			pos = tok
		}
	}
	if pos.Span.Start.Line != 2 || pos.Span.Start.Col != 3 {
		t.Fatalf("expected pos at 2:3, got %s", pos.Span.Start)
	}
	if pos.Span.End.Col != 6 {
		t.Fatalf("expected span end col 6, got %d", pos.Span.End.Col)
	}
}

func TestLexerErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		msg   string
	}{
		{"unterminated_string", `cube "abc`, "unterminated string"},
		{"unterminated_comment", "cube /* x", "unterminated block comment"},
		{"bad_number", "cube 12ab", "invalid number `12ab`"},
		{"bad_escape", `"\q"`, "invalid escape sequence"},
		{"bad_keyword", "#maybe", "unknown keyword"},
		{"bad_continuation", "a \\ b", "expected newline after line continuation"},
		{"invalid_utf8", "cube 1 \xff", "invalid UTF-8 byte 0xff"},
		{"invalid_utf8_in_ident", "cu\xfebe 1", "invalid UTF-8 byte 0xfe"},
		{"invalid_utf8_in_string", "cube \"a\xffb\"", "invalid UTF-8 byte 0xff in string"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			toks := NewLexer(c.input).Tokenize()
			last := toks[len(toks)-1]
			if last.Type != TokenError {
				t.Fatalf("expected error token, got %v", last)
			}
			if !strings.Contains(last.Value, c.msg) {
				t.Fatalf("expected %q in %q", c.msg, last.Value)
			}
		})
	}
}

func TestParseDocumentStructure(t *testing.T) {
	doc, err := ParseDocument("doc.kdl", `
(level)cube 1 size=2 /- ignored=3 {
    pos 0 0 0
    /- rot X 10
}
/- plane 4
plane 5 /- { pos 9 9 9 }
`)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(doc.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(doc.Nodes))
	}
	cube := doc.Nodes[0]
	if cube.Type != "level" || len(cube.Args) != 1 || len(cube.Props) != 1 {
		t.Fatalf("unexpected cube node %+v", cube)
	}
	if !cube.HasChildren || len(cube.Children) != 1 || cube.Children[0].Name != "pos" {
		t.Fatalf("expected a single pos child, got %+v", cube.Children)
	}
	plane := doc.Nodes[1]
	if plane.HasChildren || len(plane.Args) != 1 {
		t.Fatalf("slashdashed children block should be dropped, got %+v", plane)
	}
}

func TestParseDocumentSyntaxErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		msg   string
		line  int
		col   int
	}{
		{"unclosed_brace", "spawn {\n  pos 0 0 0\n", "unclosed `{`", 1, 7},
		{"stray_brace", "spawn { pos 0 0 0 }\n}", "unexpected `}`", 2, 1},
		{"missing_name", "= 3", "expected a node name", 1, 1},
		{"top_level_property", "size=3", "outside of any node", 1, 1},
		{"bad_value", "cube ( 1", "expected a type name", 1, 8},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseDocument("bad.kdl", c.input)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if len(perr.Diagnostics) != 1 {
				t.Fatalf("syntax errors stop at the first, got %d", len(perr.Diagnostics))
			}
			d := perr.Diagnostics[0]
			if !strings.Contains(d.Message, c.msg) {
				t.Fatalf("expected %q in %q", c.msg, d.Message)
			}
			if d.Span.Start.Line != c.line || d.Span.Start.Col != c.col {
				t.Fatalf("expected %d:%d, got %s", c.line, c.col, d.Span.Start)
			}
		})
	}
}
