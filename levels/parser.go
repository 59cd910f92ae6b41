package levels

import "fmt"

// Document is the untyped node tree of a level file.
type Document struct {
	Source string
	Nodes  []*Node
}

// Node is one `name args... key=value... { children }` statement.
type Node struct {
	Name     string
	NameSpan Span
	// Type is the optional `(type)` annotation; it is kept but not interpreted.
	Type        string
	Args        []Value
	Props       []Property
	Children    []*Node
	HasChildren bool
	Span        Span
}

type Property struct {
	Key     string
	KeySpan Span
	Value   Value
}

type ValueKind int

const (
	ValueNumber ValueKind = iota
	ValueString
	ValueIdent
	ValueBool
	ValueNull
	// ValueFloatKeyword is #inf, #-inf or #nan.
	ValueFloatKeyword
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumber:
		return "number"
	case ValueString:
		return "string"
	case ValueIdent:
		return "identifier"
	case ValueBool:
		return "boolean"
	case ValueNull:
		return "null"
	case ValueFloatKeyword:
		return "non-finite number"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is an argument or property value. Raw is the source text, Str the
// decoded text (string contents, keyword name, or the number literal).
type Value struct {
	Kind ValueKind
	Type string
	Raw  string
	Str  string
	Span Span
}

// ParseDocument parses level source into a node tree without interpreting
// node names. Syntax errors stop at the first problem.
func ParseDocument(sourceName, text string) (*Document, error) {
	toks := NewLexer(text).Tokenize()
	if last := toks[len(toks)-1]; last.Type == TokenError {
		return nil, newParseError(sourceName, text, Diagnostic{
			Source:  sourceName,
			Span:    last.Span,
			Token:   last.Literal,
			Message: last.Value,
		})
	}

	p := &parser{source: sourceName, text: text, toks: toks}
	nodes, props, err := p.parseNodes(nil)
	if err != nil {
		return nil, err
	}
	if len(props) > 0 {
		prop := props[0]
		return nil, p.fail(prop.KeySpan, prop.Key,
			fmt.Sprintf("property `%s` outside of any node", prop.Key),
			"", "properties belong to a node, e.g. `pos x=1 y=2 z=3`")
	}
	return &Document{Source: sourceName, Nodes: nodes}, nil
}

type parser struct {
	source string
	text   string
	toks   []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) fail(span Span, token, message, label, help string) *ParseError {
	return newParseError(p.source, p.text, Diagnostic{
		Source:  p.source,
		Span:    span,
		Token:   token,
		Message: message,
		Label:   label,
		Help:    help,
	})
}

func (p *parser) unexpected(tok Token, want string) *ParseError {
	return p.fail(tok.Span, tok.Literal,
		fmt.Sprintf("expected %s, found %s", want, tok.describe()), "unexpected", "")
}

func (p *parser) skipNewlines() {
	for p.peek().Type == TokenNewline {
		p.next()
	}
}

// parseNodes reads statements until EOF (open == nil) or the `}` that
// closes open. The closing brace is left for the caller. Statements of the
// form `key=value` are returned as properties of the enclosing node.
func (p *parser) parseNodes(open *Token) ([]*Node, []Property, error) {
	var (
		nodes []*Node
		props []Property
	)
	for {
		tok := p.peek()
		switch tok.Type {
		case TokenNewline, TokenSemicolon:
			p.next()
			continue
		case TokenEOF:
			if open != nil {
				return nil, nil, p.fail(open.Span, "{", "unclosed `{`", "opened here", "add a matching `}`")
			}
			return nodes, props, nil
		case TokenRBrace:
			if open == nil {
				return nil, nil, p.fail(tok.Span, "}", "unexpected `}`", "no matching `{`", "")
			}
			return nodes, props, nil
		case TokenSlashdash:
			p.next()
			p.skipNewlines()
			if _, _, err := p.parseStatement(); err != nil {
				return nil, nil, err
			}
			continue
		}

		node, prop, err := p.parseStatement()
		if err != nil {
			return nil, nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		} else {
			props = append(props, *prop)
		}
	}
}

// parseStatement reads a node, or a `key=value` shorthand property.
func (p *parser) parseStatement() (*Node, *Property, error) {
	typ, err := p.parseAnnotation()
	if err != nil {
		return nil, nil, err
	}

	name := p.peek()
	if name.Type != TokenIdent && name.Type != TokenString {
		return nil, nil, p.unexpected(name, "a node name")
	}
	p.next()

	if p.peek().Type == TokenEqual {
		p.next()
		val, err := p.parseValue()
		if err != nil {
			return nil, nil, err
		}
		if err := p.expectTerminator(); err != nil {
			return nil, nil, err
		}
		return nil, &Property{Key: nodeName(name), KeySpan: name.Span, Value: val}, nil
	}

	node := &Node{
		Name:     nodeName(name),
		NameSpan: name.Span,
		Type:     typ,
		Span:     name.Span,
	}
	for {
		tok := p.peek()
		switch tok.Type {
		case TokenNewline, TokenSemicolon:
			p.next()
			return node, nil, nil
		case TokenEOF, TokenRBrace:
			return node, nil, nil
		case TokenLBrace:
			children, props, err := p.parseChildren()
			if err != nil {
				return nil, nil, err
			}
			node.Children = children
			node.Props = append(node.Props, props...)
			node.HasChildren = true
			node.Span.End = p.toks[p.pos-1].Span.End
			return node, nil, nil
		case TokenSlashdash:
			p.next()
			if p.peek().Type == TokenLBrace {
				if _, _, err := p.parseChildren(); err != nil {
					return nil, nil, err
				}
				continue
			}
			if _, _, err := p.parseEntry(); err != nil {
				return nil, nil, err
			}
			continue
		}

		arg, prop, err := p.parseEntry()
		if err != nil {
			return nil, nil, err
		}
		if prop != nil {
			node.Props = append(node.Props, *prop)
		} else {
			node.Args = append(node.Args, *arg)
		}
		node.Span.End = p.toks[p.pos-1].Span.End
	}
}

func (p *parser) parseChildren() ([]*Node, []Property, error) {
	open := p.next()
	children, props, err := p.parseNodes(&open)
	if err != nil {
		return nil, nil, err
	}
	p.next() // }
	return children, props, nil
}

// parseEntry reads one argument or `key=value` property.
func (p *parser) parseEntry() (*Value, *Property, error) {
	tok := p.peek()
	if (tok.Type == TokenIdent || tok.Type == TokenString) && p.peekAt(1).Type == TokenEqual {
		p.next()
		p.next()
		val, err := p.parseValue()
		if err != nil {
			return nil, nil, err
		}
		return nil, &Property{Key: nodeName(tok), KeySpan: tok.Span, Value: val}, nil
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, nil, err
	}
	return &val, nil, nil
}

func (p *parser) parseValue() (Value, error) {
	typ, err := p.parseAnnotation()
	if err != nil {
		return Value{}, err
	}
	tok := p.peek()
	val := Value{Type: typ, Raw: tok.Literal, Str: tok.Value, Span: tok.Span}
	switch tok.Type {
	case TokenNumber:
		val.Kind = ValueNumber
	case TokenString:
		val.Kind = ValueString
	case TokenIdent:
		val.Kind = ValueIdent
	case TokenKeyword:
		switch tok.Value {
		case "true", "false":
			val.Kind = ValueBool
		case "null":
			val.Kind = ValueNull
		default:
			val.Kind = ValueFloatKeyword
		}
	default:
		return Value{}, p.unexpected(tok, "a value")
	}
	p.next()
	return val, nil
}

// parseAnnotation reads an optional `(type)` prefix.
func (p *parser) parseAnnotation() (string, error) {
	if p.peek().Type != TokenLParen {
		return "", nil
	}
	p.next()
	tok := p.peek()
	if tok.Type != TokenIdent && tok.Type != TokenString {
		return "", p.unexpected(tok, "a type name")
	}
	p.next()
	if closing := p.peek(); closing.Type != TokenRParen {
		return "", p.unexpected(closing, "`)`")
	}
	p.next()
	return nodeName(tok), nil
}

func (p *parser) expectTerminator() error {
	switch tok := p.peek(); tok.Type {
	case TokenNewline, TokenSemicolon:
		p.next()
		return nil
	case TokenEOF, TokenRBrace:
		return nil
	default:
		return p.unexpected(tok, "newline or `;`")
	}
}

func nodeName(tok Token) string {
	if tok.Type == TokenString {
		return tok.Value
	}
	return tok.Literal
}
