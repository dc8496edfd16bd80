package main

import (
	"fmt"
)

// Parser builds the binary CommandNode tree from a token stream.
// Precedence, loosest first: `;` and `&`, then `&&` and `||`, then `|`.
// All operators associate left.
type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TOKENEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func syntaxError(t Token) error {
	if t.Type == TOKENEOF {
		return fmt.Errorf("syntax error: unexpected end of line")
	}
	return fmt.Errorf("syntax error near unexpected token '%s'", t.Lexeme)
}

// ParseLine parses one command line. An empty or comment-only line
// returns a nil tree and no error.
func (p *Parser) ParseLine() (*CommandNode, error) {
	if p.peek().Type == TOKENEOF {
		return nil, nil
	}
	node, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Type != TOKENEOF {
		return nil, syntaxError(t)
	}
	return node, nil
}

func (p *Parser) parseList() (*CommandNode, error) {
	node, err := p.parseAndOr()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch p.peek().Type {
		case SEMICOLON:
			op = OP_SEQUENTIAL
		case AMPERSAND:
			op = OP_PARALLEL
		default:
			return node, nil
		}
		p.advance()
		if p.peek().Type == TOKENEOF && op == OP_SEQUENTIAL {
			// trailing semicolon
			return node, nil
		}
		right, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		node = NewInternal(op, node, right)
	}
}

func (p *Parser) parseAndOr() (*CommandNode, error) {
	node, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch p.peek().Type {
		case ANDAND:
			op = OP_COND_ZERO
		case OROR:
			op = OP_COND_NZERO
		default:
			return node, nil
		}
		p.advance()
		right, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		node = NewInternal(op, node, right)
	}
}

func (p *Parser) parsePipeline() (*CommandNode, error) {
	node, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PIPETOKEN {
		p.advance()
		right, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		node = NewInternal(OP_PIPE, node, right)
	}
	return node, nil
}

func (p *Parser) parseSimple() (*CommandNode, error) {
	scmd := &SimpleCommand{}
	sawVerb := false
	for {
		switch t := p.peek(); t.Type {
		case WORD:
			p.advance()
			if !sawVerb {
				scmd.Verb = t.Word
				sawVerb = true
			} else {
				scmd.Args = append(scmd.Args, t.Word)
			}
		case GREAT, DGREAT, LESS, ERRGREAT, ERRDGREAT, BOTHGREAT:
			p.advance()
			target := p.peek()
			if target.Type != WORD {
				return nil, fmt.Errorf("syntax error: missing target for '%s'", t.Lexeme)
			}
			p.advance()
			word := target.Word
			switch t.Type {
			case GREAT:
				scmd.Out = &word
			case DGREAT:
				scmd.Out = &word
				scmd.Append = true
			case LESS:
				scmd.In = &word
			case ERRGREAT:
				scmd.Err = &word
			case ERRDGREAT:
				scmd.Err = &word
				scmd.Append = true
			case BOTHGREAT:
				// out and err share one target word
				scmd.Out = &word
				scmd.Err = &word
			}
		default:
			if !sawVerb {
				return nil, syntaxError(t)
			}
			return NewLeaf(scmd), nil
		}
	}
}
