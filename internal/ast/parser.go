package ast

import (
	"github.com/sexpvm/sexpvm/internal/diag"
	"github.com/sexpvm/sexpvm/internal/scanner"
	"github.com/sexpvm/sexpvm/internal/token"
)

// Parser builds a Tree from a token stream produced by scanner.Scanner. It
// trusts the scanner to have classified every lexeme correctly and focuses
// purely on assembling parenthesized structure.
type Parser struct {
	source  string
	sc      *scanner.Scanner
	current token.Token
	tree    *Tree
	diags   diag.Bag
}

// NewParser creates a parser over source and primes it with the first
// token.
func NewParser(source string) *Parser {
	p := &Parser{
		source: source,
		sc:     scanner.New(source),
		tree:   NewTree(),
	}
	p.advance()
	return p
}

// Parse consumes the entire token stream, building one child of Root per
// top-level expression, and returns the tree plus a joined error if any
// diagnostics were recorded. The tree is still usable on error - callers
// that need to refuse execution on a failed parse should check the error.
func (p *Parser) Parse() (*Tree, error) {
	for p.current.Kind != token.EOF {
		p.parseExpr(Root)
		p.diags.Synchronize() // top-level expression boundary resyncs panic mode
	}
	return p.tree, p.diags.Error()
}

// parseExpr parses one <expr> - either a parenthesized internal node or a
// single leaf token - as a new child of parent.
func (p *Parser) parseExpr(parent NodeID) {
	switch p.current.Kind {
	case token.LEFTPAREN:
		node := p.tree.NewNode(p.current)
		p.tree.AppendChild(parent, node)
		p.advance()
		for p.current.Kind != token.RIGHTPAREN {
			if p.current.Kind == token.EOF {
				p.reportAt(p.current, "Expect ')' after expression.")
				return
			}
			p.parseExpr(node)
		}
		p.advance() // consume ')'

	case token.RIGHTPAREN:
		p.reportAt(p.current, "Unexpected ')'.")
		p.advance()

	default:
		leaf := p.tree.NewNode(p.current)
		p.tree.AppendChild(parent, leaf)
		p.advance()
	}
}

// advance pulls the next token from the scanner, retrying past (and
// reporting) any lex ERROR tokens so a malformed byte never stalls parsing.
func (p *Parser) advance() {
	for {
		p.current = p.sc.Next()
		if p.current.Kind != token.ERROR {
			return
		}
		p.diags.Report(&diag.CompileError{
			Line:    p.current.Line,
			Message: p.current.Err,
			AtError: true,
		})
	}
}

func (p *Parser) reportAt(tok token.Token, message string) {
	err := &diag.CompileError{Line: tok.Line, Message: message}
	switch {
	case tok.Kind == token.EOF:
		err.AtEnd = true
	case tok.Kind == token.ERROR:
		err.AtError = true
	default:
		err.Lexeme = tok.Lexeme(p.source)
	}
	p.diags.Report(err)
}
