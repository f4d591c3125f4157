package bytecode

import (
	"strconv"

	"github.com/sexpvm/sexpvm/internal/ast"
	"github.com/sexpvm/sexpvm/internal/diag"
	"github.com/sexpvm/sexpvm/internal/token"
	"github.com/sexpvm/sexpvm/internal/value"
)

// leafEmitter emits the bytecode for tok when tok appears as a leaf, or as
// the head of a standard (non-special-form) internal node once its operands
// have already been emitted.
type leafEmitter func(c *Compiler, tok token.Token)

// leafDispatch is ordinal-indexed by token.Kind, mirroring the generator's
// fixed-size dispatch table. Entries left nil are a no-op: nothing is emitted
// or logged, and it is never a compile error - a stray KEYWORD or punctuator
// leaf is inert.
var leafDispatch [token.NumKinds]leafEmitter

func init() {
	leafDispatch[token.NIL] = func(c *Compiler, tok token.Token) { c.chunk.WriteOp(OpNil, tok.Line) }
	leafDispatch[token.TRUE] = func(c *Compiler, tok token.Token) { c.chunk.WriteOp(OpTrue, tok.Line) }
	leafDispatch[token.FALSE] = func(c *Compiler, tok token.Token) { c.chunk.WriteOp(OpFalse, tok.Line) }

	leafDispatch[token.FLOAT] = func(c *Compiler, tok token.Token) {
		lexeme := tok.Lexeme(c.source)
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			c.reportAt(tok, "Invalid float literal '"+lexeme+"'.")
			return
		}
		c.emitConstant(value.ConstFloatValue(f), tok.Line)
	}
	leafDispatch[token.INT] = func(c *Compiler, tok token.Token) {
		lexeme := tok.Lexeme(c.source)
		i, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			c.reportAt(tok, "Invalid int literal '"+lexeme+"'.")
			return
		}
		c.emitConstant(value.ConstIntValue(i), tok.Line)
	}
	leafDispatch[token.STRING] = func(c *Compiler, tok token.Token) {
		lexeme := tok.Lexeme(c.source)
		// The closing quote is included in length; strip both delimiters.
		text := ""
		if len(lexeme) >= 2 {
			text = lexeme[1 : len(lexeme)-1]
		}
		c.emitConstant(value.ConstStringValue(text), tok.Line)
	}
	leafDispatch[token.IDENTIFIER] = func(c *Compiler, tok token.Token) {
		ix := c.chunk.AddConstant(value.ConstSymbolValue(tok.Lexeme(c.source)))
		c.chunk.WriteOp(OpSym, tok.Line)
		c.chunk.Write(ix, tok.Line)
	}

	leafDispatch[token.PLUS] = opEmitter(OpAdd)
	leafDispatch[token.MINUS] = opEmitter(OpSubtract)
	leafDispatch[token.STAR] = opEmitter(OpMultiply)
	leafDispatch[token.SLASH] = opEmitter(OpDivide)
	leafDispatch[token.NOT] = opEmitter(OpNot)
	leafDispatch[token.EQUAL] = opEmitter(OpEqual)
	leafDispatch[token.LESS] = opEmitter(OpLt)
	leafDispatch[token.GREATER] = opEmitter(OpGt)
	leafDispatch[token.LESSEQUAL] = opEmitter(OpLte)
	leafDispatch[token.GREATEREQUAL] = opEmitter(OpGte)
	leafDispatch[token.LEN] = opEmitter(OpLen)
	leafDispatch[token.PRINT] = opEmitter(OpPrint)
	leafDispatch[token.DEF] = opEmitter(OpDef)
}

func opEmitter(op Op) leafEmitter {
	return func(c *Compiler, tok token.Token) { c.chunk.WriteOp(op, tok.Line) }
}

// operatorArity gives the exact number of operands a binary or unary
// operator accepts. Arity mismatches are rejected at compile time: the
// source's apparent support for variadic arithmetic is not carried into
// this implementation (see the arity decision in the design notes).
var operatorArity = map[token.Kind]int{
	token.PLUS:         2,
	token.MINUS:        2,
	token.STAR:         2,
	token.SLASH:        2,
	token.EQUAL:        2,
	token.LESS:         2,
	token.GREATER:      2,
	token.LESSEQUAL:    2,
	token.GREATEREQUAL: 2,
	token.NOT:          1,
	token.LEN:          1,
	token.PRINT:        1,
}

// Compiler walks a parsed Tree and emits a Chunk.
type Compiler struct {
	source string
	tree   *ast.Tree
	chunk  *Chunk
	diags  diag.Bag
}

// Compile generates a chunk from tree. On a diagnostic-producing input the
// returned chunk is still the generator's best effort and must not be
// executed; callers should refuse to run when the returned error is
// non-nil, per the compile-error contract.
func Compile(source string, tree *ast.Tree) (*Chunk, error) {
	c := &Compiler{source: source, tree: tree, chunk: NewChunk()}

	top := tree.Children(ast.Root)
	if len(top) == 0 {
		// An empty program has no value to return; return NIL rather than
		// underflow the stack at OP_RETURN.
		c.chunk.WriteOp(OpNil, 0)
	}
	for i, node := range top {
		c.expression(node)
		if i != len(top)-1 {
			c.chunk.WriteOp(OpPop, 0)
		}
		c.diags.Synchronize()
	}
	c.chunk.WriteOp(OpReturn, 0)

	return c.chunk, c.diags.Error()
}

// expression emits one parsed expression: either a leaf token or an
// internal LEFTPAREN node, dispatching to a special form when the head
// token requires non-uniform lowering.
func (c *Compiler) expression(node ast.NodeID) {
	n := c.tree.Node(node)
	if n.Token.Kind != token.LEFTPAREN {
		c.emitToken(n.Token)
		return
	}

	children := c.tree.Children(node)
	if len(children) == 0 {
		c.reportAt(n.Token, "Expect expression.")
		return
	}
	headTok := c.tree.Node(children[0]).Token

	switch headTok.Kind {
	case token.DEF:
		c.compileDef(headTok, children)
	case token.IF:
		c.compileIf(headTok, children)
	default:
		c.compileStandard(headTok, children)
	}
}

// compileStandard lowers the default form: every operand after the head is
// emitted in source order, then the head's own opcode.
func (c *Compiler) compileStandard(headTok token.Token, children []ast.NodeID) {
	operands := children[1:]
	if arity, ok := operatorArity[headTok.Kind]; ok && len(operands) != arity {
		c.reportAt(headTok, operatorArityMessage(headTok, arity, len(operands)))
		return
	}
	for _, opnd := range operands {
		c.expression(opnd)
	}
	c.emitToken(headTok)
}

func operatorArityMessage(headTok token.Token, want, got int) string {
	return "'" + headTok.Kind.String() + "' requires exactly " + strconv.Itoa(want) + " operand(s), got " + strconv.Itoa(got) + "."
}

// compileDef lowers (def <identifier> <value>).
func (c *Compiler) compileDef(headTok token.Token, children []ast.NodeID) {
	if len(children) != 3 {
		c.reportAt(headTok, "Expect (def <identifier> <value>).")
		return
	}
	identTok := c.tree.Node(children[1]).Token
	if identTok.Kind != token.IDENTIFIER {
		c.reportAt(identTok, "Expect identifier after 'def'.")
		return
	}

	ix := c.chunk.AddConstant(value.ConstSymbolValue(identTok.Lexeme(c.source)))
	c.chunk.WriteOp(OpDefSym, identTok.Line)
	c.chunk.Write(ix, identTok.Line)

	c.expression(children[2])

	c.chunk.WriteOp(OpDef, headTok.Line)
}

// compileIf lowers (if <cond> <then> [<else>]) with forward-reference jump
// patching: the placeholder operand byte's position is recorded at emission
// time and overwritten once the branch target is known.
func (c *Compiler) compileIf(headTok token.Token, children []ast.NodeID) {
	if len(children) < 3 || len(children) > 4 {
		c.reportAt(headTok, "Expect (if <cond> <then> [<else>]).")
		return
	}

	c.expression(children[1]) // condition

	c.chunk.WriteOp(OpJmpIfFalse, headTok.Line)
	thenJumpOperand := len(c.chunk.Code)
	c.chunk.Write(0, headTok.Line) // placeholder

	c.expression(children[2]) // then-branch

	c.chunk.WriteOp(OpJmp, headTok.Line)
	elseJumpOperand := len(c.chunk.Code)
	c.chunk.Write(0, headTok.Line) // placeholder

	c.chunk.PatchJump(thenJumpOperand)

	if len(children) == 4 {
		c.expression(children[3])
	} else {
		c.chunk.WriteOp(OpNil, headTok.Line)
	}

	c.chunk.PatchJump(elseJumpOperand)
}

// emitToken runs tok's leaf-dispatch entry, if any. Kinds with no entry are
// a deliberate no-op.
func (c *Compiler) emitToken(tok token.Token) {
	if int(tok.Kind) < 0 || int(tok.Kind) >= token.NumKinds {
		return
	}
	if fn := leafDispatch[tok.Kind]; fn != nil {
		fn(c, tok)
	}
}

func (c *Compiler) emitConstant(cst value.Constant, line int) {
	ix := c.chunk.AddConstant(cst)
	c.chunk.WriteOp(OpConstant, line)
	c.chunk.Write(ix, line)
}

func (c *Compiler) reportAt(tok token.Token, message string) {
	c.diags.Report(&diag.CompileError{
		Line:    tok.Line,
		Message: message,
		Lexeme:  tok.Lexeme(c.source),
	})
}
