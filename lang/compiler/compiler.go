// Compiler lowering: resolved AST -> linked Program. Grounded on the
// teacher's compiler.go pcomp/fcomp split (one compiler-state struct
// walking a tree, one page/Funcode per function), adapted from Lua's
// stack-frame-with-locals model to ArkScript's flat symbol-id scope chain
// and page-addressed closures (spec.md §3/§4.7/§4.9).
package compiler

import (
	"fmt"

	"github.com/arkscript-lang/arkscript/lang/ast"
)

// BuiltinIndex looks up a built-in function's registry index by name,
// reporting ok=false if name is not a built-in. Supplied by the caller
// (normally lang/builtins.Registry.Index) so that lang/compiler does not
// need to import lang/builtins directly.
type BuiltinIndex func(name string) (idx uint16, ok bool)

// operatorOps maps a call head's Symbol/Keyword text to the fixed-arity
// operator opcode it lowers to directly, bypassing the general CALL
// convention (spec.md §4.7's ADD..NOT range).
var operatorOps = map[string]Opcode{
	"+": ADD, "-": SUB, "*": MUL, "/": DIV, "mod": MOD,
	">": GT, "<": LT, "<=": LE, ">=": GE, "!=": NEQ, "=": EQ,
	"len": LEN, "empty?": EMPTY, "tail": TAIL, "head": HEAD, "nil?": ISNIL,
	"assert": ASSERT, "toNumber": TO_NUM, "toString": TO_STR, "@": AT,
	"and": AND, "or": OR, "not": NOT,
}

// listOps maps a call head's text to the variadic-arity list opcode it
// lowers to, popping len(args) operands (spec.md §4.7).
var listOps = map[string]Opcode{
	"list": LIST, "append": APPEND, "append!": APPEND_IN_PLACE,
	"concat": CONCAT, "concat!": CONCAT_IN_PLACE,
}

// listOpsWithBase marks the list opcodes whose lang/machine implementation
// pops a base list separately from the Arg items it appends/concatenates
// onto it (see the listOps emission site).
var listOpsWithBase = map[Opcode]bool{
	APPEND: true, APPEND_IN_PLACE: true, CONCAT_IN_PLACE: true,
}

// Compile lowers root (the parser's synthetic begin-list, after import
// solving, macro expansion, optimization and name resolution) into a
// linked Program. builtinIndex resolves call heads that name a built-in;
// pass nil to compile with no built-ins recognized (every Symbol reference
// lowers to LOAD_SYMBOL, letting the VM's scope chain supply the value).
func Compile(root *ast.Node, builtinIndex BuiltinIndex) (*Program, error) {
	if builtinIndex == nil {
		builtinIndex = func(string) (uint16, bool) { return 0, false }
	}
	c := &compiler{
		symIdx:  make(map[string]uint16),
		numIdx:  make(map[float64]uint16),
		strIdx:  make(map[string]uint16),
		builtin: builtinIndex,
	}

	main := c.newPage()
	pc := &pcomp{c: c, pg: main, scopes: []scope{{}}}
	for _, child := range root.Tail() {
		pc.compileDiscard(child)
	}
	main.emit(HALT, 0)

	return c.link()
}

// scope tracks which names are bound within the page currently being
// compiled, purely to decide LOAD_SYMBOL vs BUILTIN for a Symbol reference
// — the compiler does not need resolver.Binding's mutability bookkeeping,
// just presence, since lang/resolver already validated every reference.
type scope map[string]bool

type compiler struct {
	symbols []string
	symIdx  map[string]uint16

	values []ConstValue
	numIdx map[float64]uint16
	strIdx map[string]uint16

	pages        []*page
	pageParams   [][]uint16
	pageVariadic []bool
	builtin      BuiltinIndex
}

func (c *compiler) newPage() *page {
	p := &page{addr: uint16(len(c.pages))}
	c.pages = append(c.pages, p)
	c.pageParams = append(c.pageParams, nil)
	c.pageVariadic = append(c.pageVariadic, false)
	return p
}

func (c *compiler) symbolID(name string) uint16 {
	if id, ok := c.symIdx[name]; ok {
		return id
	}
	id := uint16(len(c.symbols))
	c.symbols = append(c.symbols, name)
	c.symIdx[name] = id
	return id
}

func (c *compiler) numberConst(v float64) uint16 {
	if id, ok := c.numIdx[v]; ok {
		return id
	}
	id := uint16(len(c.values))
	c.values = append(c.values, ConstValue{Kind: ValNumber, Number: v})
	c.numIdx[v] = id
	return id
}

func (c *compiler) stringConst(s string) uint16 {
	if id, ok := c.strIdx[s]; ok {
		return id
	}
	id := uint16(len(c.values))
	c.values = append(c.values, ConstValue{Kind: ValString, Str: s})
	c.strIdx[s] = id
	return id
}

func (c *compiler) functionConst(page uint16) uint16 {
	id := uint16(len(c.values))
	c.values = append(c.values, ConstValue{Kind: ValFunction, Page: page})
	return id
}

func (c *compiler) link() (*Program, error) {
	prog := &Program{Symbols: c.symbols, Values: c.values, Pages: make([][]Instr, len(c.pages)), PageParams: c.pageParams, PageVariadic: c.pageVariadic}
	for i, p := range c.pages {
		p.entities = fuse(p.entities, c.values)
		instrs, err := p.link()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		prog.Pages[i] = instrs
	}
	return prog, nil
}

// pcomp compiles one page (main, or one function body) into entities.
type pcomp struct {
	c      *compiler
	pg     *page
	scopes []scope
}

func (pc *pcomp) push() { pc.scopes = append(pc.scopes, scope{}) }
func (pc *pcomp) pop()  { pc.scopes = pc.scopes[:len(pc.scopes)-1] }

func (pc *pcomp) bind(name string) {
	pc.scopes[len(pc.scopes)-1][name] = true
}

func (pc *pcomp) isBound(name string) bool {
	for i := len(pc.scopes) - 1; i >= 0; i-- {
		if pc.scopes[i][name] {
			return true
		}
	}
	return false
}

// compileDiscard compiles n for its side effects, dropping the value it
// leaves on the stack (used for every statement but the last in a begin).
func (pc *pcomp) compileDiscard(n *ast.Node) {
	pc.compile(n)
	pc.pg.emit(POP, 0)
}

// compile lowers n, leaving exactly one value on the stack.
func (pc *pcomp) compile(n *ast.Node) {
	if n == nil {
		pc.pg.emit(LIST, 0) // empty list stands in for "no value"
		return
	}

	switch n.Kind {
	case ast.Number:
		pc.pg.emit(LOAD_CONST, pc.c.numberConst(n.Num))
	case ast.String:
		pc.pg.emit(LOAD_CONST, pc.c.stringConst(n.Str))
	case ast.Symbol:
		pc.compileSymbolRef(n.Str)
	case ast.Capture:
		pc.compileSymbolRef(n.Str)
	case ast.Field:
		pc.pg.emit(GET_FIELD, pc.c.symbolID(n.Str))
	case ast.Unused:
		pc.pg.emit(LIST, 0)
	case ast.List:
		pc.compileList(n)
	case ast.Macro:
		// a surviving Macro node means expansion left it unrecognized;
		// nothing sound to emit for it.
		panic(fmt.Sprintf("%s:%d:%d: internal error: unexpanded macro node reached the compiler", n.Filename, n.Line, n.Col))
	default:
		panic(fmt.Sprintf("%s:%d:%d: internal error: unexpected node kind %s in expression position", n.Filename, n.Line, n.Col, n.Kind))
	}
}

func (pc *pcomp) compileSymbolRef(name string) {
	if !pc.isBound(name) {
		if idx, ok := pc.c.builtin(name); ok {
			pc.pg.emit(BUILTIN, idx)
			return
		}
	}
	pc.pg.emit(LOAD_SYMBOL, pc.c.symbolID(name))
}

func (pc *pcomp) compileList(n *ast.Node) {
	if len(n.Children) == 0 {
		pc.pg.emit(LIST, 0)
		return
	}

	head := n.Head()
	if head.Kind == ast.Keyword {
		pc.compileKeywordForm(n, head.Str)
		return
	}

	name := head.Str
	if head.Kind == ast.Symbol {
		if op, ok := operatorOps[name]; ok {
			for _, a := range n.Tail() {
				pc.compile(a)
			}
			pc.pg.emit(op, uint16(len(n.Tail())))
			return
		}
		if op, ok := listOps[name]; ok {
			for _, a := range n.Tail() {
				pc.compile(a)
			}
			// APPEND/APPEND_IN_PLACE/CONCAT_IN_PLACE pop their base list
			// separately from the lang/machine op's Arg items (the base is
			// the form's first operand, pushed first); LIST and plain
			// CONCAT have no distinct base, so Arg covers every operand.
			count := uint16(len(n.Tail()))
			if listOpsWithBase[op] {
				count--
			}
			pc.pg.emit(op, count)
			if op == APPEND_IN_PLACE || op == CONCAT_IN_PLACE {
				pc.pg.emit(LIST, 0) // the in-place ops push nothing; result is unobservable
			}
			return
		}
	}

	// general call convention (spec.md §4.9): push args left-to-right,
	// then the callee, then CALL argc.
	args := n.Tail()
	for _, a := range args {
		pc.compile(a)
	}
	pc.compile(head)
	pc.pg.emit(CALL, uint16(len(args)))
}

func (pc *pcomp) compileKeywordForm(n *ast.Node, kw string) {
	switch kw {
	case "let", "mut":
		name, init := n.Children[1], n.Children[2]
		pc.compile(init)
		id := pc.c.symbolID(name.Str)
		if kw == "let" {
			pc.pg.emit(LET, id)
		} else {
			pc.pg.emit(MUT, id)
		}
		pc.bind(name.Str)
		pc.pg.emit(LIST, 0) // let/mut is an expression; result is unobservable
	case "set":
		name, val := n.Children[1], n.Children[2]
		pc.compile(val)
		pc.pg.emit(STORE, pc.c.symbolID(name.Str))
		pc.pg.emit(LIST, 0)
	case "del":
		name := n.Children[1]
		pc.pg.emit(DEL, pc.c.symbolID(name.Str))
		pc.pg.emit(LIST, 0)
	case "begin":
		pc.push()
		pc.compileBody(n.Tail())
		pc.pop()
	case "if":
		pc.compileIf(n)
	case "while":
		pc.compileWhile(n)
	case "fun":
		pc.compileFun(n)
	case "import":
		pc.pg.emit(LIST, 0) // resolved away by the ImportSolver before this pass runs
	default:
		panic(fmt.Sprintf("%s:%d:%d: internal error: unhandled keyword %q in compiler", n.Filename, n.Line, n.Col, kw))
	}
}

// compileBody compiles a sequence of forms, leaving only the last value's
// result on the stack (or an empty list for an empty sequence).
func (pc *pcomp) compileBody(forms []*ast.Node) {
	if len(forms) == 0 {
		pc.pg.emit(LIST, 0)
		return
	}
	for _, f := range forms[:len(forms)-1] {
		pc.compileDiscard(f)
	}
	pc.compile(forms[len(forms)-1])
}

func (pc *pcomp) compileIf(n *ast.Node) {
	cond, then := n.Children[1], n.Children[2]
	var els *ast.Node
	if len(n.Children) == 4 {
		els = n.Children[3]
	}

	lelse := pc.pg.newLabel()
	lend := pc.pg.newLabel()

	pc.compile(cond)
	pc.pg.emitGotoIfFalse(lelse)
	pc.compile(then)
	pc.pg.emitGoto(lend)
	pc.pg.emitLabel(lelse)
	if els != nil {
		pc.compile(els)
	} else {
		pc.pg.emit(LIST, 0)
	}
	pc.pg.emitLabel(lend)
}

func (pc *pcomp) compileWhile(n *ast.Node) {
	cond, body := n.Children[1], n.Children[2]

	lstart := pc.pg.newLabel()
	lend := pc.pg.newLabel()

	pc.pg.emitLabel(lstart)
	pc.compile(cond)
	pc.pg.emitGotoIfFalse(lend)
	pc.compileDiscard(body)
	pc.pg.emitGoto(lstart)
	pc.pg.emitLabel(lend)
	pc.pg.emit(LIST, 0)
}

// compileFun lowers a (fun (args…) body) into its own page plus, in the
// enclosing page, the instruction sequence that builds a closure over it.
//
// Per spec.md §4.9, CALL itself binds the argument window into the new
// frame's scope — a Symbol/Spread parameter needs no binding instruction
// inside the function's own page, only an entry in the compiler's
// name-resolution scope so references to it lower to LOAD_SYMBOL instead
// of BUILTIN. A Capture (&name) parameter is different: per
// lang/resolver's walkFun it is a *use* of an outer variable, not a new
// parameter — it asks the closure being built to capture that outer
// binding by value of reference, emitted here as CAPTURE id in the
// enclosing page before SAVE_ENV. The VM combines the most recent
// SAVE_ENV with a ValFunction constant to build the Closure value.
func (pc *pcomp) compileFun(n *ast.Node) {
	params, body := n.Children[1], n.Children[2]

	fp := pc.c.newPage()
	fc := &pcomp{c: pc.c, pg: fp, scopes: []scope{{}}}

	var captures []string
	var paramIDs []uint16
	var lastIsSpread bool
	for _, p := range params.Children {
		switch p.Kind {
		case ast.Symbol, ast.Spread:
			fc.bind(p.Str)
			paramIDs = append(paramIDs, pc.c.symbolID(p.Str))
			lastIsSpread = p.Kind == ast.Spread
		case ast.Capture:
			captures = append(captures, p.Str)
			fc.bind(p.Str)
		}
	}
	pc.c.pageParams[fp.addr] = paramIDs
	pc.c.pageVariadic[fp.addr] = lastIsSpread
	fc.compile(body)
	fp.emit(RET, 0)

	for _, name := range captures {
		pc.pg.emit(CAPTURE, pc.c.symbolID(name))
	}
	pc.pg.emit(SAVE_ENV, 0)
	pc.pg.emit(LOAD_CONST, pc.c.functionConst(fp.addr))
}
