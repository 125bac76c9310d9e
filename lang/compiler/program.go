package compiler

// ValueKind tags a Program's value-table entry (spec.md §3's VAL_TABLE
// type-tag byte).
type ValueKind uint8

const (
	ValNumber ValueKind = iota + 1
	ValString
	ValFunction
)

// ConstValue is one value-table entry.
type ConstValue struct {
	Kind   ValueKind
	Number float64
	Str    string
	Page   uint16 // ValFunction
}

// Program is the fully-linked output of Compile: a symbol table, a value
// table, and one instruction slice per page (page 0 is always main).
// Grounded on the teacher's compiler.go Program/Funcode pair, collapsed to
// a single flat type since ArkScript pages don't need Lua's separate
// Locals/Freevars/Cells bookkeeping (lang/resolver no longer computes it,
// see DESIGN.md).
type Program struct {
	Symbols []string
	Values  []ConstValue
	Pages   [][]Instr

	// PageParams records, for each function page (empty for main/page 0),
	// the symbol ids CALL should bind the argument window to, in order —
	// consulted by lang/machine instead of emitting an explicit binding
	// instruction per parameter (see DESIGN.md's lang/compiler entry on
	// why Symbol/Spread parameters need no bytecode of their own).
	PageParams [][]uint16

	// PageVariadic reports, per page, whether its last PageParams entry is
	// a Spread parameter that should absorb any extra arguments as a
	// list, rather than a plain Symbol parameter an exact-arity call must
	// satisfy one-for-one.
	PageVariadic []bool
}
