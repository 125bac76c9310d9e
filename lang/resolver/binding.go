package resolver

import "github.com/arkscript-lang/arkscript/lang/ast"

// Binding records what a name resolves to within a block. ArkScript's
// Closure captures its whole enclosing Scope by reference (spec.md §3),
// unlike the teacher's Lua resolver which must classify each identifier as
// local/cell/free to build per-closure upvalue lists — that distinction
// doesn't exist here, so Binding only needs to remember mutability and the
// declaring node for diagnostics.
type Binding struct {
	Name    string
	Mutable bool
	Decl    *ast.Node
}

// block is one lexical scope: the file's top-level, a `begin`, or a `fun`
// body.
type block struct {
	parent   *block
	bindings map[string]*Binding
}

func (b *block) lookup(name string) (*Binding, bool) {
	for cur := b; cur != nil; cur = cur.parent {
		if bd, ok := cur.bindings[name]; ok {
			return bd, true
		}
	}
	return nil, false
}
