package machine

import "fmt"

// Scope is an ordered sequence of (symbol_id, value) pairs plus two hint
// fields used to short-circuit negative lookups (spec.md §3). Insertion
// appends; lookup is linear, consulting minID/maxID first. Shared by
// pointer between a Closure and any enclosing ExecutionContext.
//
// Grounded on the teacher's cell.go (a *cell is a shared, heap-allocated
// box for one captured free variable) and frame.go's locals slice, merged
// into one type since ArkScript closures share their *entire* enclosing
// scope (spec.md §3) rather than boxing individual upvalues the way the
// teacher's Lua-derived machine does.
type Scope struct {
	ids    []uint16
	values []Value
	minID  uint16
	maxID  uint16
	parent *Scope
}

// NewScope returns an empty scope with parent as its enclosing scope (nil
// for a top-level scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, minID: ^uint16(0), maxID: 0}
}

// Bind appends a new (id, value) pair. Per spec.md §3's invariant
// (min_id ≤ every stored id ≤ max_id), the hint fields widen to include id.
func (s *Scope) Bind(id uint16, v Value) {
	s.ids = append(s.ids, id)
	s.values = append(s.values, v)
	if id < s.minID {
		s.minID = id
	}
	if id > s.maxID {
		s.maxID = id
	}
}

// hasRange reports whether id could possibly be stored in s, from the
// hint fields alone (a fast negative check, not a guarantee of presence).
func (s *Scope) hasRange(id uint16) bool {
	return len(s.ids) > 0 && id >= s.minID && id <= s.maxID
}

// find returns the index of id's most recent binding within s only (not
// its parent chain), or -1. Scans back-to-front so a later Bind of an
// already-present id shadows the earlier one within the same scope.
func (s *Scope) find(id uint16) int {
	if !s.hasRange(id) {
		return -1
	}
	for i := len(s.ids) - 1; i >= 0; i-- {
		if s.ids[i] == id {
			return i
		}
	}
	return -1
}

// Lookup scans from this scope outward through parents — innermost-first
// shadowing (spec.md §4.9) — and returns the bound value, or (nil, false).
func (s *Scope) Lookup(id uint16) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if i := cur.find(id); i >= 0 {
			return cur.values[i], true
		}
	}
	return nil, false
}

// Store overwrites the nearest enclosing binding of id with v, returning
// false if no such binding exists anywhere in the chain (STORE on an
// undeclared id is a VM invariant breach, spec.md §4.9/§7).
func (s *Scope) Store(id uint16, v Value) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if i := cur.find(id); i >= 0 {
			cur.values[i] = v
			return true
		}
	}
	return false
}

// Delete removes id from the nearest scope that declares it (DEL opcode).
func (s *Scope) Delete(id uint16) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if i := cur.find(id); i >= 0 {
			cur.ids = append(cur.ids[:i], cur.ids[i+1:]...)
			cur.values = append(cur.values[:i], cur.values[i+1:]...)
			return true
		}
	}
	return false
}

// Equal reports whether s and o are the same scope or bind the same symbol
// ids in the same order. Bound values are not compared: two scopes with
// the same ids but different values are reported equal.
func (s *Scope) Equal(o *Scope) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || len(s.ids) != len(o.ids) {
		return false
	}
	for i := range s.ids {
		if s.ids[i] != o.ids[i] {
			return false
		}
	}
	return true
}

func (s *Scope) String() string {
	return fmt.Sprintf("<scope %d bindings>", len(s.ids))
}
