package compiler

// fuse runs the IR optimizer's peephole pass over one page's entity
// stream (spec.md §4.7), replacing adjacent instruction pairs/triples with
// their fused form wherever doing so is always strictly faster (no
// push-then-immediately-pop round trip through the value stack). Fusion
// never looks across a Label: a label marks a potential jump target, and
// fusing across one could let control flow land mid-fused-instruction.
//
// Grounded on the teacher's asm.go-adjacent peephole helpers, generalized
// from Lua's opcode set to spec.md §4.7's fused-opcode family.
func fuse(entities []entity, consts []ConstValue) []entity {
	isOne := func(idx uint16) bool {
		return int(idx) < len(consts) && consts[idx].Kind == ValNumber && consts[idx].Number == 1
	}
	// a function constant keeps its own LOAD_CONST: only that opcode turns
	// the preceding SAVE_ENV into a Closure (see compileFun)
	isFunc := func(idx uint16) bool {
		return int(idx) < len(consts) && consts[idx].Kind == ValFunction
	}

	out := make([]entity, 0, len(entities))
	i := 0
	for i < len(entities) {
		if i+2 < len(entities) {
			a, okA := entities[i].(*Opcode1)
			b, okB := entities[i+1].(*Opcode1)
			c, okC := entities[i+2].(*Opcode1)
			if okA && okB && okC {
				switch {
				case a.Op == LOAD_SYMBOL && b.Op == LOAD_CONST && isOne(b.Arg) && c.Op == ADD && c.Arg == 2:
					out = append(out, &Opcode1{Op: INCREMENT, Arg: a.Arg})
					i += 3
					continue
				case a.Op == LOAD_CONST && isOne(a.Arg) && b.Op == LOAD_SYMBOL && c.Op == ADD && c.Arg == 2:
					// tie-break (spec.md §4.7): "+" fuses regardless of operand order.
					out = append(out, &Opcode1{Op: INCREMENT, Arg: b.Arg})
					i += 3
					continue
				case a.Op == LOAD_SYMBOL && b.Op == LOAD_CONST && isOne(b.Arg) && c.Op == SUB && c.Arg == 2:
					// "-" only fuses in this order: x - 1, never 1 - x.
					out = append(out, &Opcode1{Op: DECREMENT, Arg: a.Arg})
					i += 3
					continue
				}
			}
		}

		if i+1 < len(entities) {
			a, okA := entities[i].(*Opcode1)
			b, okB := entities[i+1].(*Opcode1)
			if okA && okB {
				switch {
				case a.Op == LOAD_CONST && !isFunc(a.Arg) && b.Op == LOAD_CONST:
					out = append(out, &Opcode2Args{Op: LOAD_CONST_LOAD_CONST, Arg1: a.Arg, Arg2: b.Arg})
					i += 2
					continue
				case a.Op == LOAD_CONST && !isFunc(a.Arg) && b.Op == STORE:
					out = append(out, &Opcode2Args{Op: LOAD_CONST_STORE, Arg1: a.Arg, Arg2: b.Arg})
					i += 2
					continue
				case a.Op == LOAD_SYMBOL && b.Op == STORE:
					out = append(out, &Opcode2Args{Op: STORE_FROM, Arg1: a.Arg, Arg2: b.Arg})
					i += 2
					continue
				case a.Op == GET_FIELD && b.Op == STORE:
					out = append(out, &Opcode2Args{Op: SET_VAL_FROM, Arg1: a.Arg, Arg2: b.Arg})
					i += 2
					continue
				}
			}
		}

		out = append(out, entities[i])
		i++
	}
	return out
}
