package builtins

import (
	"sort"

	"github.com/arkscript-lang/arkscript/lang/machine"
)

// List registers the list:* built-ins (original_source's
// Ark::internal::Builtins::List namespace).
func init() {
	anyList := []Typedef{{Name: "lst", Types: []string{"list"}}}

	Registry.Register("list:reverse", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		l := args[0].(*machine.List)
		out := make([]machine.Value, len(l.Items))
		for i, v := range l.Items {
			out[len(l.Items)-1-i] = v
		}
		return machine.NewList(out...), nil
	}, Contract{Arguments: anyList})

	Registry.Register("list:find", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		l := args[0].(*machine.List)
		for i, v := range l.Items {
			if machine.ValuesEqual(machine.Deref(v), machine.Deref(args[1])) {
				return machine.Number(i), nil
			}
		}
		return machine.Number(-1), nil
	}, Contract{Arguments: []Typedef{{Name: "lst", Types: []string{"list"}}, {Name: "value"}}})

	Registry.Register("list:removeAt", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		l := args[0].(*machine.List)
		i := int(args[1].(machine.Number))
		if i < 0 || i >= len(l.Items) {
			return nil, machine.NewRuntimeError(machine.IndexError, "list:removeAt: index %d out of range", i)
		}
		out := append([]machine.Value{}, l.Items[:i]...)
		out = append(out, l.Items[i+1:]...)
		return machine.NewList(out...), nil
	}, Contract{Arguments: []Typedef{{Name: "lst", Types: []string{"list"}}, {Name: "index", Types: []string{"number"}}}})

	Registry.Register("list:slice", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		l := args[0].(*machine.List)
		from := int(args[1].(machine.Number))
		to := int(args[2].(machine.Number))
		step := int(args[3].(machine.Number))
		if from < 0 || to > len(l.Items) || from > to || step <= 0 {
			return nil, machine.NewRuntimeError(machine.IndexError, "list:slice: invalid bounds [%d:%d:%d] for a %d-element list", from, to, step, len(l.Items))
		}
		var out []machine.Value
		for i := from; i < to; i += step {
			out = append(out, l.Items[i])
		}
		return machine.NewList(out...), nil
	}, Contract{Arguments: []Typedef{
		{Name: "lst", Types: []string{"list"}},
		{Name: "from", Types: []string{"number"}},
		{Name: "to", Types: []string{"number"}},
		{Name: "step", Types: []string{"number"}},
	}})

	Registry.Register("list:sort", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		l := args[0].(*machine.List)
		out := append([]machine.Value{}, l.Items...)
		sort.SliceStable(out, func(i, j int) bool {
			ni, iok := machine.Deref(out[i]).(machine.Number)
			nj, jok := machine.Deref(out[j]).(machine.Number)
			if iok && jok {
				return ni < nj
			}
			return out[i].String() < out[j].String()
		})
		return machine.NewList(out...), nil
	}, Contract{Arguments: anyList})

	Registry.Register("list:fill", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		n := int(args[0].(machine.Number))
		if n < 0 {
			return nil, machine.NewRuntimeError(machine.IndexError, "list:fill: negative count %d", n)
		}
		out := make([]machine.Value, n)
		for i := range out {
			out[i] = args[1]
		}
		return machine.NewList(out...), nil
	}, Contract{Arguments: []Typedef{{Name: "count", Types: []string{"number"}}, {Name: "value"}}})

	Registry.Register("list:setAt", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		l := args[0].(*machine.List)
		i := int(args[1].(machine.Number))
		if i < 0 || i >= len(l.Items) {
			return nil, machine.NewRuntimeError(machine.IndexError, "list:setAt: index %d out of range", i)
		}
		out := append([]machine.Value{}, l.Items...)
		out[i] = args[2]
		return machine.NewList(out...), nil
	}, Contract{Arguments: []Typedef{
		{Name: "lst", Types: []string{"list"}},
		{Name: "index", Types: []string{"number"}},
		{Name: "value"},
	}})
}
