package builtins

import "github.com/arkscript-lang/arkscript/lang/machine"

// async and await implement spec.md §5's concurrency model: `(async f a b)`
// spawns f on its own ExecutionContext and returns immediately with a
// Future; `(await fut)` blocks the calling context until that Future
// resolves. Grounded on original_source/include/Ark/VM/Future.hpp's
// spawn/get split, adapted onto machine.VM.Spawn/Future.Await rather than
// a std::future.
func init() {
	Registry.Register("async",
		func(args []machine.Value, vm *machine.VM) (machine.Value, error) {
			return vm.Spawn(args[0], args[1:]), nil
		},
		Contract{Arguments: []Typedef{
			{Name: "fn", Types: []string{"function", "closure"}},
			{Name: "args", Variadic: true},
		}},
	)

	Registry.Register("await",
		func(args []machine.Value, vm *machine.VM) (machine.Value, error) {
			fut, ok := machine.Deref(args[0]).(*machine.Future)
			if !ok {
				return nil, machine.NewRuntimeError(machine.TypeError, "await: argument is not a future")
			}
			return fut.Await()
		},
		Contract{Arguments: []Typedef{{Name: "future", Types: []string{"future"}}}},
	)
}
