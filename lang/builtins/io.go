package builtins

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arkscript-lang/arkscript/lang/machine"
)

// IO registers print/puts/input and the io:* built-ins (original_source's
// Ark::internal::Builtins::IO namespace), using vm's configured Stdio the
// same way the teacher's maincmd threads mainer.Stdio through rather than
// reaching for the real os.Stdin/Stdout directly (see Stdio in lang/machine/vm.go).
func init() {
	Registry.Register("print", func(args []machine.Value, vm *machine.VM) (machine.Value, error) {
		writePrint(vm, args, "\n")
		return machine.Nil, nil
	}, Contract{Arguments: []Typedef{{Name: "args", Variadic: true}}})

	Registry.Register("puts", func(args []machine.Value, vm *machine.VM) (machine.Value, error) {
		writePrint(vm, args, "")
		return machine.Nil, nil
	}, Contract{Arguments: []Typedef{{Name: "args", Variadic: true}}})

	Registry.Register("input", func(args []machine.Value, vm *machine.VM) (machine.Value, error) {
		if len(args) == 1 {
			fmt.Fprint(vm.Stdio.Stdout, args[0].String())
		}
		scanner := bufio.NewScanner(vm.Stdio.Stdin)
		if !scanner.Scan() {
			return machine.ArkString(""), nil
		}
		return machine.ArkString(scanner.Text()), nil
	}, Contract{Arguments: []Typedef{}}, Contract{Arguments: []Typedef{{Name: "prompt", Types: []string{"string"}}}})

	Registry.Register("io:writeFile", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		path := string(args[0].(machine.ArkString))
		mode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		content := args[1].String()
		if len(args) == 3 {
			mode = os.O_CREATE | os.O_WRONLY | os.O_APPEND
			content = args[2].String()
		}
		f, err := os.OpenFile(path, mode, 0o644)
		if err != nil {
			return nil, machine.NewRuntimeError(machine.ModuleError, "io:writeFile: %s", err)
		}
		defer f.Close()
		if _, err := f.WriteString(content); err != nil {
			return nil, machine.NewRuntimeError(machine.ModuleError, "io:writeFile: %s", err)
		}
		return machine.Nil, nil
	},
		Contract{Arguments: []Typedef{{Name: "path", Types: []string{"string"}}, {Name: "content", Types: []string{"string"}}}},
		Contract{Arguments: []Typedef{{Name: "path", Types: []string{"string"}}, {Name: "mode", Types: []string{"string"}}, {Name: "content", Types: []string{"string"}}}},
	)

	Registry.Register("io:readFile", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		path := string(args[0].(machine.ArkString))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, machine.NewRuntimeError(machine.ModuleError, "io:readFile: %s", err)
		}
		return machine.ArkString(data), nil
	}, Contract{Arguments: []Typedef{{Name: "path", Types: []string{"string"}}}})

	Registry.Register("io:fileExists?", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		info, err := os.Stat(string(args[0].(machine.ArkString)))
		return machine.Bool(err == nil && !info.IsDir()), nil
	}, Contract{Arguments: []Typedef{{Name: "path", Types: []string{"string"}}}})

	Registry.Register("io:listFiles", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		entries, err := os.ReadDir(string(args[0].(machine.ArkString)))
		if err != nil {
			return nil, machine.NewRuntimeError(machine.ModuleError, "io:listFiles: %s", err)
		}
		out := make([]machine.Value, len(entries))
		for i, e := range entries {
			out[i] = machine.ArkString(e.Name())
		}
		return machine.NewList(out...), nil
	}, Contract{Arguments: []Typedef{{Name: "path", Types: []string{"string"}}}})

	Registry.Register("io:dir?", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		info, err := os.Stat(string(args[0].(machine.ArkString)))
		return machine.Bool(err == nil && info.IsDir()), nil
	}, Contract{Arguments: []Typedef{{Name: "path", Types: []string{"string"}}}})

	Registry.Register("io:makeDir", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		if err := os.MkdirAll(string(args[0].(machine.ArkString)), 0o755); err != nil {
			return nil, machine.NewRuntimeError(machine.ModuleError, "io:makeDir: %s", err)
		}
		return machine.Nil, nil
	}, Contract{Arguments: []Typedef{{Name: "path", Types: []string{"string"}}}})

	Registry.Register("io:removeFiles", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		for _, a := range args {
			path := string(a.(machine.ArkString))
			if err := os.Remove(filepath.Clean(path)); err != nil {
				return nil, machine.NewRuntimeError(machine.ModuleError, "io:removeFiles: %s", err)
			}
		}
		return machine.Nil, nil
	}, Contract{Arguments: []Typedef{{Name: "paths", Types: []string{"string"}, Variadic: true}}})
}

func writePrint(vm *machine.VM, args []machine.Value, sep string) {
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(vm.Stdio.Stdout, " ")
		}
		fmt.Fprint(vm.Stdio.Stdout, machine.Deref(a).String())
	}
	fmt.Fprint(vm.Stdio.Stdout, sep)
}
