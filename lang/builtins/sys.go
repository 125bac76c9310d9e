package builtins

import (
	"os/exec"
	"time"

	"github.com/arkscript-lang/arkscript/lang/machine"
)

// System registers the sys:* built-ins and time (original_source's
// Ark::internal::Builtins::System and ::Time namespaces).
func init() {
	Registry.Register("sys:exec", func(args []machine.Value, vm *machine.VM) (machine.Value, error) {
		cmd := exec.Command("sh", "-c", string(args[0].(machine.ArkString)))
		cmd.Stdout, cmd.Stderr = vm.Stdio.Stdout, vm.Stdio.Stderr
		if err := cmd.Run(); err != nil {
			return machine.Number(-1), nil
		}
		return machine.Number(0), nil
	}, Contract{Arguments: []Typedef{{Name: "command", Types: []string{"string"}}}})

	Registry.Register("sys:sleep", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		time.Sleep(time.Duration(float64(args[0].(machine.Number)) * float64(time.Second)))
		return machine.Nil, nil
	}, Contract{Arguments: []Typedef{{Name: "seconds", Types: []string{"number"}}}})

	Registry.Register("sys:exit", func(args []machine.Value, vm *machine.VM) (machine.Value, error) {
		vm.Halt()
		return machine.Number(args[0].(machine.Number)), nil
	}, Contract{Arguments: []Typedef{{Name: "code", Types: []string{"number"}}}})

	Registry.Register("time", func([]machine.Value, *machine.VM) (machine.Value, error) {
		return machine.Number(float64(time.Now().UnixNano()) / float64(time.Second)), nil
	}, Contract{Arguments: []Typedef{}})
}
