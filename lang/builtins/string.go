package builtins

import (
	"fmt"
	"strings"

	"github.com/arkscript-lang/arkscript/lang/machine"
)

// String registers the str:* built-ins (original_source's
// Ark::internal::Builtins::String namespace).
func init() {
	Registry.Register("str:format", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		format := string(args[0].(machine.ArkString))
		var b strings.Builder
		argi := 1
		for i := 0; i < len(format); i++ {
			if format[i] == '{' && i+1 < len(format) && format[i+1] == '}' {
				if argi >= len(args) {
					return nil, machine.NewRuntimeError(machine.ArityError, "str:format: not enough arguments for format string %q", format)
				}
				b.WriteString(machine.Deref(args[argi]).String())
				argi++
				i++
				continue
			}
			b.WriteByte(format[i])
		}
		return machine.ArkString(b.String()), nil
	}, Contract{Arguments: []Typedef{{Name: "format", Types: []string{"string"}}, {Name: "args", Variadic: true}}})

	Registry.Register("str:find", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		s := string(args[0].(machine.ArkString))
		sub := string(args[1].(machine.ArkString))
		return machine.Number(strings.Index(s, sub)), nil
	}, Contract{Arguments: []Typedef{{Name: "s", Types: []string{"string"}}, {Name: "sub", Types: []string{"string"}}}})

	Registry.Register("str:removeAt", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		s := []rune(string(args[0].(machine.ArkString)))
		i := int(args[1].(machine.Number))
		if i < 0 || i >= len(s) {
			return nil, machine.NewRuntimeError(machine.IndexError, "str:removeAt: index %d out of range", i)
		}
		return machine.ArkString(string(append(append([]rune{}, s[:i]...), s[i+1:]...))), nil
	}, Contract{Arguments: []Typedef{{Name: "s", Types: []string{"string"}}, {Name: "index", Types: []string{"number"}}}})

	Registry.Register("str:ord", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		s := []rune(string(args[0].(machine.ArkString)))
		if len(s) == 0 {
			return nil, machine.NewRuntimeError(machine.IndexError, "str:ord: empty string")
		}
		return machine.Number(s[0]), nil
	}, Contract{Arguments: []Typedef{{Name: "s", Types: []string{"string"}}}})

	Registry.Register("str:chr", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		n := int(args[0].(machine.Number))
		return machine.ArkString(fmt.Sprintf("%c", rune(n))), nil
	}, Contract{Arguments: []Typedef{{Name: "code", Types: []string{"number"}}}})
}
