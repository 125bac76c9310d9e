package builtins

import (
	"math"

	"github.com/arkscript-lang/arkscript/lang/machine"
)

// unaryMath registers name as a one-argument math:* built-in applying fn to
// its Number argument (original_source's Ark::internal::Builtins::Mathematics
// namespace: exp/ln/ceil/floor/round and the trigonometric family share this
// exact shape in the original).
func unaryMath(name string, fn func(float64) float64) {
	Registry.Register(name, func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		return machine.Number(fn(float64(args[0].(machine.Number)))), nil
	}, Contract{Arguments: []Typedef{{Name: "x", Types: []string{"number"}}}})
}

// Mathematics registers the math:* built-ins.
func init() {
	unaryMath("math:exp", math.Exp)
	unaryMath("math:ln", math.Log)
	unaryMath("math:ceil", math.Ceil)
	unaryMath("math:floor", math.Floor)
	unaryMath("math:round", math.Round)
	unaryMath("math:cos", math.Cos)
	unaryMath("math:sin", math.Sin)
	unaryMath("math:tan", math.Tan)
	unaryMath("math:arccos", math.Acos)
	unaryMath("math:arcsin", math.Asin)
	unaryMath("math:arctan", math.Atan)
	unaryMath("math:cosh", math.Cosh)
	unaryMath("math:sinh", math.Sinh)
	unaryMath("math:tanh", math.Tanh)
	unaryMath("math:acosh", math.Acosh)
	unaryMath("math:asinh", math.Asinh)
	unaryMath("math:atanh", math.Atanh)

	Registry.Register("math:NaN?", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		return machine.Bool(math.IsNaN(float64(args[0].(machine.Number)))), nil
	}, Contract{Arguments: []Typedef{{Name: "x", Types: []string{"number"}}}})

	Registry.Register("math:Inf?", func(args []machine.Value, _ *machine.VM) (machine.Value, error) {
		return machine.Bool(math.IsInf(float64(args[0].(machine.Number)), 0)), nil
	}, Contract{Arguments: []Typedef{{Name: "x", Types: []string{"number"}}}})

	constant := func(name string, v float64) {
		Registry.Register(name, func([]machine.Value, *machine.VM) (machine.Value, error) {
			return machine.Number(v), nil
		}, Contract{Arguments: []Typedef{}})
	}
	constant("math:pi", math.Pi)
	constant("math:e", math.E)
	constant("math:tau", 2*math.Pi)
	constant("math:Inf", math.Inf(1))
	constant("math:NaN", math.NaN())
}
