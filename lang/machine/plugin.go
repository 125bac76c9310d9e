// Native plugin loading (spec.md §4.10): "the VM loads a shared library
// lazily at the first PLUGIN instruction and exposes its registered names
// as new built-ins." Uses the stdlib plugin package — no example repo's
// dependency set covers dynamic shared-library loading, and a plugin ABI
// is inherently tied to cgo/the host OS loader rather than something a
// third-party Go library abstracts, so this is stdlib by necessity
// (recorded here per DESIGN.md's policy on stdlib-only parts).
package machine

import goplugin "plugin"

// PluginExportsSymbol names the symbol a native plugin's shared object must
// export: a map from built-in name to its NativeFunc implementation.
const PluginExportsSymbol = "ArkBuiltins"

// LoadPlugin opens the shared library at path, looks up its
// ArkBuiltins export, and registers it under name so a later PLUGIN
// instruction referencing the same value-table string resolves without
// reopening the library.
func (vm *VM) LoadPlugin(name, path string) (*Plugin, error) {
	if p, ok := vm.Plugins[name]; ok {
		return p, nil
	}

	lib, err := goplugin.Open(path)
	if err != nil {
		return nil, &RuntimeError{Kind: ModuleError, Msg: "loading plugin " + path + ": " + err.Error()}
	}
	sym, err := lib.Lookup(PluginExportsSymbol)
	if err != nil {
		return nil, &RuntimeError{Kind: ModuleError, Msg: "plugin " + path + " does not export " + PluginExportsSymbol}
	}
	exports, ok := sym.(*map[string]NativeFunc)
	if !ok {
		return nil, &RuntimeError{Kind: ModuleError, Msg: "plugin " + path + "'s " + PluginExportsSymbol + " has the wrong type"}
	}

	builtins := make(map[string]*CProc, len(*exports))
	for fname, fn := range *exports {
		builtins[fname] = &CProc{Name: fname, Fn: fn}
	}

	p := &Plugin{Path: path, Builtins: builtins}
	vm.Plugins[name] = p
	return p, nil
}
