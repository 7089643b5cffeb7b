// Package symbols implements the three-namespace lookup table from
// spec.md §4: global runtime variables, per-function local runtime
// variables, and compile-time `$name` bindings. It is grounded on
// original_source/MappingVisitor.py's add_var/is_defined/get_type family
// and on funvibe-funxy/internal/evaluator's Environment{store, outer}
// idiom for the scope-chain shape, with sync.RWMutex carried over from
// funxy's Environment even though MineScript compiles single-threaded
// (the teacher's environment is always guarded this way).
package symbols

import (
	"fmt"
	"sync"

	"github.com/ArmindoFlores/MineScript2/internal/typesystem"
)

// Kind distinguishes the three MineScript symbol namespaces (spec.md §4).
type Kind int

const (
	GlobalRuntime Kind = iota
	LocalRuntime
	CompileTime
)

func (k Kind) String() string {
	switch k {
	case GlobalRuntime:
		return "global"
	case LocalRuntime:
		return "local"
	case CompileTime:
		return "compile-time"
	default:
		return "?"
	}
}

// Symbol is one declared name: its type and, for compile-time bindings,
// its current folded value.
type Symbol struct {
	Name  string
	Kind  Kind
	Type  typesystem.Type
	Value typesystem.Value // meaningful only when Kind == CompileTime
}

// AlreadyDefinedError reports redeclaration of an existing name in a scope
// that does not allow shadowing (spec.md §4, §7: E003).
type AlreadyDefinedError struct {
	Name string
	Kind Kind
}

func (e *AlreadyDefinedError) Error() string {
	return fmt.Sprintf("%s variable %q is already defined", e.Kind, e.Name)
}

// UndefinedError reports a reference to a name with no matching symbol in
// any reachable namespace (spec.md §7: E005).
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}

// Table is the live symbol table for one compilation: one global runtime
// namespace, one compile-time namespace, and a stack of local runtime
// scopes: one pushed per function body, plus one per for statement for the
// names its init clause declares. Lookup searches the stack from the
// innermost scope outward, so the enclosing function's locals stay visible
// inside a for statement.
type Table struct {
	mu         sync.RWMutex
	global     map[string]*Symbol
	compile    map[string]*Symbol
	localStack []map[string]*Symbol
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{
		global:  make(map[string]*Symbol),
		compile: make(map[string]*Symbol),
	}
}

// PushLocalScope opens a fresh local-runtime namespace, used when entering
// a function body.
func (t *Table) PushLocalScope() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.localStack = append(t.localStack, make(map[string]*Symbol))
}

// PopLocalScope closes the innermost local-runtime namespace, used when
// leaving a function body.
func (t *Table) PopLocalScope() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.localStack) == 0 {
		return
	}
	t.localStack = t.localStack[:len(t.localStack)-1]
}

func (t *Table) currentLocal() map[string]*Symbol {
	if len(t.localStack) == 0 {
		return nil
	}
	return t.localStack[len(t.localStack)-1]
}

// DeclareGlobal adds name to the global runtime namespace.
func (t *Table) DeclareGlobal(name string, typ typesystem.Type) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.global[name]; ok {
		return &AlreadyDefinedError{Name: name, Kind: GlobalRuntime}
	}
	t.global[name] = &Symbol{Name: name, Kind: GlobalRuntime, Type: typ}
	return nil
}

// DeclareLocal adds name to the innermost local runtime namespace.
func (t *Table) DeclareLocal(name string, typ typesystem.Type) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	scope := t.currentLocal()
	if scope == nil {
		return fmt.Errorf("no active local scope for %q", name)
	}
	if _, ok := scope[name]; ok {
		return &AlreadyDefinedError{Name: name, Kind: LocalRuntime}
	}
	scope[name] = &Symbol{Name: name, Kind: LocalRuntime, Type: typ}
	return nil
}

// DeclareCompileTime adds a `$name` binding with its initial folded value.
func (t *Table) DeclareCompileTime(name string, value typesystem.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.compile[name]; ok {
		return &AlreadyDefinedError{Name: name, Kind: CompileTime}
	}
	t.compile[name] = &Symbol{Name: name, Kind: CompileTime, Type: value.Type(), Value: value}
	return nil
}

// SetCompileTime updates an existing `$name` binding's folded value
// (compile-time variables are mutable, spec.md §4).
func (t *Table) SetCompileTime(name string, value typesystem.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	sym, ok := t.compile[name]
	if !ok {
		return &UndefinedError{Name: "$" + name}
	}
	sym.Value = value
	sym.Type = value.Type()
	return nil
}

// Lookup resolves a bare (non-`$`) name using the order from spec.md §4:
// local scopes from the innermost outward, then global scope. Compile-time
// names are never reached through Lookup; callers use LookupCompileTime for
// `$name`.
func (t *Table) Lookup(name string) (*Symbol, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.localStack) - 1; i >= 0; i-- {
		if sym, ok := t.localStack[i][name]; ok {
			return sym, nil
		}
	}
	if sym, ok := t.global[name]; ok {
		return sym, nil
	}
	return nil, &UndefinedError{Name: name}
}

// LookupCompileTime resolves a `$name` reference.
func (t *Table) LookupCompileTime(name string) (*Symbol, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sym, ok := t.compile[name]
	if !ok {
		return nil, &UndefinedError{Name: "$" + name}
	}
	return sym, nil
}

// IsDefined reports whether name resolves in the current scope chain,
// without the overhead of returning the full error.
func (t *Table) IsDefined(name string) bool {
	_, err := t.Lookup(name)
	return err == nil
}

// IsCompileTimeDefined reports whether $name resolves.
func (t *Table) IsCompileTimeDefined(name string) bool {
	_, err := t.LookupCompileTime(name)
	return err == nil
}

// AssertTypesMatch is a small helper used throughout codegen/analyzer to
// turn a type mismatch into a typesystem.TypeMismatchError uniformly.
func AssertTypesMatch(op string, want, got typesystem.Type) error {
	if want != got {
		return &typesystem.TypeMismatchError{Op: op, Left: want, Right: got, HasRight: true}
	}
	return nil
}

// Globals returns a snapshot of declared global runtime symbols, in map
// iteration order (not sorted).
func (t *Table) Globals() []*Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Symbol, 0, len(t.global))
	for _, sym := range t.global {
		out = append(out, sym)
	}
	return out
}
