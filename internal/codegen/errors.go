package codegen

import "fmt"

// CodeOutsideFunctionError reports a command emitted with no active sink
// (spec.md §4.6, §7).
type CodeOutsideFunctionError struct{}

func (e *CodeOutsideFunctionError) Error() string {
	return "all code must reside inside a function"
}

// BreakOutsideLoopError reports a break statement with no enclosing loop
// (spec.md §7).
type BreakOutsideLoopError struct{}

func (e *BreakOutsideLoopError) Error() string {
	return "break statement is outside of a loop"
}

// ReturnOutsideFunctionError reports a return statement with no enclosing
// function (spec.md §7).
type ReturnOutsideFunctionError struct{}

func (e *ReturnOutsideFunctionError) Error() string {
	return "return statement is outside of a function"
}

// VoidReturnsValueError reports a return with a value inside a void
// function (spec.md §7).
type VoidReturnsValueError struct{ Function string }

func (e *VoidReturnsValueError) Error() string {
	return fmt.Sprintf("void function %q returns a value", e.Function)
}

// NonVoidMissingReturnError reports a bare return inside a non-void
// function (spec.md §7).
type NonVoidMissingReturnError struct{ Function string }

func (e *NonVoidMissingReturnError) Error() string {
	return fmt.Sprintf("function %q must return a value", e.Function)
}

// NonIntIndexError reports an array index expression that isn't an int
// (spec.md §4.5, §7).
type NonIntIndexError struct{ Got string }

func (e *NonIntIndexError) Error() string {
	return fmt.Sprintf("array indices must be int (was %s)", e.Got)
}

// AssignRuntimeToCompileError reports a runtime value stored into a `$`
// binding (spec.md §3, §7).
type AssignRuntimeToCompileError struct{ Name string }

func (e *AssignRuntimeToCompileError) Error() string {
	return fmt.Sprintf("compile-time variable %q can't be assigned a runtime value", e.Name)
}

// PrintArityError reports a print call with fewer than three arguments
// (spec.md §4.6, §7).
type PrintArityError struct{ Got int }

func (e *PrintArityError) Error() string {
	return fmt.Sprintf("print takes at least 3 arguments, got %d", e.Got)
}

// PrintArgTypeError reports a non-compile-time-string selector/colour
// argument to print (spec.md §4.6, §7).
type PrintArgTypeError struct{ Which string }

func (e *PrintArgTypeError) Error() string {
	return fmt.Sprintf("the %s argument of print must be a string evaluated at compile time", e.Which)
}

// UndefinedFunctionError reports a call to an unknown function name
// (spec.md §4.4).
type UndefinedFunctionError struct{ Name string }

func (e *UndefinedFunctionError) Error() string {
	return fmt.Sprintf("undefined function %q", e.Name)
}

// ArgumentCountError reports a call with the wrong number of arguments.
type ArgumentCountError struct {
	Function string
	Want     int
	Got      int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("function %q takes %d arguments, but %d were given", e.Function, e.Want, e.Got)
}
