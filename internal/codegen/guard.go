package codegen

import "strings"

// guard is the prefix/sink stack from spec.md §4.6: add_cmd renders
// "execute <prefix...> run <c>" when the prefix stack is non-empty, and
// routes the rendered command to whichever buffer (loop or function body)
// is on top of the sink stack.
type guard struct {
	prefixes []string
	sinks    []string
}

func newGuard() *guard {
	return &guard{}
}

func (g *guard) pushPrefix(p string) {
	g.prefixes = append(g.prefixes, p)
}

func (g *guard) popPrefix() {
	if len(g.prefixes) == 0 {
		return
	}
	g.prefixes = g.prefixes[:len(g.prefixes)-1]
}

func (g *guard) pushSink(name string) {
	g.sinks = append(g.sinks, name)
}

func (g *guard) popSink() {
	if len(g.sinks) == 0 {
		return
	}
	g.sinks = g.sinks[:len(g.sinks)-1]
}

// activeSink returns the name of the buffer currently receiving emitted
// commands: the innermost open loop if one is active, else the innermost
// open function. The second return is false when code is emitted outside
// any function (spec.md §7: CodeOutsideFunction).
func (g *guard) activeSink() (string, bool) {
	if len(g.sinks) == 0 {
		return "", false
	}
	return g.sinks[len(g.sinks)-1], true
}

// render wraps cmd in the accumulated prefix stack, or returns it verbatim
// when the stack is empty.
func (g *guard) render(cmd string) string {
	if len(g.prefixes) == 0 {
		return cmd
	}
	return "execute " + strings.Join(g.prefixes, " ") + " run " + cmd
}
