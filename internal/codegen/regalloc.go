package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ArmindoFlores/MineScript2/internal/typesystem"
)

// regAlloc is the temporary-register arena from spec.md §4.3: get_temp_var
// returns the lowest free "_varK" slot; mark_unused frees it for reissue.
// Freed slots stay declared in the global type map — only the "currently
// allocated" set shrinks, matching the original's tempvars/usedvars split.
type regAlloc struct {
	allocated map[int]bool
}

func newRegAlloc() *regAlloc {
	return &regAlloc{allocated: make(map[int]bool)}
}

func (r *regAlloc) get(output *Output, t typesystem.Type) string {
	idx := 0
	for r.allocated[idx] {
		idx++
	}
	r.allocated[idx] = true
	name := fmt.Sprintf("_var%d", idx)
	output.GlobalTypes[name] = t
	return name
}

func (r *regAlloc) markUnused(name string) {
	if !strings.HasPrefix(name, "_var") {
		return
	}
	idx, err := strconv.Atoi(name[len("_var"):])
	if err != nil {
		return
	}
	delete(r.allocated, idx)
}
