// Package reorder recomputes module ordering from drag gestures.
//
// Only modules can be reordered. Lessons keep the order given by append and
// delete operations.
package reorder

import (
	"slices"

	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/tree"
)

// DragEnd is the completion event of a drag gesture. Over is empty when the
// gesture was cancelled or dropped outside any module.
type DragEnd struct {
	Active string `json:"active"`
	Over   string `json:"over,omitempty"`
}

// Reorder moves dragged to the position currently held by target (list
// splice, not swap) and returns the new sequence. The input is not modified.
// An empty target or an id missing from order yields an unchanged copy.
func Reorder(order []string, dragged, target string) []string {
	out := slices.Clone(order)

	if target == "" {
		return out
	}
	from, to := slices.Index(order, dragged), slices.Index(order, target)
	if from < 0 || to < 0 || from == to {
		return out
	}

	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, dragged)
}

// Apply reorders the modules of c according to the drag event and reassigns
// order = index+1 across the whole sequence. Module and lesson ids are never
// changed. Returns c itself when the event is a no-op.
func Apply(c *domain.Course, ev DragEnd) *domain.Course {
	if ev.Over == "" {
		return c
	}

	ids := tree.ModuleIDs(c)
	next := Reorder(ids, ev.Active, ev.Over)
	if slices.Equal(ids, next) {
		return c
	}

	byID := make(map[string]*domain.Module, len(c.Modules))
	for _, m := range c.Modules {
		byID[m.ID] = m
	}
	modules := make([]*domain.Module, len(next))
	for i, id := range next {
		modules[i] = byID[id]
	}

	out := *c
	out.Modules = tree.RenumberModules(modules)
	return &out
}
