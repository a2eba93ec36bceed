package domain

// CourseDiff represents the changes between two tree snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type CourseDiff struct {
	// Title is set when the course title changed.
	Title *string `json:"title,omitempty"`

	// ModulesAdded/Removed/Changed hold module IDs. A module is "changed" when
	// its snapshot pointer differs (title, order or lessons were replaced).
	ModulesAdded   []string `json:"modules_added,omitempty"`
	ModulesRemoved []string `json:"modules_removed,omitempty"`
	ModulesChanged []string `json:"modules_changed,omitempty"`

	// Lesson deltas are only computed inside changed modules; shared
	// modules cannot contain changed lessons.
	LessonsAdded   []string `json:"lessons_added,omitempty"`
	LessonsRemoved []string `json:"lessons_removed,omitempty"`
	LessonsChanged []string `json:"lessons_changed,omitempty"`

	// Reordered is true when the module ID sequence changed.
	Reordered bool `json:"reordered,omitempty"`
}

// Diff calculates the difference between oldCourse and newCourse by identity.
// If oldCourse is nil, it returns a diff representing the entire newCourse (initial load).
// It returns nil when nothing changed.
func Diff(oldCourse, newCourse *Course) *CourseDiff {
	if newCourse == nil {
		return nil
	}
	if oldCourse == newCourse {
		return nil
	}

	diff := &CourseDiff{}
	if oldCourse == nil || oldCourse.Title != newCourse.Title {
		title := newCourse.Title
		diff.Title = &title
	}

	var oldModules []*Module
	if oldCourse != nil {
		oldModules = oldCourse.Modules
	}

	oldByID := make(map[string]*Module, len(oldModules))
	for _, m := range oldModules {
		oldByID[m.ID] = m
	}
	newByID := make(map[string]bool, len(newCourse.Modules))

	for _, m := range newCourse.Modules {
		newByID[m.ID] = true
		prev, existed := oldByID[m.ID]
		switch {
		case !existed:
			diff.ModulesAdded = append(diff.ModulesAdded, m.ID)
			for _, l := range m.Lessons {
				diff.LessonsAdded = append(diff.LessonsAdded, l.ID)
			}
		case prev != m:
			diff.ModulesChanged = append(diff.ModulesChanged, m.ID)
			diffLessons(diff, prev, m)
		}
	}

	for _, m := range oldModules {
		if !newByID[m.ID] {
			diff.ModulesRemoved = append(diff.ModulesRemoved, m.ID)
			for _, l := range m.Lessons {
				diff.LessonsRemoved = append(diff.LessonsRemoved, l.ID)
			}
		}
	}

	diff.Reordered = oldCourse != nil && !sameSequence(oldModules, newCourse.Modules)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffLessons(diff *CourseDiff, oldModule, newModule *Module) {
	oldByID := make(map[string]*Lesson, len(oldModule.Lessons))
	for _, l := range oldModule.Lessons {
		oldByID[l.ID] = l
	}
	seen := make(map[string]bool, len(newModule.Lessons))

	for _, l := range newModule.Lessons {
		seen[l.ID] = true
		prev, existed := oldByID[l.ID]
		if !existed {
			diff.LessonsAdded = append(diff.LessonsAdded, l.ID)
		} else if prev != l {
			diff.LessonsChanged = append(diff.LessonsChanged, l.ID)
		}
	}

	for _, l := range oldModule.Lessons {
		if !seen[l.ID] {
			diff.LessonsRemoved = append(diff.LessonsRemoved, l.ID)
		}
	}
}

// sameSequence compares the relative order of modules present in both lists.
func sameSequence(oldModules, newModules []*Module) bool {
	present := make(map[string]bool, len(newModules))
	for _, m := range newModules {
		present[m.ID] = true
	}
	kept := make(map[string]bool, len(oldModules))
	var oldSeq []string
	for _, m := range oldModules {
		if present[m.ID] {
			oldSeq = append(oldSeq, m.ID)
			kept[m.ID] = true
		}
	}
	var newSeq []string
	for _, m := range newModules {
		if kept[m.ID] {
			newSeq = append(newSeq, m.ID)
		}
	}
	for i := range oldSeq {
		if oldSeq[i] != newSeq[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *CourseDiff) IsEmpty() bool {
	return d.Title == nil &&
		len(d.ModulesAdded) == 0 &&
		len(d.ModulesRemoved) == 0 &&
		len(d.ModulesChanged) == 0 &&
		len(d.LessonsAdded) == 0 &&
		len(d.LessonsRemoved) == 0 &&
		len(d.LessonsChanged) == 0 &&
		!d.Reordered
}
