package tree

import "github.com/aretw0/syllabus/pkg/domain"

// WithModule replaces the module identified by moduleID with fn's result.
// fn receives a copy; its Lessons slice is shared and must be replaced, not
// written. Other modules are shared with the input course. If moduleID does
// not resolve, c is returned as is.
func WithModule(c *domain.Course, moduleID string, fn func(domain.Module) domain.Module) *domain.Course {
	idx := moduleIndex(c, moduleID)
	if idx < 0 {
		return c
	}

	updated := fn(*c.Modules[idx])

	modules := make([]*domain.Module, len(c.Modules))
	copy(modules, c.Modules)
	modules[idx] = &updated

	next := *c
	next.Modules = modules
	return &next
}

// WithLesson replaces a single lesson through copy-on-write on its module.
// If either id does not resolve, c is returned as is.
func WithLesson(c *domain.Course, moduleID, lessonID string, fn func(domain.Lesson) domain.Lesson) *domain.Course {
	m, _ := FindModule(c, moduleID)
	if m == nil || lessonIndex(m, lessonID) < 0 {
		return c
	}

	return WithModule(c, moduleID, func(m domain.Module) domain.Module {
		idx := lessonIndex(&m, lessonID)
		updated := fn(*m.Lessons[idx])

		lessons := make([]*domain.Lesson, len(m.Lessons))
		copy(lessons, m.Lessons)
		lessons[idx] = &updated
		m.Lessons = lessons
		return m
	})
}

// FindModule returns the module and its index, or nil and -1.
func FindModule(c *domain.Course, moduleID string) (*domain.Module, int) {
	idx := moduleIndex(c, moduleID)
	if idx < 0 {
		return nil, -1
	}
	return c.Modules[idx], idx
}

// FindLesson returns the lesson addressed by the id path, or nil.
func FindLesson(c *domain.Course, moduleID, lessonID string) *domain.Lesson {
	m, _ := FindModule(c, moduleID)
	if m == nil {
		return nil
	}
	idx := lessonIndex(m, lessonID)
	if idx < 0 {
		return nil
	}
	return m.Lessons[idx]
}

// ModuleIDs returns the module ids in tree order.
func ModuleIDs(c *domain.Course) []string {
	ids := make([]string, len(c.Modules))
	for i, m := range c.Modules {
		ids[i] = m.ID
	}
	return ids
}

func moduleIndex(c *domain.Course, moduleID string) int {
	if c == nil {
		return -1
	}
	for i, m := range c.Modules {
		if m.ID == moduleID {
			return i
		}
	}
	return -1
}

func lessonIndex(m *domain.Module, lessonID string) int {
	for i, l := range m.Lessons {
		if l.ID == lessonID {
			return i
		}
	}
	return -1
}
