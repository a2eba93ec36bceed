package tree

import (
	"github.com/aretw0/syllabus/pkg/domain"
)

const (
	// DefaultModuleTitle is the title given to a module by AddModule.
	DefaultModuleTitle = "New Module"
	// DefaultLessonTitle is the title given to a lesson by AddLesson.
	DefaultLessonTitle = "New Lesson"
)

// LessonField names a lesson attribute addressable by UpdateLessonField.
type LessonField string

const (
	FieldTitle   LessonField = "title"
	FieldType    LessonField = "type"
	FieldContent LessonField = "content"
)

// New returns an empty course.
func New(title string) *domain.Course {
	return &domain.Course{Title: title, Modules: []*domain.Module{}}
}

// SetTitle replaces the course title.
func SetTitle(c *domain.Course, title string) *domain.Course {
	if c.Title == title {
		return c
	}
	next := *c
	next.Title = title
	return &next
}

// AddModule appends an empty module with the next order.
func AddModule(c *domain.Course, id string) *domain.Course {
	m := &domain.Module{
		ID:      id,
		Title:   DefaultModuleTitle,
		Order:   len(c.Modules) + 1,
		Lessons: []*domain.Lesson{},
	}

	modules := make([]*domain.Module, len(c.Modules), len(c.Modules)+1)
	copy(modules, c.Modules)

	next := *c
	next.Modules = append(modules, m)
	return &next
}

// AddLesson appends a lesson of type t to the module. The content is the
// default payload for t. An unknown module leaves the course unchanged.
func AddLesson(c *domain.Course, moduleID, id string, t domain.LessonType) *domain.Course {
	return WithModule(c, moduleID, func(m domain.Module) domain.Module {
		l := &domain.Lesson{
			ID:      id,
			Title:   DefaultLessonTitle,
			Order:   len(m.Lessons) + 1,
			Type:    t,
			Content: domain.DefaultContent(t),
		}
		lessons := make([]*domain.Lesson, len(m.Lessons), len(m.Lessons)+1)
		copy(lessons, m.Lessons)
		m.Lessons = append(lessons, l)
		return m
	})
}

// DeleteModule removes the module and renumbers the survivors.
func DeleteModule(c *domain.Course, moduleID string) *domain.Course {
	idx := moduleIndex(c, moduleID)
	if idx < 0 {
		return c
	}

	modules := make([]*domain.Module, 0, len(c.Modules)-1)
	modules = append(modules, c.Modules[:idx]...)
	modules = append(modules, c.Modules[idx+1:]...)

	next := *c
	next.Modules = RenumberModules(modules)
	return &next
}

// DeleteLesson removes the lesson and renumbers its siblings.
func DeleteLesson(c *domain.Course, moduleID, lessonID string) *domain.Course {
	m, _ := FindModule(c, moduleID)
	if m == nil || lessonIndex(m, lessonID) < 0 {
		return c
	}
	return WithModule(c, moduleID, func(m domain.Module) domain.Module {
		idx := lessonIndex(&m, lessonID)
		lessons := make([]*domain.Lesson, 0, len(m.Lessons)-1)
		lessons = append(lessons, m.Lessons[:idx]...)
		lessons = append(lessons, m.Lessons[idx+1:]...)
		m.Lessons = renumberLessons(lessons)
		return m
	})
}

// UpdateModuleTitle replaces a module title.
func UpdateModuleTitle(c *domain.Course, moduleID, title string) *domain.Course {
	return WithModule(c, moduleID, func(m domain.Module) domain.Module {
		m.Title = title
		return m
	})
}

// UpdateLessonField replaces a single lesson attribute from its raw form.
//
// FieldContent wraps value in the string variant of the lesson's current
// type. FieldType does not reshape the existing content. An unknown field or
// an unparsable type leaves the course unchanged.
func UpdateLessonField(c *domain.Course, moduleID, lessonID string, field LessonField, value string) *domain.Course {
	var apply func(l domain.Lesson) domain.Lesson

	switch field {
	case FieldTitle:
		apply = func(l domain.Lesson) domain.Lesson {
			l.Title = value
			return l
		}
	case FieldType:
		t, err := domain.ParseLessonType(value)
		if err != nil {
			return c
		}
		apply = func(l domain.Lesson) domain.Lesson {
			l.Type = t
			return l
		}
	case FieldContent:
		apply = func(l domain.Lesson) domain.Lesson {
			l.Content = domain.StringContent(l.Type, value)
			return l
		}
	default:
		return c
	}

	return WithLesson(c, moduleID, lessonID, apply)
}

// UpdateLessonContent replaces the whole lesson payload.
func UpdateLessonContent(c *domain.Course, moduleID, lessonID string, content domain.Content) *domain.Course {
	return WithLesson(c, moduleID, lessonID, func(l domain.Lesson) domain.Lesson {
		l.Content = content
		return l
	})
}

// RenumberModules assigns order = index+1, copying only modules whose order
// changes. The slice itself is written in place and must not be shared.
func RenumberModules(modules []*domain.Module) []*domain.Module {
	for i, m := range modules {
		if m.Order == i+1 {
			continue
		}
		cp := *m
		cp.Order = i + 1
		modules[i] = &cp
	}
	return modules
}

func renumberLessons(lessons []*domain.Lesson) []*domain.Lesson {
	for i, l := range lessons {
		if l.Order == i+1 {
			continue
		}
		cp := *l
		cp.Order = i + 1
		lessons[i] = &cp
	}
	return lessons
}
