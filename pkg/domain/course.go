package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Course is the editor-side aggregate. It only exists for the lifetime of an
// editing session and is persisted through the publish payload.
type Course struct {
	Title   string    `json:"title" yaml:"title"`
	Modules []*Module `json:"modules" yaml:"modules"`
}

// Module is an ordered container of lessons.
type Module struct {
	ID      string    `json:"id" yaml:"id"`
	Title   string    `json:"title" yaml:"title"`
	Order   int       `json:"order" yaml:"order"`
	Lessons []*Lesson `json:"lessons" yaml:"lessons"`
}

// Lesson is a single unit of content. Content is expected to match Type but
// changing Type does not reshape Content (see ContentMatchesType).
type Lesson struct {
	ID      string
	Title   string
	Order   int
	Type    LessonType
	Content Content
}

// ContentMatchesType reports whether the payload shape is the one expected
// for the declared type. A false result is the type-switch hazard: the
// previous payload survived a change of Type.
func (l *Lesson) ContentMatchesType() bool {
	return ShapeMatches(l.Type, l.Content)
}

type lessonJSON struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Order   int             `json:"order"`
	Type    LessonType      `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON encodes the lesson with its content in wire shape.
func (l Lesson) MarshalJSON() ([]byte, error) {
	content, err := MarshalContent(l.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(lessonJSON{
		ID:      l.ID,
		Title:   l.Title,
		Order:   l.Order,
		Type:    l.Type,
		Content: content,
	})
}

// UnmarshalJSON decodes a lesson, resolving the content variant from the type tag.
func (l *Lesson) UnmarshalJSON(data []byte) error {
	var aux lessonJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	content, err := UnmarshalContent(aux.Type, aux.Content)
	if err != nil {
		return fmt.Errorf("lesson %s: %w", aux.ID, err)
	}
	*l = Lesson{
		ID:      aux.ID,
		Title:   aux.Title,
		Order:   aux.Order,
		Type:    aux.Type,
		Content: content,
	}
	return nil
}

// ModuleCount returns the number of modules, tolerating a nil course.
func (c *Course) ModuleCount() int {
	if c == nil {
		return 0
	}
	return len(c.Modules)
}

// Draft is the persisted form of an in-progress editing session.
type Draft struct {
	ID          string    `json:"id"`
	Course      *Course   `json:"course"`
	PreviewMode bool      `json:"preview_mode"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Sealed carries an encrypted draft body. Course is nil while it is set.
	Sealed string `json:"sealed,omitempty"`
}

// Clone returns a deep copy of the course. Content values are immutable and
// are shared.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	out := &Course{Title: c.Title, Modules: make([]*Module, len(c.Modules))}
	for i, m := range c.Modules {
		mc := *m
		mc.Lessons = make([]*Lesson, len(m.Lessons))
		for j, l := range m.Lessons {
			lc := *l
			mc.Lessons[j] = &lc
		}
		out.Modules[i] = &mc
	}
	return out
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	out := *d
	out.Course = d.Course.Clone()
	return &out
}
