package publish

import "github.com/aretw0/syllabus/pkg/domain"

// BuildPayload serializes the tree into the repository contract. Module and
// lesson ids are dropped; relative order and every node are preserved.
func BuildPayload(title string, c *domain.Course) domain.CoursePayload {
	p := domain.CoursePayload{
		Title:   title,
		Modules: make([]domain.ModulePayload, 0, c.ModuleCount()),
	}
	if c == nil {
		return p
	}
	for _, m := range c.Modules {
		mp := domain.ModulePayload{
			Title:   m.Title,
			Order:   m.Order,
			Lessons: make([]domain.LessonPayload, 0, len(m.Lessons)),
		}
		for _, l := range m.Lessons {
			mp.Lessons = append(mp.Lessons, domain.LessonPayload{
				Title:   l.Title,
				Content: l.Content,
				Type:    l.Type,
				Order:   l.Order,
			})
		}
		p.Modules = append(p.Modules, mp)
	}
	return p
}
