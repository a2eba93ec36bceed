package render

import "github.com/aretw0/syllabus/pkg/domain"

const (
	labelPublish     = "Publish Course"
	labelPublishing  = "Saving..."
	labelPreview     = "Preview"
	labelExitPreview = "Exit preview"
	titlePlaceholder = "Course Title"
)

// Status is the editor state that is not part of the tree but is shown with it.
type Status struct {
	Publishing bool
	Error      string
}

// ModuleView is a module header plus its rendered lessons.
type ModuleView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
	Editable bool   `json:"editable"`
	Lessons  []View `json:"lessons"`
}

// Button is an action control.
type Button struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
}

// CourseView is the whole editing surface.
type CourseView struct {
	Title            string       `json:"title"`
	TitlePlaceholder string       `json:"title_placeholder"`
	Mode             string       `json:"mode"`
	Editable         bool         `json:"editable"`
	PreviewToggle    Button       `json:"preview_toggle"`
	Error            string       `json:"error,omitempty"`
	Modules          []ModuleView `json:"modules"`

	// Publish is nil in preview mode.
	Publish *Button `json:"publish,omitempty"`
}

// RenderCourse renders every lesson of the course with the same context, so
// toggling the mode switches all lessons at once.
func RenderCourse(c *domain.Course, ctx Context, st Status) CourseView {
	editable := ctx.Mode == ModeEdit

	cv := CourseView{
		Title:            c.Title,
		TitlePlaceholder: titlePlaceholder,
		Mode:             ctx.Mode.String(),
		Editable:         editable,
		PreviewToggle:    Button{Label: labelPreview},
		Error:            st.Error,
		Modules:          make([]ModuleView, 0, len(c.Modules)),
	}
	if !editable {
		cv.PreviewToggle.Label = labelExitPreview
	}
	if editable {
		cv.Publish = &Button{Label: labelPublish, Disabled: st.Publishing}
		if st.Publishing {
			cv.Publish.Label = labelPublishing
		}
	}

	for _, m := range c.Modules {
		mv := ModuleView{
			ID:       m.ID,
			Title:    m.Title,
			Order:    m.Order,
			Editable: editable,
			Lessons:  make([]View, 0, len(m.Lessons)),
		}
		for _, l := range m.Lessons {
			mv.Lessons = append(mv.Lessons, Render(l, ctx))
		}
		cv.Modules = append(cv.Modules, mv)
	}
	return cv
}
