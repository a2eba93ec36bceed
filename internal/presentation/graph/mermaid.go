package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/syllabus/pkg/domain"
)

// Overlay highlights parts of the outline.
type Overlay struct {
	// Mismatched lessons hold content that does not match their type.
	Mismatched []string
	// Current is the id of the module or lesson being edited.
	Current string
}

// MismatchOverlay marks every lesson whose content shape disagrees with
// its type.
func MismatchOverlay(c *domain.Course) *Overlay {
	o := &Overlay{}
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if !l.ContentMatchesType() {
				o.Mismatched = append(o.Mismatched, l.ID)
			}
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the course outline:
// the course root, its modules in order and their lessons, with the lesson
// shape chosen by type:
// - Text: [Rectangle]
// - Image+Text: [/Parallelogram/]
// - Video: [[Subroutine]]
// - Quiz: {Rhombus}
// Consecutive modules are linked with a dotted arrow to show the sequence.
func GenerateMermaid(c *domain.Course, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	title := c.Title
	if strings.TrimSpace(title) == "" {
		title = "Untitled course"
	}
	sb.WriteString(fmt.Sprintf("    course((\"%s\"))\n", escapeLabel(title)))

	prev := ""
	for _, m := range c.Modules {
		moduleID := "m_" + sanitizeMermaidID(m.ID)
		sb.WriteString(fmt.Sprintf("    %s[\"%d. %s\"]\n", moduleID, m.Order, escapeLabel(m.Title)))
		sb.WriteString(fmt.Sprintf("    course --> %s\n", moduleID))
		if prev != "" {
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", prev, moduleID))
		}
		prev = moduleID

		for _, l := range m.Lessons {
			lessonID := "l_" + sanitizeMermaidID(l.ID)
			opener, closer := "[", "]"
			switch l.Type {
			case domain.LessonTypeImageText:
				opener, closer = "[/", "/]"
			case domain.LessonTypeVideo:
				opener, closer = "[[", "]]"
			case domain.LessonTypeQuiz:
				opener, closer = "{", "}"
			}
			sb.WriteString(fmt.Sprintf("    %s%s\"%d. %s\"%s\n", lessonID, opener, l.Order, escapeLabel(l.Title), closer))
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", moduleID, lessonID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds
		sb.WriteString("    classDef mismatch fill:#fee2e2,stroke:#b91c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Mismatched {
			safeID := "l_" + sanitizeMermaidID(id)
			if !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s mismatch;\n", safeID))
			}
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", currentNode(c, overlay.Current)))
		}
	}

	return sb.String()
}

func currentNode(c *domain.Course, id string) string {
	for _, m := range c.Modules {
		if m.ID == id {
			return "m_" + sanitizeMermaidID(id)
		}
	}
	return "l_" + sanitizeMermaidID(id)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
