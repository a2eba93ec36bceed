package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/syllabus/internal/presentation/graph"
	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/tree"
)

func sampleCourse() *domain.Course {
	c := tree.New(`Go "for" Teams`)
	c = tree.AddModule(c, "module-1")
	c = tree.AddLesson(c, "module-1", "lesson-1", domain.LessonTypeText)
	c = tree.AddLesson(c, "module-1", "lesson-2", domain.LessonTypeImageText)
	c = tree.AddModule(c, "module-2")
	c = tree.AddLesson(c, "module-2", "lesson-3", domain.LessonTypeVideo)
	c = tree.AddLesson(c, "module-2", "lesson-4", domain.LessonTypeQuiz)
	return c
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		course   *domain.Course
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name:   "Outline Shapes",
			course: sampleCourse(),
			contains: []string{
				"graph TD",
				`course(("Go 'for' Teams"))`,
				`m_module_1["1. New Module"]`,
				"course --> m_module_1",
				`l_lesson_1["1. New Lesson"]`,
				`l_lesson_2[/"2. New Lesson"/]`,
				`l_lesson_3[["1. New Lesson"]]`,
				`l_lesson_4{"2. New Lesson"}`,
				"m_module_2 --> l_lesson_4",
			},
			excludes: []string{"classDef"},
		},
		{
			name:     "Module Sequence",
			course:   sampleCourse(),
			contains: []string{"m_module_1 -.-> m_module_2"},
		},
		{
			name:     "Empty Title",
			course:   tree.New(" "),
			contains: []string{`course(("Untitled course"))`},
		},
		{
			name:   "Overlay",
			course: sampleCourse(),
			overlay: &graph.Overlay{
				Mismatched: []string{"lesson-2", "lesson-2"},
				Current:    "module-2",
			},
			contains: []string{
				"classDef mismatch",
				"class l_lesson_2 mismatch;",
				"class m_module_2 current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.course, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q\ngot:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("expected output not to contain %q", unwanted)
				}
			}
			if tt.overlay != nil && strings.Count(got, "class l_lesson_2 mismatch;") != 1 {
				t.Error("expected mismatch class to be applied once")
			}
		})
	}
}

func TestMismatchOverlay(t *testing.T) {
	c := sampleCourse()
	c = tree.UpdateLessonField(c, "module-1", "lesson-1", tree.FieldType, string(domain.LessonTypeImageText))

	o := graph.MismatchOverlay(c)
	if len(o.Mismatched) != 1 || o.Mismatched[0] != "lesson-1" {
		t.Errorf("expected lesson-1 to be mismatched, got %v", o.Mismatched)
	}
}
