package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/render"
	"github.com/aretw0/syllabus/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func previewCourse() render.CourseView {
	c := tree.New("Go for Teams")
	c = tree.AddModule(c, "m1")
	c = tree.UpdateModuleTitle(c, "m1", "Basics")
	c = tree.AddLesson(c, "m1", "l1", domain.LessonTypeText)
	c = tree.UpdateLessonField(c, "m1", "l1", tree.FieldContent, "Hello **world**")
	c = tree.AddLesson(c, "m1", "l2", domain.LessonTypeImageText)
	c = tree.UpdateLessonContent(c, "m1", "l2", domain.ImageTextContent{Text: "caption", ImageURL: "data:image/png;base64,AAAA"})
	c = tree.AddLesson(c, "m1", "l3", domain.LessonTypeQuiz)
	c = tree.UpdateLessonField(c, "m1", "l3", tree.FieldContent, `{"q":1}`)
	return render.RenderCourse(c, render.Context{Mode: render.ModePreview}, render.Status{})
}

func TestCourseMarkdown(t *testing.T) {
	md := CourseMarkdown(previewCourse())

	assert.Contains(t, md, "# Go for Teams")
	assert.Contains(t, md, "## 1. Basics")
	assert.Contains(t, md, "Hello **world**")
	assert.Contains(t, md, "[image: New Lesson]")
	assert.NotContains(t, md, "base64")
	assert.Contains(t, md, "```json\n{\"q\":1}\n```")
}

func TestCourseMarkdown_EmptyTitle(t *testing.T) {
	cv := render.RenderCourse(tree.New(""), render.Context{Mode: render.ModePreview}, render.Status{Error: "Course title is required"})
	md := CourseMarkdown(cv)
	assert.Contains(t, md, "# (Course Title)")
	assert.Contains(t, md, "Course title is required")
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer(80)
	require.NoError(t, err)

	out, err := r(CourseMarkdown(previewCourse()))
	require.NoError(t, err)
	assert.Contains(t, out, "Go for Teams")
	assert.Contains(t, out, "Basics")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "version 1.2.3")

	buf.Reset()
	Status(&buf, false, "failed %d", 2)
	assert.Contains(t, buf.String(), "failed 2")
}
