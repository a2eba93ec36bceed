package outline_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/outline"
	"github.com/aretw0/syllabus/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
title: Go for Teams
modules:
  - title: Basics
    lessons:
      - title: Hello
        content: "# Hello"
      - title: Diagram
        type: image-text
        text: The runtime
        image: pixel.png
  - lessons:
      - title: Talk
        type: video
        content: https://video.example.com/embed/1
      - type: quiz
        content: '{"q":1}'
`

func writeOutline(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pixel.png"), []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0644))
	return path
}

func TestLoadAndBuild(t *testing.T) {
	path := writeOutline(t, "course.yaml", sample)

	o, err := outline.Load(path)
	require.NoError(t, err)

	c, err := outline.Build(o, &tree.SequenceGenerator{}, filepath.Dir(path))
	require.NoError(t, err)

	assert.Equal(t, "Go for Teams", c.Title)
	require.Len(t, c.Modules, 2)
	assert.Equal(t, "Basics", c.Modules[0].Title)
	assert.Equal(t, tree.DefaultModuleTitle, c.Modules[1].Title)
	assert.Equal(t, 2, c.Modules[1].Order)

	hello := c.Modules[0].Lessons[0]
	assert.Equal(t, domain.LessonTypeText, hello.Type)
	assert.Equal(t, domain.TextContent{Markdown: "# Hello"}, hello.Content)

	diagram := c.Modules[0].Lessons[1]
	it, ok := domain.ImageTextOf(diagram.Content)
	require.True(t, ok)
	assert.Equal(t, "The runtime", it.Text)
	assert.True(t, strings.HasPrefix(it.ImageURL, "data:image/png;base64,"))
	assert.Equal(t, 2, diagram.Order)

	talk := c.Modules[1].Lessons[0]
	assert.Equal(t, domain.VideoContent{URL: "https://video.example.com/embed/1"}, talk.Content)
	quiz := c.Modules[1].Lessons[1]
	assert.Equal(t, tree.DefaultLessonTitle, quiz.Title)
	assert.Equal(t, domain.QuizContent{Raw: `{"q":1}`}, quiz.Content)
}

func TestLoad_JSON(t *testing.T) {
	path := writeOutline(t, "course.json", `{"title":"J","modules":[{"title":"M","lessons":[{"title":"L","type":"image-text","image":"https://cdn/x.png"}]}]}`)

	o, err := outline.Load(path)
	require.NoError(t, err)
	c, err := outline.Build(o, &tree.SequenceGenerator{}, "")
	require.NoError(t, err)

	it, _ := domain.ImageTextOf(c.Modules[0].Lessons[0].Content)
	assert.Equal(t, "https://cdn/x.png", it.ImageURL)
}

func TestBuild_UnknownType(t *testing.T) {
	o := &outline.Outline{Modules: []outline.Module{{Lessons: []outline.Lesson{{Type: "podcast"}}}}}
	_, err := outline.Build(o, &tree.SequenceGenerator{}, "")
	assert.ErrorIs(t, err, domain.ErrUnknownLessonType)
}

func TestBuild_MissingImage(t *testing.T) {
	o := &outline.Outline{Modules: []outline.Module{{Lessons: []outline.Lesson{{Type: "image-text", Image: "nope.png"}}}}}
	_, err := outline.Build(o, &tree.SequenceGenerator{}, t.TempDir())
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := outline.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeOutline(t, "bad.yaml", "title: [unclosed")
	_, err = outline.Load(path)
	assert.Error(t, err)
}
