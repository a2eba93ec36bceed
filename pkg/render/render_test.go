package render_test

import (
	"testing"

	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/render"
	"github.com/aretw0/syllabus/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	edit    = render.Context{Mode: render.ModeEdit}
	preview = render.Context{Mode: render.ModePreview}
)

func kinds(blocks []render.Block) []render.BlockKind {
	out := make([]render.BlockKind, len(blocks))
	for i, b := range blocks {
		out[i] = b.Kind
	}
	return out
}

func lesson(t domain.LessonType, c domain.Content) *domain.Lesson {
	return &domain.Lesson{ID: "l1", Title: "Intro", Order: 1, Type: t, Content: c}
}

func TestRender_Dispatch(t *testing.T) {
	tests := []struct {
		name   string
		lesson *domain.Lesson
		ctx    render.Context
		want   []render.BlockKind
	}{
		{"Text Edit", lesson(domain.LessonTypeText, domain.TextContent{Markdown: "# hi"}), edit,
			[]render.BlockKind{render.BlockTextArea}},
		{"Text Preview", lesson(domain.LessonTypeText, domain.TextContent{Markdown: "# hi"}), preview,
			[]render.BlockKind{render.BlockMarkdown}},
		{"ImageText Edit Empty", lesson(domain.LessonTypeImageText, domain.ImageTextContent{}), edit,
			[]render.BlockKind{render.BlockImagePicker, render.BlockTextArea}},
		{"ImageText Edit With Image", lesson(domain.LessonTypeImageText, domain.ImageTextContent{ImageURL: "data:image/png;base64,AA=="}), edit,
			[]render.BlockKind{render.BlockImagePicker, render.BlockImage, render.BlockTextArea}},
		{"ImageText Preview Without Image", lesson(domain.LessonTypeImageText, domain.ImageTextContent{Text: "caption"}), preview,
			[]render.BlockKind{render.BlockMarkdown}},
		{"ImageText Preview With Image", lesson(domain.LessonTypeImageText, domain.ImageTextContent{Text: "caption", ImageURL: "https://x/y.png"}), preview,
			[]render.BlockKind{render.BlockImage, render.BlockMarkdown}},
		{"Video Edit Empty", lesson(domain.LessonTypeVideo, domain.VideoContent{}), edit,
			[]render.BlockKind{render.BlockURLInput}},
		{"Video Edit With URL", lesson(domain.LessonTypeVideo, domain.VideoContent{URL: "https://v/embed/1"}), edit,
			[]render.BlockKind{render.BlockURLInput, render.BlockVideo}},
		{"Video Preview Empty", lesson(domain.LessonTypeVideo, domain.VideoContent{}), preview,
			[]render.BlockKind{}},
		{"Video Preview With URL", lesson(domain.LessonTypeVideo, domain.VideoContent{URL: "https://v/embed/1"}), preview,
			[]render.BlockKind{render.BlockVideo}},
		{"Quiz Edit", lesson(domain.LessonTypeQuiz, domain.QuizContent{Raw: `{"q":1}`}), edit,
			[]render.BlockKind{render.BlockTextArea, render.BlockHint}},
		{"Quiz Preview", lesson(domain.LessonTypeQuiz, domain.QuizContent{Raw: `{"q":1}`}), preview,
			[]render.BlockKind{render.BlockPreformatted}},
		{"Unknown Type", lesson(domain.LessonType("slides"), domain.TextContent{}), preview,
			[]render.BlockKind{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := render.Render(tt.lesson, tt.ctx)
			assert.Equal(t, tt.want, kinds(v.Blocks))
			assert.Equal(t, tt.lesson.ID, v.LessonID)
			assert.Equal(t, tt.ctx.Mode.String(), v.Mode)
		})
	}
}

func TestRender_Bindings(t *testing.T) {
	v := render.Render(lesson(domain.LessonTypeImageText, domain.ImageTextContent{Text: "caption"}), edit)
	require.Len(t, v.Blocks, 2)
	assert.Equal(t, render.BindContentImageURL, v.Blocks[0].Bind)
	assert.Equal(t, "image/*", v.Blocks[0].Accept)
	assert.Equal(t, render.BindContentText, v.Blocks[1].Bind)
	assert.Equal(t, "caption", v.Blocks[1].Value)

	v = render.Render(lesson(domain.LessonTypeQuiz, domain.QuizContent{}), edit)
	assert.Equal(t, render.BindContent, v.Blocks[0].Bind)
	assert.Equal(t, "Use JSON format for questions", v.Blocks[1].Value)
}

func TestRender_PreviewImageUsesTitleAsAlt(t *testing.T) {
	v := render.Render(lesson(domain.LessonTypeImageText, domain.ImageTextContent{ImageURL: "https://x/y.png"}), preview)
	require.NotEmpty(t, v.Blocks)
	assert.Equal(t, "Intro", v.Blocks[0].Alt)
	assert.Equal(t, "https://x/y.png", v.Blocks[0].Value)
}

func TestRender_ControlsOnlyInEditMode(t *testing.T) {
	l := lesson(domain.LessonTypeText, domain.TextContent{})

	v := render.Render(l, edit)
	assert.True(t, v.Editable)
	assert.Equal(t, render.TypeOptions, v.TypeSelector)

	v = render.Render(l, preview)
	assert.False(t, v.Editable)
	assert.Empty(t, v.TypeSelector)
}

func TestRender_Mismatch(t *testing.T) {
	// Text lesson still holding an image-text payload.
	v := render.Render(lesson(domain.LessonTypeText, domain.ImageTextContent{Text: "old"}), preview)
	assert.True(t, v.Mismatch)
	assert.Equal(t, []render.BlockKind{render.BlockMarkdown}, kinds(v.Blocks))
	assert.Empty(t, v.Blocks[0].Value)

	// Image-text lesson holding a string payload.
	v = render.Render(lesson(domain.LessonTypeImageText, domain.TextContent{Markdown: "old"}), edit)
	assert.True(t, v.Mismatch)

	v = render.Render(lesson(domain.LessonTypeText, domain.TextContent{Markdown: "ok"}), edit)
	assert.False(t, v.Mismatch)
}

func TestRender_IsPure(t *testing.T) {
	l := lesson(domain.LessonTypeVideo, domain.VideoContent{URL: "https://v/embed/1"})
	assert.Equal(t, render.Render(l, preview), render.Render(l, preview))
	assert.Equal(t, domain.VideoContent{URL: "https://v/embed/1"}, l.Content)
}

func TestRenderCourse(t *testing.T) {
	c := tree.New("Go for Teams")
	c = tree.AddModule(c, "m1")
	c = tree.AddLesson(c, "m1", "l1", domain.LessonTypeText)
	c = tree.AddLesson(c, "m1", "l2", domain.LessonTypeQuiz)
	c = tree.AddModule(c, "m2")

	t.Run("Edit", func(t *testing.T) {
		cv := render.RenderCourse(c, edit, render.Status{})
		assert.Equal(t, "Go for Teams", cv.Title)
		assert.True(t, cv.Editable)
		require.Len(t, cv.Modules, 2)
		require.Len(t, cv.Modules[0].Lessons, 2)
		assert.Empty(t, cv.Modules[1].Lessons)
		assert.Equal(t, 2, cv.Modules[1].Order)
		require.NotNil(t, cv.Publish)
		assert.Equal(t, "Publish Course", cv.Publish.Label)
		assert.False(t, cv.Publish.Disabled)
	})

	t.Run("Publishing", func(t *testing.T) {
		cv := render.RenderCourse(c, edit, render.Status{Publishing: true, Error: "Failed to save course"})
		require.NotNil(t, cv.Publish)
		assert.Equal(t, "Saving...", cv.Publish.Label)
		assert.True(t, cv.Publish.Disabled)
		assert.Equal(t, "Failed to save course", cv.Error)
	})

	t.Run("Preview Switches Every Lesson", func(t *testing.T) {
		cv := render.RenderCourse(c, preview, render.Status{})
		assert.Nil(t, cv.Publish)
		assert.False(t, cv.Editable)
		for _, m := range cv.Modules {
			assert.False(t, m.Editable)
			for _, v := range m.Lessons {
				assert.Equal(t, "preview", v.Mode)
			}
		}
	})
}
