package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLessonType(t *testing.T) {
	for _, lt := range domain.LessonTypes {
		got, err := domain.ParseLessonType(string(lt))
		require.NoError(t, err)
		assert.Equal(t, lt, got)
	}

	_, err := domain.ParseLessonType("slideshow")
	assert.ErrorIs(t, err, domain.ErrUnknownLessonType)
}

func TestDefaultContent(t *testing.T) {
	assert.Equal(t, domain.TextContent{}, domain.DefaultContent(domain.LessonTypeText))
	assert.Equal(t, domain.ImageTextContent{}, domain.DefaultContent(domain.LessonTypeImageText))
	assert.Equal(t, domain.VideoContent{}, domain.DefaultContent(domain.LessonTypeVideo))
	assert.Equal(t, domain.QuizContent{}, domain.DefaultContent(domain.LessonTypeQuiz))
}

func TestMarshalContent_WireShape(t *testing.T) {
	tests := []struct {
		name    string
		content domain.Content
		want    string
	}{
		{"text", domain.TextContent{Markdown: "# Hi"}, `"# Hi"`},
		{"image-text", domain.ImageTextContent{Text: "caption", ImageURL: "data:image/png;base64,AA=="}, `{"text":"caption","imageUrl":"data:image/png;base64,AA=="}`},
		{"video", domain.VideoContent{URL: "https://example.com/v"}, `"https://example.com/v"`},
		{"quiz", domain.QuizContent{Raw: `{"q":1}`}, `"{\"q\":1}"`},
		{"nil", nil, `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := domain.MarshalContent(tt.content)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestUnmarshalContent_ShapeWinsOverType(t *testing.T) {
	// An image-text object stored on a lesson that was switched to "text".
	c, err := domain.UnmarshalContent(domain.LessonTypeText, json.RawMessage(`{"text":"a","imageUrl":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.ImageTextContent{Text: "a", ImageURL: "b"}, c)
	assert.False(t, domain.ShapeMatches(domain.LessonTypeText, c))

	c, err = domain.UnmarshalContent(domain.LessonTypeImageText, json.RawMessage(`"plain"`))
	require.NoError(t, err)
	assert.Equal(t, domain.TextContent{Markdown: "plain"}, c)
	assert.False(t, domain.ShapeMatches(domain.LessonTypeImageText, c))

	c, err = domain.UnmarshalContent(domain.LessonTypeQuiz, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.QuizContent{}, c)

	_, err = domain.UnmarshalContent(domain.LessonTypeText, json.RawMessage(`42`))
	assert.Error(t, err)
}

func TestLesson_JSONRoundTrip(t *testing.T) {
	in := domain.Lesson{
		ID:      "lesson-1",
		Title:   "Pictures",
		Order:   2,
		Type:    domain.LessonTypeImageText,
		Content: domain.ImageTextContent{Text: "x", ImageURL: "y"},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"lesson-1","title":"Pictures","order":2,"type":"image-text","content":{"text":"x","imageUrl":"y"}}`, string(data))

	var out domain.Lesson
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestStringOf(t *testing.T) {
	s, ok := domain.StringOf(domain.VideoContent{URL: "u"})
	assert.True(t, ok)
	assert.Equal(t, "u", s)

	_, ok = domain.StringOf(domain.ImageTextContent{})
	assert.False(t, ok)

	_, ok = domain.StringOf(nil)
	assert.False(t, ok)
}
