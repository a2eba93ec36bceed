// Package render projects lessons into edit or preview views.
//
// Rendering is a pure function of the lesson and an explicit Context; the
// preview flag is never read from ambient state. Views are plain data so
// back-ends (HTML, terminal) can draw them without knowing lesson types.
package render

import (
	"github.com/aretw0/syllabus/pkg/domain"
)

// Mode selects the rendering path.
type Mode int

const (
	ModeEdit Mode = iota
	ModePreview
)

func (m Mode) String() string {
	if m == ModePreview {
		return "preview"
	}
	return "edit"
}

// Context carries the rendering parameters shared by every lesson.
type Context struct {
	Mode Mode
}

// BlockKind identifies a visual element of a lesson view.
type BlockKind string

const (
	BlockTextArea     BlockKind = "textarea"
	BlockURLInput     BlockKind = "url-input"
	BlockImagePicker  BlockKind = "image-picker"
	BlockImage        BlockKind = "image"
	BlockMarkdown     BlockKind = "markdown"
	BlockVideo        BlockKind = "video"
	BlockPreformatted BlockKind = "pre"
	BlockHint         BlockKind = "hint"
)

// Binding paths used by input blocks.
const (
	BindContent         = "content"
	BindContentText     = "content.text"
	BindContentImageURL = "content.imageUrl"
)

// Block is one element of a lesson view. Bind names the update path of
// input blocks and is empty for display blocks.
type Block struct {
	Kind        BlockKind `json:"kind"`
	Bind        string    `json:"bind,omitempty"`
	Value       string    `json:"value,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Alt         string    `json:"alt,omitempty"`
	Accept      string    `json:"accept,omitempty"`
}

// Option is an entry of the lesson type selector.
type Option struct {
	Value domain.LessonType `json:"value"`
	Label string            `json:"label"`
}

// TypeOptions are the selector entries, in display order.
var TypeOptions = []Option{
	{Value: domain.LessonTypeText, Label: "Text"},
	{Value: domain.LessonTypeImageText, Label: "Image+Text"},
	{Value: domain.LessonTypeVideo, Label: "Video"},
	{Value: domain.LessonTypeQuiz, Label: "Quiz"},
}

// View is the rendered projection of a single lesson.
type View struct {
	LessonID string            `json:"lesson_id"`
	Title    string            `json:"title"`
	Type     domain.LessonType `json:"type"`
	Mode     string            `json:"mode"`

	// Editable controls: title input, type selector and delete action are
	// only offered in edit mode.
	Editable     bool     `json:"editable"`
	TypeSelector []Option `json:"type_selector,omitempty"`

	// Mismatch is true when the stored payload does not have the shape the
	// declared type expects (the type was switched after content was set).
	Mismatch bool `json:"mismatch,omitempty"`

	Blocks []Block `json:"blocks"`
}

const (
	placeholderText  = "Write your text here..."
	placeholderVideo = "Enter video URL..."
	placeholderQuiz  = "Enter quiz JSON structure..."
	hintQuiz         = "Use JSON format for questions"
)

// Render projects a lesson for the given context.
func Render(l *domain.Lesson, ctx Context) View {
	v := View{
		LessonID: l.ID,
		Title:    l.Title,
		Type:     l.Type,
		Mode:     ctx.Mode.String(),
		Editable: ctx.Mode == ModeEdit,
		Mismatch: !l.ContentMatchesType(),
	}
	if v.Editable {
		v.TypeSelector = TypeOptions
	}

	switch l.Type {
	case domain.LessonTypeText:
		v.Blocks = renderText(l, ctx)
	case domain.LessonTypeImageText:
		v.Blocks = renderImageText(l, ctx)
	case domain.LessonTypeVideo:
		v.Blocks = renderVideo(l, ctx)
	case domain.LessonTypeQuiz:
		v.Blocks = renderQuiz(l, ctx)
	default:
		v.Blocks = []Block{}
	}
	return v
}

func renderText(l *domain.Lesson, ctx Context) []Block {
	text, _ := domain.StringOf(l.Content)
	if ctx.Mode == ModePreview {
		return []Block{{Kind: BlockMarkdown, Value: text}}
	}
	return []Block{{Kind: BlockTextArea, Bind: BindContent, Value: text, Placeholder: placeholderText}}
}

func renderImageText(l *domain.Lesson, ctx Context) []Block {
	it, _ := domain.ImageTextOf(l.Content)

	if ctx.Mode == ModePreview {
		blocks := make([]Block, 0, 2)
		if it.ImageURL != "" {
			blocks = append(blocks, Block{Kind: BlockImage, Value: it.ImageURL, Alt: l.Title})
		}
		return append(blocks, Block{Kind: BlockMarkdown, Value: it.Text})
	}

	blocks := []Block{{Kind: BlockImagePicker, Bind: BindContentImageURL, Accept: "image/*"}}
	if it.ImageURL != "" {
		blocks = append(blocks, Block{Kind: BlockImage, Value: it.ImageURL, Alt: "Preview"})
	}
	return append(blocks, Block{Kind: BlockTextArea, Bind: BindContentText, Value: it.Text, Placeholder: placeholderText})
}

// renderVideo shows the embedded player in both modes once a URL is set.
func renderVideo(l *domain.Lesson, ctx Context) []Block {
	url, _ := domain.StringOf(l.Content)

	blocks := make([]Block, 0, 2)
	if ctx.Mode == ModeEdit {
		blocks = append(blocks, Block{Kind: BlockURLInput, Bind: BindContent, Value: url, Placeholder: placeholderVideo})
	}
	if url != "" {
		blocks = append(blocks, Block{Kind: BlockVideo, Value: url})
	}
	return blocks
}

func renderQuiz(l *domain.Lesson, ctx Context) []Block {
	raw, _ := domain.StringOf(l.Content)
	if ctx.Mode == ModePreview {
		return []Block{{Kind: BlockPreformatted, Value: raw}}
	}
	return []Block{
		{Kind: BlockTextArea, Bind: BindContent, Value: raw, Placeholder: placeholderQuiz},
		{Kind: BlockHint, Value: hintQuiz},
	}
}
