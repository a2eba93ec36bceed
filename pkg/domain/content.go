package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LessonType is the declared content type of a lesson.
type LessonType string

const (
	// LessonTypeText is a markdown text lesson. Payload: raw string.
	LessonTypeText LessonType = "text"
	// LessonTypeImageText is an image followed by markdown text. Payload: {text, imageUrl}.
	LessonTypeImageText LessonType = "image-text"
	// LessonTypeVideo is an embedded video. Payload: URL string.
	LessonTypeVideo LessonType = "video"
	// LessonTypeQuiz is quiz markup. Payload: JSON string, never parsed here.
	LessonTypeQuiz LessonType = "quiz"
)

// LessonTypes lists the supported types in selector order.
var LessonTypes = []LessonType{LessonTypeText, LessonTypeImageText, LessonTypeVideo, LessonTypeQuiz}

// ParseLessonType validates a type tag.
func ParseLessonType(s string) (LessonType, error) {
	for _, t := range LessonTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLessonType, s)
}

// Content is the lesson payload. The set of implementations is closed.
type Content interface {
	isContent()
}

// TextContent holds markdown source.
type TextContent struct {
	Markdown string
}

// ImageTextContent holds an image (data URL or remote URL) and markdown text.
type ImageTextContent struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// VideoContent holds an embeddable video URL.
type VideoContent struct {
	URL string
}

// QuizContent holds the quiz markup exactly as typed.
type QuizContent struct {
	Raw string
}

func (TextContent) isContent()      {}
func (ImageTextContent) isContent() {}
func (VideoContent) isContent()     {}
func (QuizContent) isContent()      {}

// ContentVisitor matches every Content variant. Implementations must handle
// all of them, so adding a variant fails compilation at every match site.
type ContentVisitor[T any] interface {
	Text(TextContent) T
	ImageText(ImageTextContent) T
	Video(VideoContent) T
	Quiz(QuizContent) T
}

// VisitContent dispatches c to the matching visitor method.
// A nil content yields the zero value of T.
func VisitContent[T any](c Content, v ContentVisitor[T]) T {
	switch c := c.(type) {
	case TextContent:
		return v.Text(c)
	case ImageTextContent:
		return v.ImageText(c)
	case VideoContent:
		return v.Video(c)
	case QuizContent:
		return v.Quiz(c)
	}
	var zero T
	return zero
}

// DefaultContent returns the empty payload for a freshly created lesson of type t.
func DefaultContent(t LessonType) Content {
	if t == LessonTypeImageText {
		return ImageTextContent{}
	}
	return StringContent(t, "")
}

// StringContent wraps a raw string into the variant for t. An image-text
// lesson receives a TextContent, i.e. a shape mismatch.
func StringContent(t LessonType, s string) Content {
	switch t {
	case LessonTypeVideo:
		return VideoContent{URL: s}
	case LessonTypeQuiz:
		return QuizContent{Raw: s}
	default:
		return TextContent{Markdown: s}
	}
}

type stringOf struct{}

func (stringOf) Text(c TextContent) stringResult        { return stringResult{c.Markdown, true} }
func (stringOf) ImageText(ImageTextContent) stringResult { return stringResult{} }
func (stringOf) Video(c VideoContent) stringResult       { return stringResult{c.URL, true} }
func (stringOf) Quiz(c QuizContent) stringResult         { return stringResult{c.Raw, true} }

type stringResult struct {
	value string
	ok    bool
}

// StringOf extracts the string payload of a string-shaped variant.
func StringOf(c Content) (string, bool) {
	r := VisitContent[stringResult](c, stringOf{})
	return r.value, r.ok
}

// ImageTextOf extracts the image-text payload. ok is false for string-shaped content.
func ImageTextOf(c Content) (ImageTextContent, bool) {
	it, ok := c.(ImageTextContent)
	return it, ok
}

// ShapeMatches reports whether c has the wire shape expected for t.
func ShapeMatches(t LessonType, c Content) bool {
	if c == nil {
		return false
	}
	_, isObject := ImageTextOf(c)
	return isObject == (t == LessonTypeImageText)
}

type marshalContent struct{}

func (marshalContent) Text(c TextContent) marshalResult { return marshalString(c.Markdown) }
func (marshalContent) ImageText(c ImageTextContent) marshalResult {
	b, err := json.Marshal(c)
	return marshalResult{b, err}
}
func (marshalContent) Video(c VideoContent) marshalResult { return marshalString(c.URL) }
func (marshalContent) Quiz(c QuizContent) marshalResult   { return marshalString(c.Raw) }

type marshalResult struct {
	data []byte
	err  error
}

func marshalString(s string) marshalResult {
	b, err := json.Marshal(s)
	return marshalResult{b, err}
}

// MarshalContent encodes content in wire shape: a bare string for the
// string variants, {"text","imageUrl"} for image-text. Nil encodes as "".
func MarshalContent(c Content) ([]byte, error) {
	if c == nil {
		return []byte(`""`), nil
	}
	r := VisitContent[marshalResult](c, marshalContent{})
	return r.data, r.err
}

// UnmarshalContent decodes a wire payload for a lesson of type t. The shape
// of the data wins over the type tag so a mismatched payload round-trips.
func UnmarshalContent(t LessonType, raw json.RawMessage) (Content, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return DefaultContent(t), nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("failed to decode content string: %w", err)
		}
		return StringContent(t, s), nil
	case '{':
		var it ImageTextContent
		if err := json.Unmarshal(trimmed, &it); err != nil {
			return nil, fmt.Errorf("failed to decode content object: %w", err)
		}
		return it, nil
	default:
		return nil, fmt.Errorf("unsupported content payload %.20q", string(trimmed))
	}
}
