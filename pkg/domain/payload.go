package domain

import "encoding/json"

// CoursePayload is the persistence contract accepted by the course
// repository. Editor-local ids are not part of it.
type CoursePayload struct {
	Title   string          `json:"title"`
	Modules []ModulePayload `json:"modules"`
}

// ModulePayload is a module without its id.
type ModulePayload struct {
	Title   string          `json:"title"`
	Order   int             `json:"order"`
	Lessons []LessonPayload `json:"lessons"`
}

// LessonPayload is a lesson without its id. Content keeps the wire shape of
// the in-memory payload, mismatched or not.
type LessonPayload struct {
	Title   string     `json:"title"`
	Content Content    `json:"-"`
	Type    LessonType `json:"type"`
	Order   int        `json:"order"`
}

type lessonPayloadJSON struct {
	Title   string          `json:"title"`
	Content json.RawMessage `json:"content"`
	Type    LessonType      `json:"type"`
	Order   int             `json:"order"`
}

// MarshalJSON encodes the lesson payload with content as a string or a
// {text, imageUrl} object.
func (p LessonPayload) MarshalJSON() ([]byte, error) {
	content, err := MarshalContent(p.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(lessonPayloadJSON{
		Title:   p.Title,
		Content: content,
		Type:    p.Type,
		Order:   p.Order,
	})
}

// UnmarshalJSON decodes a lesson payload.
func (p *LessonPayload) UnmarshalJSON(data []byte) error {
	var aux lessonPayloadJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	content, err := UnmarshalContent(aux.Type, aux.Content)
	if err != nil {
		return err
	}
	*p = LessonPayload{Title: aux.Title, Content: content, Type: aux.Type, Order: aux.Order}
	return nil
}
