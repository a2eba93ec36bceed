package http

import (
	"fmt"

	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/editor"
	"github.com/aretw0/syllabus/pkg/tree"
	"github.com/mitchellh/mapstructure"
)

// lessonPatch is a partial lesson update. Content is either a string or an
// {text, imageUrl} object; Text edits only the caption of image-text content.
type lessonPatch struct {
	Title   *string `json:"title"`
	Type    *string `json:"type"`
	Content any     `json:"content"`
	Text    *string `json:"text"`
}

type imageTextPatch struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// content resolves the Content field. ok is false when it was not sent.
func (p lessonPatch) content() (value string, object *domain.ImageTextContent, ok bool, err error) {
	switch v := p.Content.(type) {
	case nil:
		return "", nil, false, nil
	case string:
		return v, nil, true, nil
	case map[string]any:
		var it imageTextPatch
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:     "json",
			ErrorUnused: true,
			Result:      &it,
		})
		if err != nil {
			return "", nil, false, err
		}
		if err := dec.Decode(v); err != nil {
			return "", nil, false, fmt.Errorf("invalid content object: %w", err)
		}
		return "", &domain.ImageTextContent{Text: it.Text, ImageURL: it.ImageURL}, true, nil
	default:
		return "", nil, false, fmt.Errorf("invalid content: expected string or object, got %T", v)
	}
}

// apply validates the whole patch before touching the session so a bad
// field leaves the lesson unchanged.
func (p lessonPatch) apply(sess *editor.Session, moduleID, lessonID string) error {
	var target domain.LessonType
	if l := tree.FindLesson(sess.Snapshot(), moduleID, lessonID); l != nil {
		target = l.Type
	}
	if p.Type != nil {
		t, err := domain.ParseLessonType(*p.Type)
		if err != nil {
			return err
		}
		target = t
	}
	value, object, hasContent, err := p.content()
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	if p.Text != nil && target != "" && target != domain.LessonTypeImageText {
		return fmt.Errorf("%w: text applies to image-text lessons only", errInvalidBody)
	}

	if p.Title != nil {
		if err := sess.UpdateLessonField(moduleID, lessonID, tree.FieldTitle, *p.Title); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := sess.UpdateLessonField(moduleID, lessonID, tree.FieldType, *p.Type); err != nil {
			return err
		}
	}
	if hasContent {
		if object != nil {
			err = sess.UpdateLessonContent(moduleID, lessonID, *object)
		} else {
			err = sess.UpdateLessonField(moduleID, lessonID, tree.FieldContent, value)
		}
		if err != nil {
			return err
		}
	}
	if p.Text != nil {
		if err := sess.SetLessonText(moduleID, lessonID, *p.Text); err != nil {
			return err
		}
	}
	return nil
}
