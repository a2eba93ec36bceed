// Package outline builds a course tree from a YAML or JSON outline file.
package outline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/syllabus/pkg/domain"
	"github.com/aretw0/syllabus/pkg/media"
	"github.com/aretw0/syllabus/pkg/tree"
	"gopkg.in/yaml.v3"
)

// Outline is the document format of an outline file.
type Outline struct {
	Title   string   `yaml:"title" json:"title"`
	Modules []Module `yaml:"modules" json:"modules"`
}

// Module lists the lessons of one module.
type Module struct {
	Title   string   `yaml:"title" json:"title"`
	Lessons []Lesson `yaml:"lessons" json:"lessons"`
}

// Lesson describes a lesson. Content is the string payload of text, video
// and quiz lessons; Text and Image fill image-text lessons. Image is a URL
// or a path relative to the outline file, which is embedded as a data URL.
type Lesson struct {
	Title   string `yaml:"title" json:"title"`
	Type    string `yaml:"type" json:"type"`
	Content string `yaml:"content" json:"content"`
	Text    string `yaml:"text" json:"text"`
	Image   string `yaml:"image" json:"image"`
}

// Load reads an outline file. Files ending in .json are parsed as JSON,
// anything else as YAML.
func Load(path string) (*Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outline: %w", err)
	}

	var o Outline
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return &o, nil
}

// Build creates the course described by o. Missing titles keep the defaults
// of the tree store and a missing type means text. baseDir resolves local
// image paths.
func Build(o *Outline, ids tree.IDGenerator, baseDir string) (*domain.Course, error) {
	c := tree.New(o.Title)

	for i, m := range o.Modules {
		moduleID := ids.NewModuleID()
		c = tree.AddModule(c, moduleID)
		if m.Title != "" {
			c = tree.UpdateModuleTitle(c, moduleID, m.Title)
		}

		for j, l := range m.Lessons {
			t := domain.LessonTypeText
			if l.Type != "" {
				var err error
				if t, err = domain.ParseLessonType(l.Type); err != nil {
					return nil, fmt.Errorf("module %d lesson %d: %w", i+1, j+1, err)
				}
			}

			lessonID := ids.NewLessonID()
			c = tree.AddLesson(c, moduleID, lessonID, t)
			if l.Title != "" {
				c = tree.UpdateLessonField(c, moduleID, lessonID, tree.FieldTitle, l.Title)
			}

			if t != domain.LessonTypeImageText {
				if l.Content != "" {
					c = tree.UpdateLessonField(c, moduleID, lessonID, tree.FieldContent, l.Content)
				}
				continue
			}

			image, err := resolveImage(l.Image, baseDir)
			if err != nil {
				return nil, fmt.Errorf("module %d lesson %d: %w", i+1, j+1, err)
			}
			text := l.Text
			if text == "" {
				text = l.Content
			}
			c = tree.UpdateLessonContent(c, moduleID, lessonID, domain.ImageTextContent{Text: text, ImageURL: image})
		}
	}
	return c, nil
}

// resolveImage keeps URLs as they are and inlines local files.
func resolveImage(ref, baseDir string) (string, error) {
	switch {
	case ref == "":
		return "", nil
	case strings.HasPrefix(ref, "data:"), strings.Contains(ref, "://"):
		return ref, nil
	}

	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return media.EncodeDataURL(data), nil
}
