// Package html draws render views as HTML fragments.
//
// Markdown is converted with goldmark and the result of every lesson is
// passed through a bluemonday policy, so user content cannot inject script.
package html

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/aretw0/syllabus/pkg/render"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts views to sanitized HTML. Safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New creates a Renderer with GitHub-flavoured markdown and a policy that
// allows data: images and video iframes.
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()
	policy.AllowElements("iframe", "textarea", "input", "select", "option", "label")
	policy.AllowAttrs("src", "allowfullscreen", "frameborder").OnElements("iframe")
	policy.AllowAttrs("name", "placeholder", "rows").OnElements("textarea")
	policy.AllowAttrs("name", "type", "value", "placeholder", "accept").OnElements("input")
	policy.AllowAttrs("name").OnElements("select")
	policy.AllowAttrs("value", "selected").OnElements("option")
	policy.AllowDataAttributes()
	policy.AllowAttrs("class").Globally()

	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: policy,
	}
}

// Markdown converts markdown source to sanitized HTML.
func (r *Renderer) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Lesson writes a single lesson view.
func (r *Renderer) Lesson(w io.Writer, v render.View) error {
	var buf bytes.Buffer
	class := "lesson lesson-" + string(v.Type)
	if v.Mismatch {
		class += " lesson-mismatch"
	}
	fmt.Fprintf(&buf, `<article class="%s" data-lesson="%s">`, class, template.HTMLEscapeString(v.LessonID))
	fmt.Fprintf(&buf, `<h3>%s</h3>`, template.HTMLEscapeString(v.Title))

	if len(v.TypeSelector) > 0 {
		buf.WriteString(`<select name="type">`)
		for _, opt := range v.TypeSelector {
			selected := ""
			if opt.Value == v.Type {
				selected = ` selected`
			}
			fmt.Fprintf(&buf, `<option value="%s"%s>%s</option>`,
				template.HTMLEscapeString(string(opt.Value)), selected, template.HTMLEscapeString(opt.Label))
		}
		buf.WriteString(`</select>`)
	}

	for _, b := range v.Blocks {
		if err := r.block(&buf, b); err != nil {
			return err
		}
	}
	buf.WriteString(`</article>`)

	_, err := io.WriteString(w, r.policy.Sanitize(buf.String()))
	return err
}

func (r *Renderer) block(buf *bytes.Buffer, b render.Block) error {
	esc := template.HTMLEscapeString
	switch b.Kind {
	case render.BlockMarkdown:
		out, err := r.Markdown(b.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(buf, `<div class="markdown">%s</div>`, out)
	case render.BlockTextArea:
		fmt.Fprintf(buf, `<textarea data-bind="%s" placeholder="%s" rows="8">%s</textarea>`,
			esc(b.Bind), esc(b.Placeholder), esc(b.Value))
	case render.BlockURLInput:
		fmt.Fprintf(buf, `<input type="url" data-bind="%s" value="%s" placeholder="%s">`,
			esc(b.Bind), esc(b.Value), esc(b.Placeholder))
	case render.BlockImagePicker:
		fmt.Fprintf(buf, `<input type="file" data-bind="%s" accept="%s">`, esc(b.Bind), esc(b.Accept))
	case render.BlockImage:
		fmt.Fprintf(buf, `<img src="%s" alt="%s">`, esc(b.Value), esc(b.Alt))
	case render.BlockVideo:
		fmt.Fprintf(buf, `<iframe src="%s" frameborder="0" allowfullscreen></iframe>`, esc(b.Value))
	case render.BlockPreformatted:
		fmt.Fprintf(buf, `<pre>%s</pre>`, esc(b.Value))
	case render.BlockHint:
		fmt.Fprintf(buf, `<p class="hint">%s</p>`, esc(b.Value))
	}
	return nil
}

// Course writes the whole course view.
func (r *Renderer) Course(w io.Writer, cv render.CourseView) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<section class="course course-%s">`, cv.Mode)
	fmt.Fprintf(&sb, `<h1>%s</h1>`, template.HTMLEscapeString(cv.Title))
	if cv.Error != "" {
		fmt.Fprintf(&sb, `<p class="error">%s</p>`, template.HTMLEscapeString(cv.Error))
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	for _, m := range cv.Modules {
		if _, err := fmt.Fprintf(w, `<section class="module"><h2>%d. %s</h2>`, m.Order, template.HTMLEscapeString(m.Title)); err != nil {
			return err
		}
		for _, v := range m.Lessons {
			if err := r.Lesson(w, v); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</section>`); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, `</section>`)
	return err
}
