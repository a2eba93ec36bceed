/*
Package syllabus is an authoring core for structured course content.

A course is an ordered tree of modules, each holding ordered lessons. Every
lesson carries a payload keyed by its content type: markdown text, an image
with caption, a video embed URL or a raw quiz definition.

# Concept

The tree is immutable. Every edit produces a new snapshot that shares all
untouched modules and lessons with the previous one (pkg/tree), and ordering
is kept contiguous under insert, delete and drag-reorder (pkg/reorder). An
editing session (pkg/editor) adopts snapshots one at a time, renders edit and
preview projections (pkg/render), ingests images as inline data URLs
(pkg/media) and finally submits the course to an external repository service
(pkg/publish).

# Surfaces

  - Library: embed pkg/editor in any host and drive it through its methods.
  - HTTP: pkg/adapters/http exposes sessions over a chi router with an SSE change stream.
  - CLI: cmd/syllabus serves the API, inspects drafts and previews courses in the terminal.

# Usage

	s := editor.New("draft-1", editor.WithPublisher(publish.NewPublisher(repo, nav)))
	defer s.Close()

	s.SetTitle("Go for Teams")
	m, _ := s.AddModule()
	l, _ := s.AddLesson(m, domain.LessonTypeText)
	s.UpdateLessonField(m, l, tree.FieldContent, "# Hello")

	ref, err := s.Publish(ctx)
*/
package syllabus
