/*
Package domain contains the core models of the course authoring tree.

It defines the Course, its ordered Modules and their ordered Lessons, and the
polymorphic lesson Content. The package is kept pure and free of I/O so the
tree operations, the renderer and the serializer can share it without pulling
in adapters.

# Key Entities

  - Course: the transient editor-side aggregate (title + ordered modules).
  - Module: an ordered container of lessons with a 1-based Order.
  - Lesson: a unit of content with a declared LessonType and a Content payload.
  - Content: a sealed sum type (TextContent, ImageTextContent, VideoContent,
    QuizContent) matched exhaustively through VisitContent.
  - CourseDiff: identity-based change report between two tree snapshots.

Snapshots are treated as immutable once handed to a caller. Modules and
lessons are referenced by pointer so that unaffected branches are shared
between consecutive snapshots.
*/
package domain
