package editor

import "github.com/aretw0/syllabus/pkg/domain"

// EventKind identifies what changed.
type EventKind string

const (
	// EventTree carries a structural diff of the course.
	EventTree EventKind = "tree"
	// EventStatus reports a change of preview mode, error or publishing state.
	EventStatus EventKind = "status"
	// EventClosed is the last event of a session.
	EventClosed EventKind = "closed"
)

// Event is delivered to session listeners.
type Event struct {
	Kind       EventKind          `json:"kind"`
	SessionID  string             `json:"session_id"`
	Diff       *domain.CourseDiff `json:"diff,omitempty"`
	Preview    bool               `json:"preview"`
	Publishing bool               `json:"publishing"`
	Error      string             `json:"error,omitempty"`
	CourseID   string             `json:"course_id,omitempty"`
}

// Listener receives session events.
type Listener func(Event)
