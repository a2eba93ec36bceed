package ports

import (
	"context"
	"fmt"

	"github.com/aretw0/syllabus/pkg/domain"
)

// CourseRef identifies a course created by the repository.
type CourseRef struct {
	ID string `json:"id"`
}

// CourseRepository is the external service that stores published courses.
type CourseRepository interface {
	// CreateCourse persists the payload and returns the new course id.
	// Failures reported by the service are returned as *ServiceError.
	CreateCourse(ctx context.Context, payload domain.CoursePayload) (CourseRef, error)
}

// ServiceError is a failure reported by the course repository. Message is
// the human-readable text the service embedded in its response, if any.
type ServiceError struct {
	Status  int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("course repository: %s (status %d)", e.Message, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("course repository: %v", e.Err)
	default:
		return fmt.Sprintf("course repository: status %d", e.Status)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Navigator moves the user to another view, e.g. "/course/<id>/edit".
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, path string) error { return f(ctx, path) }
