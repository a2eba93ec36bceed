/*
Package ports defines the driven ports (interfaces) of the course editor.

These interfaces decouple the editing core from external implementations,
allowing sessions to publish to any course repository and to park drafts in
various storage backends.

# Key Interfaces

  - CourseRepository: persists a published course payload and returns its id.
  - Navigator: moves the user to another view after a successful publish.
  - DraftStore: saves and restores in-progress editing sessions.
  - DistributedLocker: coordinates publish and draft access across replicas.
*/
package ports
