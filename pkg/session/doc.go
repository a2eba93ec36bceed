/*
Package session implements the registry of open editing sessions.

It keeps one editor.Session per draft id, restoring drafts from a
ports.DraftStore on first access, and serializes open/close/save per id with
reference-counted local locks plus an optional distributed lock so replicas
sharing a store do not resume the same draft twice.
*/
package session
