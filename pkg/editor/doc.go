/*
Package editor implements the editing session of a single course.

A Session owns the current immutable snapshot of the course tree and adopts
a new snapshot on every structural change. Mutations are serialized by a
mutex and run to completion; the two slow operations (reading an image and
publishing) run outside the lock and re-enter with apply-if-present
semantics, so a completion that arrives after the targeted lesson was
deleted, or after the session was closed, changes nothing.

# Events

Listeners registered with Subscribe receive an Event after every change, in
the order the changes were applied. Listeners run while the session lock is
held and must neither block nor call back into the session.
*/
package editor
