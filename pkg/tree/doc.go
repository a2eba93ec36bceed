/*
Package tree implements the structural operations of the course tree.

Every operation is a pure transformation: it takes the current snapshot and
returns the next one, never mutating the input. Unaffected modules and lessons
are shared by pointer between snapshots (copy-on-write through WithModule and
WithLesson), and an operation addressed at an id that does not resolve returns
the input snapshot itself.

After each structural operation module orders are exactly 1..N and lesson
orders are exactly 1..M inside every module.
*/
package tree
