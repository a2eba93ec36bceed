/*
Package observability provides Prometheus instrumentation for the course editor.

Metrics live in their own registry so several editors (or tests) can run in
one process. A nil *Metrics is valid and records nothing.
*/
package observability
