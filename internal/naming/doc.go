// Package naming turns track titles into output paths.
//
// [Sanitize] strips a display string down to filesystem-safe characters.
// [Resolve] finds the first free numbered variant of a stem ("Title", "Title 1", "Title 2", ...).
// [Reserver] serializes resolution across workers and remembers stems that are claimed
// but not yet written, so two tracks never receive the same name.
package naming
