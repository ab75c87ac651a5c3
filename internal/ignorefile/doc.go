// Package ignorefile reconciles required patterns into a .gitignore file.
//
// Existing lines are treated as opaque text and are never reordered or
// rewritten. Patterns that no non-comment line already provides are escaped
// and appended in lexicographic order; when nothing is missing the file is
// not touched at all.
package ignorefile
