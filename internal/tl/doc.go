// Package tl parses the text of one schema layer into a domain.ParsedSchema.
//
// A layer is a flag-encoded definition language with one definition per line:
//
//	name#id param:type param:flags.0?Vector<T> = Result;
//
// Object definitions come first; a "---functions---" marker switches to
// function definitions. Parsing is a pure function with no I/O. Lines that
// break the grammar are skipped and reported through the verbose logger, so
// Parse never fails.
package tl
