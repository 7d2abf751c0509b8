// Package directive finds author directives embedded in chapter text.
//
// Two directive shapes are recognized:
//
//	{{#author <username>}}
//	{{#authors <username>,<username>,...}}
//
// Whitespace between the braces and the name, and between the name and the
// payload, may be any Unicode white space, not only ASCII.
//
// A backslash before the opening braces escapes the directive:
//
//	\{{#author someone}}
//
// Escaped directives are consumed by the scan so that the unescaped tail is
// never picked up as a live directive, but they never produce an Occurrence.
// Directives with another name (e.g. {{#include ...}}) or with an empty
// payload are consumed the same way and left for other preprocessors.
//
// # Offsets
//
// Occurrence offsets are byte offsets into the scanned string. Raw and the
// payload strings are substrings of the input, not copies.
//
// # Concurrency
//
// The matching pattern is compiled once per process, on first use, and shared
// read-only by every scan. Scan holds no other state and may be called from
// any number of goroutines.
package directive
