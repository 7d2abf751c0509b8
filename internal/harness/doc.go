// Package harness runs YAML conformance cases against the directive rewriter.
//
// A case names an input document and the text and authors the rewrite must
// produce:
//
//	name: single_author
//	description: A single-author directive is removed and its username listed
//	input: "A {{#author foo}} B"
//	expect:
//	  text: "A  B"
//	  authors: [foo]
//	  occurrences: 1
//
// Run evaluates a case and reports every mismatch. RunWithGolden also
// snapshots the full result, occurrence offsets included, to
// testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
