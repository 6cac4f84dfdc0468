// Package rules dispatches file paths to transform chains.
//
// A rule table is an ordered list of rules. Each rule has a Test pattern, an
// optional Exclude pattern and a chain of loaders:
//
//	[[rules]]
//	test = '\.tsx$'
//	exclude = '/node_modules/'
//	use = "awesome-typescript-loader"
//
//	[[rules]]
//	test = '\.css$'
//	use = ["style-loader", "css-loader"]
//
// # Pattern Conventions
//
// Patterns are regular expressions in the ECMAScript dialect, never globs.
// They may be written bare (`\.tsx$`) or as a JavaScript literal
// (`/\.tsx$/i`). Literal flags i, m and s are honoured; g, u and y are
// accepted and ignored.
//
// # Rule Priority
//
// Rules are evaluated in declaration order and the first rule whose Test
// matches and whose Exclude does not match wins. A later, more specific rule
// never overrides an earlier broader one, so when two rules overlap (svg in
// both a font and an image rule) the earlier rule is used.
//
// A Table is immutable after Compile and safe for concurrent use.
package rules
