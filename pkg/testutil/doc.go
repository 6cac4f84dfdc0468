// Package testutil provides fixtures for webrig tests.
//
// Key components:
//   - TestProject: a project directory under t.TempDir with helpers to add
//     source files, node_modules packages and a webrig.toml
//   - file assertions for checking what a build wrote
//
// All fixture content is defined inline in the tests that use it.
package testutil
