// Package registry provides a generic, type-safe registry keyed by name.
// Transform factories and plugin factories are stored in registries; an item
// may be reachable through several aliases (for example "file-loader" and
// "file"), all of which resolve to the canonical name.
package registry
