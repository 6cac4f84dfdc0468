// Package transforms provides the named steps a rule chain is made of.
//
// A Step takes an Asset and returns a new one. Raw assets carry file bytes;
// script assets carry CommonJS source whose require("...") calls are the
// module's dependencies. Every chain must end in a script asset.
//
// Built-ins are registered under their webpack loader names. The "-loader"
// suffix is optional when looking a step up, so "image-webpack" and
// "image-webpack-loader" name the same step.
package transforms
