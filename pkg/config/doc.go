// Package config loads the webrig build configuration.
//
// Configuration is layered with koanf, lowest priority first:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the project file (webrig.toml, .webrig.toml, webrig.yaml or webrig.yml)
//  3. WEBRIG_* keys from a .env file next to the project file
//  4. WEBRIG_* environment variables (WEBRIG_OUTPUT__PATH -> output.path)
//  5. command-line flags that were explicitly set
//
// Loader references in rules accept the shorthand used by webpack
// configurations:
//
//	use = ["style-loader", "css-loader"]
//	use = "url-loader?limit=10000"
//	use = ['image-webpack?{progressive:true, optimizationLevel: 7}']
//
//	[[rules.use]]
//	loader = "url-loader"
//	options = { limit = 10000 }
package config
