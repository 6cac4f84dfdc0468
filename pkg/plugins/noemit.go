package plugins

// NoEmitOnErrors holds the build output in memory until the build succeeds
type NoEmitOnErrors struct{}

func newNoEmitOnErrors(map[string]interface{}, Env) (Plugin, error) {
	return NoEmitOnErrors{}, nil
}

func (NoEmitOnErrors) Name() string { return "no-emit-on-errors" }

func (NoEmitOnErrors) Configure(opts *Options) {
	opts.Staged = true
}
