package orchestrate

// ConfigError wraps the configuration problems that abort an invocation
// before anything executes: unknown skill, unknown package, dependency
// cycle, missing environment root. Callers distinguish it from execution
// failure with errors.As.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
