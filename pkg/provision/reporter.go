package provision

type (
	// Reporter receives pipeline progress. Run wraps a named step and relays
	// its error after reporting the outcome; Skip announces that the whole
	// pipeline was bypassed.
	Reporter interface {
		Run(name string, fn func() error) error
		Skip(message string)
	}

	// NopReporter discards all progress reporting.
	NopReporter struct{}
)

// Run executes fn without reporting anything.
func (NopReporter) Run(_ string, fn func() error) error { return fn() }

// Skip does nothing.
func (NopReporter) Skip(string) {}
