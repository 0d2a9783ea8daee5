package observe

// Instruments bundles the tracer, metrics, and logger handed to callers
// that want a single injection point for telemetry.
type Instruments struct {
	Tracer  Tracer
	Metrics Metrics
	Logger  Logger
}

// NewInstruments builds an instrument set from a configured Observer.
func NewInstruments(obs Observer) (*Instruments, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return &Instruments{
		Tracer:  NewTracer(obs.Tracer()),
		Metrics: metrics,
		Logger:  obs.Logger(),
	}, nil
}

// NoopInstruments returns an instrument set that discards everything.
// Useful as a default when callers do not configure telemetry.
func NoopInstruments() *Instruments {
	return &Instruments{
		Tracer:  noopTracer{},
		Metrics: noopMetrics{},
		Logger:  &noopLogger{},
	}
}
