package kernel

// Option configures a [Kernel] at construction time.
type Option interface {
	apply(*options)
}

type options struct {
	maxProcess   int
	maxServices  int
	tickPeriodMs int
	tickSource   TickSource
	logger       Logger
	metrics      *Metrics
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

const (
	defaultMaxProcess   = 16
	defaultMaxServices  = 8
	defaultTickPeriodMs = 10
)

func resolveOptions(opts []Option) options {
	o := options{
		maxProcess:   defaultMaxProcess,
		maxServices:  defaultMaxServices,
		tickPeriodMs: defaultTickPeriodMs,
		tickSource:   NewManualTickSource(),
		logger:       NoopLogger{},
	}
	for _, opt := range opts {
		opt.apply(&o)
	}
	if o.metrics == nil {
		o.metrics = newMetrics(o.maxProcess)
	}
	return o
}

// WithMaxProcess bounds the application task pool (excluding idle).
func WithMaxProcess(n int) Option {
	return optionFunc(func(o *options) { o.maxProcess = n })
}

// WithMaxServices bounds the fixed service table.
func WithMaxServices(n int) Option {
	return optionFunc(func(o *options) { o.maxServices = n })
}

// WithTickPeriod sets the nominal duration of one tick in milliseconds,
// used by [Kernel.Now] to convert the tick counter to elapsed time.
func WithTickPeriod(ms int) Option {
	return optionFunc(func(o *options) { o.tickPeriodMs = ms })
}

// WithTickSource supplies the driver for the periodic timer interrupt.
// Defaults to a [ManualTickSource].
func WithTickSource(ts TickSource) Option {
	return optionFunc(func(o *options) { o.tickSource = ts })
}

// WithLogger installs a structured [Logger]. Defaults to [NoopLogger].
func WithLogger(l Logger) Option {
	return optionFunc(func(o *options) { o.logger = l })
}

// WithMetrics installs a pre-built schedulability [Metrics] collector,
// for callers that want to share one across multiple Kernel instances
// (for example another Kernel's [Kernel.Metrics]). The ring depth is
// always 8 samples per task; maxProcess only sizes the per-task map.
func WithMetrics(m *Metrics) Option {
	return optionFunc(func(o *options) { o.metrics = m })
}
