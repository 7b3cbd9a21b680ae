package series

// Metric identifies one tracked time series.
type Metric string

// Tracked metrics, one buffer each.
const (
	MetricCPUSystem     Metric = "cpu-system"
	MetricCPUProcess    Metric = "cpu-process"
	MetricMemoryPercent Metric = "memory-percent"
	MetricIntegrity     Metric = "frame-integrity"
	MetricLatency       Metric = "latency"
	MetricPlayerTotal   Metric = "player-total"
)

// AllMetrics lists every tracked metric in display order.
var AllMetrics = []Metric{
	MetricCPUSystem,
	MetricCPUProcess,
	MetricMemoryPercent,
	MetricIntegrity,
	MetricLatency,
	MetricPlayerTotal,
}

// Capacities maps each metric to its buffer capacity.
// Zero or missing entries use DefaultCapacity.
type Capacities map[Metric]int

// Set owns one buffer per tracked metric.
type Set struct {
	buffers map[Metric]*Buffer
}

// NewSet creates a buffer per tracked metric. Percentage-like series are
// pre-filled with fill so chart scaling is sane from the first frame; the
// latency and player-count series start at zero.
func NewSet(caps Capacities, fill float64) *Set {
	s := &Set{buffers: make(map[Metric]*Buffer, len(AllMetrics))}
	for _, m := range AllMetrics {
		f := fill
		if m == MetricLatency || m == MetricPlayerTotal {
			f = 0
		}
		s.buffers[m] = NewBuffer(caps[m], f)
	}
	return s
}

// Push appends a sample to the named metric's buffer.
// Unknown metrics are ignored.
func (s *Set) Push(m Metric, value float64) {
	if b, ok := s.buffers[m]; ok {
		b.Push(value)
	}
}

// Values returns the named metric's samples, oldest first.
// Returns nil for unknown metrics.
func (s *Set) Values(m Metric) []float64 {
	if b, ok := s.buffers[m]; ok {
		return b.Values()
	}
	return nil
}

// Snapshot returns a copy of every buffer's contents keyed by metric.
func (s *Set) Snapshot() map[Metric][]float64 {
	out := make(map[Metric][]float64, len(s.buffers))
	for m, b := range s.buffers {
		out[m] = b.Values()
	}
	return out
}
