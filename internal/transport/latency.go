package transport

// latencyCapMs bounds a single latency sample. Tunneled nodes
// occasionally report multi-second spikes that would flatten the graph.
const latencyCapMs = 1000

// smoother is an exponential moving average over latency samples,
// weighted 70% history and 30% newest sample.
type smoother struct {
	value float64
	seen  bool
}

// Observe folds one sample in and returns the smoothed value.
func (s *smoother) Observe(instantMs float64) float64 {
	if instantMs < 0 {
		instantMs = 0
	}
	if instantMs > latencyCapMs {
		instantMs = latencyCapMs
	}
	if !s.seen {
		s.value = instantMs
		s.seen = true
		return s.value
	}
	s.value = 0.7*s.value + 0.3*instantMs
	return s.value
}

// Current returns the smoothed latency in ms, or -1 before any sample.
func (s *smoother) Current() int64 {
	if !s.seen {
		return -1
	}
	return int64(s.value + 0.5)
}

// Reset discards history, for a fresh session against a possibly
// different network path.
func (s *smoother) Reset() {
	s.value = 0
	s.seen = false
}
