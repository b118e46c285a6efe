package resilience

import "time"

// Policy controls elective hardening around outbound calls. The zero value
// means a single attempt and no circuit breaker, which is the default for
// this service: reliability is owned by the remote pipeline, not this layer.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	BreakerEnabled     bool
	BreakerMinRequests uint32
	BreakerThreshold   float64
	BreakerCooldown    time.Duration
	BreakerProbeCalls  uint32
}

// Passthrough reports whether the policy adds nothing over a direct call.
func (p Policy) Passthrough() bool {
	return p.MaxAttempts <= 1 && !p.BreakerEnabled
}

func (p Policy) withDefaults() Policy {
	out := p
	if out.MaxAttempts < 1 {
		out.MaxAttempts = 1
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = 100 * time.Millisecond
	}
	if out.MaxBackoff < out.InitialBackoff {
		out.MaxBackoff = 400 * time.Millisecond
		if out.MaxBackoff < out.InitialBackoff {
			out.MaxBackoff = out.InitialBackoff
		}
	}
	if out.Multiplier < 1.0 {
		out.Multiplier = 2.0
	}
	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = 10
	}
	if out.BreakerThreshold <= 0 || out.BreakerThreshold > 1 {
		out.BreakerThreshold = 0.5
	}
	if out.BreakerCooldown <= 0 {
		out.BreakerCooldown = 30 * time.Second
	}
	if out.BreakerProbeCalls == 0 {
		out.BreakerProbeCalls = 2
	}
	return out
}
