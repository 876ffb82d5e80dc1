package engine

import (
	"math"
	"time"
)

// Speed tiers for NaturalDecay. Fast flings keep gliding, slow drifts settle
// quickly, the middle tier matches the single-coefficient default.
const (
	fastSpeed   float32 = 2400 // px/s
	mediumSpeed float32 = 800

	decayFast   float32 = 1.4
	decayMedium float32 = 2.8
	decaySlow   float32 = 4.8
)

// maxVelocitySamples bounds how many touch samples feed the release-velocity
// estimate. singleSampleRate turns a lone sample's delta into a per-second
// rate by assuming one nominal 60Hz frame.
const (
	maxVelocitySamples = 5
	singleSampleRate   float32 = 60
)

// springRestDistance is how close to a bound the offset must be, at
// sub-snap speed, before the spring settles exactly onto it.
const springRestDistance float32 = 0.5

type sample struct {
	at    time.Time
	delta float32
}

// physics advances a scalar scroll offset along the primary axis. While a
// finger is down the offset follows the input deltas directly and the deltas
// are recorded for the release-velocity estimate. After release the offset
// coasts with exponential decay inside the bounds and is pulled back by a
// spring-damper when it overshoots them.
type physics struct {
	cfg *Config

	offset   float32
	velocity float32

	minBound float32
	maxBound float32

	touching bool
	samples  []sample
}

func newPhysics(cfg *Config) *physics {
	return &physics{cfg: cfg}
}

func (p *physics) SetBounds(min, max float32) {
	if max < min {
		max = min
	}
	p.minBound, p.maxBound = min, max
}

// SetOffset writes the offset directly, stopping any free motion. Non-finite
// values are ignored rather than applied.
func (p *physics) SetOffset(pos float32) {
	if !finite32(pos) {
		return
	}
	p.offset = pos
	p.velocity = 0
	p.samples = p.samples[:0]
}

// TouchStart hands the offset to the finger: free motion stops and the
// sample queue restarts.
func (p *physics) TouchStart() {
	p.touching = true
	p.velocity = 0
	p.samples = p.samples[:0]
}

// TouchMove applies one finger delta directly to the offset and records it.
// Overscroll past the bounds is allowed up to slack so release can rubber-band
// back; deltas arriving without a touch in progress are dropped.
func (p *physics) TouchMove(delta float32, at time.Time, slack float32) {
	if !p.touching || !finite32(delta) {
		return
	}
	p.offset = clamp32(p.offset+delta, p.minBound-slack, p.maxBound+slack)
	p.samples = append(p.samples, sample{at: at, delta: delta})
	p.prune(at)
}

// TouchEnd releases the finger and estimates the fling velocity from the
// recent samples: total distance over total time across the gaps between the
// newest retained samples, so the oldest one contributes only its timestamp.
// A single sample is read as one frame's worth of motion.
func (p *physics) TouchEnd(at time.Time) {
	if !p.touching {
		return
	}
	p.touching = false
	p.prune(at)

	s := p.samples
	if len(s) > maxVelocitySamples {
		s = s[len(s)-maxVelocitySamples:]
	}
	switch len(s) {
	case 0:
		p.velocity = 0
	case 1:
		p.velocity = s[0].delta * singleSampleRate
	default:
		var dist, dur float32
		for i := 1; i < len(s); i++ {
			dist += s[i].delta
			dur += float32(s[i].at.Sub(s[i-1].at).Seconds())
		}
		if dur <= 0 {
			p.velocity = 0
		} else {
			p.velocity = dist / dur
		}
	}
	p.velocity = clamp32(p.velocity, -p.cfg.MaxVelocity, p.cfg.MaxVelocity)
	p.samples = p.samples[:0]
}

// TouchCancel abandons the gesture without starting any free motion.
func (p *physics) TouchCancel() {
	p.touching = false
	p.velocity = 0
	p.samples = p.samples[:0]
}

func (p *physics) prune(now time.Time) {
	cutoff := now.Add(-p.cfg.VelocityWindow)
	keep := 0
	for keep < len(p.samples) && p.samples[keep].at.Before(cutoff) {
		keep++
	}
	if keep > 0 {
		p.samples = append(p.samples[:0], p.samples[keep:]...)
	}
}

// Step advances free motion by dt seconds and reports whether motion
// continues. It does nothing while a finger owns the offset.
func (p *physics) Step(dt float32) bool {
	if p.touching || dt <= 0 {
		return false
	}

	if bound, outside := p.nearestBound(); outside {
		a := -p.cfg.SpringStiffness*(p.offset-bound) - p.cfg.SpringDamping*p.velocity
		p.velocity += a * dt
		p.offset += p.velocity * dt
		if abs32(p.offset-bound) < springRestDistance && abs32(p.velocity) < p.cfg.SnapVelocity {
			p.offset = bound
			p.velocity = 0
			return false
		}
		return true
	}

	coeff := p.cfg.Decay
	if p.cfg.NaturalDecay {
		coeff = p.naturalCoeff()
	}
	p.velocity *= exp32(-coeff * dt)
	if abs32(p.velocity) < p.cfg.SnapVelocity {
		p.velocity = 0
		return false
	}
	p.offset += p.velocity * dt
	return true
}

// Moving reports whether Step still has work: either residual velocity or an
// offset outside the bounds that the spring has to bring back.
func (p *physics) Moving() bool {
	if p.touching {
		return false
	}
	if p.velocity != 0 {
		return true
	}
	_, outside := p.nearestBound()
	return outside
}

func (p *physics) nearestBound() (bound float32, outside bool) {
	if p.offset < p.minBound {
		return p.minBound, true
	}
	if p.offset > p.maxBound {
		return p.maxBound, true
	}
	return 0, false
}

func (p *physics) naturalCoeff() float32 {
	switch speed := abs32(p.velocity); {
	case speed >= fastSpeed:
		return decayFast
	case speed >= mediumSpeed:
		return decayMedium
	default:
		return decaySlow
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func exp32(v float32) float32 {
	return float32(math.Exp(float64(v)))
}

func finite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
