package engine

import (
	"math"
	"testing"
	"time"
)

func testPhysics(t *testing.T, cfg Config) *physics {
	t.Helper()
	cfg.normalize()
	c := cfg
	p := newPhysics(&c)
	p.SetBounds(0, 10000)
	return p
}

func TestPhysics_ReleaseVelocityFromTwoSamples(t *testing.T) {
	p := testPhysics(t, Config{})
	t0 := time.Now()

	p.TouchStart()
	p.TouchMove(0, t0, 0)
	p.TouchMove(10, t0.Add(100*time.Millisecond), 0)
	p.TouchEnd(t0.Add(100 * time.Millisecond))

	if got := p.velocity; math.Abs(float64(got-100)) > 0.5 {
		t.Fatalf("expected release velocity ~100 px/s, got %v", got)
	}
}

func TestPhysics_ReleaseVelocitySingleSample(t *testing.T) {
	p := testPhysics(t, Config{})
	t0 := time.Now()

	p.TouchStart()
	p.TouchMove(5, t0, 0)
	p.TouchEnd(t0)

	if got := p.velocity; got != 5*singleSampleRate {
		t.Fatalf("expected single-sample velocity %v, got %v", 5*singleSampleRate, got)
	}
}

func TestPhysics_ReleaseVelocityNoSamples(t *testing.T) {
	p := testPhysics(t, Config{})

	p.TouchStart()
	p.TouchEnd(time.Now())

	if p.velocity != 0 {
		t.Fatalf("expected zero velocity without samples, got %v", p.velocity)
	}
}

func TestPhysics_ReleaseVelocityClamped(t *testing.T) {
	p := testPhysics(t, Config{MaxVelocity: 500})
	t0 := time.Now()

	p.TouchStart()
	p.TouchMove(0, t0, 0)
	p.TouchMove(400, t0.Add(10*time.Millisecond), 0)
	p.TouchEnd(t0.Add(10 * time.Millisecond))

	if p.velocity != 500 {
		t.Fatalf("expected velocity clamped to 500, got %v", p.velocity)
	}
}

func TestPhysics_StaleSamplesExpire(t *testing.T) {
	p := testPhysics(t, Config{VelocityWindow: 150 * time.Millisecond})
	t0 := time.Now()

	p.TouchStart()
	p.TouchMove(300, t0, 0)
	// The finger rested; the old fast sample must not feed the estimate.
	p.TouchMove(1, t0.Add(400*time.Millisecond), 0)
	p.TouchEnd(t0.Add(400 * time.Millisecond))

	if got := p.velocity; got != 1*singleSampleRate {
		t.Fatalf("expected only the fresh sample to count, got velocity %v", got)
	}
}

func TestPhysics_RestIsStable(t *testing.T) {
	p := testPhysics(t, Config{})
	p.offset = 500

	for i := 0; i < 200; i++ {
		if p.Step(1.0 / 60) {
			t.Fatalf("expected no motion at rest, tick %d moved", i)
		}
	}
	if p.offset != 500 {
		t.Fatalf("expected offset unchanged at rest, got %v", p.offset)
	}
}

func TestPhysics_SpringApproachIsMonotonic(t *testing.T) {
	for _, dt := range []float32{1.0 / 60, 1.0 / 30} {
		p := testPhysics(t, Config{})
		p.offset = p.maxBound + 120

		prev := abs32(p.offset - p.maxBound)
		settled := false
		for i := 0; i < 600; i++ {
			if !p.Step(dt) {
				settled = true
				break
			}
			dist := abs32(p.offset - p.maxBound)
			if dist > prev+1e-3 {
				t.Fatalf("dt %v: overshoot distance grew from %v to %v at tick %d", dt, prev, dist, i)
			}
			prev = dist
		}
		if !settled {
			t.Fatalf("dt %v: spring never settled", dt)
		}
		if p.offset != p.maxBound || p.velocity != 0 {
			t.Fatalf("dt %v: expected exact rest on the bound, got offset %v velocity %v", dt, p.offset, p.velocity)
		}
	}
}

func TestPhysics_SnapStopsSlowMotion(t *testing.T) {
	p := testPhysics(t, Config{SnapVelocity: 24})
	p.offset = 500
	p.velocity = 10

	if p.Step(1.0 / 60) {
		t.Fatalf("expected sub-snap velocity to stop motion")
	}
	if p.velocity != 0 {
		t.Fatalf("expected velocity snapped to zero, got %v", p.velocity)
	}
}

func TestPhysics_DecayIsExponential(t *testing.T) {
	p := testPhysics(t, Config{Decay: 2.8})
	p.offset = 500
	p.velocity = 1200

	dt := float32(1.0 / 60)
	want := 1200 * exp32(-2.8*dt)
	p.Step(dt)
	if math.Abs(float64(p.velocity-want)) > 0.01 {
		t.Fatalf("expected velocity %v after one decayed tick, got %v", want, p.velocity)
	}
}

func TestPhysics_NaturalDecayPicksSpeedTier(t *testing.T) {
	dt := float32(1.0 / 60)
	cases := []struct {
		speed float32
		coeff float32
	}{
		{3000, decayFast},
		{1200, decayMedium},
		{300, decaySlow},
	}
	for _, tc := range cases {
		p := testPhysics(t, Config{NaturalDecay: true})
		p.offset = 500
		p.velocity = tc.speed

		want := tc.speed * exp32(-tc.coeff*dt)
		p.Step(dt)
		if math.Abs(float64(p.velocity-want)) > 0.01 {
			t.Fatalf("speed %v: expected velocity %v, got %v", tc.speed, want, p.velocity)
		}
	}
}

func TestPhysics_InertiaEventuallyRests(t *testing.T) {
	p := testPhysics(t, Config{})
	p.offset = 100
	p.velocity = 2000

	ticks := 0
	for p.Step(1.0/60) && ticks < 10000 {
		ticks++
	}
	if ticks >= 10000 {
		t.Fatalf("inertial motion never terminated")
	}
	if p.velocity != 0 {
		t.Fatalf("expected zero velocity at rest, got %v", p.velocity)
	}
}

func TestPhysics_IgnoresNonFiniteWrites(t *testing.T) {
	p := testPhysics(t, Config{})
	p.offset = 250

	p.SetOffset(float32(math.NaN()))
	p.SetOffset(float32(math.Inf(1)))
	if p.offset != 250 {
		t.Fatalf("expected non-finite offsets ignored, got %v", p.offset)
	}

	p.TouchStart()
	p.TouchMove(float32(math.NaN()), time.Now(), 0)
	if p.offset != 250 || len(p.samples) != 0 {
		t.Fatalf("expected non-finite delta ignored, offset %v samples %d", p.offset, len(p.samples))
	}
}

func TestPhysics_TouchStartCancelsMotion(t *testing.T) {
	p := testPhysics(t, Config{})
	p.offset = 500
	p.velocity = 900

	p.TouchStart()
	if p.velocity != 0 || len(p.samples) != 0 {
		t.Fatalf("expected touch start to zero velocity and samples")
	}
	if p.Step(1.0 / 60) {
		t.Fatalf("expected no integration while touching")
	}
}
