package core

import "time"

type Clock struct {
	startTime time.Time
	lastTick  time.Time
	elapsed   float64
	delta     float64
}

func NewClock() *Clock {
	return &Clock{}
}

// Update advances the clock. Should be called once per frame, before
// reading Elapsed or Delta. Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.startTime.IsZero() {
		return
	}
	now := time.Now()
	c.elapsed = now.Sub(c.startTime).Seconds()
	c.delta = now.Sub(c.lastTick).Seconds()
	c.lastTick = now
}

// Start starts the clock and resets elapsed time.
func (c *Clock) Start() {
	c.startTime = time.Now()
	c.lastTick = c.startTime
	c.elapsed = 0
	c.delta = 0
}

// Stop stops the clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.startTime = time.Time{}
}

// Elapsed returns the seconds since Start, as of the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

// Delta returns the seconds between the last two calls to Update.
func (c *Clock) Delta() float64 {
	return c.delta
}
