package gen

// Clock is the logical event clock shared by all phase drivers. Every
// emitted event consumes exactly one tick, so timestamps are strictly
// increasing with a constant step across the whole run.
type Clock struct {
	cursor int64
	step   int64
}

// NewClock creates a clock whose first Tick returns start.
func NewClock(start, step int64) *Clock {
	return &Clock{cursor: start, step: step}
}

// Tick returns the current timestamp and advances the cursor by the step.
func (c *Clock) Tick() int64 {
	ts := c.cursor
	c.cursor += c.step
	return ts
}

// Step returns the fixed per-event increment in nanoseconds.
func (c *Clock) Step() int64 {
	return c.step
}
