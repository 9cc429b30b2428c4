package clock

import (
	"time"
)

// The DMG LCD refreshes at 59.7 Hz (17556 m-cycles per frame at 1 MiHz).
const (
	TargetFPS = 59.7
)

// FramePacer limits the host run loop to the hardware frame rate.
// The emulator finishes a frame as fast as it can; the pacer sleeps off
// whatever is left of the frame budget.
type FramePacer struct {
	// Enabled turns pacing on or off (off = run at unlimited speed)
	Enabled bool

	frameTime time.Duration
	lastFrame time.Time
}

// NewFramePacer creates a pacer targeting the given frame rate.
func NewFramePacer(fps float64) *FramePacer {
	return &FramePacer{
		Enabled:   true,
		frameTime: time.Duration(float64(time.Second) / fps),
		lastFrame: time.Now(),
	}
}

// FrameTime returns the per-frame budget.
func (p *FramePacer) FrameTime() time.Duration {
	return p.frameTime
}

// Pace sleeps until the current frame's budget is used up, then marks the
// start of the next frame. With pacing disabled it only updates the mark.
func (p *FramePacer) Pace() {
	if p.Enabled {
		elapsed := time.Since(p.lastFrame)
		if elapsed < p.frameTime {
			time.Sleep(p.frameTime - elapsed)
		}
	}
	p.lastFrame = time.Now()
}

// Reset restarts the frame mark (after a pause, so the first frame back
// does not try to catch up).
func (p *FramePacer) Reset() {
	p.lastFrame = time.Now()
}
