package assets

import "math"

// Timing is the frame budget of one generation run.
type Timing struct {
	FPS           int
	DurationSec   float64
	MaxLengthSec  float64
	TransitionSec float64
}

// Seconds is the effective clip length: MaxLengthSec when set, otherwise
// DurationSec.
func (t Timing) Seconds() float64 {
	if t.MaxLengthSec > 0 {
		return t.MaxLengthSec
	}
	return t.DurationSec
}

// TotalFrames is the number of frames every track renders.
func (t Timing) TotalFrames() int {
	return int(math.Round(float64(t.FPS) * t.Seconds()))
}

// TransitionFrames is the number of frames one tile takes to scroll past.
// It never drops below one.
func (t Timing) TransitionFrames() int {
	n := int(math.Round(float64(t.FPS) * t.TransitionSec))
	if n < 1 {
		return 1
	}
	return n
}

// NeededTiles is the number of source tiles a track consumes: one per full
// transition, one for a trailing partial transition, and one more so the
// last viewport is always covered.
func (t Timing) NeededTiles() int {
	total := t.TotalFrames()
	if total <= 0 {
		return 1
	}
	tf := t.TransitionFrames()
	full := (total - 1) / tf
	needed := full + 1
	if (total-1)%tf > 0 {
		needed++
	}
	return needed
}
