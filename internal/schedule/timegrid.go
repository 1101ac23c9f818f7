package schedule

import (
	"hash/fnv"
	"math"
	"time"
)

// Time-grid primitives. Every boundary the pipeline produces is snapped to
// the clinic's granularity grid: floor for day-open boundaries (the visible
// day never starts earlier than configured), ceil for every boundary reached
// by adding a duration (nothing is rounded back into an already-used slot).

const (
	minStep = 5
	maxStep = 60
)

func clampStep(step int) int {
	if step < minStep {
		return minStep
	}
	if step > maxStep {
		return maxStep
	}
	return step
}

// AddMinutes returns t shifted by n minutes with seconds zeroed.
func AddMinutes(t time.Time, n int) time.Time {
	t = t.Add(time.Duration(n) * time.Minute)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// MinutesBetween returns the rounded minute delta from a to b. Negative
// when b precedes a.
func MinutesBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Minutes()))
}

// FloorToStep snaps t down to the granularity grid. Never moves the
// timestamp forward.
func FloorToStep(t time.Time, step int) time.Time {
	step = clampStep(step)
	m := (t.Minute() / step) * step
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), m, 0, 0, t.Location())
}

// CeilToStep snaps t up to the granularity grid. Never moves the timestamp
// backward.
func CeilToStep(t time.Time, step int) time.Time {
	step = clampStep(step)
	m := ((t.Minute() + step - 1) / step) * step
	base := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return base.Add(time.Duration(m) * time.Minute)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not count.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aEnd.After(bStart) && aStart.Before(bEnd)
}

// Hash is the versioned pseudo-random contract of the whole pipeline:
// FNV-1a 32-bit (offset basis 0x811c9dc5, prime 0x01000193, xor byte then
// multiply). Changing it changes all downstream output, so it is pinned to
// the stdlib implementation and covered by constant-level tests.
func Hash(seed string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return h.Sum32()
}

// Hash01 maps a seed string to [0, 1).
func Hash01(seed string) float64 {
	return float64(Hash(seed)) / float64(1<<32)
}

// hashPercent maps a seed string to [0, 100) for percent draws.
func hashPercent(seed string) int {
	return int(Hash(seed) % 100)
}
