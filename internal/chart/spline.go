/*
 * NETCAP - Traffic Analysis Framework
 * Copyright (c) 2017-2020 Philipp Mieden <dreadl0ck [at] protonmail [dot] ch>
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package chart implements the chart series engine (C9): a fixed-
// capacity, cosine-interpolated spline per traffic series, with an
// offline-only bisected-averaging reduction for the all-time view.
package chart

import "math"

// liveCapacity is the spline's key limit during a live or in-progress
// capture: the oldest key is evicted before a new one is added once this
// is reached (approx. the last 30 seconds, one key per epoch).
const liveCapacity = 30

// Point is one (x, y) sample: x is the tick index (or packet-timestamp
// second), y the series value at that tick.
type Point struct {
	X float64
	Y float64
}

// Spline is an ordered, capacity-bounded sequence of keys interpolated
// with cosine interpolation between adjacent keys.
type Spline struct {
	keys     []Point
	capacity int // 0 means unbounded
}

// NewSpline returns an empty spline. capacity <= 0 means unbounded
// (used for the reduced all-time replacement, which is never evicted
// from after construction).
func NewSpline(capacity int) *Spline {
	return &Spline{capacity: capacity}
}

// Add appends a key, evicting the oldest key first if capacity is
// already reached.
func (s *Spline) Add(p Point) {
	if s.capacity > 0 && len(s.keys) >= s.capacity {
		s.keys = s.keys[1:]
	}
	s.keys = append(s.keys, p)
}

// Replace discards the current keys and installs keys verbatim,
// bypassing capacity eviction: used once, when an offline capture's
// all-time buffer replaces the live spline at end-of-stream.
func (s *Spline) Replace(keys []Point) {
	s.keys = keys
}

// Len returns the number of keys currently held.
func (s *Spline) Len() int {
	return len(s.keys)
}

// Keys returns the current keys in insertion order. The caller must not
// mutate the returned slice.
func (s *Spline) Keys() []Point {
	return s.keys
}

// Min returns the minimum y value across all keys, always including 0
// so the chart axis never excludes the baseline.
func (s *Spline) Min() float64 {
	min := 0.0
	for _, k := range s.keys {
		if k.Y < min {
			min = k.Y
		}
	}
	return min
}

// Max returns the maximum y value across all keys, always including 0.
func (s *Spline) Max() float64 {
	max := 0.0
	for _, k := range s.keys {
		if k.Y > max {
			max = k.Y
		}
	}
	return max
}

// Total returns the sum of every key's y value.
func (s *Spline) Total() float64 {
	total := 0.0
	for _, k := range s.keys {
		total += k.Y
	}
	return total
}

// ClampedSample evaluates the spline at x using cosine interpolation
// between the two keys bracketing x. x outside [first, last] clamps to
// the nearest endpoint's value. An empty spline samples to 0.
func (s *Spline) ClampedSample(x float64) float64 {
	n := len(s.keys)
	if n == 0 {
		return 0
	}
	if n == 1 || x <= s.keys[0].X {
		return s.keys[0].Y
	}
	if x >= s.keys[n-1].X {
		return s.keys[n-1].Y
	}
	for i := 0; i < n-1; i++ {
		a, b := s.keys[i], s.keys[i+1]
		if x >= a.X && x <= b.X {
			return cosineInterpolate(a, b, x)
		}
	}
	return s.keys[n-1].Y
}

// cosineInterpolate blends a.Y toward b.Y with the cosine easing curve:
// smoother than linear interpolation at segment boundaries, matching the
// original spline library's Interpolation::Cosine keys.
func cosineInterpolate(a, b Point, x float64) float64 {
	if b.X == a.X {
		return a.Y
	}
	mu := (x - a.X) / (b.X - a.X)
	mu2 := (1 - math.Cos(mu*math.Pi)) / 2
	return a.Y*(1-mu2) + b.Y*mu2
}

// Sample returns 10 evenly-spaced samples per key between the spline's
// first and last x, each scaled by multiplier. An empty spline samples a
// single point at the origin.
func Sample(s *Spline, multiplier float64) []Point {
	n := s.Len()
	if n == 0 {
		return []Point{{X: 0, Y: 0}}
	}
	pts := n * 10
	firstX := s.keys[0].X
	lastX := s.keys[n-1].X
	if pts == 1 {
		return []Point{{X: firstX, Y: s.ClampedSample(firstX) * multiplier}}
	}
	delta := (lastX - firstX) / float64(pts-1)
	out := make([]Point, 0, pts)
	for i := 0; i < pts; i++ {
		x := firstX + delta*float64(i)
		out = append(out, Point{X: x, Y: s.ClampedSample(x) * multiplier})
	}
	return out
}

// reduceAllTime bisects pts down to at most 150 entries by repeatedly
// averaging adjacent pairs, halving the count each pass: point i's x is
// kept, its y becomes the mean of points i and i+1 for every even i.
func reduceAllTime(pts []Point) []Point {
	for len(pts) > 150 {
		next := make([]Point, 0, len(pts)/2+1)
		for i := 0; i < len(pts); i += 2 {
			if i+1 < len(pts) {
				next = append(next, Point{X: pts[i].X, Y: (pts[i].Y + pts[i+1].Y) / 2})
			}
		}
		pts = next
	}
	return pts
}
