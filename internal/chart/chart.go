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

package chart

// Delta is the subset of one epoch's traffic totals the chart engine
// needs. Deliberately decoupled from pipeline.InfoTraffic (the same DAG
// concern documented for filter.Header): the chart engine must not
// import the pipeline package.
type Delta struct {
	OutBytes   uint64
	InBytes    uint64
	OutPackets uint64
	InPackets  uint64
}

// Chart holds the four series a traffic chart displays: outgoing and
// incoming, each in bytes and in packets. Outgoing values are stored
// negated so the two directions plot on either side of a zero baseline.
type Chart struct {
	OutBytes   *Series
	InBytes    *Series
	OutPackets *Series
	InPackets  *Series

	Ticks int

	MinBytes, MaxBytes     float64
	MinPackets, MaxPackets float64
}

// New returns an empty chart, all four series starting with a 30-key
// live spline.
func New() *Chart {
	return &Chart{
		OutBytes:   NewSeries(),
		InBytes:    NewSeries(),
		OutPackets: NewSeries(),
		InPackets:  NewSeries(),
	}
}

// Update folds one epoch's delta into all four series and recomputes
// the displayed min/max. isLiveCapture/noMorePackets are forwarded
// verbatim to Series.Update.
func (c *Chart) Update(d Delta, isLiveCapture, noMorePackets bool) {
	x := float64(c.Ticks)
	c.OutBytes.Update(Point{X: x, Y: -float64(d.OutBytes)}, isLiveCapture, noMorePackets)
	c.InBytes.Update(Point{X: x, Y: float64(d.InBytes)}, isLiveCapture, noMorePackets)
	c.OutPackets.Update(Point{X: x, Y: -float64(d.OutPackets)}, isLiveCapture, noMorePackets)
	c.InPackets.Update(Point{X: x, Y: float64(d.InPackets)}, isLiveCapture, noMorePackets)
	c.Ticks++

	c.MinBytes = minOf(c.OutBytes.Spline.Min(), c.InBytes.Spline.Min())
	c.MaxBytes = maxOf(c.OutBytes.Spline.Max(), c.InBytes.Spline.Max())
	c.MinPackets = minOf(c.OutPackets.Spline.Min(), c.InPackets.Spline.Min())
	c.MaxPackets = maxOf(c.OutPackets.Spline.Max(), c.InPackets.Spline.Max())
}

func minOf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
