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

// Series is one named chart line: a live 30-key spline, plus (offline
// captures only) a raw all-time buffer that replaces the spline at
// end-of-stream after bisected-averaging reduction.
type Series struct {
	Spline  *Spline
	AllTime []Point
}

// NewSeries returns an empty series with a 30-key live spline.
func NewSeries() *Series {
	return &Series{Spline: NewSpline(liveCapacity)}
}

// Update records one epoch's sample. isLiveCapture suppresses all-time
// accumulation (§4.8: "in live mode only the spline is used"). On the
// final offline tick (noMorePackets), the all-time buffer is reduced to
// at most 150 points and replaces the spline wholesale.
func (s *Series) Update(point Point, isLiveCapture, noMorePackets bool) {
	s.Spline.Add(point)

	if isLiveCapture {
		return
	}

	s.AllTime = append(s.AllTime, point)

	if noMorePackets {
		s.AllTime = reduceAllTime(s.AllTime)
		s.Spline = NewSpline(0)
		s.Spline.Replace(s.AllTime)
	}
}
