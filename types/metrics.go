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

package types

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// serviceTraffic is the labeled counter vector backing per-service and
// per-transport packet accounting. One vector is shared across every
// service bucket instead of one generated counter per protocol.
var serviceTraffic = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sniffcore_service_packets_total",
		Help: "packets observed per guessed service and transport kind",
	},
	[]string{"service", "transport"},
)

// serviceBytes mirrors serviceTraffic but accumulates bytes instead of
// packet counts.
var serviceBytes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sniffcore_service_bytes_total",
		Help: "bytes observed per guessed service and transport kind",
	},
	[]string{"service", "transport"},
)

// IncServiceTraffic records one packet of size nBytes for the given
// service/transport bucket. Safe for concurrent use by construction of the
// underlying CounterVec.
func IncServiceTraffic(svc Service, transport TransportKind, nBytes uint64) {
	labels := []string{strings.ToLower(svc.String()), strings.ToLower(transport.String())}
	serviceTraffic.WithLabelValues(labels...).Inc()
	serviceBytes.WithLabelValues(labels...).Add(float64(nBytes))
}

// MetricsCollectors returns the collectors that should be registered with a
// prometheus.Registerer by the embedding application.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{serviceTraffic, serviceBytes}
}
