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

package pipeline

import (
	"context"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/GyulyVGC/sniffnet-core/decoder"
	"github.com/GyulyVGC/sniffnet-core/internal/addr"
	"github.com/GyulyVGC/sniffnet-core/internal/conntable"
	"github.com/GyulyVGC/sniffnet-core/internal/enrich"
	"github.com/GyulyVGC/sniffnet-core/internal/filter"
	"github.com/GyulyVGC/sniffnet-core/internal/logging"
	"github.com/GyulyVGC/sniffnet-core/internal/source"
	"github.com/GyulyVGC/sniffnet-core/internal/svcguess"
	"github.com/GyulyVGC/sniffnet-core/types"
	"go.uber.org/zap"
)

var workerLog = logging.Named("pipeline")

// offlineGapThreshold is the minimum gap, in seconds, between two
// consecutive offline packet timestamps that triggers an OfflineGap
// message rather than being folded into ordinary epoch advancement.
const offlineGapThreshold = 2

// Worker owns the capture loop: the only producer of TickRun,
// OfflineGap, PendingHosts, and (indirectly, via the enrichment
// dispatcher) HostMessage traffic. One Worker per capture.
type Worker struct {
	src        source.Source
	isOffline  bool
	ifaceAddrs []netip.Addr

	structural filter.Structural
	dispatcher *enrich.Dispatcher
	blacklist  *enrich.Blacklist
	exporter   source.Writable

	captureID int64
	frozen    atomic.Bool

	ticks        chan<- TickRun
	offlineGap   chan<- OfflineGap
	pendingHosts chan<- PendingHosts
}

// SetExporter attaches (or detaches, with nil) a PCAP export sink (§6
// PCAP export): every packet that passes the structural filter is
// written to it, matching "per-packet writes occur only when a packet
// passes filters". Safe to call before Run; not safe to call
// concurrently with it.
func (w *Worker) SetExporter(exporter source.Writable) {
	w.exporter = exporter
}

// NewWorker constructs a worker for one capture. captureID is stamped on
// the messages this worker sends; the worker does not compare it itself.
// Run stops when its isCurrent callback reports false (e.g. after Reset).
func NewWorker(src source.Source, isOffline bool, ifaceAddrs []netip.Addr, structural filter.Structural, dispatcher *enrich.Dispatcher, blacklist *enrich.Blacklist, captureID int64, ticks chan<- TickRun, offlineGap chan<- OfflineGap, pendingHosts chan<- PendingHosts) *Worker {
	return &Worker{
		src:          src,
		isOffline:    isOffline,
		ifaceAddrs:   ifaceAddrs,
		structural:   structural,
		dispatcher:   dispatcher,
		blacklist:    blacklist,
		captureID:    captureID,
		ticks:        ticks,
		offlineGap:   offlineGap,
		pendingHosts: pendingHosts,
	}
}

// Freeze toggles packet-consumption suspension. While frozen the worker
// never calls NextPacket; packets arriving at the OS are subject to the
// source's own buffering and may be dropped.
func (w *Worker) Freeze(on bool) {
	w.frozen.Store(on)
}

// currentCaptureID returns the capture id this worker was constructed
// with. The isCurrent callback given to Run takes no argument; the
// comparison with the live capture id, if any, happens inside it.
func (w *Worker) currentCaptureID() int64 {
	return w.captureID
}

// Run drives the capture loop until cancellation (isCurrent() returns
// false), end-of-stream, or ctx is done. It is the sole writer to ticks
// and offlineGap, and the sole consumer of dispatcher.Messages() for the
// duration of this capture.
func (w *Worker) Run(ctx context.Context, isCurrent func() bool) {
	delta := NewInfoTraffic()
	var hostMsgs []enrich.HostMessage

	var lastEpochSecond int64 = -1
	haveLast := false

	flush := func(noMore bool) {
		w.ticks <- TickRun{
			CaptureID:     w.captureID,
			Delta:         delta,
			HostMessages:  hostMsgs,
			NoMorePackets: noMore,
		}
		delta = NewInfoTraffic()
		hostMsgs = nil
	}

	for {
		if ctx.Err() != nil || !isCurrent() {
			return
		}

		w.drainHostMessages(&hostMsgs, delta)

		if w.frozen.Load() {
			time.Sleep(50 * time.Millisecond)
			continue
		}

		pkt, err := w.src.NextPacket()
		if err != nil {
			if err == source.ErrEndOfStream {
				flush(true)
				return
			}
			continue // transient: retry next iteration
		}

		epochSecond := pkt.Timestamp.Unix()
		if haveLast && epochSecond != lastEpochSecond {
			if w.isOffline {
				gap := int(epochSecond - lastEpochSecond)
				if gap >= offlineGapThreshold {
					w.offlineGap <- OfflineGap{CaptureID: w.captureID, GapSeconds: gap}
				}
			}
			flush(false)
		}
		lastEpochSecond = epochSecond
		haveLast = true

		w.ingest(ctx, pkt, delta)
		delta.LastPacketTimestamp = pkt.Timestamp
	}
}

// drainHostMessages empties the dispatcher's completed-resolution queue
// without blocking, both recording the raw message (host_msgs, per
// §4.6) and folding its accumulated delta into the epoch's per-host
// delta map so the tick aggregator can merge it into the host table in
// one pass.
func (w *Worker) drainHostMessages(hostMsgs *[]enrich.HostMessage, delta *InfoTraffic) {
	for {
		select {
		case msg := <-w.dispatcher.Messages():
			*hostMsgs = append(*hostMsgs, msg)

			key := msg.Host.Key()
			if hd, ok := delta.Hosts[key]; ok {
				hd.Packets += msg.Delta.Packets
				hd.Bytes += msg.Delta.Bytes
				hd.TrafficType = msg.Delta.TrafficType
				if msg.Delta.LastSeen.After(hd.LastSeen) {
					hd.LastSeen = msg.Delta.LastSeen
				}
			} else {
				delta.Hosts[key] = &HostDelta{
					Host:        msg.Host,
					Packets:     msg.Delta.Packets,
					Bytes:       msg.Delta.Bytes,
					TrafficType: msg.Delta.TrafficType,
					Loopback:    addr.IsLoopback(msg.Address),
					LocalSubnet: addr.IsPrivate(msg.Address),
					Bogon:       addr.IsBogon(msg.Address),
					LastSeen:    msg.Delta.LastSeen,
				}
			}
		default:
			return
		}
	}
}

func (w *Worker) ingest(ctx context.Context, pkt source.Packet, delta *InfoTraffic) {
	headers, err := decoder.Decode(pkt.Data, w.src.LinkType())
	if err != nil {
		workerLog.Debug("decode failed", zap.Error(err))
		return // DecodeError: drop silently, no counters touched
	}

	delta.ObservedPackets++
	nBytes := uint64(headers.PayloadLen)
	delta.ObservedBytes += nBytes

	h := filter.Header{
		IPVersion: headers.IPVersion,
		SrcIP:     headers.SrcIP,
		DstIP:     headers.DstIP,
		Transport: headers.Transport,
		SrcPort:   headers.SrcPort,
		DstPort:   headers.DstPort,
	}
	if !w.structural.Matches(h) {
		return
	}

	if w.exporter != nil {
		if err := w.exporter.Write(pkt); err != nil {
			workerLog.Debug("pcap export write failed", zap.Error(err))
		}
	}

	direction, trafficType := addr.Classify(headers.SrcIP, headers.DstIP, w.ifaceAddrs)

	delta.FilteredPackets++
	delta.FilteredBytes += nBytes
	if direction == types.DirectionOutgoing {
		delta.OutgoingPackets++
		delta.OutgoingBytes += nBytes
	} else {
		delta.IncomingPackets++
		delta.IncomingBytes += nBytes
	}

	key := conntable.KeyFromHeaders(headers.SrcIP, headers.DstIP, headers.SrcPort, headers.DstPort, headers.Transport)
	service := svcguess.Guess(headers.SrcPort, headers.DstPort, headers.Transport)
	types.IncServiceTraffic(service, headers.Transport, nBytes)

	if cd, ok := delta.Connections[key]; ok {
		cd.Packets++
		cd.Bytes += nBytes
		cd.LastSeen = pkt.Timestamp
	} else {
		delta.Connections[key] = &ConnDelta{
			SrcMAC: headers.SrcMAC, DstMAC: headers.DstMAC,
			Direction: direction, Service: service, Subtype: headers.ICMPSubtype,
			Packets: 1, Bytes: nBytes, LastSeen: pkt.Timestamp,
		}
	}

	svcKey := types.ServiceKey{Service: service, Transport: headers.Transport}
	if sd, ok := delta.Services[svcKey]; ok {
		sd.Packets++
		sd.Bytes += nBytes
		sd.LastSeen = pkt.Timestamp
	} else {
		delta.Services[svcKey] = &SvcDelta{Packets: 1, Bytes: nBytes, LastSeen: pkt.Timestamp}
	}

	peer := headers.DstIP
	if direction == types.DirectionIncoming {
		peer = headers.SrcIP
	}
	if w.dispatcher.Observe(ctx, peer, 1, nBytes, trafficType, pkt.Timestamp) {
		w.pendingHosts <- PendingHosts{CaptureID: w.captureID, Addresses: []netip.Addr{peer}}
	}

	if w.blacklist.Contains(peer) && !containsAddr(delta.BlacklistedPeers, peer) {
		delta.BlacklistedPeers = append(delta.BlacklistedPeers, peer)
	}
}

func containsAddr(addrs []netip.Addr, target netip.Addr) bool {
	for _, a := range addrs {
		if a == target {
			return true
		}
	}
	return false
}
