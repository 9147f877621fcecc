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

package source

import (
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/pkg/errors"
)

const defaultSnapLen = 262144

// LiveSource captures from a network interface via libpcap. Promiscuous
// mode is on and the read timeout is short so the capture loop's
// suspension point (NextPacket) wakes up promptly for freeze/cancel
// checks even on an idle link.
type LiveSource struct {
	handle  *pcap.Handle
	bpf     string
	dropped uint64
}

// OpenLive activates a live capture on iface. If bpf is non-empty it is
// compiled and installed before the first packet is read; a compile
// failure is returned wrapped, for the caller to surface as
// InvalidFilter.
func OpenLive(iface string, snapLen int, bpf string) (*LiveSource, error) {
	if snapLen <= 0 {
		snapLen = defaultSnapLen
	}

	inactive, err := pcap.NewInactiveHandle(iface)
	if err != nil {
		return nil, errors.Wrapf(err, "create inactive handle for %q", iface)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(snapLen); err != nil {
		return nil, errors.Wrap(err, "set snaplen")
	}
	if err := inactive.SetPromisc(true); err != nil {
		return nil, errors.Wrap(err, "set promiscuous mode")
	}
	if err := inactive.SetTimeout(time.Second); err != nil {
		return nil, errors.Wrap(err, "set read timeout")
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, errors.Wrapf(err, "activate capture on %q", iface)
	}

	if bpf != "" {
		if err := handle.SetBPFFilter(bpf); err != nil {
			handle.Close()
			return nil, errors.Wrapf(err, "compile filter %q", bpf)
		}
	}

	return &LiveSource{handle: handle, bpf: bpf}, nil
}

// NextPacket blocks until a packet arrives, the read times out, or the
// read fails (e.g. the handle is closed). It does not retry itself: a
// timeout or failure is returned wrapped as ErrTransient, so the caller's
// loop retries and can still check for freeze/cancel in between.
func (s *LiveSource) NextPacket() (Packet, error) {
	data, ci, err := s.handle.ReadPacketData()
	if err != nil {
		if err == pcap.NextErrorTimeoutExpired {
			return Packet{}, errors.Wrap(ErrTransient, err.Error())
		}
		return Packet{}, errors.Wrap(ErrTransient, err.Error())
	}
	return Packet{Data: data, Timestamp: ci.Timestamp, WireLen: ci.Length}, nil
}

// Stats reports packets dropped by the kernel capture buffer.
func (s *LiveSource) Stats() Stats {
	if stats, err := s.handle.Stats(); err == nil {
		s.dropped = uint64(stats.PacketsDropped)
	}
	return Stats{Dropped: s.dropped}
}

// LinkType returns the datalink type the capture handle negotiated.
func (s *LiveSource) LinkType() layers.LinkType {
	return s.handle.LinkType()
}

// Write injects data as an outgoing packet on the same handle, used by
// tools that need to re-inject traffic. Not used by the capture pipeline
// itself but required to satisfy Writable where a live handle doubles as
// an export sink.
func (s *LiveSource) Write(p Packet) error {
	return s.handle.WritePacketData(p.Data)
}

// Close releases the underlying pcap handle.
func (s *LiveSource) Close() error {
	s.handle.Close()
	return nil
}
