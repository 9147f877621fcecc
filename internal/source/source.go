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

// Package source defines the packet source contract (§6) and its live
// (pcap) and offline (pcap file) adapters, plus the audio sink interface
// and the Process record returned by the port→program lookup.
package source

import (
	"time"

	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

// ErrEndOfStream is returned by NextPacket once an offline source is
// exhausted.
var ErrEndOfStream = errors.New("end of stream")

// ErrTransient wraps a source error the capture loop should retry past,
// rather than treat as fatal.
var ErrTransient = errors.New("transient source error")

// Packet is one captured frame: raw bytes, the capture timestamp
// assigned by the source (not wall-clock at decode time), and its
// on-wire length (which may exceed len(Data) when snaplen truncates it).
type Packet struct {
	Data      []byte
	Timestamp time.Time
	WireLen   int
}

// Stats reports counters a source exposes at any time.
type Stats struct {
	Dropped uint64
}

// Source is the packet source contract: iterator-like, pull-based.
// NextPacket returns ErrEndOfStream when exhausted (offline sources
// only; live sources block until a packet or transient error) or
// ErrTransient-wrapped errors the caller should retry past.
type Source interface {
	NextPacket() (Packet, error)
	Stats() Stats
	LinkType() layers.LinkType
	Close() error
}

// Writable is implemented by packet export sinks (Exporter, and
// LiveSource), used by the PCAP export feature: writes occur only for
// packets that already passed the filter engine.
type Writable interface {
	Write(Packet) error
}
