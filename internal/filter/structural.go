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

package filter

import (
	"net/netip"

	"github.com/GyulyVGC/sniffnet-core/types"
)

// Header is the minimal set of decoded fields the structural filter needs
// to evaluate a packet. decoder.Headers satisfies this shape; the filter
// package avoids importing decoder directly to keep the dependency graph
// a DAG (decoder has no reason to know about filtering).
type Header struct {
	IPVersion types.IPVersion
	SrcIP     netip.Addr
	DstIP     netip.Addr
	Transport types.TransportKind
	SrcPort   uint16
	DstPort   uint16
}

// Structural is the post-filter record: each field is individually
// nullable (its zero/IsEmpty form), meaning "don't restrict on this
// dimension".
type Structural struct {
	IPVersion  types.IPVersion // IPVersionEither means unset
	Transport  *types.TransportKind
	Addresses  AddressCollection
	Ports      PortCollection
}

// Matches reports whether h passes every non-null field of the structural
// filter. A packet passes the whole filter engine only if the BPF
// prefilter also admitted it — that check happens at the packet source,
// before Matches is ever called.
func (s Structural) Matches(h Header) bool {
	if s.IPVersion != types.IPVersionEither && s.IPVersion != h.IPVersion {
		return false
	}
	if s.Transport != nil && *s.Transport != h.Transport {
		return false
	}
	if !s.Addresses.IsEmpty() && !s.Addresses.Contains(h.SrcIP) && !s.Addresses.Contains(h.DstIP) {
		return false
	}
	if !s.Ports.IsEmpty() && !s.Ports.Contains(h.SrcPort) && !s.Ports.Contains(h.DstPort) {
		return false
	}
	return true
}
