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

// TrafficDirection is an attribute of a connection aggregate, not of its
// key: two packets with swapped endpoints map to the same fingerprint
// only when captured in the same direction.
type TrafficDirection int32

const (
	DirectionOutgoing TrafficDirection = iota
	DirectionIncoming
)

func (d TrafficDirection) String() string {
	if d == DirectionIncoming {
		return "Incoming"
	}
	return "Outgoing"
}

// TrafficType classifies the destination scope of a packet.
type TrafficType int32

const (
	TrafficUnicast TrafficType = iota
	TrafficMulticast
	TrafficBroadcast
)

func (t TrafficType) String() string {
	switch t {
	case TrafficMulticast:
		return "Multicast"
	case TrafficBroadcast:
		return "Broadcast"
	default:
		return "Unicast"
	}
}

// Locality says whether both endpoints of a connection live in private/
// link-local/ULA address space (local) or not (remote).
type Locality int32

const (
	LocalityRemote Locality = iota
	LocalityLocal
)
