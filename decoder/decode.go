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

// Package decoder turns raw captured bytes plus a link type into structured
// header fields (C1). It never looks past the transport header: deep
// packet inspection is explicitly out of scope.
package decoder

import (
	"encoding/binary"
	"net/netip"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/GyulyVGC/sniffnet-core/internal/logging"
	"github.com/GyulyVGC/sniffnet-core/types"
)

var decoderLog = logging.Named("decoder")

// ErrDecode is wrapped with context and returned whenever a packet cannot
// be decoded far enough to be classified.
var ErrDecode = errors.New("packet decode error")

// Headers is the structured result of decoding one packet. A decode error
// means the packet is dropped silently and Headers is nil (§4.1).
type Headers struct {
	SrcMAC, DstMAC string

	IPVersion types.IPVersion
	SrcIP     netip.Addr
	DstIP     netip.Addr

	Transport types.TransportKind
	SrcPort   uint16
	DstPort   uint16

	// ICMPSubtype is populated only when Transport is ICMPv4/ICMPv6/ARP.
	ICMPSubtype types.ICMPSubtype

	// PayloadLen is the length of the IP payload, used as the
	// exchanged-bytes figure for the connection aggregate.
	PayloadLen int
}

// addressFamily values recognized in the 4-byte prefix that null/loopback
// links place before the IP header, as observed in either endianness.
const (
	afINET    = 2
	afINET6BSD = 24
	afINET6FreeBSD = 28
	afINET6Linux = 30
)

// Decode decodes data captured on a link of the given gopacket link type.
// Unsupported link kinds fall back to Ethernet parsing and may fail.
func Decode(data []byte, linkType layers.LinkType) (*Headers, error) {
	switch linkType {
	case layers.LinkTypeNull, layers.LinkTypeLoop:
		return decodeNullOrLoopback(data)
	case layers.LinkTypeRaw, layers.LinkTypeIPv4, layers.LinkTypeIPv6:
		return decodeIPOnly(data)
	default:
		return decodeEthernet(data)
	}
}

// decodeNullOrLoopback strips the 4-byte address-family prefix (values 2,
// 24, 28, 30 in either endianness) that precedes the IP header on null and
// loopback links, then decodes the remainder as a bare IP packet.
func decodeNullOrLoopback(data []byte) (*Headers, error) {
	if len(data) < 4 {
		return nil, errors.Wrap(ErrDecode, "null/loopback prefix truncated")
	}

	be := binary.BigEndian.Uint32(data[:4])
	le := binary.LittleEndian.Uint32(data[:4])

	isV6 := false
	switch {
	case be == afINET || le == afINET:
		isV6 = false
	case be == afINET6BSD || le == afINET6BSD,
		be == afINET6FreeBSD || le == afINET6FreeBSD,
		be == afINET6Linux || le == afINET6Linux:
		isV6 = true
	default:
		return nil, errors.Wrapf(ErrDecode, "unrecognized address family prefix %#x", be)
	}

	rest := data[4:]
	if isV6 {
		return decodeIPv6(rest)
	}
	return decodeIPv4(rest)
}

// decodeIPOnly decodes data that begins directly at the IP header, sniffing
// the version nibble to pick v4 vs v6.
func decodeIPOnly(data []byte) (*Headers, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrDecode, "empty packet")
	}

	version := data[0] >> 4
	switch version {
	case 4:
		return decodeIPv4(data)
	case 6:
		return decodeIPv6(data)
	default:
		return nil, errors.Wrapf(ErrDecode, "unrecognized IP version nibble %d", version)
	}
}

func decodeIPv4(data []byte) (*Headers, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeIPv4, gopacket.DecodeOptions{
		Lazy: true, NoCopy: true,
	})
	return headersFromPacket(packet)
}

func decodeIPv6(data []byte) (*Headers, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeIPv6, gopacket.DecodeOptions{
		Lazy: true, NoCopy: true,
	})
	return headersFromPacket(packet)
}

func decodeEthernet(data []byte) (*Headers, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.DecodeOptions{
		Lazy: true, NoCopy: true,
	})
	return headersFromPacket(packet)
}

func headersFromPacket(packet gopacket.Packet) (*Headers, error) {
	if err := packet.ErrorLayer(); err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}

	h := &Headers{}

	if ll := packet.LinkLayer(); ll != nil {
		if eth, ok := ll.(*layers.Ethernet); ok {
			h.SrcMAC = eth.SrcMAC.String()
			h.DstMAC = eth.DstMAC.String()
		}
	}

	nl := packet.NetworkLayer()
	if nl == nil {
		// ARP has no network layer in gopacket's model; handle separately.
		if arpLayer := packet.Layer(layers.LayerTypeARP); arpLayer != nil {
			return headersFromARP(h, arpLayer.(*layers.ARP))
		}
		return nil, errors.Wrap(ErrDecode, "no network layer decoded")
	}

	switch v := nl.(type) {
	case *layers.IPv4:
		h.IPVersion = types.IPVersionV4
		h.SrcIP, _ = netip.AddrFromSlice(v.SrcIP.To4())
		h.DstIP, _ = netip.AddrFromSlice(v.DstIP.To4())
		h.PayloadLen = int(v.Length) - int(v.IHL)*4
	case *layers.IPv6:
		h.IPVersion = types.IPVersionV6
		h.SrcIP, _ = netip.AddrFromSlice(v.SrcIP.To16())
		h.DstIP, _ = netip.AddrFromSlice(v.DstIP.To16())
		h.PayloadLen = int(v.Length)
	default:
		return nil, errors.Wrap(ErrDecode, "unsupported network layer")
	}

	if err := decodeTransport(h, packet); err != nil {
		decoderLog.Debug("transport decode failed", zap.Error(err))
		return nil, err
	}

	return h, nil
}

func headersFromARP(h *Headers, arp *layers.ARP) (*Headers, error) {
	h.IPVersion = types.IPVersionV4
	h.Transport = types.TransportARP
	h.SrcPort = types.SentinelPort
	h.DstPort = types.SentinelPort
	h.ICMPSubtype = types.ICMPSubtype{Type: int32(arp.Operation)}

	srcIP, ok1 := netip.AddrFromSlice(arp.SourceProtAddress)
	dstIP, ok2 := netip.AddrFromSlice(arp.DstProtAddress)
	if !ok1 || !ok2 {
		return nil, errors.Wrap(ErrDecode, "malformed ARP addresses")
	}
	h.SrcIP = srcIP
	h.DstIP = dstIP
	h.PayloadLen = len(arp.Contents)

	return h, nil
}

func decodeTransport(h *Headers, packet gopacket.Packet) error {
	if tl := packet.TransportLayer(); tl != nil {
		switch v := tl.(type) {
		case *layers.TCP:
			h.Transport = types.TransportTCP
			h.SrcPort = uint16(v.SrcPort)
			h.DstPort = uint16(v.DstPort)
			return nil
		case *layers.UDP:
			h.Transport = types.TransportUDP
			h.SrcPort = uint16(v.SrcPort)
			h.DstPort = uint16(v.DstPort)
			return nil
		}
	}

	if icmp4 := packet.Layer(layers.LayerTypeICMPv4); icmp4 != nil {
		v := icmp4.(*layers.ICMPv4)
		h.Transport = types.TransportICMPv4
		h.SrcPort = types.SentinelPort
		h.DstPort = types.SentinelPort
		h.ICMPSubtype = types.ICMPSubtype{Type: int32(v.TypeCode.Type()), Code: int32(v.TypeCode.Code())}
		return nil
	}

	if icmp6 := packet.Layer(layers.LayerTypeICMPv6); icmp6 != nil {
		v := icmp6.(*layers.ICMPv6)
		h.Transport = types.TransportICMPv6
		h.SrcPort = types.SentinelPort
		h.DstPort = types.SentinelPort
		h.ICMPSubtype = types.ICMPSubtype{Type: int32(v.TypeCode.Type()), Code: int32(v.TypeCode.Code())}
		return nil
	}

	if decoderLog.Core().Enabled(zap.DebugLevel) {
		decoderLog.Debug("no recognized transport layer", zap.String("dump", spew.Sdump(packet)))
	}

	return errors.Wrap(ErrDecode, "no recognized transport header")
}
