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

package decoder

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GyulyVGC/sniffnet-core/types"
)

func serialize(t *testing.T, layerList ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, layerList...))
	return buf.Bytes()
}

func ethernetTCPv4(t *testing.T, payload []byte) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP("10.0.0.1").To4(),
		DstIP:    net.ParseIP("93.184.216.34").To4(),
	}
	tcp := &layers.TCP{SrcPort: 51000, DstPort: 443, SYN: true}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
	return serialize(t, eth, ip, tcp, gopacket.Payload(payload))
}

func TestDecodeEthernetTCPv4ExtractsHeaders(t *testing.T) {
	data := ethernetTCPv4(t, []byte("hello"))

	h, err := Decode(data, layers.LinkTypeEthernet)
	require.NoError(t, err)

	assert.Equal(t, types.IPVersionV4, h.IPVersion)
	assert.Equal(t, "10.0.0.1", h.SrcIP.String())
	assert.Equal(t, "93.184.216.34", h.DstIP.String())
	assert.Equal(t, types.TransportTCP, h.Transport)
	assert.Equal(t, uint16(51000), h.SrcPort)
	assert.Equal(t, uint16(443), h.DstPort)
	assert.Equal(t, "02:00:00:00:00:01", h.SrcMAC)
	assert.Greater(t, h.PayloadLen, 0)
}

func TestDecodeNullLoopbackPrefixStripsAddressFamily(t *testing.T) {
	ip := &layers.IPv4{
		Version: 4, IHL: 5, TTL: 64, Protocol: layers.IPProtocolUDP,
		SrcIP: net.ParseIP("127.0.0.1").To4(), DstIP: net.ParseIP("127.0.0.1").To4(),
	}
	udp := &layers.UDP{SrcPort: 5353, DstPort: 5353}
	require.NoError(t, udp.SetNetworkLayerForChecksum(ip))
	ipBytes := serialize(t, ip, udp)

	prefixed := append([]byte{0, 0, 0, 2}, ipBytes...) // afINET, big-endian

	h, err := Decode(prefixed, layers.LinkTypeLoop)
	require.NoError(t, err)
	assert.Equal(t, types.TransportUDP, h.Transport)
	assert.Equal(t, uint16(5353), h.SrcPort)
}

func TestDecodeTruncatedPacketReturnsErrDecode(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02}, layers.LinkTypeEthernet)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeARPExtractsOperationAsSubtype(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC: net.HardwareAddr{0x02, 0, 0, 0, 0, 1}, DstMAC: net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType: layers.LinkTypeEthernet, Protocol: layers.EthernetTypeIPv4,
		HwAddressSize: 6, ProtAddressSize: 4, Operation: layers.ARPRequest,
		SourceHwAddress: net.HardwareAddr{0x02, 0, 0, 0, 0, 1}, SourceProtAddress: net.ParseIP("10.0.0.1").To4(),
		DstHwAddress: net.HardwareAddr{0, 0, 0, 0, 0, 0}, DstProtAddress: net.ParseIP("10.0.0.2").To4(),
	}
	data := serialize(t, eth, arp)

	h, err := Decode(data, layers.LinkTypeEthernet)
	require.NoError(t, err)
	assert.Equal(t, types.TransportARP, h.Transport)
	assert.Equal(t, int32(layers.ARPRequest), h.ICMPSubtype.Type)
}
