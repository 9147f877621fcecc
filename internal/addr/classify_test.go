package addr

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GyulyVGC/sniffnet-core/types"
)

func TestClassifyOutgoing(t *testing.T) {
	iface := []netip.Addr{netip.MustParseAddr("192.168.1.10")}
	dir, _ := Classify(netip.MustParseAddr("192.168.1.10"), netip.MustParseAddr("8.8.8.8"), iface)
	assert.Equal(t, types.DirectionOutgoing, dir)
}

func TestClassifyIncoming(t *testing.T) {
	iface := []netip.Addr{netip.MustParseAddr("192.168.1.10")}
	dir, _ := Classify(netip.MustParseAddr("8.8.8.8"), netip.MustParseAddr("192.168.1.10"), iface)
	assert.Equal(t, types.DirectionIncoming, dir)
}

func TestClassifyMulticast(t *testing.T) {
	iface := []netip.Addr{netip.MustParseAddr("192.168.1.10")}
	_, typ := Classify(netip.MustParseAddr("10.0.0.5"), netip.MustParseAddr("224.0.0.251"), iface)
	assert.Equal(t, types.TrafficMulticast, typ)
}

func TestLocalityBothPrivate(t *testing.T) {
	a := netip.MustParseAddr("192.168.1.1")
	b := netip.MustParseAddr("10.0.0.1")
	assert.Equal(t, types.LocalityLocal, LocalityOf(a, b))
}

func TestLocalityRemote(t *testing.T) {
	a := netip.MustParseAddr("192.168.1.1")
	b := netip.MustParseAddr("8.8.8.8")
	assert.Equal(t, types.LocalityRemote, LocalityOf(a, b))
}

func TestIsBogon(t *testing.T) {
	assert.True(t, IsBogon(netip.MustParseAddr("127.0.0.1")))
	assert.True(t, IsBogon(netip.MustParseAddr("10.1.2.3")))
	assert.False(t, IsBogon(netip.MustParseAddr("8.8.8.8")))
}
