package svcguess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GyulyVGC/sniffnet-core/types"
)

func TestGuessLowerPortWins(t *testing.T) {
	assert.Equal(t, types.ServiceHTTPS, Guess(51000, 443, types.TransportTCP))
	assert.Equal(t, types.ServiceHTTPS, Guess(443, 51000, types.TransportTCP))
}

func TestGuessFallsBackToUnknown(t *testing.T) {
	assert.Equal(t, types.ServiceUnknown, Guess(51000, 51001, types.TransportTCP))
}

func TestGuessUnsupportedTransport(t *testing.T) {
	assert.Equal(t, types.ServiceUnknown, Guess(80, 53, types.TransportICMPv4))
}

func TestGuessBothPortsMatchPrefersLower(t *testing.T) {
	// 53 (DNS) vs 67 (DHCP) on UDP: lower port (53) should win.
	assert.Equal(t, types.ServiceDNS, Guess(67, 53, types.TransportUDP))
}
