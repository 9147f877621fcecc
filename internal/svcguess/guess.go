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

// Package svcguess maps (port, transport) pairs to a guessed named Service.
package svcguess

import "github.com/GyulyVGC/sniffnet-core/types"

// portService is the fixed table of well-known ports recognized per
// transport kind. Only ports the spec's Service enumeration names are
// present; anything else resolves to Unknown.
var portService = map[types.TransportKind]map[uint16]types.Service{
	types.TransportTCP: {
		20:  types.ServiceFTP,
		21:  types.ServiceFTP,
		22:  types.ServiceSSH,
		23:  types.ServiceTelnet,
		25:  types.ServiceSMTP,
		49:  types.ServiceTACACS,
		53:  types.ServiceDNS,
		80:  types.ServiceHTTP,
		110: types.ServicePOP,
		139: types.ServiceNetBIOS,
		143: types.ServiceIMAP,
		179: types.ServiceBGP,
		389: types.ServiceLDAP,
		443: types.ServiceHTTPS,
		636: types.ServiceLDAPS,
		989: types.ServiceFTPS,
		990: types.ServiceFTPS,
		993: types.ServiceIMAPS,
		995: types.ServicePOP3S,
		5222: types.ServiceXMPP,
	},
	types.TransportUDP: {
		53:   types.ServiceDNS,
		67:   types.ServiceDHCP,
		68:   types.ServiceDHCP,
		69:   types.ServiceTFTP,
		123:  types.ServiceNTP,
		137:  types.ServiceNetBIOS,
		161:  types.ServiceSNMP,
		162:  types.ServiceSNMP,
		1900: types.ServiceSSDP,
		5353: types.ServiceMDNS,
	},
}

// Guess tries the lower-numbered port first, then the higher-numbered
// port, then falls back to Unknown, per the spec's connection-table
// tie-breaking rule for service guessing.
func Guess(portA, portB uint16, transport types.TransportKind) types.Service {
	table, ok := portService[transport]
	if !ok {
		return types.ServiceUnknown
	}

	lo, hi := portA, portB
	if hi < lo {
		lo, hi = hi, lo
	}

	if svc, ok := table[lo]; ok {
		return svc
	}
	if svc, ok := table[hi]; ok {
		return svc
	}
	return types.ServiceUnknown
}
