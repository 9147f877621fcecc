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

// Service is a named application-layer protocol guessed from a port number.
// It is a closed enumeration: anything not recognized is Unknown.
type Service int32

const (
	ServiceUnknown Service = iota
	ServiceFTP
	ServiceSSH
	ServiceTelnet
	ServiceSMTP
	ServiceTACACS
	ServiceDNS
	ServiceDHCP
	ServiceTFTP
	ServiceHTTP
	ServicePOP
	ServiceNTP
	ServiceNetBIOS
	ServiceIMAP
	ServiceSNMP
	ServiceBGP
	ServiceLDAP
	ServiceHTTPS
	ServiceLDAPS
	ServiceFTPS
	ServiceIMAPS
	ServicePOP3S
	ServiceSSDP
	ServiceXMPP
	ServiceMDNS
)

var serviceNames = map[Service]string{
	ServiceUnknown:  "Unknown",
	ServiceFTP:      "FTP",
	ServiceSSH:      "SSH",
	ServiceTelnet:   "Telnet",
	ServiceSMTP:     "SMTP",
	ServiceTACACS:   "TACACS",
	ServiceDNS:      "DNS",
	ServiceDHCP:     "DHCP",
	ServiceTFTP:     "TFTP",
	ServiceHTTP:     "HTTP",
	ServicePOP:      "POP",
	ServiceNTP:      "NTP",
	ServiceNetBIOS:  "NetBIOS",
	ServiceIMAP:     "IMAP",
	ServiceSNMP:     "SNMP",
	ServiceBGP:      "BGP",
	ServiceLDAP:     "LDAP",
	ServiceHTTPS:    "HTTPS",
	ServiceLDAPS:    "LDAPS",
	ServiceFTPS:     "FTPS",
	ServiceIMAPS:    "IMAPS",
	ServicePOP3S:    "POP3S",
	ServiceSSDP:     "SSDP",
	ServiceXMPP:     "XMPP",
	ServiceMDNS:     "mDNS",
}

func (s Service) String() string {
	if name, ok := serviceNames[s]; ok {
		return name
	}
	return "Unknown"
}

// ServiceKey identifies the per-service traffic bucket (C4 service table).
type ServiceKey struct {
	Service   Service
	Transport TransportKind
}
