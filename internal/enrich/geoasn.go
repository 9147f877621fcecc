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

package enrich

import (
	"net"
	"net/netip"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
	"github.com/pkg/errors"

	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
)

// asnRecord mirrors the fields GeoLite2-ASN.mmdb exposes; maxminddb
// decodes directly into it since geoip2-golang has no dedicated ASN type.
type asnRecord struct {
	AutonomousSystemNumber       uint32 `maxminddb:"autonomous_system_number"`
	AutonomousSystemOrganization string `maxminddb:"autonomous_system_organization"`
}

// GeoDB wraps the two MaxMind-format databases the spec requires: a
// country database (geoip2-golang's typed reader) and an ASN database
// (read generically via maxminddb, since geoip2-golang does not ship an
// ASN-specific type).
type GeoDB struct {
	country *geoip2.Reader
	asn     *maxminddb.Reader
}

// OpenGeoDB opens both database files. Either path may be empty, in which
// case that half of GeoDB resolves to the unknown zero value without
// error — geo/ASN enrichment is best-effort per the spec.
func OpenGeoDB(countryDBPath, asnDBPath string) (*GeoDB, error) {
	g := &GeoDB{}
	if countryDBPath != "" {
		r, err := geoip2.Open(countryDBPath)
		if err != nil {
			return nil, errors.Wrap(err, "open country database")
		}
		g.country = r
	}
	if asnDBPath != "" {
		r, err := maxminddb.Open(asnDBPath)
		if err != nil {
			return nil, errors.Wrap(err, "open ASN database")
		}
		g.asn = r
	}
	return g, nil
}

// Close releases both underlying mmap'd database files.
func (g *GeoDB) Close() error {
	var firstErr error
	if g.country != nil {
		if err := g.country.Close(); err != nil {
			firstErr = err
		}
	}
	if g.asn != nil {
		if err := g.asn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CountryCode returns the ISO country code for ip, or "" if unresolved.
func (g *GeoDB) CountryCode(ip netip.Addr) string {
	if g.country == nil {
		return ""
	}
	record, err := g.country.Country(net.IP(ip.AsSlice()))
	if err != nil || record == nil {
		return ""
	}
	return record.Country.IsoCode
}

// ASN returns the autonomous system owning ip, or the zero ASN if
// unresolved.
func (g *GeoDB) ASN(ip netip.Addr) hosttable.ASN {
	if g.asn == nil {
		return hosttable.ASN{}
	}
	var rec asnRecord
	if err := g.asn.Lookup(net.IP(ip.AsSlice()), &rec); err != nil {
		return hosttable.ASN{}
	}
	return hosttable.ASN{Number: rec.AutonomousSystemNumber, Name: rec.AutonomousSystemOrganization}
}
