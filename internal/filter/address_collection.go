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

// Package filter implements the filter engine (C5): a BPF passthrough
// string plus a structural post-filter over decoded headers.
package filter

import (
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidAddressCollection is returned when a comma-separated address
// collection string cannot be parsed.
var ErrInvalidAddressCollection = errors.New("invalid address collection")

// AddrRange is an inclusive range between two addresses of the same
// family, with Lo <= Hi.
type AddrRange struct {
	Lo, Hi netip.Addr
}

func (r AddrRange) contains(ip netip.Addr) bool {
	if ip.Is4() != r.Lo.Is4() {
		return false
	}
	return ip.Compare(r.Lo) >= 0 && ip.Compare(r.Hi) <= 0
}

// AddressCollection is a set of individual IPs plus inclusive ranges. An
// empty collection (the zero value) places no restriction on matching —
// it is not "contains nothing" but "unfiltered".
type AddressCollection struct {
	IPs    []netip.Addr
	Ranges []AddrRange
}

const (
	addressSeparator = ','
	rangeSeparator   = '-'
)

// ParseAddressCollection parses a comma-separated list of IP literals and
// "A-B" inclusive ranges. An empty (or all-whitespace) string yields an
// empty, unrestricted collection. A range is valid only when both
// endpoints share an address family and lo <= hi; anything else is
// rejected with ErrInvalidAddressCollection.
func ParseAddressCollection(s string) (AddressCollection, error) {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return AddressCollection{}, nil
	}

	var out AddressCollection
	for _, object := range strings.Split(s, string(addressSeparator)) {
		if idx := strings.IndexByte(object, rangeSeparator); idx >= 0 {
			loStr, hiStr := object[:idx], object[idx+1:]
			lo, err1 := netip.ParseAddr(loStr)
			hi, err2 := netip.ParseAddr(hiStr)
			if err1 != nil || err2 != nil {
				return AddressCollection{}, errors.Wrapf(ErrInvalidAddressCollection, "range %q", object)
			}
			if lo.Is4() != hi.Is4() {
				return AddressCollection{}, errors.Wrapf(ErrInvalidAddressCollection, "mixed address family in range %q", object)
			}
			if lo.Compare(hi) > 0 {
				return AddressCollection{}, errors.Wrapf(ErrInvalidAddressCollection, "empty range %q", object)
			}
			out.Ranges = append(out.Ranges, AddrRange{Lo: lo, Hi: hi})
			continue
		}

		ip, err := netip.ParseAddr(object)
		if err != nil {
			return AddressCollection{}, errors.Wrapf(ErrInvalidAddressCollection, "address %q", object)
		}
		out.IPs = append(out.IPs, ip)
	}
	return out, nil
}

// IsEmpty reports whether the collection places no restriction (was
// parsed from an empty string, or is the zero value).
func (c AddressCollection) IsEmpty() bool {
	return len(c.IPs) == 0 && len(c.Ranges) == 0
}

// Contains reports whether ip falls within any range or matches any
// individual IP. An empty collection contains nothing by this method;
// callers treat IsEmpty as "no restriction" at the filter-evaluation
// layer, matching the structural filter's "non-null field" semantics.
func (c AddressCollection) Contains(ip netip.Addr) bool {
	for _, r := range c.Ranges {
		if r.contains(ip) {
			return true
		}
	}
	for _, candidate := range c.IPs {
		if candidate == ip {
			return true
		}
	}
	return false
}
