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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidPortCollection is returned when a comma-separated port
// collection string cannot be parsed.
var ErrInvalidPortCollection = errors.New("invalid port collection")

// PortRange is an inclusive range between two port numbers, Lo <= Hi.
type PortRange struct {
	Lo, Hi uint16
}

func (r PortRange) contains(p uint16) bool {
	return p >= r.Lo && p <= r.Hi
}

// PortCollection mirrors AddressCollection over uint16 ports: individual
// ports plus inclusive ranges, with an empty collection meaning
// unrestricted at the filter-evaluation layer.
type PortCollection struct {
	Ports  []uint16
	Ranges []PortRange
}

// ParsePortCollection parses a comma-separated list of port literals and
// "A-B" inclusive ranges, with A <= B required.
func ParsePortCollection(s string) (PortCollection, error) {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return PortCollection{}, nil
	}

	var out PortCollection
	for _, object := range strings.Split(s, string(addressSeparator)) {
		if idx := strings.IndexByte(object, rangeSeparator); idx >= 0 {
			loStr, hiStr := object[:idx], object[idx+1:]
			lo, err1 := strconv.ParseUint(loStr, 10, 16)
			hi, err2 := strconv.ParseUint(hiStr, 10, 16)
			if err1 != nil || err2 != nil || lo > hi {
				return PortCollection{}, errors.Wrapf(ErrInvalidPortCollection, "range %q", object)
			}
			out.Ranges = append(out.Ranges, PortRange{Lo: uint16(lo), Hi: uint16(hi)})
			continue
		}

		p, err := strconv.ParseUint(object, 10, 16)
		if err != nil {
			return PortCollection{}, errors.Wrapf(ErrInvalidPortCollection, "port %q", object)
		}
		out.Ports = append(out.Ports, uint16(p))
	}
	return out, nil
}

// IsEmpty reports whether the collection places no restriction.
func (c PortCollection) IsEmpty() bool {
	return len(c.Ports) == 0 && len(c.Ranges) == 0
}

// Contains reports whether port p matches any range or individual port.
func (c PortCollection) Contains(p uint16) bool {
	for _, r := range c.Ranges {
		if r.contains(p) {
			return true
		}
	}
	for _, candidate := range c.Ports {
		if candidate == p {
			return true
		}
	}
	return false
}
