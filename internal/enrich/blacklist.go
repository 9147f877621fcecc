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
	"bufio"
	"net"
	"net/netip"
	"os"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/yl2chen/cidranger"
)

// Blacklist is a set of IPs and CIDR ranges loaded once from a file,
// tested on every packet's peer address. Loading happens asynchronously;
// Ready reports whether it has completed so the UI can show a loading
// state in the meantime.
type Blacklist struct {
	ranger cidranger.Ranger
	ready  atomic.Bool
}

// NewBlacklist returns a Blacklist that rejects everything until Load
// completes.
func NewBlacklist() *Blacklist {
	return &Blacklist{ranger: cidranger.NewPCTrieRanger()}
}

// Load parses path, one IP or CIDR per line (blank lines and '#'
// comments ignored). Bare IPs are treated as a /32 or /128 host route.
// Intended to run on its own goroutine; Ready() flips to true only on
// success.
func (b *Blacklist) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open blacklist file")
	}
	defer f.Close()

	ranger := cidranger.NewPCTrieRanger()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		network, err := parseNetworkLine(line)
		if err != nil {
			return errors.Wrapf(err, "line %q", line)
		}
		if err := ranger.Insert(cidranger.NewBasicRangerEntry(network)); err != nil {
			return errors.Wrapf(err, "insert %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read blacklist file")
	}

	b.ranger = ranger
	b.ready.Store(true)
	return nil
}

func parseNetworkLine(line string) (net.IPNet, error) {
	if strings.Contains(line, "/") {
		_, network, err := net.ParseCIDR(line)
		if err != nil {
			return net.IPNet{}, err
		}
		return *network, nil
	}

	addr, err := netip.ParseAddr(line)
	if err != nil {
		return net.IPNet{}, err
	}
	bits := 32
	if addr.Is6() {
		bits = 128
	}
	_, network, err := net.ParseCIDR(addr.String() + "/" + itoa(bits))
	if err != nil {
		return net.IPNet{}, err
	}
	return *network, nil
}

func itoa(i int) string {
	if i == 32 {
		return "32"
	}
	return "128"
}

// Ready reports whether Load has completed successfully.
func (b *Blacklist) Ready() bool {
	return b.ready.Load()
}

// Contains reports whether ip matches an entry in the blacklist. Always
// false before Ready().
func (b *Blacklist) Contains(ip netip.Addr) bool {
	if !b.ready.Load() {
		return false
	}
	ok, err := b.ranger.Contains(net.IP(ip.AsSlice()))
	if err != nil {
		return false
	}
	return ok
}
