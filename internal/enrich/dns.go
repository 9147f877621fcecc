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
	"context"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/pkg/errors"
)

// ErrNoPTRRecord is returned when a reverse lookup completes without error
// but returns no PTR record, matching the original's "empty rdns falls
// back to the address itself" behavior.
var ErrNoPTRRecord = errors.New("no PTR record")

// Resolver performs reverse-DNS lookups against a configured nameserver.
// The zero value is not usable; construct with NewResolver.
type Resolver struct {
	client     *dns.Client
	nameserver string
}

// NewResolver builds a resolver that queries nameserver (host:port, e.g.
// "8.8.8.8:53"), with a 2-second lookup timeout.
func NewResolver(nameserver string) *Resolver {
	return &Resolver{
		client:     &dns.Client{Timeout: 2 * time.Second},
		nameserver: nameserver,
	}
}

// Lookup performs a PTR lookup for ip. When the answer carries no PTR
// name, it returns the address's own string form together with
// ErrNoPTRRecord, mirroring dns_lookup::lookup_addr
// falling back to the queried address when the resolver returns an empty
// name.
func (r *Resolver) Lookup(ctx context.Context, ip netip.Addr) (string, error) {
	fqdn, err := dns.ReverseAddr(ip.String())
	if err != nil {
		return "", errors.Wrap(err, "build reverse query name")
	}

	msg := new(dns.Msg)
	msg.SetQuestion(fqdn, dns.TypePTR)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.nameserver)
	if err != nil {
		return "", errors.Wrap(err, "exchange PTR query")
	}

	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			name := strings.TrimSuffix(ptr.Ptr, ".")
			if name != "" {
				return name, nil
			}
		}
	}

	return ip.String(), ErrNoPTRRecord
}
