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

// Package search implements the search/sort/paginator (C11): applies
// filter inputs to the connection table, sorts the filtered set, and
// slices it into the requested page.
package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/GyulyVGC/sniffnet-core/internal/conntable"
	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
)

// PageSize is the fixed number of records returned per page.
const PageSize = 20

// SortColumn selects the field a query is sorted by. SortNeutral means
// no sort is applied: results stay in the connection table's insertion
// order.
type SortColumn int32

const (
	SortNeutral SortColumn = iota
	SortData
	SortBytes
	SortPackets
	SortRecency
)

// SortDirection is ascending or descending; meaningless when the column
// is SortNeutral.
type SortDirection int32

const (
	SortAscending SortDirection = iota
	SortDescending
)

// SortSpec is one (column, direction) pair. The zero value sorts nothing.
type SortSpec struct {
	Column    SortColumn
	Direction SortDirection
}

// Filter holds every criterion a query can narrow results by. A zero
// (empty-string / false) field matches everything for that criterion.
type Filter struct {
	Country          string
	Domain           string
	ASNName          string
	Program          string
	AddressSubstring string
	PortSubstring    string
	FavoritesOnly    bool
}

// Record is one connection as returned by a query: its fingerprint, its
// counters, and the host/favorite/program context resolved for display
// and filtering.
type Record struct {
	Key       conntable.Key
	Aggregate *conntable.Aggregate
	Host      hosttable.Host
	Favorite  bool
}

// DataInfo is the agglomerate summary of a filtered (pre-pagination) set:
// the sums a results header displays alongside the page itself.
type DataInfo struct {
	Packets uint64
	Bytes   uint64
}

// Page is one query's result: the requested slice of records plus the
// agglomerate summary and total count of the full filtered set.
type Page struct {
	Records     []Record
	Total       int
	Agglomerate DataInfo
}

// Resolver resolves an address's host identity, if known. The caller
// adapts whatever cache it holds (e.g. *enrich.ResolvedCache) to this
// shape, keeping this package free of a dependency on any one cache
// implementation.
type Resolver func(addrString string) (hosttable.Host, bool)

// Query filters entries, resolves each surviving record's host and
// favorite status via resolve/favoriteOf, sorts the result (stably, so
// ties preserve insertion order), and returns the requested page.
// page is 1-indexed; page < 1 is treated as 1.
func Query(entries []conntable.Entry, resolve Resolver, favoriteOf func(hosttable.Key) bool, filter Filter, sortSpec SortSpec, page int) Page {
	if favoriteOf == nil {
		favoriteOf = func(hosttable.Key) bool { return false }
	}
	if resolve == nil {
		resolve = func(string) (hosttable.Host, bool) { return hosttable.Host{}, false }
	}

	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		host, _ := resolve(e.Key.AddrA.String())
		if h2, ok := resolve(e.Key.AddrB.String()); ok && host.Domain == "" {
			host = h2
		}
		fav := favoriteOf(host.Key())
		if !matches(e, host, fav, filter) {
			continue
		}
		records = append(records, Record{Key: e.Key, Aggregate: e.Aggregate, Host: host, Favorite: fav})
	}

	sortRecords(records, sortSpec)

	agg := DataInfo{}
	for _, r := range records {
		agg.Packets += r.Aggregate.Packets
		agg.Bytes += r.Aggregate.Bytes
	}

	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start > len(records) {
		start = len(records)
	}
	end := start + PageSize
	if end > len(records) {
		end = len(records)
	}

	return Page{
		Records:     append([]Record(nil), records[start:end]...),
		Total:       len(records),
		Agglomerate: agg,
	}
}

func matches(e conntable.Entry, host hosttable.Host, favorite bool, f Filter) bool {
	if f.FavoritesOnly && !favorite {
		return false
	}
	if f.Country != "" && !strings.EqualFold(host.CountryCode, f.Country) {
		return false
	}
	if f.Domain != "" && !strings.Contains(strings.ToLower(host.Domain), strings.ToLower(f.Domain)) {
		return false
	}
	if f.ASNName != "" && !strings.Contains(strings.ToLower(host.ASN.Name), strings.ToLower(f.ASNName)) {
		return false
	}
	if f.Program != "" {
		name := ""
		if e.Aggregate.Program != nil {
			name = e.Aggregate.Program.Name
		}
		if !strings.Contains(strings.ToLower(name), strings.ToLower(f.Program)) {
			return false
		}
	}
	if f.AddressSubstring != "" {
		needle := strings.ToLower(f.AddressSubstring)
		if !strings.Contains(strings.ToLower(e.Key.AddrA.String()), needle) &&
			!strings.Contains(strings.ToLower(e.Key.AddrB.String()), needle) {
			return false
		}
	}
	if f.PortSubstring != "" {
		if !strings.Contains(strconv.Itoa(int(e.Key.PortA)), f.PortSubstring) &&
			!strings.Contains(strconv.Itoa(int(e.Key.PortB)), f.PortSubstring) {
			return false
		}
	}
	return true
}

// sortRecords sorts in place. SortData and SortBytes compare by the same
// field (total bytes): the bytes/bits data-representation choice only
// rescales the axis, it never reorders it, so there is no separate "data"
// metric to compute. SortData compares bytes under the packets
// representation as well.
func sortRecords(records []Record, spec SortSpec) {
	if spec.Column == SortNeutral {
		return
	}
	less := func(i, j int) bool {
		a, b := records[i].Aggregate, records[j].Aggregate
		switch spec.Column {
		case SortPackets:
			return a.Packets < b.Packets
		case SortRecency:
			return a.LastSeen.Before(b.LastSeen)
		default: // SortData, SortBytes
			return a.Bytes < b.Bytes
		}
	}
	if spec.Direction == SortDescending {
		base := less
		less = func(i, j int) bool { return base(j, i) }
	}
	sort.SliceStable(records, less)
}
