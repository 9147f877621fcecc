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

// Package notify implements the notification engine (C10): stateful
// threshold detection for data rate, favorite hosts, and blacklisted
// peers, each sharing a common envelope and a capped log; interactive
// threshold edits are debounced.
package notify

import (
	"net/netip"
	"time"

	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
	"github.com/GyulyVGC/sniffnet-core/types"
)

// DataPayload summarizes the epoch that tripped a data-threshold alert.
type DataPayload struct {
	Representation types.DataRepr
	Threshold      uint64
	ByteMultiple   types.ByteMultiple
	Incoming       uint64
	Outgoing       uint64
}

// FavoritePayload names the favorite host that exchanged traffic.
type FavoritePayload struct {
	Host hosttable.Host
}

// BlacklistPayload names the blacklisted peer address observed.
type BlacklistPayload struct {
	Address netip.Addr
}

// Notification is one logged alert. Exactly one of Data/Favorite/
// Blacklist is non-nil, selected by Kind.
type Notification struct {
	ID         int64
	Kind       types.NotificationKind
	Timestamp  time.Time
	Sound      types.Sound
	IsExpanded bool

	Data      *DataPayload
	Favorite  *FavoritePayload
	Blacklist *BlacklistPayload
}
