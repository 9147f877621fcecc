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

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GyulyVGC/sniffnet-core/internal/hosttable"
	"github.com/GyulyVGC/sniffnet-core/internal/logging"
	"github.com/GyulyVGC/sniffnet-core/internal/source"
	"github.com/GyulyVGC/sniffnet-core/types"
)

var notifyLog = logging.Named("notify")

// logCapacity is the number of notifications retained; the oldest is
// evicted on insert once reached (§4.9: "the engine keeps the last 30").
const logCapacity = 30

// TimeoutThresholdAdjust is the debounce window: a pending threshold
// edit is applied only after this much inactivity, provided at least one
// packet has been observed since the edit.
const TimeoutThresholdAdjust = 2 * time.Second

// DataThreshold is the active configuration of the data-rate alert.
type DataThreshold struct {
	Enabled         bool
	Representation  types.DataRepr
	Threshold       uint64
	ByteMultiple    types.ByteMultiple
	Sound           types.Sound
	PreviousThreshold uint64 // restored when re-enabling after a toggle-off
}

type pendingEdit struct {
	threshold    uint64
	byteMultiple types.ByteMultiple
	prev         uint64
	at           time.Time
}

// Epoch is the subset of one tick's totals the notification engine
// evaluates a threshold against, decoupled from pipeline/aggregate for
// the same DAG reasons as filter.Header and chart.Delta.
type Epoch struct {
	IncomingBytes   uint64
	OutgoingBytes   uint64
	IncomingPackets uint64
	OutgoingPackets uint64
}

func (e Epoch) totalBytes() uint64   { return e.IncomingBytes + e.OutgoingBytes }
func (e Epoch) totalPackets() uint64 { return e.IncomingPackets + e.OutgoingPackets }
func (e Epoch) totalBits() uint64    { return e.totalBytes() * 8 }

// Engine is the notification engine (C10): one instance per capture.
type Engine struct {
	mu sync.Mutex

	nextID int64
	log    []Notification
	unread int

	dataThreshold DataThreshold
	pending       *pendingEdit
	observedSincePendingEdit bool

	favoriteEnabled bool
	favoriteSound   types.Sound
	favoriteHosts   map[hosttable.Key]struct{}

	blacklistEnabled bool
	blacklistSound   types.Sound

	sink      source.AudioSink
	remoteURL string
	http      *http.Client
}

// NewEngine returns an engine with notifications disabled and an empty
// log. sink may be nil (treated as NopAudioSink).
func NewEngine(sink source.AudioSink) *Engine {
	if sink == nil {
		sink = source.NopAudioSink{}
	}
	return &Engine{
		sink:          sink,
		favoriteHosts: make(map[hosttable.Key]struct{}),
		http:          &http.Client{Timeout: 5 * time.Second},
	}
}

// SetDataThreshold replaces the active data-threshold configuration
// outright (e.g. on load from a persisted configuration record), with
// no debounce. Use EditThreshold for interactive edits.
func (e *Engine) SetDataThreshold(cfg DataThreshold) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dataThreshold = cfg
	e.pending = nil
}

// EditThreshold stages an interactive threshold edit: Evaluate applies it
// only once TimeoutThresholdAdjust of inactivity has passed and at least
// one packet has been observed since the edit (§4.9). Toggling on/off (enabled) and changing the sound apply
// immediately, bypassing debounce.
func (e *Engine) EditThreshold(threshold uint64, byteMultiple types.ByteMultiple, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.dataThreshold.Threshold
	if e.pending != nil {
		prev = e.pending.prev
	}
	e.pending = &pendingEdit{threshold: threshold, byteMultiple: byteMultiple, prev: prev, at: now}
	e.observedSincePendingEdit = false
}

// SetThresholdEnabled toggles the alert on or off immediately. Disabling
// remembers the current threshold as PreviousThreshold so a subsequent
// enable restores it verbatim.
func (e *Engine) SetThresholdEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if enabled && !e.dataThreshold.Enabled {
		e.dataThreshold.Threshold = e.dataThreshold.PreviousThreshold
	}
	if !enabled && e.dataThreshold.Enabled {
		e.dataThreshold.PreviousThreshold = e.dataThreshold.Threshold
	}
	e.dataThreshold.Enabled = enabled
}

// SetThresholdSound applies immediately, bypassing debounce.
func (e *Engine) SetThresholdSound(sound types.Sound) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dataThreshold.Sound = sound
}

// SetFavoriteNotification configures the favorite-host alert.
func (e *Engine) SetFavoriteNotification(enabled bool, sound types.Sound) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.favoriteEnabled = enabled
	e.favoriteSound = sound
}

// SetBlacklistNotification configures the IP-blacklist alert.
func (e *Engine) SetBlacklistNotification(enabled bool, sound types.Sound) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blacklistEnabled = enabled
	e.blacklistSound = sound
}

// SetFavoriteHosts replaces the set of hosts the favorite alert watches.
func (e *Engine) SetFavoriteHosts(keys []hosttable.Key) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.favoriteHosts = make(map[hosttable.Key]struct{}, len(keys))
	for _, k := range keys {
		e.favoriteHosts[k] = struct{}{}
	}
}

// SetRemoteURL configures (or disables, if empty) best-effort remote
// notification delivery.
func (e *Engine) SetRemoteURL(url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remoteURL = url
}

// applyPendingEditLocked applies a debounced threshold edit once it has
// aged past TimeoutThresholdAdjust and at least one packet has arrived
// since it was staged. Must be called with mu held.
func (e *Engine) applyPendingEditLocked(now time.Time) {
	if e.pending == nil || !e.observedSincePendingEdit {
		return
	}
	if now.Sub(e.pending.at) < TimeoutThresholdAdjust {
		return
	}
	e.dataThreshold.Threshold = e.pending.threshold
	e.dataThreshold.ByteMultiple = e.pending.byteMultiple
	e.dataThreshold.PreviousThreshold = e.pending.prev
	e.pending = nil
}

// HostTraffic is one host's contribution to an epoch, for the favorite
// alert to attribute a FavoritePayload to the host(s) that actually
// moved traffic.
type HostTraffic struct {
	Host    hosttable.Host
	Packets uint64
	Bytes   uint64
}

// Evaluate runs all three alert rules against one epoch's delta and logs
// any that fire, returning the notifications emitted: at most one
// data-threshold alert, plus one per favorite host with traffic and one
// per blacklisted peer. hosts is
// the epoch's per-host delta (for the favorite rule); peers is every
// distinct peer address observed this epoch (for the blacklist rule).
// isBlacklisted/now are supplied by the caller to keep this package free
// of a direct dependency on the blacklist matcher and the pipeline
// message types.
func (e *Engine) Evaluate(now time.Time, epoch Epoch, hosts []HostTraffic, peers []netip.Addr, isBlacklisted func(netip.Addr) bool) []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch.totalPackets() > 0 {
		e.observedSincePendingEdit = true
	}
	e.applyPendingEditLocked(now)

	var fired []Notification

	if n, ok := e.evaluateDataThresholdLocked(now, epoch); ok {
		fired = append(fired, n)
	}
	fired = append(fired, e.evaluateFavoriteLocked(now, hosts)...)
	fired = append(fired, e.evaluateBlacklistLocked(now, peers, isBlacklisted)...)

	for _, n := range fired {
		e.appendLocked(n)
	}
	return fired
}

func (e *Engine) evaluateDataThresholdLocked(now time.Time, epoch Epoch) (Notification, bool) {
	if !e.dataThreshold.Enabled || e.dataThreshold.Threshold == 0 {
		return Notification{}, false
	}

	var amount uint64
	switch e.dataThreshold.Representation {
	case types.DataReprBytes:
		amount = epoch.totalBytes()
	case types.DataReprBits:
		amount = epoch.totalBits()
	default:
		amount = epoch.totalPackets()
	}

	threshold := e.dataThreshold.Threshold * e.dataThreshold.ByteMultiple.Multiplier()
	if amount < threshold {
		return Notification{}, false
	}

	n := Notification{
		ID: e.allocIDLocked(), Kind: types.NotificationData, Timestamp: now,
		Sound: e.dataThreshold.Sound,
		Data: &DataPayload{
			Representation: e.dataThreshold.Representation,
			Threshold:      e.dataThreshold.Threshold,
			ByteMultiple:   e.dataThreshold.ByteMultiple,
			Incoming:       epoch.IncomingBytes,
			Outgoing:       epoch.OutgoingBytes,
		},
	}
	return n, true
}

func (e *Engine) evaluateFavoriteLocked(now time.Time, hosts []HostTraffic) []Notification {
	if !e.favoriteEnabled {
		return nil
	}
	var out []Notification
	for _, h := range hosts {
		if h.Packets == 0 && h.Bytes == 0 {
			continue
		}
		if _, ok := e.favoriteHosts[h.Host.Key()]; !ok {
			continue
		}
		out = append(out, Notification{
			ID: e.allocIDLocked(), Kind: types.NotificationFavorite, Timestamp: now,
			Sound: e.favoriteSound, Favorite: &FavoritePayload{Host: h.Host},
		})
	}
	return out
}

func (e *Engine) evaluateBlacklistLocked(now time.Time, peers []netip.Addr, isBlacklisted func(netip.Addr) bool) []Notification {
	if !e.blacklistEnabled || isBlacklisted == nil {
		return nil
	}
	var out []Notification
	for _, addr := range peers {
		if !isBlacklisted(addr) {
			continue
		}
		out = append(out, Notification{
			ID: e.allocIDLocked(), Kind: types.NotificationBlacklist, Timestamp: now,
			Sound: e.blacklistSound, Blacklist: &BlacklistPayload{Address: addr},
		})
	}
	return out
}

func (e *Engine) allocIDLocked() int64 {
	e.nextID++
	return e.nextID
}

func (e *Engine) appendLocked(n Notification) {
	e.log = append(e.log, n)
	if len(e.log) > logCapacity {
		e.log = e.log[len(e.log)-logCapacity:]
	}
	e.unread++

	if n.Sound != types.SoundNone {
		if err := e.sink.Play(n.Sound, 100); err != nil {
			notifyLog.Debug("audio playback failed", zap.Error(err))
		}
	}
	if e.remoteURL != "" {
		go e.postRemote(e.remoteURL, n)
	}
}

// Log returns a snapshot of the retained notifications, oldest first.
func (e *Engine) Log() []Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Notification, len(e.log))
	copy(out, e.log)
	return out
}

// Unread returns the current unread count.
func (e *Engine) Unread() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unread
}

// MarkAllRead zeroes the unread counter, as done when the notifications
// page is viewed.
func (e *Engine) MarkAllRead() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unread = 0
}

// Expand flips a logged notification's is_expanded flag by id.
func (e *Engine) Expand(id int64, expanded bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.log {
		if e.log[i].ID == id {
			e.log[i].IsExpanded = expanded
			return true
		}
	}
	return false
}

// Clear discards every logged notification but keeps configuration and
// the monotonic id counter (ids must stay strictly increasing across a
// clear, only resetting at the start of a new capture via Reset).
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = nil
}

// Reset discards the log, unread counter, and id sequence, as done at
// the start of a new capture; retained configuration (thresholds,
// sounds, favorite/blacklist toggles, remote URL) carries over.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log = nil
	e.unread = 0
	e.nextID = 0
	e.pending = nil
	e.observedSincePendingEdit = false
}

type remotePayload struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// postRemote best-effort POSTs n to url as JSON; failures are logged and
// never propagate (§4.9: "failures are logged and never block").
func (e *Engine) postRemote(url string, n Notification) {
	var payload any
	switch n.Kind {
	case types.NotificationFavorite:
		payload = n.Favorite
	case types.NotificationBlacklist:
		payload = n.Blacklist
	default:
		payload = n.Data
	}

	body, err := json.Marshal(remotePayload{ID: n.ID, Kind: n.Kind.String(), Timestamp: n.Timestamp, Payload: payload})
	if err != nil {
		notifyLog.Warn("marshal remote notification failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		notifyLog.Warn("build remote notification request failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		notifyLog.Warn("remote notification delivery failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()
}
