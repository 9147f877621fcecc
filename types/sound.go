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

// Sound identifies which notification chime the audio sink should play.
// SoundNone suppresses playback entirely.
type Sound int32

const (
	SoundNone Sound = iota
	SoundPop
	SoundSwhoosh
	SoundDing
)

// NotificationKind tags the three alert variants the notification engine
// produces; all three share {id, timestamp, sound}.
type NotificationKind int32

const (
	NotificationData NotificationKind = iota
	NotificationFavorite
	NotificationBlacklist
)

func (k NotificationKind) String() string {
	switch k {
	case NotificationFavorite:
		return "favorite"
	case NotificationBlacklist:
		return "blacklist"
	default:
		return "data"
	}
}

// ICMPSubtype is a histogram bucket key for ICMP/ARP message subtypes
// carried by a connection aggregate.
type ICMPSubtype struct {
	Type int32
	Code int32
}
