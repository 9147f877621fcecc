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

package source

import "github.com/GyulyVGC/sniffnet-core/types"

// AudioSink plays a notification sound. Volume is advisory (0..=100); a
// single global call is made per notification, never one per listener.
type AudioSink interface {
	Play(sound types.Sound, volume int) error
}

// NopAudioSink discards every sound; used when notifications.sound is
// disabled or no platform audio backend is wired up.
type NopAudioSink struct{}

// Play implements AudioSink by doing nothing.
func (NopAudioSink) Play(types.Sound, int) error { return nil }

// Process is a discovered OS process, as returned by the port→program
// lookup.
type Process struct {
	PID  int32
	Name string
	Path string
}
