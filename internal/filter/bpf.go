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
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/pkg/errors"
)

// ErrInvalidFilter is returned when a BPF expression fails to compile.
var ErrInvalidFilter = errors.New("InvalidFilter")

// BPF is the opaque prefilter string handed straight to the packet
// source. CompileCheck validates it against a link type without opening a
// live capture, so a bad expression fails before capture starts rather
// than silently admitting everything.
type BPF struct {
	Expr string
}

// CompileCheck compiles expr for linkType and snapLen, returning
// ErrInvalidFilter wrapped with the underlying compiler message on
// failure.
func (b BPF) CompileCheck(linkType layers.LinkType, snapLen int) error {
	if b.Expr == "" {
		return nil
	}
	if _, err := pcap.CompileBPFFilter(linkType, snapLen, b.Expr); err != nil {
		return errors.Wrapf(ErrInvalidFilter, "%q: %s", b.Expr, err)
	}
	return nil
}
