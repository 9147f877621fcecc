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

import (
	"fmt"
	"math"
)

// DataRepr is the unit a quantity of traffic is displayed in: raw packet
// counts, bytes (with SI multiples), or bits (bytes * 8, same multiples).
type DataRepr int32

const (
	DataReprPackets DataRepr = iota
	DataReprBytes
	DataReprBits
)

func (d DataRepr) String() string {
	switch d {
	case DataReprBytes:
		return "Bytes"
	case DataReprBits:
		return "Bits"
	default:
		return "Packets"
	}
}

// ByteMultiple is the SI multiple chosen to render a byte (or bit) amount.
type ByteMultiple int32

const (
	ByteMultipleB ByteMultiple = iota
	ByteMultipleKB
	ByteMultipleMB
	ByteMultipleGB
	ByteMultipleTB
	ByteMultiplePB
)

// Multiplier returns the multiple's scale factor.
func (b ByteMultiple) Multiplier() uint64 {
	switch b {
	case ByteMultipleKB:
		return 1_000
	case ByteMultipleMB:
		return 1_000_000
	case ByteMultipleGB:
		return 1_000_000_000
	case ByteMultipleTB:
		return 1_000_000_000_000
	case ByteMultiplePB:
		return 1_000_000_000_000_000
	default:
		return 1
	}
}

func byteMultipleFromAmount(amount uint64) ByteMultiple {
	switch {
	case amount < ByteMultipleKB.Multiplier():
		return ByteMultipleB
	case amount < ByteMultipleMB.Multiplier():
		return ByteMultipleKB
	case amount < ByteMultipleGB.Multiplier():
		return ByteMultipleMB
	case amount < ByteMultipleTB.Multiplier():
		return ByteMultipleGB
	case amount < ByteMultiplePB.Multiplier():
		return ByteMultipleTB
	default:
		return ByteMultiplePB
	}
}

func (b ByteMultiple) suffix(repr DataRepr) string {
	letter := map[ByteMultiple]string{
		ByteMultipleB:  "",
		ByteMultipleKB: "K",
		ByteMultipleMB: "M",
		ByteMultipleGB: "G",
		ByteMultipleTB: "T",
		ByteMultiplePB: "P",
	}[b]

	unit := "B"
	if repr == DataReprBits {
		unit = "bit"
	}
	return letter + unit
}

// FormatBytes renders amount (packets, bytes, or bits depending on d) as a
// human-readable string with the appropriate SI multiple.
//
// amount == math.MaxUint64 is treated as the representation's overflow
// boundary and always renders as "inf PB", mirroring the original
// implementation's behavior when casting the widest supported integer to a
// narrower float for display.
func (d DataRepr) FormatBytes(amount uint64) string {
	if d == DataReprPackets {
		return fmt.Sprintf("%d", amount)
	}

	if amount == math.MaxUint64 {
		return "inf PB"
	}

	n := float64(amount)
	multiple := byteMultipleFromAmount(amount)
	n /= float64(multiple.Multiplier())

	if n > 999.0 && multiple != ByteMultiplePB {
		// e.g. render 999_999 as "999 KB" instead of "1000 KB"
		n = 999.0
	}

	precision := 0
	if multiple != ByteMultipleB && n <= 9.95 {
		precision = 1
	}

	return fmt.Sprintf("%.*f %s", precision, n, multiple.suffix(d))
}
