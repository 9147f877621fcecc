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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytesPacketsIsRawDecimal(t *testing.T) {
	assert.Equal(t, "1234", DataReprPackets.FormatBytes(1234))
}

func TestFormatBytesChoosesSIMultiple(t *testing.T) {
	assert.Equal(t, "0 B", DataReprBytes.FormatBytes(0))
	assert.Equal(t, "999 B", DataReprBytes.FormatBytes(999))
	assert.Equal(t, "1.0 KB", DataReprBytes.FormatBytes(1_000))
	assert.Equal(t, "1.0 MB", DataReprBytes.FormatBytes(1_000_000))
	assert.Equal(t, "1.0 GB", DataReprBytes.FormatBytes(1_000_000_000))
}

func TestFormatBytesClampsJustBelowNextMultipleTo999(t *testing.T) {
	assert.Equal(t, "999 KB", DataReprBytes.FormatBytes(999_999))
}

func TestFormatBytesBitsUsesBitSuffix(t *testing.T) {
	assert.Equal(t, "1.0 Kbit", DataReprBits.FormatBytes(1_000))
}

func TestFormatBytesMaxUint64IsInfPB(t *testing.T) {
	assert.Equal(t, "inf PB", DataReprBytes.FormatBytes(math.MaxUint64))
}

func TestDataReprStringRoundTrip(t *testing.T) {
	assert.Equal(t, "Packets", DataReprPackets.String())
	assert.Equal(t, "Bytes", DataReprBytes.String())
	assert.Equal(t, "Bits", DataReprBits.String())
}

func TestByteMultipleMultiplierTable(t *testing.T) {
	assert.Equal(t, uint64(1), ByteMultipleB.Multiplier())
	assert.Equal(t, uint64(1_000), ByteMultipleKB.Multiplier())
	assert.Equal(t, uint64(1_000_000_000_000_000), ByteMultiplePB.Multiplier())
}
