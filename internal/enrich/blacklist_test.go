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
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklistRejectsEverythingBeforeLoad(t *testing.T) {
	b := NewBlacklist()
	assert.False(t, b.Ready())
	assert.False(t, b.Contains(netip.MustParseAddr("203.0.113.1")))
}

func TestBlacklistLoadMatchesCIDRAndBareIP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	contents := "# comment\n\n203.0.113.0/24\n198.51.100.7\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	b := NewBlacklist()
	require.NoError(t, b.Load(path))
	assert.True(t, b.Ready())

	assert.True(t, b.Contains(netip.MustParseAddr("203.0.113.9")))
	assert.True(t, b.Contains(netip.MustParseAddr("198.51.100.7")))
	assert.False(t, b.Contains(netip.MustParseAddr("198.51.100.8")))
	assert.False(t, b.Contains(netip.MustParseAddr("8.8.8.8")))
}

func TestBlacklistLoadRejectsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("not-an-address\n"), 0o644))

	b := NewBlacklist()
	err := b.Load(path)
	assert.Error(t, err)
	assert.False(t, b.Ready())
}

func TestBlacklistLoadMissingFileReturnsError(t *testing.T) {
	b := NewBlacklist()
	err := b.Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
