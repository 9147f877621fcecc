package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GyulyVGC/sniffnet-core/types"
)

func TestLoadMissingFileFallsBackToDefaultsWithoutCorruptedFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yaml")

	rec, corrupted := Load(path)
	require.False(t, corrupted)
	assert.Equal(t, Defaults(), rec)
}

func TestLoadMalformedFileFallsBackToDefaultsAndReportsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("style: [this is not: valid: yaml"), 0o644))

	rec, corrupted := Load(path)
	require.True(t, corrupted)
	assert.Equal(t, Defaults(), rec)
}

func TestSaveThenLoadRoundTripsEveryField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	rec := Defaults()
	rec.Style = "dark"
	rec.Language = "it"
	rec.Scale = 1.5
	rec.GeoCountryDBPath = "/opt/geo/country.mmdb"
	rec.BlacklistPath = "/opt/blacklist.txt"
	rec.Notifications.DataThresholdEnabled = true
	rec.Notifications.DataThreshold = 500
	rec.Notifications.RemoteURL = "https://example.com/hook"
	rec.Window = WindowGeometry{Width: 1920, Height: 1080, X: 10, Y: 20, Maximized: true}
	rec.Source = SourceSelection{Device: "eth0"}
	rec.Filters = FilterSettings{BPFExpr: "tcp", IPVersion: types.IPVersionV4, Transport: -1, Addresses: "10.0.0.1-10.0.0.9", Ports: "80,443"}
	rec.Sort = SortSettings{Column: 2, Direction: 1}
	rec.LastSession = LastSession{Page: 3, NotificationsPageOpen: true}
	rec.PCAPExport = PCAPExportSettings{Enabled: true, Directory: "/tmp", FileName: "capture.pcap"}
	rec.DataRepresentation = types.DataReprBits

	require.NoError(t, Save(path, rec))

	loaded, corrupted := Load(path)
	require.False(t, corrupted)
	assert.Equal(t, rec, loaded)
}

func TestFilterSettingsToStructuralReparsesTextFields(t *testing.T) {
	fs := FilterSettings{Transport: -1, Addresses: "10.0.0.1-10.0.0.9", Ports: "80,443"}
	bpf, structural := fs.ToStructural()
	assert.Equal(t, "", bpf.Expr)
	assert.Nil(t, structural.Transport)
	assert.False(t, structural.Addresses.IsEmpty())
	assert.False(t, structural.Ports.IsEmpty())
}
