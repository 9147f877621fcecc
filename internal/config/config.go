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

// Package config implements the persisted configuration record (§6): a
// typed snapshot of every setting an external presentation layer edits,
// loaded/saved as a single YAML file at a platform-conventional path.
package config

import (
	"github.com/GyulyVGC/sniffnet-core/internal/filter"
	"github.com/GyulyVGC/sniffnet-core/internal/search"
	"github.com/GyulyVGC/sniffnet-core/types"
)

// NotificationSettings is the persisted form of the notification engine's
// (C10) configuration.
type NotificationSettings struct {
	Volume int `yaml:"volume" mapstructure:"volume"`

	DataThresholdEnabled      bool               `yaml:"data_threshold_enabled" mapstructure:"data_threshold_enabled"`
	DataThreshold             uint64             `yaml:"data_threshold" mapstructure:"data_threshold"`
	DataThresholdRepr         types.DataRepr     `yaml:"data_threshold_representation" mapstructure:"data_threshold_representation"`
	DataThresholdByteMultiple types.ByteMultiple `yaml:"data_threshold_byte_multiple" mapstructure:"data_threshold_byte_multiple"`
	DataThresholdSound        types.Sound        `yaml:"data_threshold_sound" mapstructure:"data_threshold_sound"`

	FavoriteEnabled bool        `yaml:"favorite_enabled" mapstructure:"favorite_enabled"`
	FavoriteSound   types.Sound `yaml:"favorite_sound" mapstructure:"favorite_sound"`

	BlacklistEnabled bool        `yaml:"blacklist_enabled" mapstructure:"blacklist_enabled"`
	BlacklistSound   types.Sound `yaml:"blacklist_sound" mapstructure:"blacklist_sound"`

	RemoteURL string `yaml:"remote_url" mapstructure:"remote_url"`
}

// WindowGeometry is the persisted window position/size.
type WindowGeometry struct {
	Width     int  `yaml:"width" mapstructure:"width"`
	Height    int  `yaml:"height" mapstructure:"height"`
	X         int  `yaml:"x" mapstructure:"x"`
	Y         int  `yaml:"y" mapstructure:"y"`
	Maximized bool `yaml:"maximized" mapstructure:"maximized"`
}

// SourceSelection names the active packet source: a live device or a
// previously captured file, never both.
type SourceSelection struct {
	Device   string `yaml:"device" mapstructure:"device"`
	FilePath string `yaml:"file_path" mapstructure:"file_path"`
}

// FilterSettings is the persisted, textual form of the filter engine's
// (C5) configuration: raw strings reparsed on demand, so an invalid
// edit never corrupts the stored record itself.
type FilterSettings struct {
	BPFExpr   string          `yaml:"bpf_expr" mapstructure:"bpf_expr"`
	IPVersion types.IPVersion `yaml:"ip_version" mapstructure:"ip_version"`
	// Transport < 0 means unset (no transport restriction).
	Transport int32  `yaml:"transport" mapstructure:"transport"`
	Addresses string `yaml:"addresses" mapstructure:"addresses"`
	Ports     string `yaml:"ports" mapstructure:"ports"`
}

// ToStructural reparses the persisted textual filter fields into a live
// filter.Structural, and the BPF string into a filter.BPF. A parse
// failure on either leaves that piece unrestricted rather than failing
// the whole record, matching ConfigCorruption's "don't propagate" posture.
func (f FilterSettings) ToStructural() (filter.BPF, filter.Structural) {
	structural := filter.Structural{IPVersion: f.IPVersion}
	if f.Transport >= 0 {
		t := types.TransportKind(f.Transport)
		structural.Transport = &t
	}
	if addrs, err := filter.ParseAddressCollection(f.Addresses); err == nil {
		structural.Addresses = addrs
	}
	if ports, err := filter.ParsePortCollection(f.Ports); err == nil {
		structural.Ports = ports
	}
	return filter.BPF{Expr: f.BPFExpr}, structural
}

// SortSettings is the persisted last-used sort for the connection table.
type SortSettings struct {
	Column    search.SortColumn    `yaml:"column" mapstructure:"column"`
	Direction search.SortDirection `yaml:"direction" mapstructure:"direction"`
}

// LastSession records where the user left off, restored on next launch.
type LastSession struct {
	Page                  int  `yaml:"page" mapstructure:"page"`
	NotificationsPageOpen bool `yaml:"notifications_page_open" mapstructure:"notifications_page_open"`
	SettingsPageOpen      bool `yaml:"settings_page_open" mapstructure:"settings_page_open"`
}

// PCAPExportSettings is the persisted destination for PCAP export (§6).
type PCAPExportSettings struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Directory string `yaml:"directory" mapstructure:"directory"`
	FileName  string `yaml:"file_name" mapstructure:"file_name"`
}

// Record is the complete, typed configuration persisted as a single YAML
// file. Every field named in §6's "Configuration record" has a home
// here; ambient Go-only additions (mapstructure tags for viper) carry no
// semantic weight of their own.
type Record struct {
	Style    string  `yaml:"style" mapstructure:"style"`
	Language string  `yaml:"language" mapstructure:"language"`
	Scale    float64 `yaml:"scale" mapstructure:"scale"`

	GeoCountryDBPath string `yaml:"geo_country_db_path" mapstructure:"geo_country_db_path"`
	GeoASNDBPath     string `yaml:"geo_asn_db_path" mapstructure:"geo_asn_db_path"`
	BlacklistPath    string `yaml:"blacklist_path" mapstructure:"blacklist_path"`

	Notifications NotificationSettings `yaml:"notifications" mapstructure:"notifications"`
	Window        WindowGeometry       `yaml:"window" mapstructure:"window"`
	Source        SourceSelection      `yaml:"source" mapstructure:"source"`
	Filters       FilterSettings       `yaml:"filters" mapstructure:"filters"`
	Sort          SortSettings         `yaml:"sort" mapstructure:"sort"`
	LastSession   LastSession          `yaml:"last_session" mapstructure:"last_session"`
	PCAPExport    PCAPExportSettings   `yaml:"pcap_export" mapstructure:"pcap_export"`

	DataRepresentation types.DataRepr `yaml:"data_representation" mapstructure:"data_representation"`
}

// Defaults returns the record a fresh install (or a corrupted/missing
// config file) falls back to.
func Defaults() *Record {
	return &Record{
		Style:    "system",
		Language: "en",
		Scale:    1.0,

		Notifications: NotificationSettings{
			Volume:                    100,
			DataThresholdByteMultiple: types.ByteMultipleMB,
			DataThresholdRepr:         types.DataReprBytes,
		},
		Window: WindowGeometry{Width: 1280, Height: 720},
		Filters: FilterSettings{
			Transport: -1,
		},
		Sort: SortSettings{Column: search.SortNeutral},

		DataRepresentation: types.DataReprBytes,
	}
}
