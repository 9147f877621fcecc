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

package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/GyulyVGC/sniffnet-core/internal/logging"
)

var configLog = logging.Named("config")

const configFileName = "config.yaml"

// DefaultPath returns the platform-conventional location of the
// configuration file: $XDG_CONFIG_HOME (or its per-OS equivalent via
// os.UserConfigDir) joined with the application directory. Falls back to
// a relative path if the platform directory can't be determined (e.g. no
// HOME set), since a missing config location must never be fatal.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "sniffcore", configFileName)
	}
	return filepath.Join(dir, "sniffcore", configFileName)
}

// Load reads the configuration record at path. A missing file (first
// run) or one that fails to parse (ConfigCorruption) both fall back to
// Defaults(): this function never returns an error, matching §7's
// "fall back to defaults; overwrite on next save; not surfaced".
// corrupted reports whether the fallback was due to a parse failure
// (as opposed to a simple first-run miss), purely informational.
func Load(path string) (rec *Record, corrupted bool) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return Defaults(), false
		}
		configLog.Warn("config file unreadable, falling back to defaults", zap.String("path", path), zap.Error(err))
		return Defaults(), true
	}

	out := Defaults()
	if err := v.Unmarshal(out); err != nil {
		configLog.Warn("config file malformed, falling back to defaults", zap.String("path", path), zap.Error(err))
		return Defaults(), true
	}
	return out, false
}

// Save writes rec to path as YAML, creating the parent directory if
// needed. Unlike Load, a Save failure is real I/O trouble the caller
// should know about (disk full, permission denied) and is returned.
func Save(path string, rec *Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	body, err := yaml.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal config record")
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

// applyDefaults seeds viper with Defaults() so any field absent from the
// on-disk file (e.g. one added by a newer version of this program) still
// unmarshals to a sane value instead of the zero value.
func applyDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("style", d.Style)
	v.SetDefault("language", d.Language)
	v.SetDefault("scale", d.Scale)
	v.SetDefault("geo_country_db_path", d.GeoCountryDBPath)
	v.SetDefault("geo_asn_db_path", d.GeoASNDBPath)
	v.SetDefault("blacklist_path", d.BlacklistPath)
	v.SetDefault("notifications", map[string]any{
		"volume":                          d.Notifications.Volume,
		"data_threshold_enabled":          d.Notifications.DataThresholdEnabled,
		"data_threshold":                  d.Notifications.DataThreshold,
		"data_threshold_representation":   d.Notifications.DataThresholdRepr,
		"data_threshold_byte_multiple":    d.Notifications.DataThresholdByteMultiple,
		"data_threshold_sound":            d.Notifications.DataThresholdSound,
		"favorite_enabled":                d.Notifications.FavoriteEnabled,
		"favorite_sound":                  d.Notifications.FavoriteSound,
		"blacklist_enabled":               d.Notifications.BlacklistEnabled,
		"blacklist_sound":                 d.Notifications.BlacklistSound,
		"remote_url":                      d.Notifications.RemoteURL,
	})
	v.SetDefault("window", map[string]any{
		"width": d.Window.Width, "height": d.Window.Height,
		"x": d.Window.X, "y": d.Window.Y, "maximized": d.Window.Maximized,
	})
	v.SetDefault("filters", map[string]any{
		"bpf_expr": d.Filters.BPFExpr, "ip_version": d.Filters.IPVersion,
		"transport": d.Filters.Transport, "addresses": d.Filters.Addresses, "ports": d.Filters.Ports,
	})
	v.SetDefault("sort", map[string]any{"column": d.Sort.Column, "direction": d.Sort.Direction})
	v.SetDefault("last_session", map[string]any{
		"page": d.LastSession.Page, "notifications_page_open": d.LastSession.NotificationsPageOpen,
		"settings_page_open": d.LastSession.SettingsPageOpen,
	})
	v.SetDefault("pcap_export", map[string]any{
		"enabled": d.PCAPExport.Enabled, "directory": d.PCAPExport.Directory, "file_name": d.PCAPExport.FileName,
	})
	v.SetDefault("data_representation", d.DataRepresentation)
}
