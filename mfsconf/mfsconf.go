// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mfsconf loads startup-time mfs.Server tuning parameters from a
// commented JSON ("HuJSON") file, so an integrator can adjust buffer
// sizes, timeouts and slot counts without recompiling firmware.
//
// This is purely a startup-time convenience layered outside the core
// server: nothing here is persisted at runtime, and a Config is consumed
// exactly once, at New, to produce a slice of mfs.Option values.
package mfsconf

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailscale/hujson"

	"code.hybscloud.com/mfs"
)

// Config mirrors the subset of mfs.Options an integrator typically wants
// to tune from a file rather than from Go source.
type Config struct {
	TimeoutMS   int `json:"timeout_ms,omitempty"`
	HardLimit   int `json:"hard_limit,omitempty"`
	PathBufCap  int `json:"path_buf_cap,omitempty"`
	DataBufCap  int `json:"data_buf_cap,omitempty"`
	ClientSlots int `json:"client_slots,omitempty"`
	FileSlots   int `json:"file_slots,omitempty"`
}

// Load reads a HuJSON (JSON-with-comments-and-trailing-commas) file at
// path and decodes it into a Config. Fields omitted from the file are left
// at their Go zero value; use Config.Options to turn only the fields that
// were actually set into mfs.Option values.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("mfsconf: read %s: %w", path, err)
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return Config{}, fmt.Errorf("mfsconf: parse %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(std, &cfg); err != nil {
		return Config{}, fmt.Errorf("mfsconf: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Options turns the fields set in cfg into mfs.Option values. Zero-valued
// fields are treated as "not configured" and are omitted, so Options can
// be layered after a profile preset (e.g. mfs.WithLANProfile) without
// clobbering fields the file doesn't mention.
func (cfg Config) Options() []mfs.Option {
	var opts []mfs.Option
	if cfg.TimeoutMS > 0 {
		opts = append(opts, mfs.WithTimeout(time.Duration(cfg.TimeoutMS)*time.Millisecond))
	}
	if cfg.HardLimit > 0 {
		opts = append(opts, mfs.WithHardLimit(cfg.HardLimit))
	}
	if cfg.PathBufCap > 0 {
		opts = append(opts, mfs.WithPathBuffer(cfg.PathBufCap))
	}
	if cfg.DataBufCap > 0 {
		opts = append(opts, mfs.WithDataBuffer(cfg.DataBufCap))
	}
	if cfg.ClientSlots > 0 {
		opts = append(opts, mfs.WithClientSlots(cfg.ClientSlots))
	}
	if cfg.FileSlots > 0 {
		opts = append(opts, mfs.WithFileSlots(cfg.FileSlots))
	}
	return opts
}
