// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mfs

import "time"

// Tuning presets and mapping.
//
// Single source of truth -- transport kind -> tuning defaults:
//   - Serial      -> small buffers, long timeout    (low baud rate, slow clients)
//   - Constrained -> minimal buffers, short timeout  (single-client firmware target)
//   - LAN         -> larger buffers, shorter timeout (fast, many clients)
//
// These presets only set the Options fields a deployment typically tunes
// together; apply narrower With* options afterward to override individual
// fields.

type profileKind uint8

const (
	profileSerial profileKind = iota
	profileConstrained
	profileLAN
)

func defaultsFor(kind profileKind) Options {
	switch kind {
	case profileSerial:
		return Options{
			Timeout:     60 * time.Second,
			HardLimit:   10000,
			PathBufCap:  128,
			DataBufCap:  2048,
			ClientSlots: 2,
			FileSlots:   8,
		}
	case profileConstrained:
		return Options{
			Timeout:     30 * time.Second,
			HardLimit:   2048,
			PathBufCap:  64,
			DataBufCap:  512,
			ClientSlots: 1,
			FileSlots:   4,
		}
	case profileLAN:
		return Options{
			Timeout:     10 * time.Second,
			HardLimit:   10000,
			PathBufCap:  256,
			DataBufCap:  8192,
			ClientSlots: 16,
			FileSlots:   32,
		}
	default:
		return defaultOptions
	}
}

func applyProfile(kind profileKind) Option {
	d := defaultsFor(kind)
	return func(o *Options) {
		o.Timeout = d.Timeout
		o.HardLimit = d.HardLimit
		o.PathBufCap = d.PathBufCap
		o.DataBufCap = d.DataBufCap
		o.ClientSlots = d.ClientSlots
		o.FileSlots = d.FileSlots
	}
}

// WithSerialProfile configures buffer sizes, slot counts, timeout and hard
// limit for a low-baud-rate serial transport: small buffers, a long
// timeout to tolerate slow links, and few concurrent clients.
func WithSerialProfile() Option { return applyProfile(profileSerial) }

// WithConstrainedProfile configures the tightest practical bounds for a
// single-client firmware target with very little RAM.
func WithConstrainedProfile() Option { return applyProfile(profileConstrained) }

// WithLANProfile configures larger buffers, more client slots and a
// shorter timeout appropriate for a fast, low-latency TCP/LAN transport.
func WithLANProfile() Option { return applyProfile(profileLAN) }
