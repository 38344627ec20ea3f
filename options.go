// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mfs

import "time"

// Logger is an optional hook for observing client drops. Server calls it
// once per drop, with event set to the drop reason ("timeout", "short
// read" or "short write") and kv holding "client" and the client's ID;
// registry rejections are only returned to the caller. kv is an
// alternating key/value list, in the style of structured-logging helpers, but Server never
// formats or allocates on this path itself: the default Logger is a no-op,
// and any formatting cost is paid by the caller's own implementation.
type Logger func(event string, kv ...any)

func noopLogger(string, ...any) {}

// Options configures a Server. See New and the With* functions.
type Options struct {
	Timeout     time.Duration
	HardLimit   int
	PathBufCap  int
	DataBufCap  int
	ClientSlots int
	FileSlots   int
	Logger      Logger
}

// defaultOptions mirror §3/§6 of the specification: a 20s timeout and a
// 10000-byte hard limit.
var defaultOptions = Options{
	Timeout:     20 * time.Second,
	HardLimit:   10000,
	PathBufCap:  256,
	DataBufCap:  4096,
	ClientSlots: 4,
	FileSlots:   8,
	Logger:      noopLogger,
}

// Option configures a Server at construction time. Options are applied in
// order over defaultOptions, so later options win.
type Option func(*Options)

// WithTimeout overrides the idle-client deadline (default 20s). A client
// that sends no complete request within this window receives a
// CodeDeadlineExpired error response and is dropped.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithHardLimit overrides the maximum psize/dsize the server will even
// attempt to drain (default 10000). Requests advertising more than this are
// dropped without reading their body.
func WithHardLimit(n int) Option {
	return func(o *Options) { o.HardLimit = n }
}

// WithPathBuffer sets the capacity of the shared path scratch buffer
// (default 256 bytes). This bounds the longest file path/name the server
// will accept without draining-and-erroring.
func WithPathBuffer(cap int) Option {
	return func(o *Options) { o.PathBufCap = cap }
}

// WithDataBuffer sets the capacity of the shared data scratch buffer
// (default 4096 bytes).
func WithDataBuffer(cap int) Option {
	return func(o *Options) { o.DataBufCap = cap }
}

// WithClientSlots sets the number of concurrently connected clients the
// server will track (default 4).
func WithClientSlots(n int) Option {
	return func(o *Options) { o.ClientSlots = n }
}

// WithFileSlots sets the number of file-registry entries the server
// reserves (default 8).
func WithFileSlots(n int) Option {
	return func(o *Options) { o.FileSlots = n }
}

// WithLogger installs a hook for observing client drops, including drops
// for timeout. The default is a no-op; install one cheaply with e.g.
// mfs.WithLogger(func(e string, kv ...any) { log.Println(e, kv) }).
func WithLogger(l Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = noopLogger
		}
		o.Logger = l
	}
}
