// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mfs implements the server side of MFS (Micro File-Service), a
// compact binary request/response protocol for enumerating a fixed set of
// named "files" on a resource-constrained device and invoking per-file
// read/write handlers over an arbitrary byte-oriented transport.
//
// Design and semantics:
//   - Single execution context: Server multiplexes several logical clients
//     cooperatively, one request at a time, from whichever goroutine calls
//     Serve/ServeClients. There is no internal locking and Server is not
//     safe for concurrent use by multiple goroutines.
//   - No allocation after construction: the path and data scratch buffers
//     and the client/file tables are sized once, at New, and reused for
//     every request; a Handler that avoids allocating can keep the whole
//     request/response cycle allocation-free.
//   - The transport (accept/read/write/close/clock/availability) is
//     supplied as a Transport implementation; Server assumes Read and
//     Write block until their byte-count contract is met or fail.
//
// Wire format (all integers little-endian): a 9-byte header -- psize
// uint32, dsize uint32, op byte -- followed by psize bytes of path and
// dsize bytes of data. Response opcodes are request opcodes with the high
// bit set. See codec.go and the design document for the complete framing
// and dispatch rules.
package mfs

import (
	"code.hybscloud.com/mfs/mfserr"
)

// Server is an MFS server instance: a fixed-size client table, a
// fixed-size file registry, and two shared scratch buffers, driven by
// repeated calls to AcceptClients and ServeClients (or the combined Serve
// loop).
type Server struct {
	tr   Transport
	opts Options

	clients []clientSlot
	files   []fileSlot

	pathBuf []byte
	dataBuf []byte

	served   uint64
	drops    uint64
	timeouts uint64
}

// New constructs a Server bound to transport tr, applying opts over the
// defaults (20s timeout, 10000-byte hard limit, 4 client slots, 8 file
// slots, a 256-byte path buffer and a 4096-byte data buffer).
//
// Returns mfserr.ErrInvalidArgument if tr is nil or any configured
// capacity/slot count is non-positive.
func New(tr Transport, opts ...Option) (*Server, error) {
	if tr == nil {
		return nil, mfserr.ErrInvalidArgument
	}
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	if o.PathBufCap <= 0 || o.DataBufCap <= 0 || o.ClientSlots <= 0 || o.FileSlots <= 0 || o.HardLimit <= 0 {
		return nil, mfserr.ErrInvalidArgument
	}
	if o.Logger == nil {
		o.Logger = noopLogger
	}

	return &Server{
		tr:      tr,
		opts:    o,
		clients: make([]clientSlot, o.ClientSlots),
		files:   make([]fileSlot, o.FileSlots),
		pathBuf: make([]byte, o.PathBufCap),
		dataBuf: make([]byte, o.DataBufCap),
	}, nil
}

// Stats reports read-only counters for introspection. There is no metrics
// exporter here -- an embedded target has nothing to export them to -- so
// this is a plain snapshot struct rather than a client of some metrics
// library.
type Stats struct {
	ActiveClients   int
	RegisteredFiles int
	Served          uint64
	Drops           uint64
	Timeouts        uint64
}

// Stats returns a snapshot of the server's current counters.
func (s *Server) Stats() Stats {
	active := 0
	for i := range s.clients {
		if !s.clients[i].empty() {
			active++
		}
	}
	files := 0
	for i := range s.files {
		if s.files[i].occupied {
			files++
		}
	}
	return Stats{
		ActiveClients:   active,
		RegisteredFiles: files,
		Served:          s.served,
		Drops:           s.drops,
		Timeouts:        s.timeouts,
	}
}

// Serve runs one accept-then-serve tick: AcceptClients followed by
// ServeClients. Callers that want finer control over accept/serve
// interleaving (e.g. to accept less often than they serve) can call those
// two methods directly instead.
func (s *Server) Serve() error {
	if err := s.AcceptClients(); err != nil {
		return err
	}
	return s.ServeClients()
}
