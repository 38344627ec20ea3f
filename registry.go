// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mfs

import "code.hybscloud.com/mfs/mfserr"

// Handler serves one READ or WRITE request for a registered file. req.Path
// and req.Data are only valid for the duration of the call. scratch is the
// server's shared data buffer (capacity Options.DataBufCap); a handler that
// wants to avoid allocating may build its response payload in scratch and
// return a Message whose Data is a sub-slice of it -- the server sends the
// response immediately after the handler returns, so the buffer is free
// again before the next request is read.
type Handler func(client ClientID, req Message, scratch []byte) (Message, error)

// fileSlot is one entry in the fixed-size file registry. occupied is the
// single, centralized emptiness predicate: the original design's
// all-four-fields-zero convention (and its unused is_file_empty helper) is
// replaced by this one explicit flag, checked everywhere a slot's
// occupancy matters.
type fileSlot struct {
	occupied bool
	name     []byte // either a caller-owned reference or server-owned copy
	owned    bool   // true if name was copied into slot-local storage
	reader   Handler
	writer   Handler
}

func sameName(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hasNUL reports whether p contains an embedded zero byte. A path with an
// embedded NUL can never match a registered name (names are NUL-terminated
// C strings in the design document's data model) and is therefore always
// "not found", per §4.4.
func hasNUL(p []byte) bool {
	for _, b := range p {
		if b == 0 {
			return true
		}
	}
	return false
}

// lookupFile returns the index of the registered file whose name equals
// path, or -1 if none matches. An embedded NUL in path always yields -1.
func (s *Server) lookupFile(path []byte) int {
	if hasNUL(path) {
		return -1
	}
	for i := range s.files {
		f := &s.files[i]
		if f.occupied && sameName(f.name, path) {
			return i
		}
	}
	return -1
}

// RegisterFile adds a file with the given name and handlers to the
// registry. name is stored by reference: the caller must keep the backing
// array alive and unmodified for as long as the file stays registered.
// This matches the zero-copy default of the embedded-systems design; use
// RegisterFileCopy to have the name copied instead.
//
// Returns mfserr.ErrNameTaken if name is already registered, or
// mfserr.ErrTableFull if no empty slot remains.
func (s *Server) RegisterFile(name []byte, reader, writer Handler) error {
	return s.registerFile(name, reader, writer, false)
}

// RegisterFileCopy behaves like RegisterFile but copies name into
// slot-owned storage (bounded by Options.PathBufCap), so the caller need
// not keep its own backing array alive. This resolves the open question in
// the design document about register_file's implicit ownership contract.
//
// Returns mfserr.ErrNameTooLong if name does not fit the slot's capacity,
// in addition to the errors RegisterFile can return.
func (s *Server) RegisterFileCopy(name []byte, reader, writer Handler) error {
	if len(name) > s.opts.PathBufCap {
		return mfserr.ErrNameTooLong
	}
	owned := make([]byte, len(name))
	copy(owned, name)
	err := s.registerFile(owned, reader, writer, true)
	return err
}

func (s *Server) registerFile(name []byte, reader, writer Handler, owned bool) error {
	if hasNUL(name) {
		return mfserr.ErrInvalidArgument
	}
	if s.lookupFile(name) >= 0 {
		return mfserr.ErrNameTaken
	}
	for i := range s.files {
		f := &s.files[i]
		if !f.occupied {
			f.occupied = true
			f.name = name
			f.owned = owned
			f.reader = reader
			f.writer = writer
			return nil
		}
	}
	return mfserr.ErrTableFull
}

// UnregisterFile removes the file registered under name, if any. No memory
// is freed beyond what the Go garbage collector reclaims once the slot no
// longer references it.
//
// Returns mfserr.ErrNotFound if no slot matches name.
func (s *Server) UnregisterFile(name []byte) error {
	i := s.lookupFile(name)
	if i < 0 {
		return mfserr.ErrNotFound
	}
	s.files[i] = fileSlot{}
	return nil
}
