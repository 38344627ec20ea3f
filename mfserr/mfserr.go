// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mfserr collects the sentinel errors and wire error codes used by
// package mfs. It is kept separate so that transport and handler code can
// depend on error identities (via errors.Is) without importing the full
// server implementation.
package mfserr

import "errors"

// API-level errors, returned synchronously by Server construction and the
// registration API. None of these ever cross the wire.
var (
	// ErrInvalidArgument reports a malformed Server configuration, such as a
	// nil required callback or a non-positive buffer capacity.
	ErrInvalidArgument = errors.New("mfs: invalid argument")

	// ErrNameTaken is returned by RegisterFile/RegisterFileCopy when a file
	// of the same name is already registered.
	ErrNameTaken = errors.New("mfs: file name already registered")

	// ErrTableFull is returned by RegisterFile/RegisterFileCopy when no
	// empty file slot remains.
	ErrTableFull = errors.New("mfs: file table full")

	// ErrNotFound is returned by UnregisterFile when no slot matches the
	// supplied name.
	ErrNotFound = errors.New("mfs: file not found")

	// ErrNameTooLong is returned by RegisterFileCopy when the supplied name
	// does not fit the slot's path capacity.
	ErrNameTooLong = errors.New("mfs: file name exceeds path capacity")
)

// Code is a wire-visible MFS error code, sent as the two-byte little-endian
// payload of an ERROR response.
type Code uint16

// Defined wire error codes (§6/§7 of the specification).
const (
	// CodeBufferTooSmall: the request's psize or dsize exceeded the
	// server's scratch buffer capacity, but not the hard limit. The body
	// was drained; the client is kept. The same code is also sent when a
	// path or data read that fits the buffers comes up short; the client
	// is dropped after that one.
	CodeBufferTooSmall Code = 1

	// CodeHeaderReadFailed: a short read occurred while reading the 9-byte
	// header. The client is dropped immediately after this is sent.
	CodeHeaderReadFailed Code = 3

	// CodeFileNotFound: the requested path does not match any registered
	// file slot.
	CodeFileNotFound Code = 1000

	// CodeDeadlineExpired: the client's timeout elapsed with no request.
	// The client is dropped immediately after this is sent.
	CodeDeadlineExpired Code = 3000

	// CodeIllegalOpcode: the request opcode is at or above the reserved
	// opcode range and is not one of the defined opcodes.
	CodeIllegalOpcode Code = 3003
)
