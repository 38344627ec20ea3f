// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mfs

import "encoding/binary"

// HeaderLen is the fixed size, in bytes, of an MFS header on the wire.
const HeaderLen = 9

// ReservedOpRange is the first opcode value treated as illegal rather than
// as a forward-compatible NOOP. Opcodes in [0, ReservedOpRange) that are not
// one of the defined opcodes below are silently answered with a NOOP
// response; opcodes >= ReservedOpRange produce an error response.
const ReservedOpRange = 30

// Op is a one-byte MFS opcode. Request opcodes are in [0, 0x80); the
// corresponding response opcode is the request opcode with the high bit set.
type Op uint8

// Request opcodes (client -> server).
const (
	OpNOOP  Op = 0
	OpREAD  Op = 1
	OpWRITE Op = 2
	OpLS    Op = 3
	OpERROR Op = 4
)

// respBit is set on an opcode to mark it as a server -> client response.
const respBit = 0x80

// Response reports whether op carries the high bit, i.e. is a response
// rather than a request.
func (op Op) Response() bool { return op&respBit != 0 }

// AsResponse returns op with the high bit set, turning a request opcode
// into its corresponding response opcode. Response-of(op) in the design
// document.
func (op Op) AsResponse() Op { return op | respBit }

// header is the decoded form of the 9-byte MFS header.
type header struct {
	psize uint32
	dsize uint32
	op    Op
}

// encodeHeader writes h into buf, which must be at least HeaderLen bytes.
// It is total and pure: any header value maps to exactly one 9-byte image.
func encodeHeader(buf []byte, h header) {
	_ = buf[HeaderLen-1] // bounds check hint, mirrors the teacher's header-buffer discipline
	binary.LittleEndian.PutUint32(buf[0:4], h.psize)
	binary.LittleEndian.PutUint32(buf[4:8], h.dsize)
	buf[8] = byte(h.op)
}

// decodeHeader reads a header out of buf, which must be at least HeaderLen
// bytes. decodeHeader(encodeHeader(h)) == h for every h, and vice versa for
// every 9-byte buffer: the codec accepts any byte pattern.
func decodeHeader(buf []byte) header {
	_ = buf[HeaderLen-1]
	return header{
		psize: binary.LittleEndian.Uint32(buf[0:4]),
		dsize: binary.LittleEndian.Uint32(buf[4:8]),
		op:    Op(buf[8]),
	}
}
