// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mfs

// Message is one decoded MFS request or response.
//
// Path and Data, when non-nil, point into the Server's shared scratch
// buffers (see WithPathBuffer / WithDataBuffer). Because the server
// processes at most one request at a time, a Message handed to a handler is
// only valid for the duration of that handler call: a handler MUST NOT
// retain Path or Data past its own return, and MUST finish writing into
// Data (if it builds its response there) before returning, since the
// server sends the response immediately afterward and reuses the buffer on
// the very next request.
type Message struct {
	Op   Op
	Path []byte
	Data []byte
}

// psize and dsize as they would appear on the wire for this message.
func (m Message) psize() uint32 { return uint32(len(m.Path)) }
func (m Message) dsize() uint32 { return uint32(len(m.Data)) }

// noopResponse is the canonical header-only NOOP response: psize=0,
// dsize=0, op=Response-of(NOOP), no path, no data.
func noopResponse() Message {
	return Message{Op: OpNOOP.AsResponse()}
}

// ClientID is an opaque, transport-assigned identifier for a connected
// client. The value 0 is reserved by the protocol to mean "no client" /
// "empty slot"; Transport.Available must return 0 for it.
type ClientID uint64

// Transport is the capability bundle the server uses to talk to the
// outside world. None of these calls may retain slices passed to Write, and
// Read must fill p completely or fail -- partial, non-blocking reads are
// not part of this contract (unlike the framing library this package's
// design derives from, whose non-blocking iox.ErrWouldBlock/ErrMore
// signaling has no place here: see DESIGN.md).
//
// Implementations MUST impose their own timeout at the transport level so
// that a half-delivered request cannot block Read/Write forever; Server's
// own timeout (WithTimeout) only fires between requests, when ServeClients
// visits the client's slot and before Available is consulted.
type Transport interface {
	// Accept returns the identifier of a newly accepted client, or 0 if
	// none is waiting. Called once per empty client slot per call to
	// (*Server).AcceptClients.
	Accept() (ClientID, error)

	// Available reports how many bytes can be read from client without
	// blocking. It must return 0 for ClientID(0).
	Available(client ClientID) (int, error)

	// Read blocks until exactly len(p) bytes have been read from client,
	// or returns an error. Short reads without an error are a contract
	// violation; Server treats any non-nil error, including io.EOF, as a
	// reason to drop the client.
	Read(client ClientID, p []byte) error

	// Write blocks until exactly len(p) bytes have been written to
	// client, or returns an error.
	Write(client ClientID, p []byte) error

	// Close releases any transport-side resources for client. Server
	// calls this exactly once per drop, just before zeroing the client's
	// slot.
	Close(client ClientID)

	// NowMS returns the current time as milliseconds on a monotonic
	// clock. The server never interprets this as wall-clock time.
	NowMS() uint64
}
