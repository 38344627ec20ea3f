// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mfs

import "code.hybscloud.com/mfs/mfserr"

// readResult distinguishes the three outcomes of readMessage: a message to
// dispatch, a protocol error already reported to the client (continue
// serving it), or a fatal I/O failure that requires dropping the client.
type readResult uint8

const (
	readOK readResult = iota
	readErrorSent        // an MFS error response was already sent; client stays
	readFatal            // short I/O; caller must drop the client
)

// readMessage implements read_mfs_message (§4.2). It assumes at least
// HeaderLen bytes are already available on client, per the dispatcher's
// Available() gate. On readOK, msg.Path/msg.Data point into the server's
// shared scratch buffers and are valid only until the next call into the
// server.
func (s *Server) readMessage(client ClientID) (msg Message, result readResult) {
	var hdrBuf [HeaderLen]byte
	if err := s.tr.Read(client, hdrBuf[:]); err != nil {
		// Short/failed header read: try to notify, then the caller drops
		// the client regardless of whether the notification succeeded.
		_ = s.sendError(client, noopResponse(), mfserr.CodeHeaderReadFailed)
		return Message{}, readFatal
	}
	h := decodeHeader(hdrBuf[:])

	if int(h.psize) > s.opts.HardLimit || int(h.dsize) > s.opts.HardLimit {
		// Abusive request: drop without reading the body at all.
		return Message{}, readFatal
	}

	if int(h.psize) > len(s.pathBuf) || int(h.dsize) > len(s.dataBuf) {
		// Legal size, but larger than our buffers: drain fully to
		// resynchronise the stream, then report it and keep the client.
		if err := s.drain(client, int(h.psize), s.pathBuf); err != nil {
			return Message{}, readFatal
		}
		if err := s.drain(client, int(h.dsize), s.dataBuf); err != nil {
			return Message{}, readFatal
		}
		req := Message{Op: h.op}
		if err := s.sendError(client, req, mfserr.CodeBufferTooSmall); err != nil {
			return Message{}, readFatal
		}
		return Message{}, readErrorSent
	}

	path := s.pathBuf[:h.psize]
	if h.psize > 0 {
		if err := s.tr.Read(client, path); err != nil {
			_ = s.sendError(client, Message{Op: h.op}, mfserr.CodeBufferTooSmall)
			return Message{}, readFatal
		}
	}
	data := s.dataBuf[:h.dsize]
	if h.dsize > 0 {
		if err := s.tr.Read(client, data); err != nil {
			_ = s.sendError(client, Message{Op: h.op, Path: path}, mfserr.CodeBufferTooSmall)
			return Message{}, readFatal
		}
	}

	return Message{Op: h.op, Path: path, Data: data}, readOK
}

// drain reads and discards total bytes from client in chunks of at most
// len(chunk), fully consuming the body so the next header lines up. Path
// bytes are drained through the path buffer and data bytes through the
// data buffer, per §4.2 step 4.
//
// The design document's original implementation exits this loop after a
// single chunk when draining an oversized path, leaving the stream
// desynchronised for any path longer than one buffer's worth; that defect
// is not reproduced here. Both the path-drain and data-drain call sites
// use this same fully-chunked loop.
func (s *Server) drain(client ClientID, total int, chunk []byte) error {
	if len(chunk) == 0 {
		chunk = make([]byte, 1) // defensive: construction guarantees buffer capacities > 0
	}
	remaining := total
	for remaining > 0 {
		n := len(chunk)
		if n > remaining {
			n = remaining
		}
		if err := s.tr.Read(client, chunk[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

// sendMessage implements send_mfs_message (§4.3): write the 9-byte header
// followed by Path then Data. Any short write is reported to the caller so
// it can drop the client; there is no partial retry.
func (s *Server) sendMessage(client ClientID, msg Message) error {
	var hdrBuf [HeaderLen]byte
	encodeHeader(hdrBuf[:], header{psize: msg.psize(), dsize: msg.dsize(), op: msg.Op})
	if err := s.tr.Write(client, hdrBuf[:]); err != nil {
		return err
	}
	if len(msg.Path) > 0 {
		if err := s.tr.Write(client, msg.Path); err != nil {
			return err
		}
	}
	if len(msg.Data) > 0 {
		if err := s.tr.Write(client, msg.Data); err != nil {
			return err
		}
	}
	return nil
}

// sendError implements send_mfs_error (§4.3): echo req's path, set
// op=Response-of(ERROR), and carry code as a little-endian uint16 payload.
// req.Op and req.Data are never consulted; only req.Path is echoed.
func (s *Server) sendError(client ClientID, req Message, code mfserr.Code) error {
	var codeBuf [2]byte
	codeBuf[0] = byte(code)
	codeBuf[1] = byte(code >> 8)
	errMsg := Message{
		Op:   OpERROR.AsResponse(),
		Path: req.Path,
		Data: codeBuf[:],
	}
	return s.sendMessage(client, errMsg)
}
