// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mfs

import "code.hybscloud.com/mfs/mfserr"

// ServeClients walks the client table once. For each occupied slot it:
//  1. drops the client with a CodeDeadlineExpired error if its deadline has
//     passed;
//  2. skips it for this tick if fewer than HeaderLen bytes are available;
//  3. otherwise reads one request, dispatches it, and sends exactly one
//     response, before moving to the next slot.
//
// Call this once per tick, typically right after AcceptClients; see Serve.
func (s *Server) ServeClients() error {
	for i := range s.clients {
		c := &s.clients[i]
		if c.empty() {
			continue
		}

		now := s.tr.NowMS()
		if now >= c.deadline {
			_ = s.sendError(c.id, noopResponse(), mfserr.CodeDeadlineExpired)
			s.timeouts++
			s.dropClient(i, "timeout")
			continue
		}

		avail, err := s.tr.Available(c.id)
		if err != nil {
			return err
		}
		if avail < HeaderLen {
			continue
		}

		msg, result := s.readMessage(c.id)
		switch result {
		case readFatal:
			s.dropClient(i, "short read")
			continue
		case readErrorSent:
			// Client kept; deadline still resets below, matching the
			// design document's "keep client" policy for an oversized
			// request that was successfully drained.
		}

		c.deadline = now + uint64(s.opts.Timeout.Milliseconds())
		s.served++

		if result == readErrorSent {
			continue
		}

		if err := s.dispatch(c.id, msg); err != nil {
			s.dropClient(i, "short write")
		}
	}
	return nil
}

// dispatch implements the opcode switch of §4.6. It resolves the file
// index once, and only for READ/WRITE -- the only two opcodes whose
// handling below consults fileIdx -- before routing to the appropriate
// handler or canned response. ERROR, LS, NOOP, and any reserved or
// illegal opcode must reach the switch unconditionally, even against an
// empty registry or an empty request path.
func (s *Server) dispatch(client ClientID, req Message) error {
	var fileIdx = -1
	if req.Op == OpREAD || req.Op == OpWRITE {
		fileIdx = s.lookupFile(req.Path)
		if fileIdx < 0 {
			return s.sendError(client, req, mfserr.CodeFileNotFound)
		}
	}

	switch req.Op {
	case OpERROR:
		// A client sending ERROR is a protocol violation-lite: reply with
		// a plain NOOP response rather than escalating.
		return s.sendMessage(client, noopResponse())

	case OpLS:
		return s.listFiles(client)

	case OpNOOP:
		return s.sendMessage(client, noopResponse())

	case OpREAD:
		resp, err := s.files[fileIdx].reader(client, req, s.dataBuf)
		if err != nil {
			return err
		}
		return s.sendMessage(client, resp)

	case OpWRITE:
		resp, err := s.files[fileIdx].writer(client, req, s.dataBuf)
		if err != nil {
			return err
		}
		return s.sendMessage(client, resp)

	default:
		if req.Op < ReservedOpRange {
			return s.sendMessage(client, noopResponse())
		}
		return s.sendError(client, req, mfserr.CodeIllegalOpcode)
	}
}

// listFiles implements the LS handler (§4.5): the data payload is every
// registered file's name, each followed by a zero byte. It assembles the
// whole payload in the shared data buffer when it fits (the common case),
// and otherwise streams it directly to the transport one name at a time,
// declaring the true total length in the header up front.
func (s *Server) listFiles(client ClientID) error {
	total := 0
	for i := range s.files {
		if s.files[i].occupied {
			total += len(s.files[i].name) + 1
		}
	}

	if total <= len(s.dataBuf) {
		buf := s.dataBuf[:0]
		for i := range s.files {
			f := &s.files[i]
			if !f.occupied {
				continue
			}
			buf = append(buf, f.name...)
			buf = append(buf, 0)
		}
		return s.sendMessage(client, Message{Op: OpLS.AsResponse(), Data: buf})
	}

	return s.listFilesStreaming(client, total)
}

// listFilesStreaming writes the LS response header declaring dsize=total
// up front, then streams each name and its terminating zero byte straight
// to the transport, bypassing the data buffer entirely. Any short write
// here means the stream is desynchronised, same as any other send.
func (s *Server) listFilesStreaming(client ClientID, total int) error {
	var hdrBuf [HeaderLen]byte
	encodeHeader(hdrBuf[:], header{psize: 0, dsize: uint32(total), op: OpLS.AsResponse()})
	if err := s.tr.Write(client, hdrBuf[:]); err != nil {
		return err
	}

	var nulBuf [1]byte
	for i := range s.files {
		f := &s.files[i]
		if !f.occupied {
			continue
		}
		if len(f.name) > 0 {
			if err := s.tr.Write(client, f.name); err != nil {
				return err
			}
		}
		if err := s.tr.Write(client, nulBuf[:]); err != nil {
			return err
		}
	}
	return nil
}
