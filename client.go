// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mfs

// clientSlot is one entry in the fixed-size client table. id==0 is the
// wire-level sentinel for "no client" (see Transport.Available), so it is
// kept as the emptiness test here too, rather than introducing a second,
// redundant occupied flag: unlike file slots, a client's identity already
// carries an unambiguous empty value.
type clientSlot struct {
	id       ClientID
	deadline uint64 // ms, only meaningful while id != 0
}

func (c *clientSlot) empty() bool { return c.id == 0 }

// AcceptClients fills any empty client slots by polling Transport.Accept
// once per empty slot. It is meant to be called once per server tick,
// alternating with ServeClients, per §5's ordering rules.
func (s *Server) AcceptClients() error {
	for i := range s.clients {
		c := &s.clients[i]
		if !c.empty() {
			continue
		}
		id, err := s.tr.Accept()
		if err != nil {
			return err
		}
		if id == 0 {
			continue
		}
		c.id = id
		c.deadline = s.tr.NowMS() + uint64(s.opts.Timeout.Milliseconds())
	}
	return nil
}

// dropClient closes the transport side of client i and zeroes its slot.
// This is the only in-band cancellation the protocol has: once called, the
// identifier may be reassigned to a new connection by a later Accept.
func (s *Server) dropClient(i int, reason string) {
	c := &s.clients[i]
	id := c.id
	s.opts.Logger(reason, "client", id)
	s.tr.Close(id)
	*c = clientSlot{}
	s.drops++
}
