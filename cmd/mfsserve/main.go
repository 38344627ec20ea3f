// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command mfsserve is a reference binary wiring a TCP transport to
// mfs.Server. It exists to give the module a runnable, manually
// exercisable surface, and is not itself part of the MFS protocol surface.
package main

import (
	"flag"
	"log"
	"net"
	"sync"
	"time"

	"code.hybscloud.com/mfs"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5471", "TCP address to listen on")
	configPath := flag.String("config", "", "optional HuJSON tuning file (see mfsconf)")
	flag.Parse()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("mfsserve: listen: %v", err)
	}
	defer ln.Close()

	tr := newTCPTransport(ln)
	opts := []mfs.Option{mfs.WithLANProfile(), mfs.WithLogger(logEvent)}
	if *configPath != "" {
		opts = append(opts, loadConfigOptions(*configPath)...)
	}

	srv, err := mfs.New(tr, opts...)
	if err != nil {
		log.Fatalf("mfsserve: new server: %v", err)
	}

	log.Printf("mfsserve: listening on %s", *addr)
	for {
		if err := srv.Serve(); err != nil {
			log.Fatalf("mfsserve: serve: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func logEvent(event string, kv ...any) {
	log.Println(append([]any{event}, kv...)...)
}

func loadConfigOptions(path string) []mfs.Option {
	cfg, err := loadConf(path)
	if err != nil {
		log.Fatalf("mfsserve: %v", err)
	}
	return cfg
}

// tcpTransport adapts a net.Listener and its accepted net.Conns to
// mfs.Transport. Accept is non-blocking (it polls), while Read/Write block
// on the underlying connection, matching the transport contract in
// message.go.
type tcpTransport struct {
	ln *net.TCPListener

	mu         sync.Mutex
	conns      map[mfs.ClientID]net.Conn
	pushedBack map[mfs.ClientID][]byte
	nextID     mfs.ClientID
	pending    chan net.Conn
}

func newTCPTransport(ln net.Listener) *tcpTransport {
	t := &tcpTransport{
		ln:         ln.(*net.TCPListener),
		conns:      make(map[mfs.ClientID]net.Conn),
		pushedBack: make(map[mfs.ClientID][]byte),
		nextID:     1,
		pending:    make(chan net.Conn, 16),
	}
	go t.acceptLoop()
	return t
}

func (t *tcpTransport) acceptLoop() {
	for {
		conn, err := t.ln.Accept()
		if err != nil {
			close(t.pending)
			return
		}
		t.pending <- conn
	}
}

func (t *tcpTransport) Accept() (mfs.ClientID, error) {
	select {
	case conn, ok := <-t.pending:
		if !ok {
			return 0, nil
		}
		t.mu.Lock()
		id := t.nextID
		t.nextID++
		t.conns[id] = conn
		t.mu.Unlock()
		return id, nil
	default:
		return 0, nil
	}
}

func (t *tcpTransport) Available(client mfs.ClientID) (int, error) {
	if client == 0 {
		return 0, nil
	}
	conn := t.conn(client)
	if conn == nil {
		return 0, nil
	}
	// net.Conn has no portable "bytes available" probe; a one-byte,
	// short-deadline peek approximates it well enough for a reference
	// binary. Production transports typically have a real syscall for
	// this (e.g. SO_NREAD/FIONREAD).
	one := make([]byte, 1)
	_ = conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	n, err := conn.Read(one)
	_ = conn.SetReadDeadline(time.Time{})
	if n > 0 {
		if err != nil && !isTimeout(err) {
			return 0, err
		}
		t.pushback(client, one[:n])
	}
	// Every byte peeked so far is held in the pushback buffer until Read
	// consumes it, so that buffer's length is the number available.
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pushedBack[client]), nil
}

func (t *tcpTransport) Read(client mfs.ClientID, p []byte) error {
	conn := t.conn(client)
	if conn == nil {
		return net.ErrClosed
	}
	var read int
	if b := t.popPushback(client); len(b) > 0 {
		read = copy(p, b)
	}
	for read < len(p) {
		n, err := conn.Read(p[read:])
		read += n
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *tcpTransport) Write(client mfs.ClientID, p []byte) error {
	conn := t.conn(client)
	if conn == nil {
		return net.ErrClosed
	}
	written := 0
	for written < len(p) {
		n, err := conn.Write(p[written:])
		written += n
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *tcpTransport) Close(client mfs.ClientID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if conn, ok := t.conns[client]; ok {
		_ = conn.Close()
		delete(t.conns, client)
		delete(t.pushedBack, client)
	}
}

func (t *tcpTransport) NowMS() uint64 {
	return uint64(time.Now().UnixMilli())
}

func (t *tcpTransport) conn(client mfs.ClientID) net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conns[client]
}

func (t *tcpTransport) pushback(client mfs.ClientID, b []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]byte, len(b))
	copy(cp, b)
	t.pushedBack[client] = append(t.pushedBack[client], cp...)
}

func (t *tcpTransport) popPushback(client mfs.ClientID) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := t.pushedBack[client]
	delete(t.pushedBack, client)
	return b
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
