// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mfs_test

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"code.hybscloud.com/mfs"
)

// scriptedTransport is a fake mfs.Transport driven entirely in-memory,
// modeled on the teacher library's scriptedReader/wouldBlockWriter test
// doubles (framer_test.go): each client gets a byte queue to read from and
// a byte buffer to capture writes into, plus a programmable clock.
type scriptedTransport struct {
	mu sync.Mutex

	acceptQueue []mfs.ClientID
	inbound     map[mfs.ClientID]*bytes.Buffer
	outbound    map[mfs.ClientID]*bytes.Buffer
	readErr     map[mfs.ClientID]error // forced error on next Read, then cleared
	closed      map[mfs.ClientID]bool
	now         uint64
}

func newScriptedTransport() *scriptedTransport {
	return &scriptedTransport{
		inbound:  make(map[mfs.ClientID]*bytes.Buffer),
		outbound: make(map[mfs.ClientID]*bytes.Buffer),
		readErr:  make(map[mfs.ClientID]error),
		closed:   make(map[mfs.ClientID]bool),
	}
}

func (t *scriptedTransport) queueAccept(id mfs.ClientID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.acceptQueue = append(t.acceptQueue, id)
	t.inbound[id] = &bytes.Buffer{}
	t.outbound[id] = &bytes.Buffer{}
}

func (t *scriptedTransport) feed(id mfs.ClientID, b []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inbound[id].Write(b)
}

func (t *scriptedTransport) forceReadErr(id mfs.ClientID, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readErr[id] = err
}

func (t *scriptedTransport) sent(id mfs.ClientID) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outbound[id].Bytes()
}

func (t *scriptedTransport) isClosed(id mfs.ClientID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed[id]
}

func (t *scriptedTransport) setNow(ms uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = ms
}

func (t *scriptedTransport) Accept() (mfs.ClientID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.acceptQueue) == 0 {
		return 0, nil
	}
	id := t.acceptQueue[0]
	t.acceptQueue = t.acceptQueue[1:]
	return id, nil
}

func (t *scriptedTransport) Available(client mfs.ClientID) (int, error) {
	if client == 0 {
		return 0, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	buf, ok := t.inbound[client]
	if !ok {
		return 0, nil
	}
	return buf.Len(), nil
}

func (t *scriptedTransport) Read(client mfs.ClientID, p []byte) error {
	t.mu.Lock()
	if err := t.readErr[client]; err != nil {
		delete(t.readErr, client)
		t.mu.Unlock()
		return err
	}
	buf := t.inbound[client]
	t.mu.Unlock()
	if buf == nil {
		return errors.New("scriptedTransport: unknown client")
	}
	n, err := io.ReadFull(buf, p)
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func (t *scriptedTransport) Write(client mfs.ClientID, p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	buf := t.outbound[client]
	if buf == nil {
		return errors.New("scriptedTransport: unknown client")
	}
	buf.Write(p)
	return nil
}

func (t *scriptedTransport) Close(client mfs.ClientID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed[client] = true
}

func (t *scriptedTransport) NowMS() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}
