// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mfs_test

import (
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/mfs"
)

// header9 builds a 9-byte MFS header for test fixtures.
func header9(psize, dsize uint32, op byte) []byte {
	b := make([]byte, 9)
	binary.LittleEndian.PutUint32(b[0:4], psize)
	binary.LittleEndian.PutUint32(b[4:8], dsize)
	b[8] = op
	return b
}

func newTestServer(t *testing.T, tr *scriptedTransport, opts ...mfs.Option) *mfs.Server {
	t.Helper()
	srv, err := mfs.New(tr, opts...)
	require.NoError(t, err)
	return srv
}

func connectClient(t *testing.T, srv *mfs.Server, tr *scriptedTransport, id mfs.ClientID) {
	t.Helper()
	tr.queueAccept(id)
	require.NoError(t, srv.AcceptClients())
}

// Scenario 1: NOOP round trip, no state change.
func TestScenario_NOOP(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr)
	connectClient(t, srv, tr, 1)

	tr.feed(1, append(header9(0, 0, 0)))
	require.NoError(t, srv.ServeClients())

	want := header9(0, 0, 0x80)
	if diff := cmp.Diff(want, tr.sent(1)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

// Scenario 2: LS on an empty registry.
func TestScenario_LSEmpty(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr)
	connectClient(t, srv, tr, 1)

	tr.feed(1, header9(0, 0, 3))
	require.NoError(t, srv.ServeClients())

	want := header9(0, 0, 0x83)
	if diff := cmp.Diff(want, tr.sent(1)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

// Scenario 3: LS with one registered file.
func TestScenario_LSOneFile(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr)
	require.NoError(t, srv.RegisterFile([]byte("hi"), echoHandler('X'), echoHandler('X')))
	connectClient(t, srv, tr, 1)

	tr.feed(1, header9(0, 0, 3))
	require.NoError(t, srv.ServeClients())

	want := append(header9(0, 3, 0x83), 'h', 'i', 0)
	if diff := cmp.Diff(want, tr.sent(1)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

// Scenario 4: READ on a registered file.
func TestScenario_ReadKnownFile(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr)
	require.NoError(t, srv.RegisterFile([]byte("hi"), echoHandler('X'), echoHandler('X')))
	connectClient(t, srv, tr, 1)

	req := append(header9(2, 0, 1), 'h', 'i')
	tr.feed(1, req)
	require.NoError(t, srv.ServeClients())

	want := append(header9(2, 1, 0x81), 'h', 'i', 'X')
	if diff := cmp.Diff(want, tr.sent(1)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

// Scenario 5: READ on an unregistered file.
func TestScenario_ReadUnknownFile(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr)
	connectClient(t, srv, tr, 1)

	req := append(header9(2, 0, 1), 'n', 'o')
	tr.feed(1, req)
	require.NoError(t, srv.ServeClients())

	want := append(header9(2, 2, 0x84), 'n', 'o', 0xE8, 0x03)
	if diff := cmp.Diff(want, tr.sent(1)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
	if tr.isClosed(1) {
		t.Fatalf("client should remain connected after file-not-found")
	}
}

// Scenario 6: oversize-within-hard-limit: request dsize exceeds the data
// buffer capacity but not the hard limit; the body is drained and the
// client is kept.
func TestScenario_OversizeWithinHardLimit(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr, mfs.WithDataBuffer(16))
	connectClient(t, srv, tr, 1)

	req := append(header9(0, 100, 2), make([]byte, 100)...)
	tr.feed(1, req)
	require.NoError(t, srv.ServeClients())

	want := append(header9(0, 2, 0x84), 0x01, 0x00)
	if diff := cmp.Diff(want, tr.sent(1)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
	if tr.isClosed(1) {
		t.Fatalf("client should remain connected")
	}
}

// Scenario 7: an idle client past its deadline is sent a timeout error and
// dropped; its slot can be reused afterward.
func TestScenario_Timeout(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr, mfs.WithTimeout(20*time.Millisecond))
	tr.setNow(0)
	connectClient(t, srv, tr, 1)

	tr.setNow(21)
	require.NoError(t, srv.ServeClients())

	want := header9(0, 2, 0x84)
	want = append(want, 0xB8, 0x0B) // 3000 little-endian
	if diff := cmp.Diff(want, tr.sent(1)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
	if !tr.isClosed(1) {
		t.Fatalf("client should have been dropped")
	}

	stats := srv.Stats()
	if stats.Timeouts != 1 {
		t.Fatalf("Timeouts = %d, want 1", stats.Timeouts)
	}

	// The now-empty slot can be reused by a later Accept.
	tr.queueAccept(2)
	require.NoError(t, srv.AcceptClients())
	if srv.Stats().ActiveClients != 1 {
		t.Fatalf("ActiveClients = %d, want 1", srv.Stats().ActiveClients)
	}
}

func TestOpcodeAboveReservedRangeIsIllegal(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr)
	connectClient(t, srv, tr, 1)

	tr.feed(1, header9(0, 0, mfs.ReservedOpRange))
	require.NoError(t, srv.ServeClients())

	want := header9(0, 2, 0x84)
	want = append(want, 0xBB, 0x0B) // 3003 little-endian
	if diff := cmp.Diff(want, tr.sent(1)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestOpcodeJustBelowReservedRangeIsSilentNOOP(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr)
	connectClient(t, srv, tr, 1)

	tr.feed(1, header9(0, 0, mfs.ReservedOpRange-1))
	require.NoError(t, srv.ServeClients())

	want := header9(0, 0, 0x80)
	if diff := cmp.Diff(want, tr.sent(1)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestShortHeaderReadDropsClient(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr)
	connectClient(t, srv, tr, 1)

	// A full header's worth of bytes is available, so the server attempts
	// the header read, but the transport's Read fails part-way.
	tr.feed(1, header9(0, 0, 0))
	tr.forceReadErr(1, io.ErrUnexpectedEOF)
	require.NoError(t, srv.ServeClients())

	if !tr.isClosed(1) {
		t.Fatalf("client should have been dropped on short header read")
	}
}

func TestHardLimitDropsWithoutDraining(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr, mfs.WithHardLimit(10))
	connectClient(t, srv, tr, 1)

	tr.feed(1, header9(11, 0, 1)) // psize exceeds hard limit; no body follows
	require.NoError(t, srv.ServeClients())

	if !tr.isClosed(1) {
		t.Fatalf("client should have been dropped for exceeding the hard limit")
	}
	if len(tr.sent(1)) != 0 {
		t.Fatalf("server must not reply to a hard-limit violation, got %v", tr.sent(1))
	}
}

func TestEmbeddedNULInPathIsNotFound(t *testing.T) {
	tr := newScriptedTransport()
	srv := newTestServer(t, tr)
	require.NoError(t, srv.RegisterFile([]byte("hi"), echoHandler('X'), echoHandler('X')))
	connectClient(t, srv, tr, 1)

	path := []byte("hi\x00x")
	req := append(header9(uint32(len(path)), 0, 1), path...)
	tr.feed(1, req)
	require.NoError(t, srv.ServeClients())

	want := append(header9(uint32(len(path)), 2, 0x84), path...)
	want = append(want, 0xE8, 0x03)
	if diff := cmp.Diff(want, tr.sent(1)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}
