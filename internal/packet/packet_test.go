package packet

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymodder/hieronymus/internal/auth"
	"github.com/dmitrymodder/hieronymus/internal/codec"
	"github.com/dmitrymodder/hieronymus/internal/config"
	"github.com/dmitrymodder/hieronymus/internal/server"
)

// fakeConn records state transitions and sent packets without a socket.
type fakeConn struct {
	state State
	sent  []*codec.ResponseBuilder
}

func (f *fakeConn) Context() context.Context { return context.Background() }
func (f *fakeConn) State() State             { return f.state }
func (f *fakeConn) SetState(s State)         { f.state = s }

func (f *fakeConn) Send(b *codec.ResponseBuilder) error {
	f.sent = append(f.sent, b)
	return nil
}

func (f *fakeConn) Keys() *auth.Keys        { return nil }
func (f *fakeConn) Config() config.Snapshot { return config.Snapshot{} }
func (f *fakeConn) Server() server.Handle   { return server.Handle{} }

func (f *fakeConn) BeginAuthSession(username string) (*auth.Session, error) {
	return auth.NewSession(username)
}

func (f *fakeConn) AuthSession() *auth.Session    { return nil }
func (f *fakeConn) ClearAuthSession()             {}
func (f *fakeConn) EnableEncryption([]byte) error { return nil }
func (f *fakeConn) Kick(reason string) error      { return nil }
func (f *fakeConn) StartKeepAlive()               {}

func handshakeBody(t *testing.T, nextState int32) []byte {
	t.Helper()
	b, err := codec.NewResponseBuilder(0x00).
		VarInt(756).
		String("localhost").
		Short(25565).
		VarInt(nextState).
		Build()
	require.NoError(t, err)

	frame, err := codec.ReadFrame(bytes.NewReader(b))
	require.NoError(t, err)
	return frame.Body
}

func TestHandshakeAdvancesToStatusOrLogin(t *testing.T) {
	for nextState, want := range map[int32]State{1: StateStatus, 2: StateLogin} {
		c := &fakeConn{state: StateHandshake}
		err := Dispatch(c, codec.Frame{ID: 0x00, Body: handshakeBody(t, nextState)})
		require.NoError(t, err)
		assert.Equal(t, want, c.State())
	}
}

func TestHandshakeRejectsIllegalNextState(t *testing.T) {
	c := &fakeConn{state: StateHandshake}
	err := Dispatch(c, codec.Frame{ID: 0x00, Body: handshakeBody(t, 3)})
	assert.ErrorIs(t, err, ErrIllegalNextState)
	assert.Equal(t, StateHandshake, c.State())
}

// Once in Play, no legal packet sequence moves the connection backward.
// A Handshake frame arriving in Play hits the Play dispatcher,
// where 0x00 is Teleport Confirm (a no-op), so the state never changes;
// the ids that would re-run handshake logic simply don't exist in Play's
// table.
func TestStateNeverMovesBackwardFromPlay(t *testing.T) {
	c := &fakeConn{state: StatePlay}
	err := Dispatch(c, codec.Frame{ID: 0x00, Body: handshakeBody(t, 1)})
	require.NoError(t, err)
	assert.Equal(t, StatePlay, c.State())
}

func TestUnknownIDIsFatalInEveryState(t *testing.T) {
	for _, state := range []State{StateHandshake, StateStatus, StateLogin, StatePlay} {
		c := &fakeConn{state: state}
		err := Dispatch(c, codec.Frame{ID: 0x7f, Body: nil})
		assert.ErrorIs(t, err, ErrUnknownPacket, "state=%v", state)
	}
}
