// Package packet implements the per-phase packet definitions and handler
// logic: parsing each known (state, id) pair and driving the connection's
// reaction to it.
//
// This package depends on internal/conn only through the Conn interface
// declared below, not the concrete type, so internal/conn is free to
// import this package without creating a cycle.
package packet

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymodder/hieronymus/internal/auth"
	"github.com/dmitrymodder/hieronymus/internal/codec"
	"github.com/dmitrymodder/hieronymus/internal/config"
	"github.com/dmitrymodder/hieronymus/internal/server"
)

// State is one of the four protocol phases a connection moves through.
type State int

const (
	StateHandshake State = iota
	StateStatus
	StateLogin
	StatePlay
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StatePlay:
		return "play"
	default:
		return "unknown"
	}
}

// ErrUnknownPacket is returned when no handler is registered for a given
// (state, id) pair. Unknown ids are fatal in every phase.
var ErrUnknownPacket = errors.New("packet: unrecognized packet id for current state")

// ErrIllegalNextState is returned when Handshake names a next_state other
// than 1 (Status) or 2 (Login).
var ErrIllegalNextState = errors.New("packet: handshake next_state must be 1 or 2")

// Conn is the surface internal/conn.Connection exposes to handlers: just
// enough to read the current phase, move to the next one, send a
// response, and reach the shared auth/crypto/server/config state.
type Conn interface {
	Context() context.Context
	State() State
	SetState(State)
	Send(*codec.ResponseBuilder) error
	Keys() *auth.Keys
	Config() config.Snapshot
	Server() server.Handle

	BeginAuthSession(username string) (*auth.Session, error)
	AuthSession() *auth.Session
	ClearAuthSession()
	EnableEncryption(sharedSecret []byte) error

	Kick(reason string) error
	StartKeepAlive()
}

// Dispatch parses and handles one frame according to the connection's
// current state.
func Dispatch(c Conn, frame codec.Frame) error {
	switch c.State() {
	case StateHandshake:
		return dispatchHandshake(c, frame)
	case StateStatus:
		return dispatchStatus(c, frame)
	case StateLogin:
		return dispatchLogin(c, frame)
	case StatePlay:
		return dispatchPlay(c, frame)
	default:
		return fmt.Errorf("packet: connection in unknown state %v", c.State())
	}
}
