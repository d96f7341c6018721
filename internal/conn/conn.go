// Package conn implements the per-connection actor: it owns the socket,
// the current protocol phase, the auth/crypto state, and the read loop
// that frames inbound bytes and dispatches them to internal/packet.
package conn

import (
	"context"
	"crypto/cipher"
	"errors"
	"io"
	"log"
	"net"
	"time"

	"github.com/dmitrymodder/hieronymus/internal/auth"
	hcipher "github.com/dmitrymodder/hieronymus/internal/cipher"
	"github.com/dmitrymodder/hieronymus/internal/codec"
	"github.com/dmitrymodder/hieronymus/internal/config"
	"github.com/dmitrymodder/hieronymus/internal/packet"
	"github.com/dmitrymodder/hieronymus/internal/server"
	"github.com/dmitrymodder/hieronymus/internal/varint"
)

// keepAliveInterval matches vanilla's cadence.
const keepAliveInterval = 15 * time.Second

// byteReader adapts an io.Reader to io.ByteReader one byte at a time so
// the varint/proto readers work directly against a socket (or a
// cipher.StreamReader wrapping one) without bufio's read-ahead, which
// would over-read past a frame boundary right as encryption toggles on.
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

// Connection is one TCP session's worth of state, spanning all four
// protocol phases.
type Connection struct {
	ctx    context.Context
	cancel context.CancelFunc

	sock net.Conn
	in   *byteReader
	out  io.Writer

	state     packet.State
	keys      *auth.Keys
	cfg       config.Snapshot
	srv       server.Handle
	session   *auth.Session
	encrypted bool
}

// New constructs a Connection for an accepted socket.
func New(sock net.Conn, keys *auth.Keys, cfg config.Snapshot, srv server.Handle) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		ctx:    ctx,
		cancel: cancel,
		sock:   sock,
		in:     &byteReader{r: sock},
		out:    sock,
		state:  packet.StateHandshake,
		keys:   keys,
		cfg:    cfg,
		srv:    srv,
	}
}

// Run drives the connection until it closes, recovering from any panic a
// handler might raise so one bad connection can't take the listener
// down.
func (c *Connection) Run() {
	defer c.cancel()
	defer c.sock.Close()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("conn: recovered from panic: %v", r)
		}
	}()

	for {
		frame, err := codec.ReadFrame(c.in)
		if err != nil {
			// A client hanging up between (or mid-) frames surfaces as
			// ErrIncomplete wherever the boundary fell (the varint and
			// body readers both report end of stream that way); it is a
			// normal end of stream, not a protocol error.
			if !errors.Is(err, io.EOF) && !errors.Is(err, varint.ErrIncomplete) {
				log.Printf("conn: %s: %v", c.sock.RemoteAddr(), err)
			}
			return
		}
		if err := packet.Dispatch(c, frame); err != nil {
			log.Printf("conn: %s: dispatch: %v", c.sock.RemoteAddr(), err)
			// In Login and Play the client understands a disconnect
			// packet; tell it why before closing. Handshake and Status
			// have no such packet, so those just close.
			if c.state == packet.StateLogin || c.state == packet.StatePlay {
				_ = c.Kick(`{"text":"bad packet. go away."}`)
			}
			return
		}
	}
}

// Context implements packet.Conn.
func (c *Connection) Context() context.Context { return c.ctx }

// State implements packet.Conn.
func (c *Connection) State() packet.State { return c.state }

// SetState implements packet.Conn. Transitions are one-way by
// construction: nothing in this package ever calls it with an earlier
// phase than the current one.
func (c *Connection) SetState(s packet.State) { c.state = s }

// Send implements packet.Conn.
func (c *Connection) Send(b *codec.ResponseBuilder) error {
	return b.WriteTo(c.out)
}

// Keys implements packet.Conn.
func (c *Connection) Keys() *auth.Keys { return c.keys }

// Config implements packet.Conn.
func (c *Connection) Config() config.Snapshot { return c.cfg }

// Server implements packet.Conn.
func (c *Connection) Server() server.Handle { return c.srv }

// BeginAuthSession implements packet.Conn.
func (c *Connection) BeginAuthSession(username string) (*auth.Session, error) {
	session, err := auth.NewSession(username)
	if err != nil {
		return nil, err
	}
	c.session = session
	return session, nil
}

// AuthSession implements packet.Conn.
func (c *Connection) AuthSession() *auth.Session { return c.session }

// ClearAuthSession implements packet.Conn.
func (c *Connection) ClearAuthSession() { c.session = nil }

// EnableEncryption implements packet.Conn. Once set the ciphers are never
// cleared; both directions share the shared secret as key and initial IV.
func (c *Connection) EnableEncryption(sharedSecret []byte) error {
	encBlock, err := hcipher.NewAES128Block(sharedSecret)
	if err != nil {
		return err
	}
	decBlock, err := hcipher.NewAES128Block(sharedSecret)
	if err != nil {
		return err
	}

	encStream := hcipher.NewEncrypter(encBlock, sharedSecret)
	decStream := hcipher.NewDecrypter(decBlock, sharedSecret)

	c.in = &byteReader{r: &cipher.StreamReader{S: decStream, R: c.sock}}
	c.out = &cipher.StreamWriter{S: encStream, W: c.sock}
	c.encrypted = true
	return nil
}

// Kick implements packet.Conn: sends the phase-appropriate disconnect
// packet id (Login uses 0x00, everything past it uses Play's 0x1a) and
// tears the connection down.
func (c *Connection) Kick(reason string) error {
	id := packet.DisconnectPlayID
	if c.state == packet.StateLogin {
		id = packet.DisconnectLoginID
	}
	err := c.Send(codec.NewResponseBuilder(id).String(reason))
	c.cancel()
	_ = c.sock.Close()
	return err
}

// StartKeepAlive implements packet.Conn: once in Play, periodically send
// a keep-alive so a client that outlives the join-game preamble (this
// server kicks immediately, but the hook exists for anything that
// doesn't) has a packet to answer.
func (c *Connection) StartKeepAlive() {
	go func() {
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		var counter int64
		for {
			select {
			case <-c.ctx.Done():
				return
			case <-ticker.C:
				counter++
				if err := c.Send(codec.NewResponseBuilder(packet.KeepAliveOutID).Long(counter)); err != nil {
					return
				}
			}
		}
	}()
}
