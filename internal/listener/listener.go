// Package listener accepts TCP connections and hands each one off to its
// own internal/conn.Connection goroutine.
package listener

import (
	"log"
	"net"

	"github.com/dmitrymodder/hieronymus/internal/auth"
	"github.com/dmitrymodder/hieronymus/internal/conn"
	"github.com/dmitrymodder/hieronymus/internal/config"
	"github.com/dmitrymodder/hieronymus/internal/server"
)

// Listener owns the accept loop for one listening socket.
type Listener struct {
	sock net.Listener
	keys *auth.Keys
	cfg  config.Snapshot
	srv  server.Handle
}

// Listen binds addr and returns a Listener ready to Serve.
func Listen(addr string, keys *auth.Keys, cfg config.Snapshot, srv server.Handle) (*Listener, error) {
	sock, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{sock: sock, keys: keys, cfg: cfg, srv: srv}, nil
}

// Addr reports the bound address, useful when addr was ":0".
func (l *Listener) Addr() net.Addr { return l.sock.Addr() }

// Close stops accepting new connections.
func (l *Listener) Close() error { return l.sock.Close() }

// Serve accepts connections until the listener is closed, spawning one
// Connection actor per accepted socket. It always returns a non-nil error:
// the one Accept reported when accepting stopped, including after Close.
func (l *Listener) Serve() error {
	for {
		sock, err := l.sock.Accept()
		if err != nil {
			return err
		}
		c := conn.New(sock, l.keys, l.cfg, l.srv)
		go c.Run()
		log.Printf("listener: accepted %s", sock.RemoteAddr())
	}
}
