// Package server implements the process-wide actor: a single goroutine
// owning the player roster, the version banner, and the dimension
// registry, serving requests through channel mailboxes with per-request
// reply channels.
package server

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymodder/hieronymus/internal/config"
	"github.com/dmitrymodder/hieronymus/internal/dimension"
)

// simulatorInterval is how often the advertised online count drifts.
const simulatorInterval = 30 * time.Minute

// simulatorSpread bounds the per-tick swing to -3..+3.
const simulatorSpread = 7

// Version is the protocol/version banner every status reply advertises.
type Version struct {
	Name     string
	Protocol int32
}

// Current is this core's fixed protocol identity.
var Current = Version{Name: "1.17.1", Protocol: 756}

// Player is a roster entry created at successful login.
type Player struct {
	UUID     uuid.UUID
	Username string
}

// ErrServerClosed names the error kind for a request to an actor that is no
// longer running. Handle methods do not return it: once the actor goroutine
// has stopped, a call waits until its ctx ends and returns ctx.Err().
var ErrServerClosed = errors.New("server: actor is no longer running")

type getStatusRequest struct {
	reply chan string
}

type getDimensionRequest struct {
	reply chan dimensionReply
}

type dimensionReply struct {
	codec      []byte
	currentDim []byte
	worldName  string
}

type joinGameRequest struct {
	player Player
}

// Server is the actor's private state; it is only ever touched by the one
// goroutine Run starts.
type Server struct {
	config    config.Snapshot
	dimension *dimension.Manager
	players   []Player

	// simulatedOnline cosmetically pads the status reply's online count.
	// Only Run's own goroutine ever touches it, and it never joins the
	// real roster: players still grows by exactly one per login.
	simulatedOnline int
	tickInterval    time.Duration

	statusReqs    chan getStatusRequest
	dimensionReqs chan getDimensionRequest
	joinReqs      chan joinGameRequest
	done          chan struct{}
}

// New constructs a Server actor's state. Call Run to start serving.
func New(cfg config.Snapshot) *Server {
	return &Server{
		config:          cfg,
		dimension:       dimension.New(),
		simulatedOnline: 0,
		tickInterval:    simulatorInterval,
		statusReqs:      make(chan getStatusRequest, 64),
		dimensionReqs:   make(chan getDimensionRequest, 64),
		joinReqs:        make(chan joinGameRequest, 64),
		done:            make(chan struct{}),
	}
}

// Run is the actor's mailbox loop. It returns when ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.statusReqs:
			req.reply <- s.statusJSON()
		case req := <-s.dimensionReqs:
			req.reply <- dimensionReply{
				codec:      s.dimension.Codec(),
				currentDim: s.dimension.CurrentDimension(),
				worldName:  s.dimension.CurrentDimensionName(),
			}
		case req := <-s.joinReqs:
			s.players = append(s.players, req.player)
		case <-ticker.C:
			s.simulateTick()
		}
	}
}

// simulateTick applies a clamped -3..+3 random walk to simulatedOnline.
func (s *Server) simulateTick() {
	next := s.simulatedOnline + secureRandomInt(simulatorSpread) - simulatorSpread/2
	if next < 0 {
		next = 0
	}
	if next > s.config.MaxPlayers {
		next = s.config.MaxPlayers
	}
	s.simulatedOnline = next
}

func secureRandomInt(max int) int {
	var b [1]byte
	_, _ = rand.Read(b[:])
	return int(b[0]) % max
}

type statusResponse struct {
	Version     statusVersion     `json:"version"`
	Players     statusPlayers     `json:"players"`
	Description statusDescription `json:"description"`
	Favicon     string            `json:"favicon,omitempty"`
}

type statusVersion struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

type statusPlayers struct {
	Max    int                `json:"max"`
	Online int                `json:"online"`
	Sample []statusPlayerInfo `json:"sample"`
}

type statusPlayerInfo struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type statusDescription struct {
	Text string `json:"text"`
}

func (s *Server) statusJSON() string {
	sample := make([]statusPlayerInfo, 0, 5)
	for i, p := range s.players {
		if i >= 5 {
			break
		}
		sample = append(sample, statusPlayerInfo{Name: p.Username, ID: p.UUID.String()})
	}

	online := len(s.players) + s.simulatedOnline
	if online > s.config.MaxPlayers {
		online = s.config.MaxPlayers
	}

	resp := statusResponse{
		Version: statusVersion{Name: Current.Name, Protocol: Current.Protocol},
		Players: statusPlayers{
			Max:    s.config.MaxPlayers,
			Online: online,
			Sample: sample,
		},
		Description: statusDescription{Text: s.config.Motd},
		Favicon:     s.config.FaviconB64,
	}
	out, err := json.Marshal(resp)
	if err != nil {
		return `{"version":{"name":"` + Current.Name + `","protocol":756},"players":{"max":0,"online":0,"sample":[]},"description":{"text":""}}`
	}
	return string(out)
}

// Handle is the cheaply-cloneable reference connections use to talk to
// the actor.
type Handle struct {
	statusReqs    chan<- getStatusRequest
	dimensionReqs chan<- getDimensionRequest
	joinReqs      chan<- joinGameRequest
}

// Handle returns a Handle bound to this actor's mailboxes.
func (s *Server) Handle() Handle {
	return Handle{
		statusReqs:    s.statusReqs,
		dimensionReqs: s.dimensionReqs,
		joinReqs:      s.joinReqs,
	}
}

// GetServerStatus asks the actor for a freshly-taken status snapshot as
// JSON.
func (h Handle) GetServerStatus(ctx context.Context) (string, error) {
	reply := make(chan string, 1)
	select {
	case h.statusReqs <- getStatusRequest{reply: reply}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// DimensionInfo is the pre-join NBT payload Join Game needs.
type DimensionInfo struct {
	Codec      []byte
	CurrentDim []byte
	WorldName  string
}

// GetDimensionInfo asks the actor for the dimension codec and the current
// dimension's NBT.
func (h Handle) GetDimensionInfo(ctx context.Context) (DimensionInfo, error) {
	reply := make(chan dimensionReply, 1)
	select {
	case h.dimensionReqs <- getDimensionRequest{reply: reply}:
	case <-ctx.Done():
		return DimensionInfo{}, ctx.Err()
	}
	select {
	case d := <-reply:
		return DimensionInfo{Codec: d.codec, CurrentDim: d.currentDim, WorldName: d.worldName}, nil
	case <-ctx.Done():
		return DimensionInfo{}, ctx.Err()
	}
}

// JoinGame appends player to the roster. No reply is expected, but the
// send itself blocks until the actor's mailbox accepts it (or ctx ends),
// so a successful call guarantees the roster will grow by one.
func (h Handle) JoinGame(ctx context.Context, player Player) error {
	select {
	case h.joinReqs <- joinGameRequest{player: player}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
