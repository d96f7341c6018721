package packet

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/dmitrymodder/hieronymus/internal/codec"
	"github.com/dmitrymodder/hieronymus/internal/server"
)

const (
	idPlayJoinGame     = 0x26
	idPlayPositionLook = 0x38

	// Recognized serverbound Play ids: the set a real client sends
	// unprompted right after Player-Position-And-Look, so the
	// unknown-id-is-fatal rule doesn't instantly kick it.
	idPlayTeleportConfirm   = 0x00
	idPlayClientSettings    = 0x05
	idPlayPluginMessage     = 0x0a
	idPlayKeepAliveIn       = 0x0f
	idPlayPlayerPosition    = 0x11
	idPlayPlayerPositionRot = 0x12
	idPlayPlayerDigging     = 0x1a
	idPlayAnimation         = 0x2c
)

// KeepAliveOutID is the clientbound Keep Alive packet id, exported so
// internal/conn's background ticker can build the packet without this
// package needing to expose its whole response-building internals.
const KeepAliveOutID int32 = 0x21

// DisconnectPlayID is the Play-phase clientbound disconnect packet id.
const DisconnectPlayID int32 = 0x1a

// DisconnectLoginID is the Login-phase clientbound disconnect packet id
// (a different id than Play's).
const DisconnectLoginID int32 = 0x00

// enterPlay runs the mandatory join-game preamble: Join Game, an absolute
// Player Position And Look, then a kick. There is no game to keep the
// connection open for.
func enterPlay(c Conn, player server.Player) error {
	c.SetState(StatePlay)
	c.StartKeepAlive()

	dimInfo, err := c.Server().GetDimensionInfo(c.Context())
	if err != nil {
		return err
	}

	if err := c.Server().JoinGame(c.Context(), player); err != nil {
		return err
	}

	if err := sendJoinGame(c, dimInfo); err != nil {
		return err
	}
	if err := sendPlayerPositionLook(c); err != nil {
		return err
	}
	return c.Kick(`{"text":"well... i haven't implemented like, the game yet lol. come back later XD"}`)
}

func sendJoinGame(c Conn, dim server.DimensionInfo) error {
	var hashedSeed [8]byte
	_, _ = rand.Read(hashedSeed[:])

	b := codec.NewResponseBuilder(idPlayJoinGame).
		Int(0).      // entity_id
		Bool(false). // is_hardcore
		Byte(0).     // gamemode: survival
		Byte(0xff).  // previous_gamemode: -1 as unsigned byte
		VarInt(1).
		String(dim.WorldName).
		NBT(dim.Codec).
		NBT(dim.CurrentDim).
		String(dim.WorldName).
		RawBytes(hashedSeed[:]).
		VarInt(0).   // max_players, ignored by modern clients
		VarInt(10).  // view_distance
		VarInt(10).  // simulation_distance
		Bool(false). // reduced_debug_info
		Bool(true).  // enable_respawn_screen
		Bool(false). // is_debug
		Bool(false)  // is_flat

	return c.Send(b)
}

func sendPlayerPositionLook(c Conn) error {
	var teleportID [4]byte
	_, _ = rand.Read(teleportID[:])

	b := codec.NewResponseBuilder(idPlayPositionLook).
		Double(69.0).
		Double(0.0).
		Double(420.0).
		Float(0).
		Float(0).
		Byte(0). // flags: all fields absolute
		VarInt(int32(binary.BigEndian.Uint32(teleportID[:]))).
		Bool(false) // dismount_vehicle

	return c.Send(b)
}

// dispatchPlay recognizes every inbound Play packet id this server
// accepts but takes no action on any of them: there is no game logic to
// feed them to yet, and crashing on a recognized packet would be worse
// than ignoring it.
func dispatchPlay(c Conn, frame codec.Frame) error {
	switch frame.ID {
	case idPlayTeleportConfirm, idPlayClientSettings, idPlayPluginMessage,
		idPlayKeepAliveIn, idPlayPlayerPosition, idPlayPlayerPositionRot,
		idPlayPlayerDigging, idPlayAnimation:
		return nil
	default:
		return ErrUnknownPacket
	}
}
