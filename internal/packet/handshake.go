package packet

import (
	"bytes"
	"io"

	"github.com/dmitrymodder/hieronymus/internal/codec"
	"github.com/dmitrymodder/hieronymus/internal/proto"
	"github.com/dmitrymodder/hieronymus/internal/varint"
)

// idHandshake is Handshake's sole, unversioned packet id.
const idHandshake = 0x00

// Handshake is the only packet the Handshake phase recognizes. ServerPort
// and ServerAddress are accepted but unused beyond parsing — this core
// doesn't support virtual-host routing.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

func parseHandshake(body []byte) (Handshake, error) {
	r := bytes.NewReader(body)

	protocolVersion, err := varint.ReadVarInt(r)
	if err != nil {
		return Handshake{}, err
	}
	addr, err := proto.ReadString(r, 255)
	if err != nil {
		return Handshake{}, err
	}
	var portBuf [2]byte
	if _, err := io.ReadFull(r, portBuf[:]); err != nil {
		return Handshake{}, err
	}
	port := uint16(portBuf[0])<<8 | uint16(portBuf[1])
	nextState, err := varint.ReadVarInt(r)
	if err != nil {
		return Handshake{}, err
	}
	return Handshake{
		ProtocolVersion: protocolVersion,
		ServerAddress:   addr,
		ServerPort:      port,
		NextState:       nextState,
	}, nil
}

func dispatchHandshake(c Conn, frame codec.Frame) error {
	if frame.ID != idHandshake {
		return ErrUnknownPacket
	}
	hs, err := parseHandshake(frame.Body)
	if err != nil {
		return err
	}
	switch hs.NextState {
	case 1:
		c.SetState(StateStatus)
	case 2:
		c.SetState(StateLogin)
	default:
		return ErrIllegalNextState
	}
	return nil
}
