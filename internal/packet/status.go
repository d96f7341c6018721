package packet

import (
	"bytes"
	"encoding/binary"

	"github.com/dmitrymodder/hieronymus/internal/codec"
)

const (
	idStatusRequest = 0x00
	idStatusPing    = 0x01
)

func dispatchStatus(c Conn, frame codec.Frame) error {
	switch frame.ID {
	case idStatusRequest:
		return handleStatusRequest(c)
	case idStatusPing:
		return handleStatusPing(c, frame.Body)
	default:
		return ErrUnknownPacket
	}
}

func handleStatusRequest(c Conn) error {
	status, err := c.Server().GetServerStatus(c.Context())
	if err != nil {
		return err
	}
	return c.Send(codec.NewResponseBuilder(idStatusRequest).String(status))
}

func handleStatusPing(c Conn, body []byte) error {
	r := bytes.NewReader(body)
	var payload uint64
	if err := binary.Read(r, binary.BigEndian, &payload); err != nil {
		return err
	}
	return c.Send(codec.NewResponseBuilder(idStatusPing).Long(int64(payload)))
}
