// Package codec implements the length-prefixed packet framing every phase
// of the protocol shares: a varint frame length, a varint packet id, then
// the packet's own fields. It knows nothing about encryption — callers
// hand it whatever Reader/Writer the connection is currently using
// (plaintext, or already wrapped in a cipher.StreamReader/StreamWriter).
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dmitrymodder/hieronymus/internal/proto"
	"github.com/dmitrymodder/hieronymus/internal/varint"
)

// MaxFrameLen bounds a single frame's declared length, guarding against a
// hostile or corrupt length prefix forcing an enormous allocation.
const MaxFrameLen = 2 * 1024 * 1024

// ErrFrameTooLarge is returned when a frame's declared length exceeds
// MaxFrameLen.
var ErrFrameTooLarge = errors.New("codec: frame exceeds maximum length")

// Frame is one decoded packet: its id and the bytes following it, not yet
// interpreted as fields.
type Frame struct {
	ID   int32
	Body []byte
}

// ReadFrame reads one full frame from r: a length-prefixed blob, itself
// starting with a varint packet id. It blocks until either a complete
// frame or an error is available; partial reads are buffered by r, not
// by this function.
func ReadFrame(r proto.Reader) (Frame, error) {
	length, err := varint.ReadVarInt(r)
	if err != nil {
		return Frame{}, err
	}
	if length < 0 || int(length) > MaxFrameLen {
		return Frame{}, ErrFrameTooLarge
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(r, raw); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return Frame{}, varint.ErrIncomplete
		}
		return Frame{}, err
	}

	body := bytes.NewReader(raw)
	id, err := varint.ReadVarInt(body)
	if err != nil {
		return Frame{}, fmt.Errorf("codec: reading packet id: %w", err)
	}
	return Frame{ID: id, Body: raw[len(raw)-body.Len():]}, nil
}

// ResponseBuilder accumulates one outbound packet's fields, then frames
// and writes it as a single logical unit. That matters under encryption,
// where the length prefix and payload must be fed through the same
// keystream in one call.
type ResponseBuilder struct {
	id  int32
	buf bytes.Buffer
}

// NewResponseBuilder starts a packet with the given id.
func NewResponseBuilder(id int32) *ResponseBuilder {
	return &ResponseBuilder{id: id}
}

// Byte appends a single raw byte.
func (b *ResponseBuilder) Byte(v byte) *ResponseBuilder {
	b.buf.WriteByte(v)
	return b
}

// Bool appends a protocol boolean byte.
func (b *ResponseBuilder) Bool(v bool) *ResponseBuilder {
	_ = proto.WriteBool(&b.buf, v)
	return b
}

// VarInt appends a varint-encoded int32.
func (b *ResponseBuilder) VarInt(v int32) *ResponseBuilder {
	_ = varint.WriteVarInt(&b.buf, v)
	return b
}

// VarLong appends a varint-encoded int64.
func (b *ResponseBuilder) VarLong(v int64) *ResponseBuilder {
	_ = varint.WriteVarLong(&b.buf, v)
	return b
}

// String appends a varint-length-prefixed UTF-8 string.
func (b *ResponseBuilder) String(v string) *ResponseBuilder {
	_ = proto.WriteString(&b.buf, v)
	return b
}

// Bytes appends a varint-length-prefixed byte blob.
func (b *ResponseBuilder) Bytes(v []byte) *ResponseBuilder {
	_ = proto.WriteBytes(&b.buf, v)
	return b
}

// RawBytes appends v with no length prefix, for fields whose length is
// implied by the packet (e.g. a trailing NBT blob).
func (b *ResponseBuilder) RawBytes(v []byte) *ResponseBuilder {
	b.buf.Write(v)
	return b
}

// NBT appends a pre-built NBT document with no length prefix.
func (b *ResponseBuilder) NBT(doc []byte) *ResponseBuilder {
	return b.RawBytes(doc)
}

// Short appends a big-endian int16.
func (b *ResponseBuilder) Short(v int16) *ResponseBuilder {
	b.buf.WriteByte(byte(v >> 8))
	b.buf.WriteByte(byte(v))
	return b
}

// Int appends a big-endian int32.
func (b *ResponseBuilder) Int(v int32) *ResponseBuilder {
	b.buf.WriteByte(byte(v >> 24))
	b.buf.WriteByte(byte(v >> 16))
	b.buf.WriteByte(byte(v >> 8))
	b.buf.WriteByte(byte(v))
	return b
}

// Long appends a big-endian int64.
func (b *ResponseBuilder) Long(v int64) *ResponseBuilder {
	for shift := 56; shift >= 0; shift -= 8 {
		b.buf.WriteByte(byte(v >> uint(shift)))
	}
	return b
}

// Float appends a big-endian IEEE-754 float32.
func (b *ResponseBuilder) Float(v float32) *ResponseBuilder {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(v))
	b.buf.Write(buf[:])
	return b
}

// Double appends a big-endian IEEE-754 float64.
func (b *ResponseBuilder) Double(v float64) *ResponseBuilder {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	b.buf.Write(buf[:])
	return b
}

// Position appends a packed position word.
func (b *ResponseBuilder) Position(p proto.Position) *ResponseBuilder {
	_ = proto.WritePosition(&b.buf, p)
	return b
}

// Angle appends a single rotation byte.
func (b *ResponseBuilder) Angle(a proto.Angle) *ResponseBuilder {
	return b.Byte(byte(a))
}

// Build assembles the final wire bytes: varint(len(id + payload)), varint
// id, payload. It does not write anywhere — callers decide whether to
// write the result directly or through a cipher.StreamWriter.
func (b *ResponseBuilder) Build() ([]byte, error) {
	var idBuf bytes.Buffer
	if err := varint.WriteVarInt(&idBuf, b.id); err != nil {
		return nil, err
	}

	var framed bytes.Buffer
	total := int32(idBuf.Len() + b.buf.Len())
	if err := varint.WriteVarInt(&framed, total); err != nil {
		return nil, err
	}
	framed.Write(idBuf.Bytes())
	framed.Write(b.buf.Bytes())
	return framed.Bytes(), nil
}

// WriteTo builds the packet and writes it to w in one call.
func (b *ResponseBuilder) WriteTo(w io.Writer) error {
	out, err := b.Build()
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
