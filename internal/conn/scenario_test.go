package conn

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymodder/hieronymus/internal/config"
	"github.com/dmitrymodder/hieronymus/internal/varint"
)

// A status Request packet delivered across two TCP writes, split between
// its one-byte length prefix and its id: the read loop must wait for the
// rest of the frame instead of erroring, and the eventual reply must be the
// status JSON an unsplit send gets.
func TestPartialFrameAcrossTwoReads(t *testing.T) {
	cfg := config.Snapshot{ListenAddr: "127.0.0.1:0", OnlineMode: false, MaxPlayers: 20, Motd: "hi"}
	client, _ := startTestConn(t, cfg)

	var handshake bytes.Buffer
	require.NoError(t, varint.WriteVarInt(&handshake, 756))
	require.NoError(t, writeString(&handshake, "localhost"))
	require.NoError(t, binary.Write(&handshake, binary.BigEndian, uint16(25565)))
	require.NoError(t, varint.WriteVarInt(&handshake, 1)) // next_state = status
	writeFrame(t, client, 0x00, handshake.Bytes())

	// Status Request (id 0x00, empty body) frames as a single length byte
	// 0x01 followed by the id byte 0x00 — split the two bytes of that
	// frame across separate writes, landing the boundary mid-frame.
	_, err := client.Write([]byte{0x01})
	require.NoError(t, err)
	_, err = client.Write([]byte{0x00})
	require.NoError(t, err)

	frame := readFrame(t, client)
	assert.Equal(t, int32(0x00), frame.ID)
	assert.Contains(t, string(frame.Body), `"protocol":756`)
}

// Handshake and Status Request arrive concatenated in a single TCP
// read: both must be parsed and dispatched in order before the connection
// waits for more bytes, producing the reply without a second client write.
func TestTwoPacketsInOneRead(t *testing.T) {
	cfg := config.Snapshot{ListenAddr: "127.0.0.1:0", OnlineMode: false, MaxPlayers: 20, Motd: "hi"}
	client, _ := startTestConn(t, cfg)

	var handshakeBody bytes.Buffer
	require.NoError(t, varint.WriteVarInt(&handshakeBody, 756))
	require.NoError(t, writeString(&handshakeBody, "localhost"))
	require.NoError(t, binary.Write(&handshakeBody, binary.BigEndian, uint16(25565)))
	require.NoError(t, varint.WriteVarInt(&handshakeBody, 1)) // next_state = status

	var handshakeID bytes.Buffer
	require.NoError(t, varint.WriteVarInt(&handshakeID, 0x00))
	var handshakeFrame bytes.Buffer
	require.NoError(t, varint.WriteVarInt(&handshakeFrame, int32(handshakeID.Len()+handshakeBody.Len())))
	handshakeFrame.Write(handshakeID.Bytes())
	handshakeFrame.Write(handshakeBody.Bytes())

	statusRequestFrame := []byte{0x01, 0x00} // length=1, id=0x00, empty body

	combined := append(append([]byte{}, handshakeFrame.Bytes()...), statusRequestFrame...)
	_, err := client.Write(combined)
	require.NoError(t, err)

	frame := readFrame(t, client)
	assert.Equal(t, int32(0x00), frame.ID)
	assert.Contains(t, string(frame.Body), `"protocol":756`)
}
