package packet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymodder/hieronymus/internal/auth"
	"github.com/dmitrymodder/hieronymus/internal/codec"
	"github.com/dmitrymodder/hieronymus/internal/proto"
	"github.com/dmitrymodder/hieronymus/internal/server"
)

// ErrNoAuthSession is returned when EncryptionResponse arrives without a
// preceding LoginStart having created one (or after it was already
// consumed).
var ErrNoAuthSession = errors.New("packet: encryption response without an active auth session")

const (
	idLoginStart          = 0x00
	idLoginEncryptionResp = 0x01
	idLoginSuccess        = 0x02
	idLoginEncryptionReq  = 0x01

	maxUsernameLen = 16
)

// serverIDConstant is the fixed ASCII salt sent as EncryptionRequest's
// server_id field and reused in the Mojang hash.
const serverIDConstant = "hiero|rejectnormalcy"

func dispatchLogin(c Conn, frame codec.Frame) error {
	switch frame.ID {
	case idLoginStart:
		return handleLoginStart(c, frame.Body)
	case idLoginEncryptionResp:
		return handleEncryptionResponse(c, frame.Body)
	default:
		return ErrUnknownPacket
	}
}

func handleLoginStart(c Conn, body []byte) error {
	r := bytes.NewReader(body)
	username, err := proto.ReadString(r, maxUsernameLen)
	if err != nil {
		return err
	}

	if !c.Config().OnlineMode {
		player := server.Player{UUID: uuid.New(), Username: username}
		if err := sendLoginSuccess(c, player); err != nil {
			return err
		}
		return enterPlay(c, player)
	}

	session, err := c.BeginAuthSession(username)
	if err != nil {
		return err
	}
	return c.Send(codec.NewResponseBuilder(idLoginEncryptionReq).
		String(serverIDConstant).
		Bytes(c.Keys().PublicDER).
		Bytes(session.VerifyToken[:]))
}

func handleEncryptionResponse(c Conn, body []byte) error {
	r := bytes.NewReader(body)
	sharedSecretEnc, err := proto.ReadBytes(r, 256)
	if err != nil {
		return err
	}
	verifyTokenEnc, err := proto.ReadBytes(r, 256)
	if err != nil {
		return err
	}

	session := c.AuthSession()
	if session == nil {
		return ErrNoAuthSession
	}

	sharedSecret, err := c.Keys().DecryptPKCS1v15(sharedSecretEnc)
	if err != nil {
		return fmt.Errorf("packet: decrypting shared secret: %w", err)
	}
	decryptedToken, err := c.Keys().DecryptPKCS1v15(verifyTokenEnc)
	if err != nil {
		return fmt.Errorf("packet: decrypting verify token: %w", err)
	}
	if err := session.CheckVerifyToken(decryptedToken); err != nil {
		return err
	}

	hash := auth.MojangHash(sharedSecret, c.Keys().PublicDER)
	resp, err := auth.Authenticate(nil, session.Username, hash)
	if err != nil {
		return err
	}

	playerUUID, err := uuid.Parse(resp.ID)
	if err != nil {
		return fmt.Errorf("packet: session service returned an invalid uuid: %w", err)
	}

	if err := c.EnableEncryption(sharedSecret); err != nil {
		return err
	}
	c.ClearAuthSession()

	player := server.Player{UUID: playerUUID, Username: resp.Name}
	if err := sendLoginSuccess(c, player); err != nil {
		return err
	}
	return enterPlay(c, player)
}

func sendLoginSuccess(c Conn, player server.Player) error {
	idBytes := player.UUID // [16]byte
	high := binary.BigEndian.Uint64(idBytes[:8])
	low := binary.BigEndian.Uint64(idBytes[8:])

	return c.Send(codec.NewResponseBuilder(idLoginSuccess).
		Long(int64(high)).
		Long(int64(low)).
		String(player.Username))
}
