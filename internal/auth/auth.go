// Package auth implements the login-phase cryptographic handshake: the
// process-wide RSA-1024 keypair sent in Encryption Request, the per-session
// verify token, and the Mojang-style session-service verification used to
// confirm a client actually owns the username it claims.
package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
)

// rsaKeyBits matches the protocol's expected Encryption Request key size.
const rsaKeyBits = 1024

// Keys is the process-wide RSA keypair used for every connection's
// Encryption Request. One keypair is generated at startup and shared.
type Keys struct {
	Private   *rsa.PrivateKey
	PublicDER []byte
}

// NewKeys generates a fresh RSA-1024 keypair and DER-encodes the public
// half as an X.509 SubjectPublicKeyInfo, the form Encryption Request's
// public_key field expects (the real client feeds it straight to Java's
// X509EncodedKeySpec, which rejects a bare PKCS#1 blob).
func NewKeys() (*Keys, error) {
	priv, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, fmt.Errorf("auth: generate rsa key: %w", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("auth: marshal public key: %w", err)
	}
	return &Keys{Private: priv, PublicDER: der}, nil
}

// DecryptPKCS1v15 recovers the client-encrypted shared secret or verify
// token from Encryption Response.
func (k *Keys) DecryptPKCS1v15(ciphertext []byte) ([]byte, error) {
	return rsa.DecryptPKCS1v15(rand.Reader, k.Private, ciphertext)
}

// verifyTokenLen is the size of the random verify token this server
// generates and expects to see echoed back (as a prefix) in Encryption
// Response.
const verifyTokenLen = 8

// Session holds the per-connection state needed to validate Encryption
// Response and the follow-up session-service check.
type Session struct {
	Username    string
	VerifyToken [verifyTokenLen]byte
}

// NewSession starts a login session for username with a freshly randomized
// verify token.
func NewSession(username string) (*Session, error) {
	var token [verifyTokenLen]byte
	if _, err := rand.Read(token[:]); err != nil {
		return nil, fmt.Errorf("auth: generate verify token: %w", err)
	}
	return &Session{Username: username, VerifyToken: token}, nil
}

// ErrVerifyTokenMismatch is returned when a client's Encryption Response
// does not echo back the verify token this server sent.
var ErrVerifyTokenMismatch = errors.New("auth: verify token mismatch")

// CheckVerifyToken requires decrypted to begin with this session's verify
// token; the client may send a longer buffer, but the leading bytes must
// match exactly.
func (s *Session) CheckVerifyToken(decrypted []byte) error {
	if len(decrypted) < len(s.VerifyToken) {
		return ErrVerifyTokenMismatch
	}
	for i, b := range s.VerifyToken {
		if decrypted[i] != b {
			return ErrVerifyTokenMismatch
		}
	}
	return nil
}

// serverID is the constant (and, for an offline protocol reimplementation,
// meaningless) server_id half of the session hash — Mojang's own servers
// never check its value, only that it matches what the client sent to the
// session service.
const serverID = "hiero|rejectnormalcy"

// MojangHash computes Minecraft's "crappy hash": SHA-1 over
// serverID||sharedSecret||publicKeyDER, formatted as a signed hex string
// the way the vanilla client/session-service expect (two's-complement
// negation when the digest's top bit is set, then hex with no leading
// zeros).
func MojangHash(sharedSecret, publicKeyDER []byte) string {
	h := sha1.New()
	h.Write([]byte(serverID))
	h.Write(sharedSecret)
	h.Write(publicKeyDER)
	digest := h.Sum(nil)
	return crappyHash(digest)
}

// crappyHash implements Mojang's nonstandard "signed hex of a SHA-1
// digest" formatting.
func crappyHash(digest []byte) string {
	n := new(big.Int).SetBytes(digest)
	if digest[0]&0x80 != 0 {
		// Top bit set: the digest represents a negative two's-complement
		// number. Recover its magnitude and let big.Int's own sign flag
		// produce the leading '-' when formatted below.
		max := new(big.Int).Lsh(big.NewInt(1), uint(len(digest)*8))
		n.Sub(max, n)
		n.Neg(n)
	}
	return fmt.Sprintf("%x", n)
}

// AuthResponse is the session-service's hasJoined response body.
type AuthResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ErrNotAuthenticated is returned when the session service rejects a join
// (HTTP 204/"no content", meaning the client never told Mojang it was
// joining this server).
var ErrNotAuthenticated = errors.New("auth: session service rejected join")

const sessionServerURL = "https://sessionserver.mojang.com/session/minecraft/hasJoined"

// Authenticate calls Mojang's session service to confirm username actually
// initiated a join with serverHash, per Mojang's online-mode handshake.
func Authenticate(client *http.Client, username, serverHash string) (*AuthResponse, error) {
	return authenticateAt(client, sessionServerURL, username, serverHash)
}

// authenticateAt is Authenticate with the session-service base URL broken
// out, so tests can point it at a local httptest server.
func authenticateAt(client *http.Client, baseURL, username, serverHash string) (*AuthResponse, error) {
	if client == nil {
		client = http.DefaultClient
	}
	q := url.Values{}
	q.Set("username", username)
	q.Set("serverId", serverHash)

	resp, err := client.Get(baseURL + "?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("auth: session service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, ErrNotAuthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: session service returned status %d", resp.StatusCode)
	}

	var out AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("auth: decode session service response: %w", err)
	}
	return &out, nil
}
