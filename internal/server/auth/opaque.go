package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/kemalyaa/webinar-session-jwt/internal/shared"
)

// sessionTokenBytes is the entropy of opaque tokens (session and refresh).
const sessionTokenBytes = 32

// GenerateSessionToken returns a high-entropy opaque token and its digest.
// The raw value is handed to the client exactly once; only the digest is
// persisted, so a leaked database cannot forge bearer credentials.
func GenerateSessionToken() (raw string, hash string, err error) {
	raw, err = shared.MakeRandHexString(sessionTokenBytes)
	if err != nil {
		return "", "", err
	}
	return raw, HashSessionToken(raw), nil
}

// HashSessionToken returns the deterministic one-way digest of a raw opaque
// token. The same function is used at issuance and at lookup, so stored
// digests are matched by indexed equality.
func HashSessionToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
