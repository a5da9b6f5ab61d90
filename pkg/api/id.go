package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	draftIDPrefix = "draft_"
)

var draftIDPattern = regexp.MustCompile(`^draft_[a-zA-Z0-9]{24}$`)

// NewDraftID generates a new draft ID with the "draft_" prefix followed by
// 24 cryptographically random alphanumeric characters.
func NewDraftID() string {
	return draftIDPrefix + randomAlphanumeric(idLength)
}

// ValidateDraftID checks whether the given string is a valid draft ID
// (matches "draft_" + 24 alphanumeric characters).
func ValidateDraftID(id string) bool {
	return draftIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
