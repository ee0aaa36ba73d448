package projects

import (
	"crypto/rand"
	"fmt"
)

// idAlphabet is lowercase base32 without the lookalikes i/l/o/u, so ids
// stay readable when they show up in route paths and logs.
const idAlphabet = "0123456789abcdefghjkmnpqrstvwxyz"

const idLength = 10

// NewPublicID generates a project id of the form "proj_x7k2m9q4ve".
// Collisions are possible in principle; the Postgres Repo retries on its
// unique constraint, the in-memory store does not check for them.
func NewPublicID(prefix string) (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	for i := range b {
		b[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}
	return prefix + "_" + string(b), nil
}
