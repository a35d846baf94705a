package ids

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

// GenerateRoomCode - generates a 6 character invite code from [A-Z0-9].
func GenerateRoomCode() (string, error) {
	alphabetSize := big.NewInt(int64(len(entity.RoomCodeAlphabet)))

	code := make([]byte, entity.RoomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}
		code[i] = entity.RoomCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}

// NewPlayerID - generates a stable identifier for a browser that has none yet.
func NewPlayerID() string {
	return uuid.NewString()
}
