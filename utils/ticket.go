package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TicketCodePrefix is the fixed prefix of every human-readable ticket code.
const TicketCodePrefix = "PV-"

// ticketCodeBytes yields 10 hex characters after the prefix.
const ticketCodeBytes = 5

// GenerateTicketCode returns a new human ticket code: fixed prefix plus
// random hex, e.g. "PV-3FA29C01BD".
func GenerateTicketCode() (string, error) {
	buf := make([]byte, ticketCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate ticket code: %w", err)
	}
	return TicketCodePrefix + hex.EncodeToString(buf), nil
}
