package models

import (
	"encoding/hex"
	"fmt"
)

// Credential is the salt/verifier pair derived from an account secret.
type Credential struct {
	Salt     []byte
	Verifier []byte
}

// Encode returns the hex encoded salt and verifier, the form they are persisted in.
func (c Credential) Encode() (saltHex, verifierHex string) {
	return hex.EncodeToString(c.Salt), hex.EncodeToString(c.Verifier)
}

// DecodeCredential parses a persisted hex salt/verifier pair.
func DecodeCredential(saltHex, verifierHex string) (Credential, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return Credential{}, fmt.Errorf("invalid salt hex format: %w", err)
	}
	verifier, err := hex.DecodeString(verifierHex)
	if err != nil {
		return Credential{}, fmt.Errorf("invalid verifier hex format: %w", err)
	}
	return Credential{Salt: salt, Verifier: verifier}, nil
}
