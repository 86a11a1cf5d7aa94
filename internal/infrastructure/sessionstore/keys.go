// Package sessionstore persiste la sesión de la consola: archivo local, Redis o memoria.
// Las tres implementaciones guardan las mismas dos llaves, authToken y userInfo.
package sessionstore

import (
	"encoding/json"
	"fmt"

	"github.com/jhoicas/supermarket-console/internal/application/session"
)

// Llaves persistidas.
const (
	KeyToken = "authToken"
	KeyUser  = "userInfo"
)

func encodeUser(u *session.Identity) (string, error) {
	if u == nil {
		return "", nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("serializar userInfo: %w", err)
	}
	return string(b), nil
}

func decodeUser(s string) (*session.Identity, error) {
	if s == "" {
		return nil, nil
	}
	var u session.Identity
	if err := json.Unmarshal([]byte(s), &u); err != nil {
		return nil, fmt.Errorf("leer userInfo: %w", err)
	}
	return &u, nil
}
