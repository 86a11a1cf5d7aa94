// Package session guarda el token bearer y la identidad del usuario de la consola,
// decide si la sesión sigue vigente y la cierra ante un 401 o un logout.
package session

import (
	"context"
	"errors"
	"strings"
)

// LoginRoute ruta a la que se envía al usuario al cerrar la sesión.
const LoginRoute = "/login"

// ErrInvalid la sesión no tiene token o el token expiró.
var ErrInvalid = errors.New("sesión inválida o expirada")

// Identity datos del usuario persistidos junto al token (llave userInfo).
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Role      string `json:"role"`
}

// FullName "Nombre Apellido" sin espacios sobrantes.
func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// State token + identidad. Se guardan y borran siempre juntos.
type State struct {
	Token string
	User  *Identity
}

// Empty sin token.
func (s State) Empty() bool { return s.Token == "" }

// Store persistencia de la sesión (archivo, Redis o memoria).
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
	Clear(ctx context.Context) error
}

// Navigator cambia la ruta visible de la consola.
type Navigator interface {
	Current() string
	Navigate(route string)
}
