package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
)

// AuthClient endpoints públicos de autenticación (no requieren token).
type AuthClient struct {
	c *Client
}

// NewAuthClient construye el cliente de auth.
func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

// Login POST /login. Un 401 aquí son credenciales inválidas, no una sesión expirada.
func (a *AuthClient) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	p, err := a.c.do(ctx, http.MethodPost, "/login", dto.LoginRequest{Email: email, Password: password}, false)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Kind == KindUnauthenticated {
			return nil, &APIError{Kind: apiErr.Kind, Status: apiErr.Status, Message: MsgBadCredentials}
		}
		return nil, err
	}
	var out dto.LoginResponse
	if err := p.Decode(&out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("la respuesta de login no incluye token")
	}
	return &out, nil
}

// Signup POST /users.
func (a *AuthClient) Signup(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	p, err := a.c.do(ctx, http.MethodPost, "/users", in, false)
	if err != nil {
		return nil, err
	}
	return decodeOne[dto.UserResponse](p)
}

// Me GET /me con el token de la sesión.
func (a *AuthClient) Me(ctx context.Context) (*dto.UserResponse, error) {
	p, err := a.c.do(ctx, http.MethodGet, "/me", nil, true)
	if err != nil {
		return nil, err
	}
	return decodeOne[dto.UserResponse](p)
}
