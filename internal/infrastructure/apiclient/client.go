// Package apiclient habla con la API de catálogo: normaliza respuestas y expone
// clientes tipados por recurso.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/supermarket-console/pkg/logger"
)

// maxBody límite de lectura del cuerpo de respuesta.
const maxBody = 1 << 20

// SessionContext lo que el cliente necesita de la sesión: leer el token y
// reaccionar a un 401.
type SessionContext interface {
	Token(ctx context.Context) string
	Expire(ctx context.Context)
}

// Client cliente HTTP base. Todas las llamadas pasan por do.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    SessionContext
	log        *logger.Logger
}

// Option configura el Client.
type Option func(*Client)

// WithHTTPClient reemplaza el http.Client (tests, transportes propios).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout timeout de red por petición.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger logger para las llamadas fallidas.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New construye el cliente. baseURL sin barra final.
func New(baseURL string, session SessionContext, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		session:    session,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do envía la petición y normaliza la respuesta. Con authenticated=true exige token
// (si falta devuelve ErrMissingToken sin enviar nada) y ante un 401 invoca
// session.Expire antes de devolver el error.
func (c *Client) do(ctx context.Context, method, path string, in any, authenticated bool) (*Payload, error) {
	var token string
	if authenticated {
		token = c.session.Token(ctx)
		if token == "" {
			return nil, ErrMissingToken
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("serializar request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("llamada HTTP fallida")
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %v", ErrNetwork, err)
	}

	payload, err := Normalize(resp.StatusCode, statusText(resp), raw)
	if err != nil {
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("kind", KindOf(err).String()).
			Msg("respuesta de error de la API")
		if authenticated && IsUnauthenticated(err) {
			c.session.Expire(ctx)
		}
		return nil, err
	}
	return payload, nil
}

// statusText "404 Not Found" → "Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	text = strings.TrimSpace(text)
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}
