package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind clasifica una respuesta fallida por status HTTP.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindServer
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server_error"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Mensajes mostrados al usuario por tipo de fallo.
const (
	MsgBadRequest      = "Solicitud incorrecta. Verifica los datos enviados."
	MsgSessionExpired  = "Tu sesión ha expirado. Por favor, inicia sesión nuevamente."
	MsgForbidden       = "No tienes permisos para realizar esta acción."
	MsgNotFound        = "El recurso solicitado no fue encontrado."
	MsgConflict        = "Conflicto: el recurso ya existe."
	MsgServer          = "Error interno del servidor. Intenta nuevamente más tarde."
	MsgNetwork         = "No se pudo conectar con el servidor."
	MsgMissingToken    = "No hay una sesión activa. Inicia sesión para continuar."
	MsgBadCredentials  = "Correo o contraseña incorrectos."
	unexpectedTemplate = "Error %d: %s"
)

var (
	// ErrNetwork la petición no obtuvo respuesta (DNS, conexión rechazada, timeout).
	ErrNetwork = errors.New(MsgNetwork)
	// ErrMissingToken llamada autenticada sin token; no se envía nada.
	ErrMissingToken = errors.New(MsgMissingToken)
)

// APIError respuesta no exitosa ya clasificada. Message es apto para mostrar al usuario.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// KindOf devuelve el Kind de err o 0 si no es un *APIError.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsUnauthenticated informa si err es un 401 de la API.
func IsUnauthenticated(err error) bool {
	return KindOf(err) == KindUnauthenticated
}

// Payload cuerpo de una respuesta exitosa: JSON, texto plano o nulo.
type Payload struct {
	raw    []byte
	parsed any
	isJSON bool
}

// IsNull cuerpo vacío o JSON null.
func (p *Payload) IsNull() bool {
	if p.isJSON {
		return p.parsed == nil
	}
	return len(p.raw) == 0
}

// IsJSON el cuerpo era JSON válido.
func (p *Payload) IsJSON() bool { return p.isJSON }

// Text cuerpo crudo como texto.
func (p *Payload) Text() string { return string(p.raw) }

// Decode vuelca el JSON en v. Un cuerpo nulo deja v intacto.
func (p *Payload) Decode(v any) error {
	if p.IsNull() {
		return nil
	}
	if !p.isJSON {
		return fmt.Errorf("respuesta no es JSON: %q", truncate(p.Text(), 80))
	}
	return json.Unmarshal(p.raw, v)
}

// Normalize convierte status y cuerpo en Payload (2xx) o *APIError. Es pura: no toca
// la sesión ni navega; el efecto del 401 lo aplica el Client.
func Normalize(status int, statusText string, body []byte) (*Payload, error) {
	p := parse(body)
	if status >= 200 && status < 300 {
		return p, nil
	}
	msg := p.message()
	e := &APIError{Status: status}
	switch status {
	case http.StatusBadRequest:
		e.Kind, e.Message = KindBadRequest, orDefault(msg, MsgBadRequest)
	case http.StatusUnauthorized:
		e.Kind, e.Message = KindUnauthenticated, MsgSessionExpired
	case http.StatusForbidden:
		e.Kind, e.Message = KindForbidden, MsgForbidden
	case http.StatusNotFound:
		e.Kind, e.Message = KindNotFound, MsgNotFound
	case http.StatusConflict:
		e.Kind, e.Message = KindConflict, orDefault(msg, MsgConflict)
	case http.StatusInternalServerError:
		e.Kind, e.Message = KindServer, MsgServer
	default:
		if statusText == "" {
			statusText = http.StatusText(status)
		}
		e.Kind, e.Message = KindUnexpected, orDefault(msg, fmt.Sprintf(unexpectedTemplate, status, statusText))
	}
	return nil, e
}

// parse intenta JSON una sola vez; si falla conserva el texto.
func parse(body []byte) *Payload {
	p := &Payload{raw: body}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		p.raw = nil
		return p
	}
	if err := json.Unmarshal(trimmed, &p.parsed); err == nil {
		p.isJSON = true
	}
	return p
}

// message lee "message" o "detail" (string) de un objeto JSON.
func (p *Payload) message() string {
	obj, ok := p.parsed.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"message", "detail"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
