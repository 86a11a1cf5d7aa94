package dto

// ErrorResponse cuerpo de error HTTP. La consola muestra Message al usuario.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse cuerpo de respuestas sin entidad (ej. DELETE).
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
