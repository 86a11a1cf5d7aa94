package dto

// CategoryRequest entrada para crear o actualizar una categoría.
// Active nil se interpreta como true (alta) o "sin cambio" (edición).
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active,omitempty"`
}

// CategoryResponse salida de una categoría con el conteo de productos asociados.
type CategoryResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Active           bool   `json:"active"`
	NumberOfProducts int    `json:"number_of_products"`
}
