package dto

import "github.com/shopspring/decimal"

// ProductRequest entrada para crear o actualizar un producto.
type ProductRequest struct {
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Discount    int             `json:"discount"`
	Stock       int             `json:"stock"`
	Active      *bool           `json:"active,omitempty"`
}

// ProductResponse salida de un producto; EffectivePrice ya trae el descuento aplicado.
type ProductResponse struct {
	ID             string          `json:"id"`
	CategoryID     string          `json:"category_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Image          string          `json:"image"`
	Price          decimal.Decimal `json:"price"`
	Discount       int             `json:"discount"`
	Stock          int             `json:"stock"`
	Active         bool            `json:"active"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
}
