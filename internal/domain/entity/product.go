package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/supermarket-console/internal/domain/catalog"
)

// Product representa un producto del catálogo. Referencia exactamente una Category.
// Discount es un porcentaje entero en [0,100]; Stock nunca es negativo.
type Product struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	Image       string // URL de la imagen
	Price       decimal.Decimal
	Discount    int
	Stock       int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EffectivePrice precio con descuento aplicado, redondeado a 2 decimales.
func (p *Product) EffectivePrice() decimal.Decimal {
	return catalog.EffectivePrice(p.Price, p.Discount)
}
