package entity

import "time"

// Category representa una categoría del catálogo.
// NumberOfProducts es derivado (conteo de productos que la referencian), no se persiste.
type Category struct {
	ID               string
	Name             string
	Description      string
	Active           bool
	NumberOfProducts int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasProducts informa si la categoría está referenciada por algún producto.
func (c *Category) HasProducts() bool {
	return c.NumberOfProducts > 0
}
