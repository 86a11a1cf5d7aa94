// Package validation reúne los campos editables del catálogo y sus reglas en orden
// fijo. La usan la API antes de persistir y la consola antes de enviar.
package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
	"github.com/jhoicas/supermarket-console/internal/domain"
	"github.com/jhoicas/supermarket-console/internal/domain/catalog"
)

// Mensajes de validación mostrados en el banner del formulario.
const (
	MsgNameRequired        = "El nombre es requerido"
	MsgDescriptionRequired = "La descripción es requerida"
	MsgCategoryRequired    = "La categoría es requerida"
	MsgImageRequired       = "La URL de la imagen es requerida"
	MsgCategoryPattern     = "Solo se permiten letras, números, espacios, apostrofes y guiones"
	MsgProductNamePattern  = "El nombre solo puede contener letras, números, espacios, apostrofes y guiones"
	MsgPriceRange          = "El precio debe ser mayor a 0"
	MsgDiscountRange       = "El descuento debe estar entre 0 y 100"
	MsgStockRange          = "El stock no puede ser negativo"
)

// FieldError error de validación de un campo.
type FieldError struct {
	Field   string
	Message string
}

// Result resultado de validar un formulario. La validación corta en el primer
// fallo, por lo que Errors tiene a lo sumo un elemento.
type Result struct {
	Errors []FieldError
}

// OK informa si no hubo errores.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Message devuelve el primer mensaje o "".
func (r Result) Message() string {
	if r.OK() {
		return ""
	}
	return r.Errors[0].Message
}

// Err convierte el resultado en un error de dominio (nil si OK).
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, r.Message())
}

func fail(field, msg string) Result {
	return Result{Errors: []FieldError{{Field: field, Message: msg}}}
}

// CategoryFields campos editables de una categoría.
type CategoryFields struct {
	Name        string
	Description string
	Active      bool
}

// CategoryFieldsFrom campos iniciales del formulario: vacíos y activos en alta.
func CategoryFieldsFrom(item *dto.CategoryResponse) CategoryFields {
	if item == nil {
		return CategoryFields{Active: true}
	}
	return CategoryFields{Name: item.Name, Description: item.Description, Active: item.Active}
}

// Request arma el cuerpo que se envía a la API.
func (f CategoryFields) Request() dto.CategoryRequest {
	active := f.Active
	return dto.CategoryRequest{Name: f.Name, Description: f.Description, Active: &active}
}

// ValidateCategory orden fijo: requeridos → patrón.
func ValidateCategory(f CategoryFields) Result {
	switch {
	case catalog.Blank(f.Name):
		return fail("name", MsgNameRequired)
	case catalog.Blank(f.Description):
		return fail("description", MsgDescriptionRequired)
	case !catalog.ValidName(f.Name):
		return fail("name", MsgCategoryPattern)
	case !catalog.ValidName(f.Description):
		return fail("description", MsgCategoryPattern)
	}
	return Result{}
}

// ProductFields campos editables de un producto.
type ProductFields struct {
	CategoryID  string
	Name        string
	Description string
	Image       string
	Price       decimal.Decimal
	Discount    int
	Stock       int
	Active      bool
}

// ProductFieldsFrom campos iniciales del formulario.
func ProductFieldsFrom(item *dto.ProductResponse) ProductFields {
	if item == nil {
		return ProductFields{Active: true}
	}
	return ProductFields{
		CategoryID:  item.CategoryID,
		Name:        item.Name,
		Description: item.Description,
		Image:       item.Image,
		Price:       item.Price,
		Discount:    item.Discount,
		Stock:       item.Stock,
		Active:      item.Active,
	}
}

// Request arma el cuerpo que se envía a la API.
func (f ProductFields) Request() dto.ProductRequest {
	active := f.Active
	return dto.ProductRequest{
		CategoryID:  f.CategoryID,
		Name:        f.Name,
		Description: f.Description,
		Image:       f.Image,
		Price:       f.Price,
		Discount:    f.Discount,
		Stock:       f.Stock,
		Active:      &active,
	}
}

// EffectivePrice vista previa del precio con descuento.
func (f ProductFields) EffectivePrice() decimal.Decimal {
	return catalog.EffectivePrice(f.Price, f.Discount)
}

// ValidateProduct orden fijo: requeridos → patrón → rangos numéricos.
func ValidateProduct(f ProductFields) Result {
	switch {
	case catalog.Blank(f.CategoryID):
		return fail("category_id", MsgCategoryRequired)
	case catalog.Blank(f.Name):
		return fail("name", MsgNameRequired)
	case catalog.Blank(f.Description):
		return fail("description", MsgDescriptionRequired)
	case catalog.Blank(f.Image):
		return fail("image", MsgImageRequired)
	case !catalog.ValidName(f.Name):
		return fail("name", MsgProductNamePattern)
	case !catalog.ValidPrice(f.Price):
		return fail("price", MsgPriceRange)
	case !catalog.ValidDiscount(f.Discount):
		return fail("discount", MsgDiscountRange)
	case !catalog.ValidStock(f.Stock):
		return fail("stock", MsgStockRange)
	}
	return Result{}
}

// CategoryFromRequest convierte el cuerpo recibido por la API a campos validables.
func CategoryFromRequest(in dto.CategoryRequest) CategoryFields {
	f := CategoryFields{Name: in.Name, Description: in.Description, Active: true}
	if in.Active != nil {
		f.Active = *in.Active
	}
	return f
}

// ProductFromRequest convierte el cuerpo recibido por la API a campos validables.
func ProductFromRequest(in dto.ProductRequest) ProductFields {
	f := ProductFields{
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		Discount:    in.Discount,
		Stock:       in.Stock,
		Active:      true,
	}
	if in.Active != nil {
		f.Active = *in.Active
	}
	return f
}
