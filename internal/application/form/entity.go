package form

import (
	"context"
	"strconv"
	"time"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
	"github.com/jhoicas/supermarket-console/internal/application/validation"
	"github.com/jhoicas/supermarket-console/internal/domain/catalog"
)

// CategoryForm formulario de categoría.
type CategoryForm = Form[validation.CategoryFields, dto.CategoryResponse]

// ProductForm formulario de producto.
type ProductForm = Form[validation.ProductFields, dto.ProductResponse]

// CategoryAPI lo que el formulario de categoría necesita del cliente.
type CategoryAPI interface {
	Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error)
}

// ProductAPI lo que el formulario de producto necesita del cliente.
type ProductAPI interface {
	Create(ctx context.Context, in dto.ProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, id string, in dto.ProductRequest) (*dto.ProductResponse, error)
}

// tempID id provisional cuando el alta responde sin cuerpo.
func tempID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// NewCategoryForm formulario de alta (item nil) o edición de categoría.
func NewCategoryForm(api CategoryAPI, sess SessionChecker, item *dto.CategoryResponse,
	onSuccess func(dto.CategoryResponse, bool), onCancel func()) *CategoryForm {
	return New(Config[validation.CategoryFields, dto.CategoryResponse]{
		Fields:   validation.CategoryFieldsFrom(item),
		Original: item,
		Validate: validation.ValidateCategory,
		Create: func(ctx context.Context, f validation.CategoryFields) (*dto.CategoryResponse, error) {
			return api.Create(ctx, f.Request())
		},
		Update: func(ctx context.Context, orig dto.CategoryResponse, f validation.CategoryFields) (*dto.CategoryResponse, error) {
			return api.Update(ctx, orig.ID, f.Request())
		},
		Fallback: func(orig *dto.CategoryResponse, f validation.CategoryFields) dto.CategoryResponse {
			out := dto.CategoryResponse{ID: tempID()}
			if orig != nil {
				out = *orig
			}
			out.Name, out.Description, out.Active = f.Name, f.Description, f.Active
			return out
		},
		Session:   sess,
		OnSuccess: onSuccess,
		OnCancel:  onCancel,
	})
}

// NewProductForm formulario de alta (item nil) o edición de producto.
func NewProductForm(api ProductAPI, sess SessionChecker, item *dto.ProductResponse,
	onSuccess func(dto.ProductResponse, bool), onCancel func()) *ProductForm {
	return New(Config[validation.ProductFields, dto.ProductResponse]{
		Fields:   validation.ProductFieldsFrom(item),
		Original: item,
		Validate: validation.ValidateProduct,
		Create: func(ctx context.Context, f validation.ProductFields) (*dto.ProductResponse, error) {
			return api.Create(ctx, f.Request())
		},
		Update: func(ctx context.Context, orig dto.ProductResponse, f validation.ProductFields) (*dto.ProductResponse, error) {
			return api.Update(ctx, orig.ID, f.Request())
		},
		Fallback: func(orig *dto.ProductResponse, f validation.ProductFields) dto.ProductResponse {
			out := dto.ProductResponse{ID: tempID()}
			if orig != nil {
				out = *orig
			}
			out.CategoryID, out.Name, out.Description, out.Image = f.CategoryID, f.Name, f.Description, f.Image
			out.Price, out.Discount, out.Stock, out.Active = f.Price, f.Discount, f.Stock, f.Active
			out.EffectivePrice = catalog.EffectivePrice(f.Price, f.Discount)
			return out
		},
		Session:   sess,
		OnSuccess: onSuccess,
		OnCancel:  onCancel,
	})
}
