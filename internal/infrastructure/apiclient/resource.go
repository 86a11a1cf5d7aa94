package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
)

// Resource cliente CRUD tipado sobre /<path>. Las reglas de los campos las aplica
// quien llama (formularios), no el cliente. Sin reintentos.
type Resource[Req any, Res any] struct {
	c    *Client
	path string
}

// CategoryClient cliente de /categories.
type CategoryClient = Resource[dto.CategoryRequest, dto.CategoryResponse]

// ProductClient cliente de /products.
type ProductClient = Resource[dto.ProductRequest, dto.ProductResponse]

// NewCategoryClient construye el cliente de categorías.
func NewCategoryClient(c *Client) *CategoryClient {
	return &CategoryClient{c: c, path: "/categories"}
}

// NewProductClient construye el cliente de productos.
func NewProductClient(c *Client) *ProductClient {
	return &ProductClient{c: c, path: "/products"}
}

// GetAll lista el recurso. Un cuerpo nulo se devuelve como slice vacío.
func (r *Resource[Req, Res]) GetAll(ctx context.Context) ([]Res, error) {
	p, err := r.c.do(ctx, http.MethodGet, r.path, nil, true)
	if err != nil {
		return nil, err
	}
	out := []Res{}
	if err := p.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Res{}
	}
	return out, nil
}

// GetByID obtiene un elemento; nil si la API responde sin cuerpo.
func (r *Resource[Req, Res]) GetByID(ctx context.Context, id string) (*Res, error) {
	p, err := r.c.do(ctx, http.MethodGet, r.item(id), nil, true)
	if err != nil {
		return nil, err
	}
	return decodeOne[Res](p)
}

// Create crea un elemento. nil, nil si la API responde sin cuerpo.
func (r *Resource[Req, Res]) Create(ctx context.Context, in Req) (*Res, error) {
	p, err := r.c.do(ctx, http.MethodPost, r.path, in, true)
	if err != nil {
		return nil, err
	}
	return decodeOne[Res](p)
}

// Update reemplaza un elemento. nil, nil si la API responde sin cuerpo.
func (r *Resource[Req, Res]) Update(ctx context.Context, id string, in Req) (*Res, error) {
	p, err := r.c.do(ctx, http.MethodPut, r.item(id), in, true)
	if err != nil {
		return nil, err
	}
	return decodeOne[Res](p)
}

// Deactivate baja lógica: DELETE ?mode=soft.
func (r *Resource[Req, Res]) Deactivate(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.item(id)+"?mode=soft", nil, true)
	return err
}

// Delete baja física.
func (r *Resource[Req, Res]) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.item(id), nil, true)
	return err
}

func (r *Resource[Req, Res]) item(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func decodeOne[T any](p *Payload) (*T, error) {
	if p.IsNull() || !p.IsJSON() {
		return nil, nil
	}
	var out T
	if err := p.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
