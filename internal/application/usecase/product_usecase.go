package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
	"github.com/jhoicas/supermarket-console/internal/application/validation"
	"github.com/jhoicas/supermarket-console/internal/domain"
	"github.com/jhoicas/supermarket-console/internal/domain/entity"
	"github.com/jhoicas/supermarket-console/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Toda escritura verifica
// que la categoría referenciada exista.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categories repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categories: categories}
}

// Create valida y crea un producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.ProductRequest) (*dto.ProductResponse, error) {
	fields := validation.ProductFromRequest(in)
	if err := validation.ValidateProduct(fields).Err(); err != nil {
		return nil, err
	}
	if err := uc.ensureCategory(ctx, fields.CategoryID); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		CreatedAt: now,
	}
	apply(product, fields, now)
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update reemplaza los campos editables; Active nil conserva el estado actual.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.ProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Active == nil {
		active := product.Active
		in.Active = &active
	}
	fields := validation.ProductFromRequest(in)
	if err := validation.ValidateProduct(fields).Err(); err != nil {
		return nil, err
	}
	if fields.CategoryID != product.CategoryID {
		if err := uc.ensureCategory(ctx, fields.CategoryID); err != nil {
			return nil, err
		}
	}
	apply(product, fields, time.Now())
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista todos los productos ordenados por nombre.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

// Deactivate baja lógica de un producto.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.SetActive(ctx, id, false)
}

// Delete elimina un producto por ID.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *ProductUseCase) ensureCategory(ctx context.Context, id string) error {
	category, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func apply(p *entity.Product, f validation.ProductFields, now time.Time) {
	p.CategoryID = f.CategoryID
	p.Name = f.Name
	p.Description = f.Description
	p.Image = f.Image
	p.Price = f.Price
	p.Discount = f.Discount
	p.Stock = f.Stock
	p.Active = f.Active
	p.UpdatedAt = now
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:             p.ID,
		CategoryID:     p.CategoryID,
		Name:           p.Name,
		Description:    p.Description,
		Image:          p.Image,
		Price:          p.Price,
		Discount:       p.Discount,
		Stock:          p.Stock,
		Active:         p.Active,
		EffectivePrice: p.EffectivePrice(),
	}
}
