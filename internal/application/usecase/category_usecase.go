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

// CategoryUseCase casos de uso CRUD para categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
	tx   repository.TxRunner
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, tx repository.TxRunner) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, tx: tx}
}

// Create valida y crea una categoría. Nombre repetido → ErrDuplicate.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	fields := validation.CategoryFromRequest(in)
	if err := validation.ValidateCategory(fields).Err(); err != nil {
		return nil, err
	}
	now := time.Now()
	category := &entity.Category{
		ID:          uuid.New().String(),
		Name:        fields.Name,
		Description: fields.Description,
		Active:      fields.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// GetByID obtiene una categoría con su conteo de productos.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(category), nil
}

// Update reemplaza nombre y descripción; Active nil conserva el estado actual.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	if in.Active == nil {
		active := category.Active
		in.Active = &active
	}
	fields := validation.CategoryFromRequest(in)
	if err := validation.ValidateCategory(fields).Err(); err != nil {
		return nil, err
	}
	category.Name = fields.Name
	category.Description = fields.Description
	category.Active = fields.Active
	category.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// List lista todas las categorías ordenadas por nombre.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCategoryResponse(c))
	}
	return items, nil
}

// Deactivate baja lógica: la fila se conserva con active=false.
func (uc *CategoryUseCase) Deactivate(ctx context.Context, id string) error {
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrNotFound
	}
	return uc.repo.SetActive(ctx, id, false)
}

// Delete baja física. Rechaza con ErrCategoryInUse si aún tiene productos;
// conteo y borrado ocurren en la misma transacción.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	return uc.tx.RunCatalog(ctx, func(categories repository.CategoryRepository, _ repository.ProductRepository) error {
		category, err := categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if category == nil {
			return domain.ErrNotFound
		}
		n, err := categories.CountProducts(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrCategoryInUse
		}
		return categories.Delete(ctx, id)
	})
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		ID:               c.ID,
		Name:             c.Name,
		Description:      c.Description,
		Active:           c.Active,
		NumberOfProducts: c.NumberOfProducts,
	}
}
