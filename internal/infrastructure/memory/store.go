// Package memory implementa los puertos de repositorio en memoria.
// Lo usa la API con DB_DRIVER=memory (desarrollo sin PostgreSQL) y los tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/supermarket-console/internal/domain"
	"github.com/jhoicas/supermarket-console/internal/domain/entity"
	"github.com/jhoicas/supermarket-console/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.TxRunner           = (*Store)(nil)
)

// Store guarda todas las tablas tras un único mutex.
type Store struct {
	mu         sync.Mutex
	categories map[string]entity.Category
	products   map[string]entity.Product
	users      map[string]entity.User
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		categories: make(map[string]entity.Category),
		products:   make(map[string]entity.Product),
		users:      make(map[string]entity.User),
	}
}

// Categories repositorio de categorías sobre el almacén.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Products repositorio de productos sobre el almacén.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Users repositorio de usuarios sobre el almacén.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// RunCatalog ejecuta fn con el almacén bloqueado; los repos que recibe no vuelven a bloquear.
// No hay rollback: fn debe validar antes de escribir.
func (s *Store) RunCatalog(ctx context.Context, fn func(categories repository.CategoryRepository, products repository.ProductRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&CategoryRepo{s: s, inTx: true}, &ProductRepo{s: s, inTx: true})
}

func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) countProducts(categoryID string) int {
	n := 0
	for _, p := range s.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n
}

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	s    *Store
	inTx bool
}

// Create persiste una categoría; nombre repetido → ErrDuplicate.
func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	defer r.s.lock(r.inTx)()
	for _, existing := range r.s.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	r.s.categories[c.ID] = *c
	return nil
}

// GetByID nil, nil si no existe.
func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	defer r.s.lock(r.inTx)()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	c.NumberOfProducts = r.s.countProducts(id)
	return &c, nil
}

// Update reemplaza la fila.
func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.categories[c.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, existing := range r.s.categories {
		if id != c.ID && strings.EqualFold(existing.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	r.s.categories[c.ID] = *c
	return nil
}

// SetActive cambia solo el flag active.
func (r *CategoryRepo) SetActive(_ context.Context, id string, active bool) error {
	defer r.s.lock(r.inTx)()
	c, ok := r.s.categories[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Active = active
	r.s.categories[id] = c
	return nil
}

// List ordenado por nombre.
func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.Category, 0, len(r.s.categories))
	for id, c := range r.s.categories {
		c.NumberOfProducts = r.s.countProducts(id)
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// CountProducts productos que referencian la categoría.
func (r *CategoryRepo) CountProducts(_ context.Context, id string) (int, error) {
	defer r.s.lock(r.inTx)()
	return r.s.countProducts(id), nil
}

// Delete igual que la llave foránea RESTRICT de PostgreSQL.
func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	if r.s.countProducts(id) > 0 {
		return domain.ErrCategoryInUse
	}
	delete(r.s.categories, id)
	return nil
}

// ProductRepo productos en memoria.
type ProductRepo struct {
	s    *Store
	inTx bool
}

// Create persiste un producto; la categoría debe existir.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.categories[p.CategoryID]; !ok {
		return domain.ErrCategoryNotFound
	}
	r.s.products[p.ID] = *p
	return nil
}

// GetByID nil, nil si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Update reemplaza la fila.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.categories[p.CategoryID]; !ok {
		return domain.ErrCategoryNotFound
	}
	r.s.products[p.ID] = *p
	return nil
}

// SetActive cambia solo el flag active.
func (r *ProductRepo) SetActive(_ context.Context, id string, active bool) error {
	defer r.s.lock(r.inTx)()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = active
	r.s.products[id] = p
	return nil
}

// List ordenado por nombre.
func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Delete elimina un producto.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

// UserRepo usuarios en memoria.
type UserRepo struct {
	s *Store
}

// Create persiste un usuario; email repetido → ErrEmailAlreadyExists.
func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.s.lock(false)()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

// FindByID nil, nil si no existe.
func (r *UserRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	defer r.s.lock(false)()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// FindByEmail nil, nil si no existe.
func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	defer r.s.lock(false)()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

// Count total de usuarios.
func (r *UserRepo) Count(_ context.Context) (int, error) {
	defer r.s.lock(false)()
	return len(r.s.users), nil
}
