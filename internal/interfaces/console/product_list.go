package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
	"github.com/jhoicas/supermarket-console/internal/application/form"
	"github.com/jhoicas/supermarket-console/internal/application/session"
	"github.com/jhoicas/supermarket-console/internal/domain/catalog"
)

// Mensajes de la vista de productos.
const (
	MsgProductCreated     = "Producto creado exitosamente"
	MsgProductUpdated     = "Producto actualizado exitosamente"
	MsgProductDeactivated = "Producto desactivado exitosamente"
	MsgProductsLoadError  = "Error al cargar los productos"
	MsgNoProducts         = "No hay productos registrados"
)

// ProductService cliente de productos que usa la vista.
type ProductService interface {
	form.ProductAPI
	GetAll(ctx context.Context) ([]dto.ProductResponse, error)
	Deactivate(ctx context.Context, id string) error
}

// CategoryLister categorías para el selector del formulario y los nombres de la tabla.
type CategoryLister interface {
	GetAll(ctx context.Context) ([]dto.CategoryResponse, error)
}

// ProductRow fila de la tabla de productos.
type ProductRow struct {
	ID             string
	Name           string
	Category       string // nombre de la categoría, o su id si no está cargada
	Price          decimal.Decimal
	Discount       int
	EffectivePrice decimal.Decimal
	Stock          int
	Status         string
	Active         bool
	Highlighted    bool
}

// ProductListView listado de productos con alta, edición y desactivación.
type ProductListView struct {
	view
	api        ProductService
	categories CategoryLister

	itemsMu sync.Mutex
	items   []dto.ProductResponse
	cats    []dto.CategoryResponse
	form    *form.ProductForm
}

// NewProductListView crea la vista sin montar.
func NewProductListView(api ProductService, categories CategoryLister, guard Guard, confirm ConfirmFunc, opts ...ViewOption) *ProductListView {
	v := &ProductListView{view: newView(guard, confirm, opts), api: api, categories: categories}
	v.drop = v.reset
	return v
}

// Mount valida la sesión, arranca la verificación periódica y carga el listado.
func (v *ProductListView) Mount(ctx context.Context) error {
	if err := v.mount(ctx); err != nil {
		return err
	}
	return v.Load(ctx)
}

// Unmount detiene timers y verificación.
func (v *ProductListView) Unmount() { v.unmount() }

// Load recarga productos y luego categorías. Si fallan las categorías los
// productos quedan visibles con el id de categoría.
func (v *ProductListView) Load(ctx context.Context) error {
	if !v.guard.ValidateToken(ctx) {
		v.sessionExpired()
		return session.ErrInvalid
	}
	v.setLoading(true)
	defer v.setLoading(false)
	v.setErr("")

	items, err := v.api.GetAll(ctx)
	if err != nil {
		return v.loadFailed(err, MsgProductsLoadError)
	}
	v.itemsMu.Lock()
	v.items = items
	v.itemsMu.Unlock()

	cats, err := v.categories.GetAll(ctx)
	if err != nil {
		return v.loadFailed(err, MsgCategoriesLoadError)
	}
	v.itemsMu.Lock()
	v.cats = cats
	v.itemsMu.Unlock()
	return nil
}

func (v *ProductListView) loadFailed(err error, fallback string) error {
	if sessionLost(err) {
		v.sessionExpired()
		return err
	}
	v.failed(err, fallback)
	return err
}

func (v *ProductListView) reset() {
	v.itemsMu.Lock()
	v.items, v.cats, v.form = nil, nil, nil
	v.itemsMu.Unlock()
}

// Items copia del listado cargado.
func (v *ProductListView) Items() []dto.ProductResponse {
	v.itemsMu.Lock()
	defer v.itemsMu.Unlock()
	return append([]dto.ProductResponse(nil), v.items...)
}

// Categories categorías disponibles para el selector del formulario.
func (v *ProductListView) Categories() []dto.CategoryResponse {
	v.itemsMu.Lock()
	defer v.itemsMu.Unlock()
	return append([]dto.CategoryResponse(nil), v.cats...)
}

// Find busca un producto cargado por id.
func (v *ProductListView) Find(id string) (dto.ProductResponse, bool) {
	v.itemsMu.Lock()
	defer v.itemsMu.Unlock()
	for _, p := range v.items {
		if p.ID == id {
			return p, true
		}
	}
	return dto.ProductResponse{}, false
}

// DeactivateConfirmation texto del diálogo de confirmación para item.
func DeactivateConfirmation(item dto.ProductResponse) string {
	return fmt.Sprintf("¿Estás seguro de desactivar el producto \"%s\"?\n\n"+
		"El producto quedará inactivo pero se conservará en el sistema.\n\n¿Deseas continuar?", item.Name)
}

// Delete pide confirmación y desactiva el producto (los productos nunca se borran
// desde la consola).
func (v *ProductListView) Delete(ctx context.Context, item dto.ProductResponse) (bool, error) {
	if !v.guard.ValidateToken(ctx) {
		v.sessionExpired()
		return false, session.ErrInvalid
	}
	if !v.confirm(DeactivateConfirmation(item)) {
		return false, nil
	}
	v.setErr("")

	if err := v.api.Deactivate(ctx, item.ID); err != nil {
		if sessionLost(err) {
			v.sessionExpired()
			return false, err
		}
		v.failed(err, "Error al desactivar el producto")
		return false, err
	}
	if err := v.Load(ctx); sessionGone(err) {
		return true, err
	}
	v.success.Show(MsgProductDeactivated)
	return true, nil
}

// NewForm abre el formulario de alta (item nil) o edición.
func (v *ProductListView) NewForm(ctx context.Context, item *dto.ProductResponse) *form.ProductForm {
	f := form.NewProductForm(v.api, v.guard, item,
		func(saved dto.ProductResponse, edited bool) { v.HandleFormSuccess(ctx, saved, edited) },
		v.closeForm,
	).OnSessionLost(sessionLost, v.sessionExpired)
	v.itemsMu.Lock()
	v.form = f
	v.itemsMu.Unlock()
	return f
}

// Form formulario abierto o nil.
func (v *ProductListView) Form() *form.ProductForm {
	v.itemsMu.Lock()
	defer v.itemsMu.Unlock()
	return v.form
}

func (v *ProductListView) closeForm() {
	v.itemsMu.Lock()
	v.form = nil
	v.itemsMu.Unlock()
}

// HandleFormSuccess recarga tras la mutación, resalta la fila y muestra el banner.
func (v *ProductListView) HandleFormSuccess(ctx context.Context, saved dto.ProductResponse, edited bool) {
	if err := v.Load(ctx); sessionGone(err) {
		return
	}
	v.highlight.Show(saved.ID)
	if edited {
		v.success.Show(MsgProductUpdated)
	} else {
		v.success.Show(MsgProductCreated)
	}
	v.closeForm()
	v.setErr("")
}

// Rows instantánea de la tabla. El precio final se calcula localmente para que
// coincida con la vista previa del formulario.
func (v *ProductListView) Rows() []ProductRow {
	highlighted := v.Highlighted()
	v.itemsMu.Lock()
	names := make(map[string]string, len(v.cats))
	for _, c := range v.cats {
		names[c.ID] = c.Name
	}
	items := append([]dto.ProductResponse(nil), v.items...)
	v.itemsMu.Unlock()

	rows := make([]ProductRow, 0, len(items))
	for _, p := range items {
		category := names[p.CategoryID]
		if category == "" {
			category = p.CategoryID
		}
		rows = append(rows, ProductRow{
			ID:             p.ID,
			Name:           p.Name,
			Category:       category,
			Price:          p.Price,
			Discount:       p.Discount,
			EffectivePrice: catalog.EffectivePrice(p.Price, p.Discount),
			Stock:          p.Stock,
			Status:         catalog.StatusLabel(p.Active),
			Active:         p.Active,
			Highlighted:    highlighted != "" && highlighted == p.ID,
		})
	}
	return rows
}
