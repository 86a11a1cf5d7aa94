package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
	"github.com/jhoicas/supermarket-console/internal/application/form"
	"github.com/jhoicas/supermarket-console/internal/application/session"
	"github.com/jhoicas/supermarket-console/internal/domain/catalog"
)

// Mensajes de la vista de categorías.
const (
	MsgCategoryCreated     = "Categoría creada exitosamente"
	MsgCategoryUpdated     = "Categoría actualizada exitosamente"
	MsgCategoryDeactivated = "Categoría desactivada exitosamente"
	MsgCategoryDeleted     = "Categoría eliminada exitosamente"
	MsgCategoriesLoadError = "Error al cargar las categorías"
	MsgNoCategories        = "No hay categorías registradas"
)

// ErrCategoryInactive la categoría ya está desactivada; no hay acción que aplicar.
var ErrCategoryInactive = errors.New("la categoría ya está inactiva")

// Acciones de fila.
const (
	ActionDeactivate = "Desactivar"
	ActionDelete     = "Eliminar"
)

// CategoryService cliente de categorías que usa la vista.
type CategoryService interface {
	form.CategoryAPI
	GetAll(ctx context.Context) ([]dto.CategoryResponse, error)
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// CategoryRow fila de la tabla de categorías.
type CategoryRow struct {
	ID          string
	Name        string
	Description string
	Products    int
	Status      string
	Action      string // "" si la categoría ya está inactiva
	Highlighted bool
}

// CategoryListView listado de categorías con alta, edición y borrado.
type CategoryListView struct {
	view
	api CategoryService

	itemsMu sync.Mutex
	items   []dto.CategoryResponse
	form    *form.CategoryForm
}

// NewCategoryListView crea la vista sin montar.
func NewCategoryListView(api CategoryService, guard Guard, confirm ConfirmFunc, opts ...ViewOption) *CategoryListView {
	v := &CategoryListView{view: newView(guard, confirm, opts), api: api}
	v.drop = v.reset
	return v
}

// Mount valida la sesión, arranca la verificación periódica y carga el listado.
func (v *CategoryListView) Mount(ctx context.Context) error {
	if err := v.mount(ctx); err != nil {
		return err
	}
	return v.Load(ctx)
}

// Unmount detiene timers y verificación. Respuestas tardías ya no cambian los banners.
func (v *CategoryListView) Unmount() { v.unmount() }

// Load recarga el listado. Un error queda en el banner y se devuelve.
func (v *CategoryListView) Load(ctx context.Context) error {
	if !v.guard.ValidateToken(ctx) {
		v.sessionExpired()
		return session.ErrInvalid
	}
	v.setLoading(true)
	defer v.setLoading(false)
	v.setErr("")

	items, err := v.api.GetAll(ctx)
	if err != nil {
		if sessionLost(err) {
			v.sessionExpired()
			return err
		}
		v.failed(err, MsgCategoriesLoadError)
		return err
	}
	v.itemsMu.Lock()
	v.items = items
	v.itemsMu.Unlock()
	return nil
}

// reset descarta filas y formulario.
func (v *CategoryListView) reset() {
	v.itemsMu.Lock()
	v.items, v.form = nil, nil
	v.itemsMu.Unlock()
}

// Items copia del listado cargado.
func (v *CategoryListView) Items() []dto.CategoryResponse {
	v.itemsMu.Lock()
	defer v.itemsMu.Unlock()
	return append([]dto.CategoryResponse(nil), v.items...)
}

// Find busca una categoría cargada por id.
func (v *CategoryListView) Find(id string) (dto.CategoryResponse, bool) {
	v.itemsMu.Lock()
	defer v.itemsMu.Unlock()
	for _, c := range v.items {
		if c.ID == id {
			return c, true
		}
	}
	return dto.CategoryResponse{}, false
}

// DeleteConfirmation texto del diálogo de confirmación para item.
func DeleteConfirmation(item dto.CategoryResponse) string {
	action, consequence := "eliminar", "Esta categoría será eliminada permanentemente del sistema."
	if item.NumberOfProducts > 0 {
		action = "desactivar"
		consequence = fmt.Sprintf("Esta categoría tiene %d producto(s) asociado(s). "+
			"Se desactivará pero se mantendrá la integridad de los datos.", item.NumberOfProducts)
	}
	return fmt.Sprintf("¿Estás seguro de %s la categoría \"%s\"?\n\n%s\n\n¿Deseas continuar?", action, item.Description, consequence)
}

// Delete pide confirmación y borra: con productos asociados solo desactiva.
// Devuelve false si el usuario no confirmó o la sesión no es válida. Una
// categoría inactiva con productos no tiene acción: no se pregunta ni se envía nada.
func (v *CategoryListView) Delete(ctx context.Context, item dto.CategoryResponse) (bool, error) {
	if !v.guard.ValidateToken(ctx) {
		v.sessionExpired()
		return false, session.ErrInvalid
	}
	if !item.Active && item.NumberOfProducts > 0 {
		return false, ErrCategoryInactive
	}
	if !v.confirm(DeleteConfirmation(item)) {
		return false, nil
	}
	v.setErr("")

	hasProducts := item.NumberOfProducts > 0
	var err error
	if hasProducts {
		err = v.api.Deactivate(ctx, item.ID)
	} else {
		err = v.api.Delete(ctx, item.ID)
	}
	if err != nil {
		if sessionLost(err) {
			v.sessionExpired()
			return false, err
		}
		if hasProducts {
			v.failed(err, "Error al desactivar la categoría")
		} else {
			v.failed(err, "Error al eliminar la categoría")
		}
		return false, err
	}

	if err := v.Load(ctx); sessionGone(err) {
		return true, err
	}
	if hasProducts {
		v.success.Show(MsgCategoryDeactivated)
	} else {
		v.success.Show(MsgCategoryDeleted)
	}
	return true, nil
}

// NewForm abre el formulario de alta (item nil) o edición.
func (v *CategoryListView) NewForm(ctx context.Context, item *dto.CategoryResponse) *form.CategoryForm {
	f := form.NewCategoryForm(v.api, v.guard, item,
		func(saved dto.CategoryResponse, edited bool) { v.HandleFormSuccess(ctx, saved, edited) },
		v.closeForm,
	).OnSessionLost(sessionLost, v.sessionExpired)
	v.itemsMu.Lock()
	v.form = f
	v.itemsMu.Unlock()
	return f
}

// Form formulario abierto o nil.
func (v *CategoryListView) Form() *form.CategoryForm {
	v.itemsMu.Lock()
	defer v.itemsMu.Unlock()
	return v.form
}

func (v *CategoryListView) closeForm() {
	v.itemsMu.Lock()
	v.form = nil
	v.itemsMu.Unlock()
}

// HandleFormSuccess recarga (siempre después de la mutación), resalta la fila
// guardada y muestra el banner de éxito.
func (v *CategoryListView) HandleFormSuccess(ctx context.Context, saved dto.CategoryResponse, edited bool) {
	if err := v.Load(ctx); sessionGone(err) {
		return
	}
	v.highlight.Show(saved.ID)
	if edited {
		v.success.Show(MsgCategoryUpdated)
	} else {
		v.success.Show(MsgCategoryCreated)
	}
	v.closeForm()
	v.setErr("")
}

// Rows instantánea de la tabla.
func (v *CategoryListView) Rows() []CategoryRow {
	highlighted := v.Highlighted()
	items := v.Items()
	rows := make([]CategoryRow, 0, len(items))
	for _, c := range items {
		r := CategoryRow{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Products:    c.NumberOfProducts,
			Status:      catalog.StatusLabel(c.Active),
			Highlighted: highlighted != "" && highlighted == c.ID,
		}
		if c.Active {
			r.Action = ActionDelete
			if c.NumberOfProducts > 0 {
				r.Action = ActionDeactivate
			}
		}
		rows = append(rows, r)
	}
	return rows
}
