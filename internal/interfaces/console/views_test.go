package console

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
	"github.com/jhoicas/supermarket-console/internal/application/form"
	"github.com/jhoicas/supermarket-console/internal/application/session"
	"github.com/jhoicas/supermarket-console/internal/application/validation"
	"github.com/jhoicas/supermarket-console/internal/infrastructure/apiclient"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

// fakeGuard sesión controlada; Watch bloquea hasta que se cancele su contexto
// o se cierre expire (entonces devuelve session.ErrInvalid).
type fakeGuard struct {
	mu       sync.Mutex
	valid    bool
	watching bool
	watches  int
	expire   chan struct{}
}

func (g *fakeGuard) ValidateToken(context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.valid
}

func (g *fakeGuard) setValid(b bool) {
	g.mu.Lock()
	g.valid = b
	g.mu.Unlock()
}

func (g *fakeGuard) Watch(ctx context.Context, _ time.Duration) error {
	g.mu.Lock()
	g.watching = true
	g.watches++
	expire := g.expire
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.watching = false
		g.mu.Unlock()
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-expire:
		g.setValid(false)
		return session.ErrInvalid
	}
}

func (g *fakeGuard) isWatching() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.watching
}

// journal registro ordenado de llamadas compartido por los fakes.
type journal struct {
	mu    sync.Mutex
	calls []string
}

func (j *journal) add(c string) {
	j.mu.Lock()
	j.calls = append(j.calls, c)
	j.mu.Unlock()
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

type fakeCategories struct {
	j      *journal
	items  []dto.CategoryResponse
	getErr error
	mutErr error
	saved  *dto.CategoryResponse
}

func (f *fakeCategories) GetAll(context.Context) ([]dto.CategoryResponse, error) {
	f.j.add("categories.getAll")
	if f.getErr != nil {
		return nil, f.getErr
	}
	return append([]dto.CategoryResponse(nil), f.items...), nil
}

func (f *fakeCategories) Create(_ context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	f.j.add("categories.create")
	return f.saved, f.mutErr
}

func (f *fakeCategories) Update(_ context.Context, id string, _ dto.CategoryRequest) (*dto.CategoryResponse, error) {
	f.j.add("categories.update:" + id)
	return f.saved, f.mutErr
}

func (f *fakeCategories) Deactivate(_ context.Context, id string) error {
	f.j.add("categories.deactivate:" + id)
	if f.mutErr != nil {
		return f.mutErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Active = false
		}
	}
	return nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	f.j.add("categories.delete:" + id)
	return f.mutErr
}

type fakeProducts struct {
	j      *journal
	items  []dto.ProductResponse
	mutErr error
}

func (f *fakeProducts) GetAll(context.Context) ([]dto.ProductResponse, error) {
	f.j.add("products.getAll")
	return f.items, nil
}

func (f *fakeProducts) Create(context.Context, dto.ProductRequest) (*dto.ProductResponse, error) {
	f.j.add("products.create")
	return nil, f.mutErr
}

func (f *fakeProducts) Update(_ context.Context, id string, _ dto.ProductRequest) (*dto.ProductResponse, error) {
	f.j.add("products.update:" + id)
	return nil, f.mutErr
}

func (f *fakeProducts) Deactivate(_ context.Context, id string) error {
	f.j.add("products.deactivate:" + id)
	return f.mutErr
}

func yes(string) bool { return true }

var (
	frutas  = dto.CategoryResponse{ID: "c-1", Name: "Frutas", Description: "Frutas frescas", Active: true, NumberOfProducts: 2}
	vacia   = dto.CategoryResponse{ID: "c-2", Name: "Vacia", Description: "Sin productos", Active: true}
	inactiv = dto.CategoryResponse{ID: "c-3", Name: "Vieja", Description: "Vieja", Active: false}
)

func fastBanners() ViewOption { return WithBannerTTL(time.Hour, time.Hour) }

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestCategoryListView_MountCargaYVigila(t *testing.T) {
	j := &journal{}
	g := &fakeGuard{valid: true}
	v := NewCategoryListView(&fakeCategories{j: j, items: []dto.CategoryResponse{frutas, vacia, inactiv}}, g, yes)

	require.NoError(t, v.Mount(context.Background()))
	require.Eventually(t, g.isWatching, time.Second, time.Millisecond)

	rows := v.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, ActionDeactivate, rows[0].Action)
	assert.Equal(t, ActionDelete, rows[1].Action)
	assert.Empty(t, rows[2].Action, "las inactivas no tienen acción")
	assert.Equal(t, "Activo", rows[0].Status)
	assert.Equal(t, "Inactivo", rows[2].Status)

	v.Unmount()
	assert.False(t, g.isWatching(), "Unmount detiene la verificación")
}

func TestCategoryListView_MountSinSesion(t *testing.T) {
	j := &journal{}
	v := NewCategoryListView(&fakeCategories{j: j}, &fakeGuard{valid: false}, yes)

	assert.ErrorIs(t, v.Mount(context.Background()), session.ErrInvalid)
	assert.Empty(t, j.list(), "sin sesión no se pide nada")
	v.Unmount()
}

func TestCategoryListView_DeleteConProductosDesactiva(t *testing.T) {
	j := &journal{}
	v := NewCategoryListView(&fakeCategories{j: j, items: []dto.CategoryResponse{frutas}}, &fakeGuard{valid: true}, yes, fastBanners())
	require.NoError(t, v.Load(context.Background()))

	done, err := v.Delete(context.Background(), frutas)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []string{"categories.getAll", "categories.deactivate:c-1", "categories.getAll"}, j.list())
	assert.Equal(t, MsgCategoryDeactivated, v.Success())

	rows := v.Rows()
	require.Len(t, rows, 1, "la categoría desactivada sigue en el listado")
	assert.Equal(t, "Inactivo", rows[0].Status)
	assert.Empty(t, rows[0].Action)
}

func TestCategoryListView_DeleteInactivaConProductosNoEnvia(t *testing.T) {
	j := &journal{}
	asked := false
	v := NewCategoryListView(&fakeCategories{j: j}, &fakeGuard{valid: true}, func(string) bool { asked = true; return true })
	item := frutas
	item.Active = false

	done, err := v.Delete(context.Background(), item)
	assert.ErrorIs(t, err, ErrCategoryInactive)
	assert.False(t, done)
	assert.False(t, asked, "no se pide confirmación")
	assert.Empty(t, j.list(), "no se envía nada")
}

func TestCategoryListView_DeleteSinProductosBorra(t *testing.T) {
	j := &journal{}
	v := NewCategoryListView(&fakeCategories{j: j}, &fakeGuard{valid: true}, yes, fastBanners())

	done, err := v.Delete(context.Background(), vacia)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []string{"categories.delete:c-2", "categories.getAll"}, j.list())
	assert.Equal(t, MsgCategoryDeleted, v.Success())
}

func TestCategoryListView_DeleteNoConfirmado(t *testing.T) {
	j := &journal{}
	var asked string
	v := NewCategoryListView(&fakeCategories{j: j}, &fakeGuard{valid: true}, func(msg string) bool {
		asked = msg
		return false
	})

	done, err := v.Delete(context.Background(), frutas)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Empty(t, j.list())
	assert.Contains(t, asked, `¿Estás seguro de desactivar la categoría "Frutas frescas"?`)
	assert.Contains(t, asked, "tiene 2 producto(s) asociado(s)")
}

func TestDeleteConfirmation_SinProductos(t *testing.T) {
	msg := DeleteConfirmation(vacia)
	assert.Equal(t, "¿Estás seguro de eliminar la categoría \"Sin productos\"?\n\n"+
		"Esta categoría será eliminada permanentemente del sistema.\n\n¿Deseas continuar?", msg)
}

func TestCategoryListView_ErrorDelServidorEnBanner(t *testing.T) {
	j := &journal{}
	conflict := &apiclient.APIError{Kind: apiclient.KindConflict, Status: 409, Message: "La categoría tiene productos"}
	v := NewCategoryListView(&fakeCategories{j: j, mutErr: conflict}, &fakeGuard{valid: true}, yes)

	_, err := v.Delete(context.Background(), vacia)
	require.Error(t, err)
	assert.Equal(t, "La categoría tiene productos", v.ErrorMessage())
	assert.Empty(t, v.Success())

	v.DismissError()
	assert.Empty(t, v.ErrorMessage())
}

func TestCategoryListView_401DescartaEstado(t *testing.T) {
	j := &journal{}
	api := &fakeCategories{j: j, items: []dto.CategoryResponse{frutas}}
	v := NewCategoryListView(api, &fakeGuard{valid: true}, yes)
	require.NoError(t, v.Load(context.Background()))
	require.Len(t, v.Rows(), 1)

	api.getErr = &apiclient.APIError{Kind: apiclient.KindUnauthenticated, Status: 401, Message: apiclient.MsgSessionExpired}
	require.Error(t, v.Load(context.Background()))
	assert.Empty(t, v.Rows(), "sin estado parcial tras expirar la sesión")
	assert.Empty(t, v.ErrorMessage())
}

func unauthenticated() error {
	return &apiclient.APIError{Kind: apiclient.KindUnauthenticated, Status: 401, Message: apiclient.MsgSessionExpired}
}

func TestCategoryListView_FormCon401DescartaEstado(t *testing.T) {
	j := &journal{}
	api := &fakeCategories{j: j, items: []dto.CategoryResponse{frutas}}
	v := NewCategoryListView(api, &fakeGuard{valid: true}, yes, fastBanners())
	require.NoError(t, v.Load(context.Background()))

	f := v.NewForm(context.Background(), nil)
	f.SetFields(validation.CategoryFields{Name: "Lácteos", Description: "Leche", Active: true})
	api.mutErr = unauthenticated()

	require.Error(t, f.Submit(context.Background()))
	assert.Empty(t, v.Items(), "sin filas tras expirar la sesión")
	assert.Nil(t, v.Form(), "el formulario se descarta")
	assert.Empty(t, v.ErrorMessage())
	assert.Empty(t, v.Success())
}

func TestCategoryListView_FormSesionInvalidaDescartaEstado(t *testing.T) {
	j := &journal{}
	g := &fakeGuard{valid: true}
	v := NewCategoryListView(&fakeCategories{j: j, items: []dto.CategoryResponse{frutas}}, g, yes)
	require.NoError(t, v.Load(context.Background()))

	f := v.NewForm(context.Background(), &frutas)
	g.setValid(false)

	assert.ErrorIs(t, f.Submit(context.Background()), form.ErrSession)
	assert.Empty(t, v.Items())
	assert.Nil(t, v.Form())
	assert.Equal(t, []string{"categories.getAll"}, j.list(), "no se envía nada")
}

func TestCategoryListView_WatchExpiradoDescartaEstado(t *testing.T) {
	j := &journal{}
	g := &fakeGuard{valid: true, expire: make(chan struct{})}
	v := NewCategoryListView(&fakeCategories{j: j, items: []dto.CategoryResponse{frutas}}, g, yes)
	require.NoError(t, v.Mount(context.Background()))
	defer v.Unmount()
	v.NewForm(context.Background(), nil)
	require.Len(t, v.Items(), 1)

	close(g.expire)
	require.Eventually(t, func() bool { return len(v.Items()) == 0 && v.Form() == nil }, time.Second, time.Millisecond)
}

func TestCategoryListView_RecargaCon401NoMuestraBanners(t *testing.T) {
	j := &journal{}
	api := &fakeCategories{j: j, getErr: unauthenticated()}
	v := NewCategoryListView(api, &fakeGuard{valid: true}, yes, fastBanners())

	v.HandleFormSuccess(context.Background(), dto.CategoryResponse{ID: "c-2"}, false)
	assert.Empty(t, v.Success())
	assert.Empty(t, v.Highlighted())

	done, err := v.Delete(context.Background(), vacia)
	assert.True(t, done, "el borrado sí se aplicó")
	assert.True(t, apiclient.IsUnauthenticated(err))
	assert.Empty(t, v.Success())
	assert.Empty(t, v.Rows())
}

func TestCategoryListView_ErrorDeRedEnBanner(t *testing.T) {
	j := &journal{}
	v := NewCategoryListView(&fakeCategories{j: j, getErr: apiclient.ErrNetwork}, &fakeGuard{valid: true}, yes)

	assert.ErrorIs(t, v.Load(context.Background()), apiclient.ErrNetwork)
	assert.Equal(t, apiclient.MsgNetwork, v.ErrorMessage())
	assert.False(t, v.Loading())
}

func TestCategoryListView_FormRecargaDespuesDeMutar(t *testing.T) {
	j := &journal{}
	api := &fakeCategories{j: j, saved: &dto.CategoryResponse{ID: "c-9", Name: "Lácteos", Active: true}}
	v := NewCategoryListView(api, &fakeGuard{valid: true}, yes, fastBanners())

	f := v.NewForm(context.Background(), nil)
	require.Same(t, f, v.Form())
	f.SetFields(validation.CategoryFields{Name: "Lácteos", Description: "Leche y quesos", Active: true})
	require.NoError(t, f.HandleKey(context.Background(), form.KeyEnter))

	assert.Equal(t, []string{"categories.create", "categories.getAll"}, j.list())
	assert.Equal(t, MsgCategoryCreated, v.Success())
	assert.Equal(t, "c-9", v.Highlighted())
	assert.Nil(t, v.Form(), "el formulario se cierra tras guardar")
}

func TestCategoryListView_FormEdicion(t *testing.T) {
	j := &journal{}
	api := &fakeCategories{j: j, items: []dto.CategoryResponse{frutas}}
	v := NewCategoryListView(api, &fakeGuard{valid: true}, yes, fastBanners())
	require.NoError(t, v.Load(context.Background()))

	f := v.NewForm(context.Background(), &frutas)
	fields := f.Fields()
	fields.Description = "Frutas de temporada"
	f.SetFields(fields)
	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, MsgCategoryUpdated, v.Success())
	assert.Equal(t, "c-1", v.Highlighted(), "sin cuerpo se resalta el id original")
	assert.True(t, v.Rows()[0].Highlighted)
}

func TestCategoryListView_FormEscapeCierra(t *testing.T) {
	v := NewCategoryListView(&fakeCategories{j: &journal{}}, &fakeGuard{valid: true}, yes)
	f := v.NewForm(context.Background(), nil)
	require.NoError(t, f.HandleKey(context.Background(), form.KeyEscape))
	assert.Nil(t, v.Form())
}

func TestCategoryListView_UnmountCongelaBanners(t *testing.T) {
	j := &journal{}
	v := NewCategoryListView(&fakeCategories{j: j}, &fakeGuard{valid: true}, yes, WithBannerTTL(20*time.Millisecond, 20*time.Millisecond))
	require.NoError(t, v.Mount(context.Background()))
	v.Unmount()

	_, err := v.Delete(context.Background(), vacia)
	require.NoError(t, err)
	assert.Empty(t, v.Success(), "una respuesta tardía no muestra banners en una vista desmontada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func sampleProducts() []dto.ProductResponse {
	return []dto.ProductResponse{
		{ID: "p-1", CategoryID: "c-1", Name: "Manzana", Price: decimal.NewFromInt(100), Discount: 25, Stock: 4, Active: true},
		{ID: "p-2", CategoryID: "c-x", Name: "Pera", Price: decimal.RequireFromString("9.99"), Stock: 0, Active: false},
	}
}

func TestProductListView_RowsConCategoriaYPrecioFinal(t *testing.T) {
	j := &journal{}
	v := NewProductListView(&fakeProducts{j: j, items: sampleProducts()}, &fakeCategories{j: j, items: []dto.CategoryResponse{frutas}},
		&fakeGuard{valid: true}, yes)
	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, []string{"products.getAll", "categories.getAll"}, j.list())

	rows := v.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Frutas", rows[0].Category)
	assert.Equal(t, "75.00", rows[0].EffectivePrice.StringFixed(2))
	assert.Equal(t, "c-x", rows[1].Category, "categoría desconocida muestra el id")
	assert.Equal(t, "Inactivo", rows[1].Status)
	assert.Len(t, v.Categories(), 1)
}

func TestProductListView_CategoriasFallanProductosVisibles(t *testing.T) {
	j := &journal{}
	v := NewProductListView(&fakeProducts{j: j, items: sampleProducts()},
		&fakeCategories{j: j, getErr: errors.New("")}, &fakeGuard{valid: true}, yes)

	require.Error(t, v.Load(context.Background()))
	assert.Equal(t, MsgCategoriesLoadError, v.ErrorMessage(), "error sin mensaje usa el texto por defecto")
	assert.Len(t, v.Rows(), 2)
}

func TestProductListView_DeleteSiempreDesactiva(t *testing.T) {
	j := &journal{}
	var asked string
	v := NewProductListView(&fakeProducts{j: j}, &fakeCategories{j: j}, &fakeGuard{valid: true},
		func(msg string) bool { asked = msg; return true }, fastBanners())

	done, err := v.Delete(context.Background(), sampleProducts()[0])
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "products.deactivate:p-1", j.list()[0])
	assert.Contains(t, asked, `desactivar el producto "Manzana"`)
	assert.Equal(t, MsgProductDeactivated, v.Success())
}

func TestProductListView_FormAltaSinCuerpo(t *testing.T) {
	j := &journal{}
	v := NewProductListView(&fakeProducts{j: j}, &fakeCategories{j: j}, &fakeGuard{valid: true}, yes, fastBanners())

	f := v.NewForm(context.Background(), nil)
	f.SetFields(validation.ProductFields{
		CategoryID: "c-1", Name: "Manzana", Description: "Roja", Image: "https://img/m.png",
		Price: decimal.NewFromInt(3), Discount: 0, Stock: 10, Active: true,
	})
	require.NoError(t, f.Submit(context.Background()))

	assert.Equal(t, []string{"products.create", "products.getAll", "categories.getAll"}, j.list())
	assert.Equal(t, MsgProductCreated, v.Success())
	assert.NotEmpty(t, v.Highlighted(), "el id provisional se resalta")
}

func TestProductListView_FormCon401DescartaEstado(t *testing.T) {
	j := &journal{}
	products := &fakeProducts{j: j, items: sampleProducts()}
	v := NewProductListView(products, &fakeCategories{j: j, items: []dto.CategoryResponse{frutas}}, &fakeGuard{valid: true}, yes)
	require.NoError(t, v.Load(context.Background()))

	item := sampleProducts()[0]
	item.Description, item.Image = "Roja", "https://img/m.png"
	f := v.NewForm(context.Background(), &item)
	products.mutErr = unauthenticated()

	require.Error(t, f.Submit(context.Background()))
	assert.Empty(t, v.Rows())
	assert.Empty(t, v.Categories())
	assert.Nil(t, v.Form())
}

func TestProductListView_FormInvalidoNoEnvia(t *testing.T) {
	j := &journal{}
	v := NewProductListView(&fakeProducts{j: j}, &fakeCategories{j: j}, &fakeGuard{valid: true}, yes)

	f := v.NewForm(context.Background(), nil)
	f.SetFields(validation.ProductFields{CategoryID: "c-1", Name: "Manzana", Description: "Roja", Image: "x", Price: decimal.Zero})
	require.Error(t, f.Submit(context.Background()))
	assert.Equal(t, validation.MsgPriceRange, f.Error())
	assert.Empty(t, j.list())
	assert.Same(t, f, v.Form(), "sigue abierto en edición")
}
