package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
	"github.com/jhoicas/supermarket-console/internal/infrastructure/apiclient"
)

// fakeSession sesión mínima que cuenta las expiraciones.
type fakeSession struct {
	mu      sync.Mutex
	token   string
	expired int
}

func (s *fakeSession) Token(context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) Expire(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expired++
}

// recorded petición recibida por el servidor fake.
type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	CType  string
	Body   string
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{
			Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery,
			Auth: r.Header.Get("Authorization"), CType: r.Header.Get("Content-Type"), Body: string(b),
		})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestCategoryClient_GetAll_EnviaBearerYContentType(t *testing.T) {
	srv, reqs := newServer(t, 200, `[{"id":"c-1","name":"Frutas","description":"Frescas","active":true,"number_of_products":2}]`)
	c := apiclient.NewCategoryClient(apiclient.New(srv.URL, &fakeSession{token: "tok-1"}))

	list, err := c.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].NumberOfProducts)

	require.Len(t, *reqs, 1)
	r := (*reqs)[0]
	assert.Equal(t, http.MethodGet, r.Method)
	assert.Equal(t, "/categories", r.Path)
	assert.Equal(t, "Bearer tok-1", r.Auth)
	assert.Equal(t, "application/json", r.CType)
}

func TestProductClient_GetAll_CuerpoNuloEsSliceVacio(t *testing.T) {
	srv, _ := newServer(t, 200, `null`)
	c := apiclient.NewProductClient(apiclient.New(srv.URL, &fakeSession{token: "tok"}))

	list, err := c.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestClient_SinToken_FallaSinEnviar(t *testing.T) {
	srv, reqs := newServer(t, 200, `[]`)
	c := apiclient.NewProductClient(apiclient.New(srv.URL, &fakeSession{}))

	_, err := c.GetAll(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrMissingToken)

	err = c.Deactivate(context.Background(), "p-1")
	assert.ErrorIs(t, err, apiclient.ErrMissingToken)
	assert.Empty(t, *reqs, "no debe enviarse ninguna petición sin token")
}

func TestClient_401_ExpiraSesionUnaVezAntesDeRetornar(t *testing.T) {
	srv, _ := newServer(t, 401, `{"code":"INVALID_TOKEN","message":"token inválido o expirado"}`)
	sess := &fakeSession{token: "vencido"}
	c := apiclient.NewCategoryClient(apiclient.New(srv.URL, sess))

	_, err := c.GetAll(context.Background())
	require.Error(t, err)
	assert.True(t, apiclient.IsUnauthenticated(err))
	assert.Equal(t, apiclient.MsgSessionExpired, err.Error())
	assert.Equal(t, 1, sess.expired, "Expire se invoca exactamente una vez por respuesta 401")
	assert.Empty(t, sess.Token(context.Background()), "al retornar la sesión ya está limpia")
}

func TestClient_403_NoExpiraSesion(t *testing.T) {
	srv, _ := newServer(t, 403, `{"code":"FORBIDDEN"}`)
	sess := &fakeSession{token: "tok"}
	c := apiclient.NewCategoryClient(apiclient.New(srv.URL, sess))

	_, err := c.Create(context.Background(), dto.CategoryRequest{Name: "Frutas", Description: "x"})
	assert.Equal(t, apiclient.KindForbidden, apiclient.KindOf(err))
	assert.Zero(t, sess.expired)
}

func TestClient_ErrorDeRed(t *testing.T) {
	srv, _ := newServer(t, 200, `[]`)
	url := srv.URL
	srv.Close()

	c := apiclient.NewCategoryClient(apiclient.New(url, &fakeSession{token: "tok"}))
	_, err := c.GetAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apiclient.ErrNetwork))
}

func TestResource_DeactivateYDelete(t *testing.T) {
	srv, reqs := newServer(t, 200, `{"message":"ok"}`)
	c := apiclient.NewCategoryClient(apiclient.New(srv.URL, &fakeSession{token: "tok"}))

	require.NoError(t, c.Deactivate(context.Background(), "c 1"))
	require.NoError(t, c.Delete(context.Background(), "c-2"))

	require.Len(t, *reqs, 2)
	assert.Equal(t, http.MethodDelete, (*reqs)[0].Method)
	assert.Equal(t, "/categories/c 1", (*reqs)[0].Path)
	assert.Equal(t, "mode=soft", (*reqs)[0].Query)
	assert.Equal(t, "/categories/c-2", (*reqs)[1].Path)
	assert.Empty(t, (*reqs)[1].Query)
}

func TestResource_CreateYUpdate(t *testing.T) {
	srv, reqs := newServer(t, 201, `{"id":"p-1","name":"Jugo","price":"100","discount":25,"effective_price":"75"}`)
	c := apiclient.NewProductClient(apiclient.New(srv.URL, &fakeSession{token: "tok"}))

	in := dto.ProductRequest{CategoryID: "c-1", Name: "Jugo", Price: decimal.NewFromInt(100), Discount: 25}
	out, err := c.Create(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "p-1", out.ID)
	assert.True(t, out.EffectivePrice.Equal(decimal.NewFromInt(75)))

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte((*reqs)[0].Body), &sent))
	assert.Equal(t, "c-1", sent["category_id"])

	_, err = c.Update(context.Background(), "p-1", in)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, (*reqs)[1].Method)
	assert.Equal(t, "/products/p-1", (*reqs)[1].Path)
}

func TestResource_CreateSinCuerpo_DevuelveNil(t *testing.T) {
	srv, _ := newServer(t, 201, ``)
	c := apiclient.NewCategoryClient(apiclient.New(srv.URL, &fakeSession{token: "tok"}))

	out, err := c.Create(context.Background(), dto.CategoryRequest{Name: "Frutas", Description: "x"})
	require.NoError(t, err)
	assert.Nil(t, out, "quien llama arma la entidad guardada con sus propios campos")
}

func TestAuthClient_Login(t *testing.T) {
	srv, reqs := newServer(t, 200, `{"message":"ok","token":"jwt-1","user":{"id":"u-1","firstname":"Ana","lastname":"Pérez","role":"admin"}}`)
	a := apiclient.NewAuthClient(apiclient.New(srv.URL, &fakeSession{}))

	out, err := a.Login(context.Background(), "ana@example.com", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", out.Token)
	assert.Equal(t, "Ana", out.User.FirstName)
	assert.Empty(t, (*reqs)[0].Auth, "login es público")
}

func TestAuthClient_Login401_CredencialesInvalidasSinExpirar(t *testing.T) {
	srv, _ := newServer(t, 401, `{"message":"Credenciales inválidas"}`)
	sess := &fakeSession{}
	a := apiclient.NewAuthClient(apiclient.New(srv.URL, sess))

	_, err := a.Login(context.Background(), "ana@example.com", "mala")
	require.Error(t, err)
	assert.Equal(t, apiclient.MsgBadCredentials, err.Error())
	assert.Zero(t, sess.expired)
}
