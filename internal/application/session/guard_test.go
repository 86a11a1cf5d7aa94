package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supermarket-console/internal/application/session"
	"github.com/jhoicas/supermarket-console/internal/infrastructure/sessionstore"
	pkgjwt "github.com/jhoicas/supermarket-console/pkg/jwt"
)

// fakeNav registra navegaciones.
type fakeNav struct {
	mu      sync.Mutex
	current string
	visits  []string
}

func (n *fakeNav) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *fakeNav) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = route
	n.visits = append(n.visits, route)
}

func (n *fakeNav) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.visits)
}

// failingStore Clear siempre falla.
type failingStore struct{ session.Store }

func (failingStore) Clear(context.Context) error { return errors.New("disco lleno") }

func token(t *testing.T, minutes int) string {
	t.Helper()
	tok, err := pkgjwt.Generate("secret", "u-1", "ana@example.com", "admin", "test", minutes)
	require.NoError(t, err)
	return tok
}

var ana = session.Identity{ID: "u-1", FirstName: "Ana", LastName: "Pérez", Role: "admin"}

func TestGuard_LoginYCurrentUser(t *testing.T) {
	ctx := context.Background()
	g := session.NewGuard(sessionstore.NewMemoryStore(), nil)

	assert.Nil(t, g.CurrentUser(ctx))
	assert.False(t, g.IsValid(ctx))

	require.NoError(t, g.Login(ctx, token(t, 30), ana))
	require.NotNil(t, g.CurrentUser(ctx))
	assert.Equal(t, "Ana Pérez", g.CurrentUser(ctx).FullName())
	assert.True(t, g.IsValid(ctx))
}

func TestGuard_LoginSinToken(t *testing.T) {
	g := session.NewGuard(sessionstore.NewMemoryStore(), nil)
	assert.ErrorIs(t, g.Login(context.Background(), "", ana), session.ErrInvalid)
}

func TestGuard_TokenOpacoEsValido(t *testing.T) {
	ctx := context.Background()
	g := session.NewGuard(sessionstore.NewMemoryStore(), nil)
	require.NoError(t, g.Login(ctx, "opaque-token", ana))
	assert.True(t, g.IsValid(ctx), "sin exp legible vale hasta el primer 401")
}

func TestGuard_TokenExpiradoPorReloj(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	g := session.NewGuard(sessionstore.NewMemoryStore(), nil, session.WithClock(func() time.Time { return now }))
	require.NoError(t, g.Login(ctx, token(t, 5), ana))
	assert.True(t, g.IsValid(ctx))

	now = now.Add(6 * time.Minute)
	assert.False(t, g.IsValid(ctx))
}

func TestGuard_ValidateToken_CierraSesionInvalida(t *testing.T) {
	ctx := context.Background()
	nav := &fakeNav{current: "/categories"}
	store := sessionstore.NewMemoryStore()
	g := session.NewGuard(store, nav)
	require.NoError(t, g.Login(ctx, token(t, -1), ana))

	assert.False(t, g.ValidateToken(ctx))
	st, _ := store.Load(ctx)
	assert.True(t, st.Empty(), "token e identidad se borran juntos")
	assert.Equal(t, session.LoginRoute, nav.Current())
}

func TestGuard_Expire_NavegaSoloSiNoEstaEnLogin(t *testing.T) {
	ctx := context.Background()
	nav := &fakeNav{current: "/products"}
	g := session.NewGuard(sessionstore.NewMemoryStore(), nav)
	require.NoError(t, g.Login(ctx, "tok", ana))

	g.Expire(ctx)
	assert.Equal(t, 1, nav.count())
	assert.Empty(t, g.Token(ctx))

	g.Expire(ctx)
	assert.Equal(t, 1, nav.count(), "ya en /login no se vuelve a navegar")
}

func TestGuard_Logout_ReportaErrorDelStore(t *testing.T) {
	nav := &fakeNav{current: "/dashboard"}
	g := session.NewGuard(failingStore{sessionstore.NewMemoryStore()}, nav)

	err := g.Logout(context.Background())
	assert.Error(t, err)
	assert.Equal(t, session.LoginRoute, nav.Current(), "aun con error se navega a login")
}

func TestGuard_Watch_TerminaAlExpirar(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	now := time.Now()
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	nav := &fakeNav{current: "/categories"}
	g := session.NewGuard(sessionstore.NewMemoryStore(), nav, session.WithClock(clock))
	require.NoError(t, g.Login(ctx, token(t, 5), ana))

	done := make(chan error, 1)
	go func() { done <- g.Watch(ctx, 10*time.Millisecond) }()

	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	now = now.Add(10 * time.Minute)
	mu.Unlock()

	select {
	case err := <-done:
		assert.True(t, session.IsInvalid(err))
		assert.Equal(t, session.LoginRoute, nav.Current())
	case <-time.After(2 * time.Second):
		t.Fatal("Watch no detectó la expiración")
	}
}

func TestGuard_Watch_SinSesionRetornaDeInmediato(t *testing.T) {
	g := session.NewGuard(sessionstore.NewMemoryStore(), nil)
	err := g.Watch(context.Background(), time.Hour)
	assert.ErrorIs(t, err, session.ErrInvalid)
}

func TestGuard_Watch_CancelacionDelContexto(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := session.NewGuard(sessionstore.NewMemoryStore(), nil)
	require.NoError(t, g.Login(ctx, "tok", ana))

	done := make(chan error, 1)
	go func() { done <- g.Watch(ctx, time.Hour) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Watch no respetó la cancelación")
	}
}
