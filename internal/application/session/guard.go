package session

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/supermarket-console/pkg/jwt"
	"github.com/jhoicas/supermarket-console/pkg/logger"
)

// DefaultCheckInterval periodo de verificación mientras una vista protegida está montada.
const DefaultCheckInterval = 60 * time.Second

// Guard vigila la sesión persistida. Es seguro para uso concurrente si el Store lo es.
type Guard struct {
	store Store
	nav   Navigator
	now   func() time.Time
	log   *logger.Logger
}

// Option configura el Guard.
type Option func(*Guard)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithLogger logger para errores del Store.
func WithLogger(l *logger.Logger) Option {
	return func(g *Guard) { g.log = l }
}

// NewGuard construye el guard. nav puede ser nil (CLI sin router).
func NewGuard(store Store, nav Navigator, opts ...Option) *Guard {
	g := &Guard{store: store, nav: nav, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetNavigator enlaza el router una vez construido.
func (g *Guard) SetNavigator(nav Navigator) { g.nav = nav }

// Login persiste token e identidad tras un login exitoso.
func (g *Guard) Login(ctx context.Context, token string, user Identity) error {
	if token == "" {
		return ErrInvalid
	}
	return g.store.Save(ctx, State{Token: token, User: &user})
}

func (g *Guard) load(ctx context.Context) State {
	st, err := g.store.Load(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("leer sesión")
		return State{}
	}
	return st
}

// CurrentUser identidad guardada o nil si no hay sesión.
func (g *Guard) CurrentUser(ctx context.Context) *Identity {
	st := g.load(ctx)
	if st.Empty() {
		return nil
	}
	return st.User
}

// Token token guardado ("" si no hay).
func (g *Guard) Token(ctx context.Context) string {
	return g.load(ctx).Token
}

// IsValid hay token y, si es un JWT con exp, no ha expirado. Un token opaco
// se considera válido hasta que la API responda 401.
func (g *Guard) IsValid(ctx context.Context) bool {
	token := g.Token(ctx)
	if token == "" {
		return false
	}
	if exp, ok := jwt.ExpiresAt(token); ok {
		return g.now().Before(exp)
	}
	return true
}

// ValidateToken como IsValid, pero cierra la sesión si no es válida.
func (g *Guard) ValidateToken(ctx context.Context) bool {
	if g.IsValid(ctx) {
		return true
	}
	_ = g.Logout(ctx)
	return false
}

// Logout borra token e identidad y navega a login.
func (g *Guard) Logout(ctx context.Context) error {
	err := g.store.Clear(ctx)
	if err != nil {
		g.log.Error().Err(err).Msg("borrar sesión")
	}
	g.toLogin()
	return err
}

// Expire reacción a un 401: misma limpieza que Logout, sin error para quien llama.
func (g *Guard) Expire(ctx context.Context) {
	if err := g.store.Clear(ctx); err != nil {
		g.log.Error().Err(err).Msg("borrar sesión expirada")
	}
	g.toLogin()
}

func (g *Guard) toLogin() {
	if g.nav == nil || g.nav.Current() == LoginRoute {
		return
	}
	g.nav.Navigate(LoginRoute)
}

// Watch valida una vez y luego cada interval hasta que la sesión deje de ser válida
// (devuelve ErrInvalid tras cerrarla) o ctx se cancele (devuelve ctx.Err()).
func (g *Guard) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if !g.ValidateToken(ctx) {
		return ErrInvalid
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !g.ValidateToken(ctx) {
				return ErrInvalid
			}
		}
	}
}

// IsInvalid informa si err viene de Watch por sesión inválida.
func IsInvalid(err error) bool { return errors.Is(err, ErrInvalid) }
