package console

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/supermarket-console/internal/application/session"
	"github.com/jhoicas/supermarket-console/internal/infrastructure/apiclient"
	"github.com/jhoicas/supermarket-console/pkg/logger"
)

// Guard lo que las vistas protegidas necesitan de la sesión.
type Guard interface {
	ValidateToken(ctx context.Context) bool
	Watch(ctx context.Context, interval time.Duration) error
}

// ConfirmFunc diálogo de confirmación antes de una acción destructiva.
type ConfirmFunc func(message string) bool

// ViewOption configura una vista de listado.
type ViewOption func(*viewConfig)

type viewConfig struct {
	interval     time.Duration
	successTTL   time.Duration
	highlightTTL time.Duration
	log          *logger.Logger
}

// WithCheckInterval periodo de verificación de sesión mientras la vista está montada.
func WithCheckInterval(d time.Duration) ViewOption {
	return func(c *viewConfig) { c.interval = d }
}

// WithBannerTTL reemplaza las duraciones de los banners (tests).
func WithBannerTTL(success, highlight time.Duration) ViewOption {
	return func(c *viewConfig) { c.successTTL, c.highlightTTL = success, highlight }
}

// WithViewLogger logger de la vista.
func WithViewLogger(l *logger.Logger) ViewOption {
	return func(c *viewConfig) { c.log = l }
}

// view estado común de las vistas de listado: carga, banners y vigilancia de sesión.
type view struct {
	guard     Guard
	confirm   ConfirmFunc
	cfg       viewConfig
	success   *Banner
	highlight *Banner
	// drop descarta el estado propio de la vista (filas, formulario).
	drop      func()

	mu        sync.Mutex
	loading   bool
	err       string
	stopWatch context.CancelFunc
	watchDone chan struct{}
}

func newView(guard Guard, confirm ConfirmFunc, opts []ViewOption) view {
	cfg := viewConfig{
		interval:     session.DefaultCheckInterval,
		successTTL:   SuccessTTL,
		highlightTTL: HighlightTTL,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if confirm == nil {
		confirm = func(string) bool { return false }
	}
	return view{
		guard:     guard,
		confirm:   confirm,
		cfg:       cfg,
		success:   NewBanner(cfg.successTTL),
		highlight: NewBanner(cfg.highlightTTL),
	}
}

// mount valida la sesión una vez y arranca la verificación periódica.
func (v *view) mount(ctx context.Context) error {
	if !v.guard.ValidateToken(ctx) {
		return session.ErrInvalid
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopWatch != nil {
		return nil
	}
	wctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	v.stopWatch, v.watchDone = cancel, done
	go func() {
		defer close(done)
		if err := v.guard.Watch(wctx, v.cfg.interval); session.IsInvalid(err) {
			v.cfg.log.Info().Msg("sesión expirada durante la vista")
			v.sessionExpired()
		}
	}()
	return nil
}

// unmount detiene la verificación y congela los banners.
func (v *view) unmount() {
	v.mu.Lock()
	cancel, done := v.stopWatch, v.watchDone
	v.stopWatch, v.watchDone = nil, nil
	v.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	v.success.Stop()
	v.highlight.Stop()
}

func (v *view) setLoading(b bool) {
	v.mu.Lock()
	v.loading = b
	v.mu.Unlock()
}

func (v *view) setErr(msg string) {
	v.mu.Lock()
	v.err = msg
	v.mu.Unlock()
}

// failed muestra err en el banner de error, o fallback si err no trae mensaje.
func (v *view) failed(err error, fallback string) {
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	v.setErr(msg)
}

// Loading hay una carga en curso.
func (v *view) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// ErrorMessage banner de error ("" si no hay).
func (v *view) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// DismissError cierra el banner de error.
func (v *view) DismissError() { v.setErr("") }

// Success banner de éxito ("" si no hay o ya expiró).
func (v *view) Success() string { return v.success.Text() }

// Highlighted id de la fila resaltada tras guardar ("" si no hay).
func (v *view) Highlighted() string { return v.highlight.Text() }

// sessionExpired descarta filas, formulario y banners: tras perder la sesión no
// queda estado parcial.
func (v *view) sessionExpired() {
	if v.drop != nil {
		v.drop()
	}
	v.setErr("")
	v.success.Clear()
	v.highlight.Clear()
}

// sessionLost la petición falló por 401: el guard ya navegó a login.
func sessionLost(err error) bool {
	return apiclient.IsUnauthenticated(err)
}

// sessionGone la sesión se perdió, por 401 o por token inválido antes de pedir.
func sessionGone(err error) bool {
	return sessionLost(err) || session.IsInvalid(err)
}
