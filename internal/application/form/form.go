// Package form modela los formularios de alta y edición de la consola: campos
// tipados, validación con resultado estructurado y la máquina de estados del envío.
package form

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/supermarket-console/internal/application/validation"
)

// State estado del formulario.
type State int

const (
	Editing State = iota
	Submitting
	Closed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Key teclas que el formulario interpreta.
type Key int

const (
	KeyEnter Key = iota + 1
	KeyEscape
)

var (
	// ErrBusy Submit mientras otro envío está en curso; no se envía nada.
	ErrBusy = errors.New("envío en curso")
	// ErrClosed el formulario ya se cerró.
	ErrClosed = errors.New("formulario cerrado")
	// ErrSession la sesión no es válida; el envío se descarta.
	ErrSession = errors.New("sesión inválida")
)

// ValidationError fallo de validación local; nunca llega al servidor.
type ValidationError struct {
	Result validation.Result
}

func (e *ValidationError) Error() string { return e.Result.Message() }

// SessionChecker valida la sesión antes de cada envío (y la cierra si no es válida).
type SessionChecker interface {
	ValidateToken(ctx context.Context) bool
}

// Config arma un Form. Original nil significa alta.
type Config[F any, E any] struct {
	Fields   F
	Original *E
	Validate func(F) validation.Result
	Create   func(ctx context.Context, fields F) (*E, error)
	Update   func(ctx context.Context, original E, fields F) (*E, error)
	// Fallback entidad guardada cuando la API responde sin cuerpo.
	Fallback  func(original *E, fields F) E
	Session   SessionChecker
	OnSuccess func(saved E, edited bool)
	OnCancel  func()

	// SessionLost reconoce un error de envío que invalidó la sesión (401).
	SessionLost   func(error) bool
	// OnSessionLost se llama tras un envío descartado por sesión inválida o rechazado por SessionLost.
	OnSessionLost func()
}

// Form máquina de estados Editing → Submitting → Editing | Closed.
type Form[F any, E any] struct {
	mu     sync.Mutex
	cfg    Config[F, E]
	state  State
	fields F
	err    string
}

// New crea el formulario en Editing con los campos iniciales.
func New[F any, E any](cfg Config[F, E]) *Form[F, E] {
	return &Form[F, E]{cfg: cfg, state: Editing, fields: cfg.Fields}
}

// IsEdit el formulario edita una entidad existente.
func (f *Form[F, E]) IsEdit() bool { return f.cfg.Original != nil }

// State estado actual.
func (f *Form[F, E]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fields copia de los campos actuales.
func (f *Form[F, E]) Fields() F {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Error mensaje del banner de error ("" si no hay).
func (f *Form[F, E]) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// SetFields reemplaza los campos y limpia el banner. Ignorado fuera de Editing.
func (f *Form[F, E]) SetFields(fields F) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Editing {
		return false
	}
	f.fields = fields
	f.err = ""
	return true
}

// Submit valida sesión y campos y envía. Mientras hay un envío en curso es un no-op
// (ErrBusy). En éxito pasa a Closed y notifica OnSuccess; en error vuelve a Editing
// con el banner.
func (f *Form[F, E]) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case Submitting:
		f.mu.Unlock()
		return ErrBusy
	case Closed:
		f.mu.Unlock()
		return ErrClosed
	}
	f.state = Submitting
	fields := f.fields
	f.mu.Unlock()

	if f.cfg.Session != nil && !f.cfg.Session.ValidateToken(ctx) {
		f.finish(nil)
		f.sessionLost()
		return ErrSession
	}
	if res := f.cfg.Validate(fields); !res.OK() {
		f.finish(&ValidationError{Result: res})
		return &ValidationError{Result: res}
	}
	f.setError("")

	saved, err := f.send(ctx, fields)
	if err != nil {
		f.finish(err)
		if f.cfg.SessionLost != nil && f.cfg.SessionLost(err) {
			f.sessionLost()
		}
		return err
	}

	f.mu.Lock()
	f.state = Closed
	f.mu.Unlock()
	if f.cfg.OnSuccess != nil {
		f.cfg.OnSuccess(saved, f.IsEdit())
	}
	return nil
}

// finish vuelve a Editing con el banner de err, salvo que el formulario se haya cancelado.
func (f *Form[F, E]) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Closed {
		return
	}
	f.state = Editing
	if err != nil {
		f.err = err.Error()
	}
}

// OnSessionLost registra fn para cuando un envío pierde la sesión: token inválido
// antes de enviar o un error que isLost reconoce. Se llama antes del primer envío.
func (f *Form[F, E]) OnSessionLost(isLost func(error) bool, fn func()) *Form[F, E] {
	f.mu.Lock()
	f.cfg.SessionLost, f.cfg.OnSessionLost = isLost, fn
	f.mu.Unlock()
	return f
}

func (f *Form[F, E]) sessionLost() {
	f.mu.Lock()
	fn := f.cfg.OnSessionLost
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (f *Form[F, E]) setError(msg string) {
	f.mu.Lock()
	f.err = msg
	f.mu.Unlock()
}

func (f *Form[F, E]) send(ctx context.Context, fields F) (E, error) {
	var (
		out *E
		err error
	)
	if f.cfg.Original != nil {
		out, err = f.cfg.Update(ctx, *f.cfg.Original, fields)
	} else {
		out, err = f.cfg.Create(ctx, fields)
	}
	if err != nil {
		var zero E
		return zero, err
	}
	if out == nil {
		return f.cfg.Fallback(f.cfg.Original, fields), nil
	}
	return *out, nil
}

// Cancel cierra sin enviar. Siempre aplica, incluso durante un envío.
func (f *Form[F, E]) Cancel() {
	f.mu.Lock()
	f.state = Closed
	f.mu.Unlock()
	if f.cfg.OnCancel != nil {
		f.cfg.OnCancel()
	}
}

// HandleKey Enter envía (si no hay envío en curso); Escape cancela.
func (f *Form[F, E]) HandleKey(ctx context.Context, k Key) error {
	switch k {
	case KeyEnter:
		if f.State() == Submitting {
			return ErrBusy
		}
		return f.Submit(ctx)
	case KeyEscape:
		f.Cancel()
	}
	return nil
}
