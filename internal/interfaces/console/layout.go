package console

import (
	"context"
	"fmt"
	"io"

	"github.com/jhoicas/supermarket-console/internal/application/session"
)

// Textos del dashboard.
const (
	DashboardTitle    = "Supermarket"
	DashboardSubtitle = "Supermarket para la familia"
)

// LayoutSession lo que el layout necesita de la sesión.
type LayoutSession interface {
	CurrentUser(ctx context.Context) *session.Identity
	Logout(ctx context.Context) error
}

// NavItem entrada de la barra de navegación.
type NavItem struct {
	Label string
	Route string
}

// NavItems barra de navegación de las vistas protegidas.
var NavItems = []NavItem{
	{Label: "Inicio", Route: RouteDashboard},
	{Label: "Categorías", Route: RouteCategories},
	{Label: "Productos", Route: RouteProducts},
}

// Layout encabezado común: saludo, navegación y cierre de sesión.
type Layout struct {
	session LayoutSession
}

// NewLayout crea el layout.
func NewLayout(sess LayoutSession) *Layout {
	return &Layout{session: sess}
}

// Greeting "Hola <nombre> <apellido>", o "" sin usuario.
func (l *Layout) Greeting(ctx context.Context) string {
	u := l.session.CurrentUser(ctx)
	if u == nil {
		return ""
	}
	return "Hola " + u.FullName()
}

// Logout cierra la sesión; la navegación a /login la hace el guard.
func (l *Layout) Logout(ctx context.Context) error {
	return l.session.Logout(ctx)
}

// RenderHeader escribe saludo y navegación marcando la ruta activa.
func (l *Layout) RenderHeader(ctx context.Context, w io.Writer, active string) {
	if g := l.Greeting(ctx); g != "" {
		fmt.Fprintln(w, g)
	}
	for i, item := range NavItems {
		if i > 0 {
			fmt.Fprint(w, " | ")
		}
		if item.Route == active {
			fmt.Fprintf(w, "[%s]", item.Label)
		} else {
			fmt.Fprint(w, item.Label)
		}
	}
	fmt.Fprintln(w)
}

// Dashboard pantalla de inicio.
type Dashboard struct {
	*Layout
}

// NewDashboard crea el dashboard sobre el layout.
func NewDashboard(l *Layout) *Dashboard { return &Dashboard{Layout: l} }

// Render escribe el dashboard completo.
func (d *Dashboard) Render(ctx context.Context, w io.Writer) {
	d.RenderHeader(ctx, w, RouteDashboard)
	fmt.Fprintln(w)
	fmt.Fprintln(w, DashboardTitle)
	fmt.Fprintln(w, DashboardSubtitle)
	if u := d.session.CurrentUser(ctx); u != nil {
		fmt.Fprintf(w, "Correo: %s  Rol: %s\n", u.Email, u.Role)
	}
}
