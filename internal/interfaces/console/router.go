// Package console implementa la consola administrativa: rutas, banners, vistas de
// listado, layout y los comandos de línea de comandos que las manejan.
package console

import (
	"context"
	"strings"
	"sync"
)

// Rutas de la consola.
const (
	RouteLogin      = "/login"
	RouteSignup     = "/signup"
	RouteDashboard  = "/dashboard"
	RouteCategories = "/categories"
	RouteProducts   = "/products"
)

var (
	publicRoutes    = map[string]bool{RouteLogin: true, RouteSignup: true}
	protectedRoutes = map[string]bool{RouteDashboard: true, RouteCategories: true, RouteProducts: true}
)

// SessionProbe lo que el router consulta para decidir redirecciones.
type SessionProbe interface {
	IsValid(ctx context.Context) bool
}

// Router rutas tipo hash. Rutas desconocidas o vacías van a /login; las protegidas
// sin sesión rebotan a /login y las públicas con sesión a /dashboard.
// Implementa session.Navigator.
type Router struct {
	session  SessionProbe
	mu       sync.Mutex
	current  string
	onChange func(route string)
}

// NewRouter crea el router en /login. session puede ser nil (sin sesión nunca).
func NewRouter(session SessionProbe) *Router {
	return &Router{session: session, current: RouteLogin}
}

// OnChange registra un callback tras cada navegación efectiva.
func (r *Router) OnChange(fn func(route string)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Current ruta actual.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate resuelve route y la fija como actual.
func (r *Router) Navigate(route string) {
	r.Go(context.Background(), route)
}

// Go como Navigate con contexto; devuelve la ruta resuelta.
func (r *Router) Go(ctx context.Context, route string) string {
	// la sesión se consulta fuera del lock: Guard.Expire navega mientras limpia
	resolved := r.Resolve(ctx, route)

	r.mu.Lock()
	changed := r.current != resolved
	r.current = resolved
	fn := r.onChange
	r.mu.Unlock()

	if changed && fn != nil {
		fn(resolved)
	}
	return resolved
}

// Resolve aplica las reglas de rutas sin navegar.
func (r *Router) Resolve(ctx context.Context, route string) string {
	route = Normalize(route)
	if !publicRoutes[route] && !protectedRoutes[route] {
		route = RouteLogin
	}
	authed := r.session != nil && r.session.IsValid(ctx)
	switch {
	case protectedRoutes[route] && !authed:
		return RouteLogin
	case publicRoutes[route] && authed:
		return RouteDashboard
	}
	return route
}

// Normalize acepta "#/products", "products" o "/products/" y devuelve "/products".
func Normalize(route string) string {
	route = strings.TrimSpace(route)
	route = strings.TrimPrefix(route, "#")
	route = strings.Trim(route, "/")
	return "/" + strings.ToLower(route)
}

// IsProtected informa si la ruta exige sesión.
func IsProtected(route string) bool { return protectedRoutes[Normalize(route)] }
