package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/jhoicas/supermarket-console/internal/application/dto"
	"github.com/jhoicas/supermarket-console/internal/application/form"
	"github.com/jhoicas/supermarket-console/internal/application/session"
	"github.com/jhoicas/supermarket-console/internal/infrastructure/pdf"
	"github.com/jhoicas/supermarket-console/pkg/logger"
)

var (
	// ErrUsage comando o argumentos inválidos; ya se imprimió la ayuda.
	ErrUsage = errors.New("uso inválido")
	// ErrNotLoggedIn la ruta pedida exige sesión.
	ErrNotLoggedIn = errors.New("no hay sesión activa; inicia sesión con: login --email <correo>")
)

// AuthService endpoints públicos de autenticación.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
	Signup(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error)
	Me(ctx context.Context) (*dto.UserResponse, error)
}

// SessionManager sesión de la consola (session.Guard).
type SessionManager interface {
	Guard
	SessionProbe
	LayoutSession
	Login(ctx context.Context, token string, user session.Identity) error
}

// ReportGenerator genera el PDF del catálogo.
type ReportGenerator interface {
	GenerateCatalogPDF(ctx context.Context, data pdf.CatalogData) ([]byte, error)
}

// App comandos de la consola.
type App struct {
	Session     SessionManager
	Router      *Router
	Auth        AuthService
	Categories  CategoryService
	Products    ProductService
	Report      ReportGenerator
	APIURL      string
	ViewOptions []ViewOption
	Log         *logger.Logger

	In  io.Reader
	Out io.Writer
	Err io.Writer

	in *bufio.Reader
}

const usage = `Uso: supermarket-console <comando> [flags]

Comandos:
  login       --email <correo> [--password <clave>]
  signup      --firstname <nombre> --lastname <apellido> --email <correo> [--password <clave>]
  logout
  whoami      [--remote]
  categories  list | create | update <id> | delete <id> [--yes]
  products    list | create | update <id> | delete <id> [--yes]
  report      [--out catalogo.pdf]
`

// Run ejecuta el comando de args (sin el nombre del programa).
func (a *App) Run(ctx context.Context, args []string) error {
	if a.Log == nil {
		a.Log = logger.Nop()
	}
	if len(args) == 0 {
		fmt.Fprint(a.Err, usage)
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "signup":
		return a.signup(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "whoami", "dashboard":
		return a.whoami(ctx, rest)
	case "categories":
		return a.categories(ctx, rest)
	case "products":
		return a.products(ctx, rest)
	case "report":
		return a.report(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.Out, usage)
		return nil
	default:
		fmt.Fprintf(a.Err, "comando desconocido %q\n\n%s", cmd, usage)
		return ErrUsage
	}
}

func (a *App) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.Err)
	return fs
}

func (a *App) parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		// --help ya imprimió la ayuda del comando
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func (a *App) readLine(prompt string) string {
	if a.in == nil {
		in := a.In
		if in == nil {
			in = os.Stdin
		}
		a.in = bufio.NewReader(in)
	}
	fmt.Fprint(a.Out, prompt)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// confirmer con --yes acepta sin preguntar; si no, lee s/N de la entrada.
func (a *App) confirmer(yes bool) ConfirmFunc {
	return func(message string) bool {
		if yes {
			return true
		}
		fmt.Fprintln(a.Out, message)
		answer := strings.ToLower(a.readLine("[s/N]: "))
		return answer == "s" || answer == "si" || answer == "sí" || answer == "y" || answer == "yes"
	}
}

// enter navega a route y exige que el router la acepte tal cual.
func (a *App) enter(ctx context.Context, route string) error {
	if got := a.Router.Go(ctx, route); got != route {
		if IsProtected(route) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("ya hay una sesión activa (%s); cierra sesión con: logout", a.Layout().Greeting(ctx))
	}
	return nil
}

// Layout layout de las vistas protegidas.
func (a *App) Layout() *Layout { return NewLayout(a.Session) }

// ── Autenticación ─────────────────────────────────────────────────────────────

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.StringP("email", "e", "", "correo")
	password := fs.StringP("password", "p", "", "contraseña (se pide si se omite)")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if err := a.enter(ctx, RouteLogin); err != nil {
		return err
	}
	if *email == "" {
		*email = a.readLine("Correo: ")
	}
	if *password == "" {
		*password = a.readLine("Contraseña: ")
	}

	resp, err := a.Auth.Login(ctx, strings.TrimSpace(*email), *password)
	if err != nil {
		return err
	}
	u := resp.User
	if err := a.Session.Login(ctx, resp.Token, session.Identity{
		ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role,
	}); err != nil {
		return fmt.Errorf("guardar sesión: %w", err)
	}
	a.Router.Go(ctx, RouteDashboard)
	fmt.Fprintln(a.Out, a.Layout().Greeting(ctx))
	return nil
}

func (a *App) signup(ctx context.Context, args []string) error {
	fs := a.flags("signup")
	first := fs.String("firstname", "", "nombre")
	last := fs.String("lastname", "", "apellido")
	email := fs.StringP("email", "e", "", "correo")
	password := fs.StringP("password", "p", "", "contraseña (se pide si se omite)")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if err := a.enter(ctx, RouteSignup); err != nil {
		return err
	}
	if *password == "" {
		*password = a.readLine("Contraseña: ")
	}
	u, err := a.Auth.Signup(ctx, dto.RegisterRequest{
		FirstName: *first, LastName: *last, Email: strings.TrimSpace(*email), Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Usuario %s registrado (rol %s). Inicia sesión con: login --email %s\n", u.Email, u.Role, u.Email)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := a.Layout().Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "Sesión cerrada")
	return nil
}

func (a *App) whoami(ctx context.Context, args []string) error {
	fs := a.flags("whoami")
	remote := fs.Bool("remote", false, "consultar /me en la API")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if err := a.enter(ctx, RouteDashboard); err != nil {
		return err
	}
	NewDashboard(a.Layout()).Render(ctx, a.Out)
	if *remote {
		u, err := a.Auth.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "API: %s (%s, %s)\n", u.Email, u.Role, u.Status)
	}
	return nil
}

// ── Categorías ────────────────────────────────────────────────────────────────

func (a *App) categories(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Err, usage)
		return ErrUsage
	}
	sub, rest := args[0], args[1:]
	fs := a.flags("categories " + sub)
	yes := fs.BoolP("yes", "y", false, "no pedir confirmación")
	name := fs.String("name", "", "nombre")
	desc := fs.String("description", "", "descripción")
	active := fs.Bool("active", true, "activa")
	if err := a.parse(fs, rest); err != nil {
		return err
	}
	if err := a.enter(ctx, RouteCategories); err != nil {
		return err
	}

	v := NewCategoryListView(a.Categories, a.Session, a.confirmer(*yes), a.ViewOptions...)
	if err := v.Mount(ctx); err != nil {
		return err
	}
	defer v.Unmount()

	switch sub {
	case "list":
	case "create", "update":
		var item *dto.CategoryResponse
		if sub == "update" {
			found, err := a.findCategory(v, fs)
			if err != nil {
				return err
			}
			item = &found
		}
		f := v.NewForm(ctx, item)
		fields := f.Fields()
		if fs.Changed("name") || item == nil {
			fields.Name = *name
		}
		if fs.Changed("description") || item == nil {
			fields.Description = *desc
		}
		if fs.Changed("active") {
			fields.Active = *active
		}
		f.SetFields(fields)
		if err := submit(ctx, f); err != nil {
			return err
		}
	case "delete":
		item, err := a.findCategory(v, fs)
		if err != nil {
			return err
		}
		done, err := v.Delete(ctx, item)
		if err != nil {
			return err
		}
		if !done {
			fmt.Fprintln(a.Out, "Operación cancelada")
			return nil
		}
	default:
		fmt.Fprintf(a.Err, "subcomando desconocido %q\n\n%s", sub, usage)
		return ErrUsage
	}

	a.Layout().RenderHeader(ctx, a.Out, RouteCategories)
	RenderBanners(a.Out, v.Success(), v.ErrorMessage())
	return RenderCategories(a.Out, v.Rows())
}

func (a *App) findCategory(v *CategoryListView, fs *pflag.FlagSet) (dto.CategoryResponse, error) {
	if fs.NArg() == 0 {
		return dto.CategoryResponse{}, fmt.Errorf("%w: falta el id de la categoría", ErrUsage)
	}
	item, ok := v.Find(fs.Arg(0))
	if !ok {
		return dto.CategoryResponse{}, fmt.Errorf("categoría %s no encontrada", fs.Arg(0))
	}
	return item, nil
}

// ── Productos ─────────────────────────────────────────────────────────────────

func (a *App) products(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Err, usage)
		return ErrUsage
	}
	sub, rest := args[0], args[1:]
	fs := a.flags("products " + sub)
	yes := fs.BoolP("yes", "y", false, "no pedir confirmación")
	category := fs.String("category", "", "id de la categoría")
	name := fs.String("name", "", "nombre")
	desc := fs.String("description", "", "descripción")
	image := fs.String("image", "", "URL de la imagen")
	price := fs.String("price", "", "precio (ej: 12.50)")
	discount := fs.Int("discount", 0, "descuento (%)")
	stock := fs.Int("stock", 0, "stock")
	active := fs.Bool("active", true, "activo")
	if err := a.parse(fs, rest); err != nil {
		return err
	}
	if err := a.enter(ctx, RouteProducts); err != nil {
		return err
	}

	v := NewProductListView(a.Products, a.Categories, a.Session, a.confirmer(*yes), a.ViewOptions...)
	if err := v.Mount(ctx); err != nil {
		return err
	}
	defer v.Unmount()

	switch sub {
	case "list":
	case "create", "update":
		var item *dto.ProductResponse
		if sub == "update" {
			found, err := a.findProduct(v, fs)
			if err != nil {
				return err
			}
			item = &found
		}
		f := v.NewForm(ctx, item)
		fields := f.Fields()
		set := func(flag string) bool { return item == nil || fs.Changed(flag) }
		if set("category") {
			fields.CategoryID = *category
		}
		if set("name") {
			fields.Name = *name
		}
		if set("description") {
			fields.Description = *desc
		}
		if set("image") {
			fields.Image = *image
		}
		if set("price") {
			p, err := parsePrice(*price)
			if err != nil {
				return err
			}
			fields.Price = p
		}
		if set("discount") {
			fields.Discount = *discount
		}
		if set("stock") {
			fields.Stock = *stock
		}
		if fs.Changed("active") {
			fields.Active = *active
		}
		f.SetFields(fields)
		fmt.Fprintf(a.Out, "Precio final: %s\n", fields.EffectivePrice().StringFixed(2))
		if err := submit(ctx, f); err != nil {
			return err
		}
	case "delete":
		item, err := a.findProduct(v, fs)
		if err != nil {
			return err
		}
		done, err := v.Delete(ctx, item)
		if err != nil {
			return err
		}
		if !done {
			fmt.Fprintln(a.Out, "Operación cancelada")
			return nil
		}
	default:
		fmt.Fprintf(a.Err, "subcomando desconocido %q\n\n%s", sub, usage)
		return ErrUsage
	}

	a.Layout().RenderHeader(ctx, a.Out, RouteProducts)
	RenderBanners(a.Out, v.Success(), v.ErrorMessage())
	return RenderProducts(a.Out, v.Rows())
}

func (a *App) findProduct(v *ProductListView, fs *pflag.FlagSet) (dto.ProductResponse, error) {
	if fs.NArg() == 0 {
		return dto.ProductResponse{}, fmt.Errorf("%w: falta el id del producto", ErrUsage)
	}
	item, ok := v.Find(fs.Arg(0))
	if !ok {
		return dto.ProductResponse{}, fmt.Errorf("producto %s no encontrado", fs.Arg(0))
	}
	return item, nil
}

// parsePrice "" es precio cero (lo rechaza la validación del formulario).
func parsePrice(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: precio inválido %q", ErrUsage, s)
	}
	return p, nil
}

// submit envía con Enter, como en el formulario interactivo.
func submit[F any, E any](ctx context.Context, f *form.Form[F, E]) error {
	return f.HandleKey(ctx, form.KeyEnter)
}

// ── Reporte ───────────────────────────────────────────────────────────────────

func (a *App) report(ctx context.Context, args []string) error {
	fs := a.flags("report")
	out := fs.StringP("out", "o", "catalogo.pdf", "archivo de salida")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if err := a.enter(ctx, RouteDashboard); err != nil {
		return err
	}
	if !a.Session.ValidateToken(ctx) {
		return session.ErrInvalid
	}

	cats, err := a.Categories.GetAll(ctx)
	if err != nil {
		return err
	}
	products, err := a.Products.GetAll(ctx)
	if err != nil {
		return err
	}
	data := pdf.CatalogData{Source: a.APIURL, Categories: cats, Products: products}
	if u := a.Session.CurrentUser(ctx); u != nil {
		data.GeneratedBy = u.FullName()
	}
	doc, err := a.Report.GenerateCatalogPDF(ctx, data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, doc, 0o644); err != nil {
		return fmt.Errorf("escribir reporte: %w", err)
	}
	fmt.Fprintf(a.Out, "Reporte generado: %s (%d categorías, %d productos)\n", *out, len(cats), len(products))
	return nil
}
