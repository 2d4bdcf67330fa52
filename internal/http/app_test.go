package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/config"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/http/handlers"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/repos"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
)

// newTestApp wires the full route table against an in-memory store with
// the seeded demo catalog. CSRF and rate limiting stay off; the tests
// that cover those add them per-route.
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	cfg := config.Config{Port: "0", MediaDir: t.TempDir()}
	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}
	authH := &handlers.AuthHandler{Auth: authSvc}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})

	deps := handlers.NewDeps(db, cfg, authSvc)
	if err := deps.Catalog.Load(); err != nil {
		t.Fatalf("catalog load: %v", err)
	}

	app.Get("/", deps.HomeHandler.Home)
	app.Get("/buscar", deps.SearchHandler.Search)
	app.Get("/ofertas", deps.OffersHandler.List)
	app.Get("/producto/:id", deps.ProductHandler.Detail)
	app.Get("/establecimiento/:id", deps.EstablishmentHandler.Detail)

	app.Get("/login", authH.LoginForm)
	app.Post("/login", authH.Login)
	app.Get("/registro", authH.RegisterForm)
	app.Post("/registro", authH.Register)
	app.Post("/logout", authH.Logout)

	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/", deps.AdminHandler.Panel)
	admin.Post("/productos", deps.AdminHandler.CreateProduct)
	admin.Post("/productos/:id/eliminar", deps.AdminHandler.DeleteProduct)
	admin.Post("/establecimientos/:id/eliminar", deps.AdminHandler.DeleteEstablishment)
	admin.Post("/precios", deps.AdminHandler.CreatePrice)
	admin.Post("/ofertas", deps.AdminHandler.CreateOffer)

	return app, db
}

// bindSession attaches a seeded user to a session id the way a login
// would, so requests can carry an authenticated 'sid' cookie.
func bindSession(t *testing.T, db *sqlx.DB, sid, userID string) {
	t.Helper()
	if err := repos.NewUserRepo(db).BindSession(sid, userID); err != nil {
		t.Fatalf("bind session: %v", err)
	}
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
