package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/config"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/http/handlers"
	applog "github.com/gonzaloparrilla/CompaRar1.0/internal/log"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/repos"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Algo salio mal. Intenta nuevamente.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Algo salio mal. Intenta nuevamente.")
			}
			return nil
		},
	})
	// Global body size guard (covers multipart image uploads)
	app.Server().MaxRequestBodySize = 8 << 20 // 8 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Verificacion de seguridad fallida. Actualiza la pagina."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	log.Printf("[static] /static -> ./web/static")
	log.Printf("[static] /media  -> %s", mediaDir)

	app.Static("/static", "./web/static")
	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		// Block encoded traversal attempts as well as raw .. or null bytes
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		full := filepath.Join(mediaDir, clean)
		return c.SendFile(full, true)
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc)

	// Initial catalog load; a failure leaves the store in its error state
	// and the next request-triggered reload can recover.
	if err := deps.Catalog.Load(); err != nil {
		log.Printf("[warn] initial catalog load failed: %v", err)
	}

	// Public pages
	app.Get("/", deps.HomeHandler.Home)
	app.Get("/buscar", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), deps.SearchHandler.Search)
	app.Get("/ofertas", deps.OffersHandler.List)

	// Detail pages
	app.Get("/producto/:id", deps.ProductHandler.Detail)
	app.Get("/establecimiento/:id", deps.EstablishmentHandler.Detail)

	// Auth routes (login throttled)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Demasiados intentos. Intenta mas tarde."})
		},
	}), authH.Login)
	app.Get("/registro", authH.RegisterForm)
	app.Post("/registro", authH.Register)
	app.Post("/logout", authH.Logout)

	// Admin panel
	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/", deps.AdminHandler.Panel)
	admin.Post("/productos", deps.AdminHandler.CreateProduct)
	admin.Post("/productos/:id", deps.AdminHandler.UpdateProduct)
	admin.Post("/productos/:id/eliminar", deps.AdminHandler.DeleteProduct)
	admin.Post("/establecimientos", deps.AdminHandler.CreateEstablishment)
	admin.Post("/establecimientos/:id", deps.AdminHandler.UpdateEstablishment)
	admin.Post("/establecimientos/:id/eliminar", deps.AdminHandler.DeleteEstablishment)
	admin.Post("/precios", deps.AdminHandler.CreatePrice)
	admin.Post("/precios/:id", deps.AdminHandler.UpdatePrice)
	admin.Post("/precios/:id/eliminar", deps.AdminHandler.DeletePrice)
	admin.Post("/ofertas", deps.AdminHandler.CreateOffer)
	admin.Post("/ofertas/:id", deps.AdminHandler.UpdateOffer)
	admin.Post("/ofertas/:id/eliminar", deps.AdminHandler.DeleteOffer)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Pagina no encontrada"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
