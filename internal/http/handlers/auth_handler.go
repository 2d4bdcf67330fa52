package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/log"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Email o contraseña invalidos"})
	}
	if !validate.Password(pass) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Email o contraseña invalidos"})
	}

	_, err := h.Auth.Login(sid, email, pass)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Email o contraseña invalidos"})
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	name := c.FormValue("nombre")
	pass := c.FormValue("password")

	if _, ok := validate.Email(email); !ok {
		log.Security(c, "auth.register.fail", map[string]any{"email": email, "reason": "bad_email"})
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Email invalido"})
	}
	name, ok := validate.Nombre(name)
	if !ok {
		log.Security(c, "auth.register.fail", map[string]any{"email": email, "reason": "bad_name"})
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "Nombre invalido"})
	}
	if !validate.Password(pass) {
		log.Security(c, "auth.register.fail", map[string]any{"email": email, "reason": "weak_password"})
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{
			"Err": "La contraseña debe tener 8-20 caracteres con mayusculas, minusculas, numeros y simbolos",
		})
	}

	if _, err := h.Auth.Register(sid, email, name, pass); err != nil {
		log.Error(c, "auth.register.fail", err, map[string]any{"email": email})
		return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{"Err": "No se pudo crear la cuenta"})
	}

	log.Audit(c, "auth.register.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}
