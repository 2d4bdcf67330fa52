package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/log"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
)

type HomeHandler struct {
	Catalog *services.CatalogService
	Offers  *services.OfferService
}

// Home renders the landing page: search box, establishment grid, active
// offers teaser. A catalog that never loaded surfaces its error here.
func (h *HomeHandler) Home(c *fiber.Ctx) error {
	if err := h.Catalog.Err(); err != nil && !h.Catalog.Loaded() {
		log.Error(c, "home.catalog.unavailable", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).Render("notfound", fiber.Map{
			"Message": "El catalogo no esta disponible. Intenta nuevamente.",
		})
	}

	return render(c, "home", fiber.Map{
		"Establecimientos": h.Catalog.Establecimientos(),
		"Ofertas":          h.Offers.Active(),
	})
}
