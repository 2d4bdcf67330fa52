package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/format"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/log"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/validate"
)

type OffersHandler struct {
	Catalog *services.CatalogService
	Offers  *services.OfferService
}

// List shows active offers, optionally narrowed to one establishment
// kind (?tipo=supermercado|mayorista).
func (h *OffersHandler) List(c *fiber.Ctx) error {
	tipo := strings.TrimSpace(c.Query("tipo"))
	if tipo != "" {
		if _, ok := validate.Tipo(tipo); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "tipo", "value": tipo})
			return c.Status(fiber.StatusBadRequest).Render("offers", fiber.Map{
				"Ofertas": nil, "Err": "Filtro invalido",
			})
		}
	}

	ofertas := h.Offers.ActiveByTipo(tipo)
	establishments := h.Catalog.Establecimientos()
	now := time.Now()

	type row struct {
		Descripcion     string
		Descuento       float64
		Establecimiento string
		FechaFin        string
		PorVencer       bool
	}
	rows := make([]row, 0, len(ofertas))
	for _, o := range ofertas {
		rows = append(rows, row{
			Descripcion:     o.Descripcion,
			Descuento:       o.Descuento,
			Establecimiento: format.EstablishmentName(o.EstablecimientoID, establishments),
			FechaFin:        o.FechaFin,
			PorVencer:       services.ExpiringSoon(o.FechaFin, now),
		})
	}

	return render(c, "offers", fiber.Map{"Ofertas": rows, "Count": len(rows), "Tipo": tipo})
}
