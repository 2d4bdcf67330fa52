package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/format"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
)

type EstablishmentHandler struct {
	Catalog *services.CatalogService
}

// Detail shows one establishment with the products it prices and its
// active offers.
func (h *EstablishmentHandler) Detail(c *fiber.Ctx) error {
	id := c.Params("id")
	est, precios, ofertas, ok := h.Catalog.EstablishmentDetail(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Establecimiento no encontrado"})
	}

	products := h.Catalog.Productos()
	type row struct {
		Producto string
		Precio   string
	}
	rows := make([]row, 0, len(precios))
	for _, p := range precios {
		rows = append(rows, row{
			Producto: format.ProductName(p.ProductoID, products),
			Precio:   format.Price(p.Precio),
		})
	}

	return render(c, "establishment", fiber.Map{
		"Establecimiento": est,
		"Precios":         rows,
		"Ofertas":         ofertas,
	})
}
