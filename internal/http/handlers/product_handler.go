package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/format"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// Detail renders the price comparison table for one product: prices
// sorted cheapest first plus min/max/avg and the maximum savings.
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id := c.Params("id")
	product, precios, stats, ok := h.Catalog.ProductDetail(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Producto no encontrado"})
	}

	return render(c, "product", fiber.Map{
		"Producto":   product,
		"Precios":    precios,
		"Stats":      stats,
		"MinPrecio":  format.Price(stats.Min),
		"MaxPrecio":  format.Price(stats.Max),
		"PrecioProm": format.Price(stats.Avg),
		"Diferencia": format.Price(stats.Diff),
	})
}
