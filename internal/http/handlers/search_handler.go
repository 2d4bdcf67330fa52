package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/log"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// Search runs the catalog query with the filter configuration taken from
// the query string: q, categoria, establecimiento, precio_max, orden.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) == "" {
		// Initial page load: empty search, no results, no error
		return render(c, "search", fiber.Map{"Q": "", "Results": []domain.SearchResult{}, "Count": 0,
			"Establecimientos": h.Catalog.Establecimientos(), "Categorias": h.Catalog.Categorias()})
	}
	q, ok := validate.Q(rawQ)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
		return c.Status(fiber.StatusBadRequest).Render("search", fiber.Map{
			"Q": "", "Results": []domain.SearchResult{}, "Count": 0, "Err": "Ingresa una busqueda valida",
		})
	}

	f := domain.DefaultFilters()
	if cat := strings.TrimSpace(c.Query("categoria")); cat != "" {
		f.Category = cat
	}
	if est := strings.TrimSpace(c.Query("establecimiento")); est != "" {
		if _, ok := validate.ID(est); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "establecimiento"})
			return c.Status(fiber.StatusBadRequest).Render("search", fiber.Map{
				"Q": q, "Results": []domain.SearchResult{}, "Count": 0, "Err": "Filtro invalido",
			})
		}
		f.Establishment = est
	}
	if maxStr := strings.TrimSpace(c.Query("precio_max")); maxStr != "" {
		max, ok := validate.Precio(maxStr)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "precio_max", "value": maxStr})
			return c.Status(fiber.StatusBadRequest).Render("search", fiber.Map{
				"Q": q, "Results": []domain.SearchResult{}, "Count": 0, "Err": "Filtro invalido",
			})
		}
		f.PriceRange[1] = max
	}
	if orden := c.Query("orden"); orden == "price_desc" {
		f.SortBy = orden
	}

	results := h.Catalog.Search(q, f)

	return render(c, "search", fiber.Map{
		"Q": q, "Filters": f,
		"Results": results, "Count": len(results),
		"Establecimientos": h.Catalog.Establecimientos(),
		"Categorias":       h.Catalog.Categorias(),
	})
}
