package services

import (
	"math"
	"time"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
)

// OfferService reads active offers out of the catalog snapshot for the
// public offers page.
type OfferService struct {
	Catalog *CatalogService
}

func NewOfferService(c *CatalogService) *OfferService { return &OfferService{Catalog: c} }

// Active returns the offers flagged active.
func (s *OfferService) Active() []domain.Oferta {
	var out []domain.Oferta
	for _, o := range s.Catalog.Ofertas() {
		if o.Activa {
			out = append(out, o)
		}
	}
	return out
}

// ActiveByTipo keeps active offers whose establishment has the given kind
// (supermercado or mayorista). An empty tipo returns all active offers.
func (s *OfferService) ActiveByTipo(tipo string) []domain.Oferta {
	active := s.Active()
	if tipo == "" {
		return active
	}

	kinds := map[string]string{}
	for _, e := range s.Catalog.Establecimientos() {
		kinds[e.ID] = e.Tipo
	}

	var out []domain.Oferta
	for _, o := range active {
		if kinds[o.EstablecimientoID] == tipo {
			out = append(out, o)
		}
	}
	return out
}

// ExpiringSoon reports whether an offer's end date falls within the next
// three days (exclusive of already-expired offers).
func ExpiringSoon(fechaFin string, now time.Time) bool {
	end, err := time.Parse("2006-01-02", fechaFin)
	if err != nil {
		return false
	}
	days := math.Ceil(end.Sub(now).Hours() / 24)
	return days > 0 && days <= 3
}
