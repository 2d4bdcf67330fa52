package services

import (
	"sort"
	"strings"
	"sync"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/repos"
)

// CatalogService owns the in-process copy of the four catalog collections.
// The backing store is the source of truth: Load refetches everything and
// every admin mutation triggers a reload. Readers see the last snapshot
// that completed loading; when concurrent reloads race, the later one wins
// wholesale.
type CatalogService struct {
	Products       *repos.ProductRepo
	Establishments *repos.EstablishmentRepo
	Prices         *repos.PriceRepo
	Offers         *repos.OfferRepo

	mu             sync.RWMutex
	products       []domain.Producto
	establishments []domain.Establecimiento
	prices         []domain.Precio
	offers         []domain.Oferta
	loaded         bool
	loadErr        error
}

func NewCatalogService(p *repos.ProductRepo, e *repos.EstablishmentRepo, pr *repos.PriceRepo, o *repos.OfferRepo) *CatalogService {
	return &CatalogService{Products: p, Establishments: e, Prices: pr, Offers: o}
}

// Load fetches products, establishments, prices and offers. Any fetch
// error aborts the whole load and is recorded; the previous snapshot
// stays visible so a transient refresh failure never blanks the catalog.
func (s *CatalogService) Load() error {
	products, err := s.Products.List()
	if err != nil {
		return s.fail(err)
	}
	establishments, err := s.Establishments.List()
	if err != nil {
		return s.fail(err)
	}
	prices, err := s.Prices.List()
	if err != nil {
		return s.fail(err)
	}
	offers, err := s.Offers.List()
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.products = products
	s.establishments = establishments
	s.prices = prices
	s.offers = offers
	s.loaded = true
	s.loadErr = nil
	s.mu.Unlock()
	return nil
}

func (s *CatalogService) fail(err error) error {
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
	return err
}

// Err reports the error recorded by the most recent failed load, or nil
// after a successful one.
func (s *CatalogService) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Loaded reports whether at least one load has completed.
func (s *CatalogService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *CatalogService) Productos() []domain.Producto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

func (s *CatalogService) Establecimientos() []domain.Establecimiento {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.establishments
}

func (s *CatalogService) Precios() []domain.Precio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices
}

func (s *CatalogService) Ofertas() []domain.Oferta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offers
}

// Search runs the catalog query pipeline against the current snapshot:
// substring match on name or category (case-insensitive), price
// attachment with minimum computation, then category, establishment and
// price-range filters, then a stable sort on the minimum price.
//
// An empty or whitespace-only query means "no search performed" and
// returns an empty result set, distinct from a query with no matches.
func (s *CatalogService) Search(query string, f domain.Filters) []domain.SearchResult {
	if strings.TrimSpace(query) == "" {
		return []domain.SearchResult{}
	}
	q := strings.ToLower(query)

	s.mu.RLock()
	products := s.products
	prices := s.prices
	s.mu.RUnlock()

	results := make([]domain.SearchResult, 0)
	for _, p := range products {
		if !strings.Contains(strings.ToLower(p.Nombre), q) &&
			!(p.Categoria != "" && strings.Contains(strings.ToLower(p.Categoria), q)) {
			continue
		}

		var attached []domain.Precio
		for _, pr := range prices {
			if pr.ProductoID == p.ID {
				attached = append(attached, pr)
			}
		}
		// A product without prices keeps MinPrice 0, which a range
		// containing 0 will admit. Matches the original behavior.
		minPrice := 0.0
		for i, pr := range attached {
			if i == 0 || pr.Precio < minPrice {
				minPrice = pr.Precio
			}
		}

		results = append(results, domain.SearchResult{Producto: p, Prices: attached, MinPrice: minPrice})
	}

	if f.Category != "" {
		results = keep(results, func(r domain.SearchResult) bool {
			return r.Categoria == f.Category
		})
	}
	if f.Establishment != "" {
		results = keep(results, func(r domain.SearchResult) bool {
			for _, pr := range r.Prices {
				if pr.EstablecimientoID == f.Establishment {
					return true
				}
			}
			return false
		})
	}
	results = keep(results, func(r domain.SearchResult) bool {
		return r.MinPrice >= f.PriceRange[0] && r.MinPrice <= f.PriceRange[1]
	})

	switch f.SortBy {
	case "price_desc":
		sort.SliceStable(results, func(i, j int) bool { return results[i].MinPrice > results[j].MinPrice })
	default: // price_asc and anything unrecognized
		sort.SliceStable(results, func(i, j int) bool { return results[i].MinPrice < results[j].MinPrice })
	}

	return results
}

func keep(in []domain.SearchResult, pred func(domain.SearchResult) bool) []domain.SearchResult {
	out := in[:0]
	for _, r := range in {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Categorias returns the distinct product categories, for the search
// filter dropdown.
func (s *CatalogService) Categorias() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]bool{}
	var out []string
	for _, p := range s.products {
		if p.Categoria != "" && !seen[p.Categoria] {
			seen[p.Categoria] = true
			out = append(out, p.Categoria)
		}
	}
	sort.Strings(out)
	return out
}

// ProductDetail returns a product with its prices joined against the
// establishment list (rows whose establishment is gone are dropped),
// sorted cheapest first, plus the price spread statistics.
func (s *CatalogService) ProductDetail(id string) (domain.Producto, []domain.PrecioDetalle, domain.PriceStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var product domain.Producto
	found := false
	for _, p := range s.products {
		if p.ID == id {
			product = p
			found = true
			break
		}
	}
	if !found {
		return domain.Producto{}, nil, domain.PriceStats{}, false
	}

	var detalles []domain.PrecioDetalle
	for _, pr := range s.prices {
		if pr.ProductoID != id {
			continue
		}
		for _, e := range s.establishments {
			if e.ID == pr.EstablecimientoID {
				detalles = append(detalles, domain.PrecioDetalle{Precio: pr, Establecimiento: e})
				break
			}
		}
	}
	sort.SliceStable(detalles, func(i, j int) bool { return detalles[i].Precio.Precio < detalles[j].Precio.Precio })

	var stats domain.PriceStats
	if n := len(detalles); n > 0 {
		stats.Min = detalles[0].Precio.Precio
		stats.Max = detalles[n-1].Precio.Precio
		sum := 0.0
		for _, d := range detalles {
			sum += d.Precio.Precio
		}
		stats.Avg = sum / float64(n)
		stats.Diff = stats.Max - stats.Min
		if stats.Max > 0 {
			stats.MaxSavingsPct = stats.Diff / stats.Max * 100
		}
	}

	return product, detalles, stats, true
}

// EstablishmentDetail returns an establishment with the prices it carries
// and its active offers.
func (s *CatalogService) EstablishmentDetail(id string) (domain.Establecimiento, []domain.Precio, []domain.Oferta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var est domain.Establecimiento
	found := false
	for _, e := range s.establishments {
		if e.ID == id {
			est = e
			found = true
			break
		}
	}
	if !found {
		return domain.Establecimiento{}, nil, nil, false
	}

	var precios []domain.Precio
	for _, pr := range s.prices {
		if pr.EstablecimientoID == id {
			precios = append(precios, pr)
		}
	}
	var ofertas []domain.Oferta
	for _, o := range s.offers {
		if o.EstablecimientoID == id && o.Activa {
			ofertas = append(ofertas, o)
		}
	}
	return est, precios, ofertas, true
}
