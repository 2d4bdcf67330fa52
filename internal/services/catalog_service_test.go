package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/repos"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
)

// memdb opens an in-memory store with the seeded demo catalog.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func loadedCatalog(t *testing.T, db *sqlx.DB) *services.CatalogService {
	t.Helper()
	svc := services.NewCatalogService(
		repos.NewProductRepo(db),
		repos.NewEstablishmentRepo(db),
		repos.NewPriceRepo(db),
		repos.NewOfferRepo(db),
	)
	if err := svc.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return svc
}

func TestSearchEmptyQueryReturnsEmpty(t *testing.T) {
	svc := loadedCatalog(t, memdb(t))

	for _, q := range []string{"", "   ", "\t"} {
		got := svc.Search(q, domain.DefaultFilters())
		if len(got) != 0 {
			t.Fatalf("query %q: want empty result set, got %d results", q, len(got))
		}
	}
}

// Searching "aceite" against the demo catalog must find the sunflower oil
// with its cheapest offer (the wholesaler at 750) ahead of the other one.
func TestSearchAceite(t *testing.T) {
	svc := loadedCatalog(t, memdb(t))

	results := svc.Search("aceite", domain.DefaultFilters())
	if len(results) != 1 {
		t.Fatalf("want 1 result, got %d", len(results))
	}
	r := results[0]
	if r.ID != "prod-aceite-girasol" {
		t.Fatalf("want prod-aceite-girasol, got %s", r.ID)
	}
	if r.MinPrice != 750 {
		t.Fatalf("want min price 750, got %v", r.MinPrice)
	}
	if len(r.Prices) != 2 {
		t.Fatalf("want 2 attached prices, got %d", len(r.Prices))
	}
}

// Matching is case-insensitive on name or category substrings.
func TestSearchMatchesNameOrCategory(t *testing.T) {
	svc := loadedCatalog(t, memdb(t))

	byName := svc.Search("ACEITE", domain.DefaultFilters())
	if len(byName) != 1 {
		t.Fatalf("uppercase name query: want 1 result, got %d", len(byName))
	}
	byCat := svc.Search("lacteos", domain.DefaultFilters())
	if len(byCat) != 1 || byCat[0].ID != "prod-leche-entera" {
		t.Fatalf("category query: want prod-leche-entera, got %+v", byCat)
	}
	none := svc.Search("notebook", domain.DefaultFilters())
	if len(none) != 0 {
		t.Fatalf("non-matching query: want 0 results, got %d", len(none))
	}
}

func TestSearchEstablishmentAndRangeFilters(t *testing.T) {
	svc := loadedCatalog(t, memdb(t))

	// Only products with at least one price at the wholesaler, capped at 800:
	// the oil (min 750) passes, the yerba (min 1150) does not.
	f := domain.DefaultFilters()
	f.Establishment = "est-mayorista-central"
	f.PriceRange = [2]float64{0, 800}
	results := svc.Search("a", f)
	if len(results) != 1 || results[0].ID != "prod-aceite-girasol" {
		t.Fatalf("want only prod-aceite-girasol, got %+v", results)
	}

	// Range bounds are inclusive on the minimum price.
	f = domain.DefaultFilters()
	f.PriceRange = [2]float64{750, 750}
	results = svc.Search("aceite", f)
	if len(results) != 1 {
		t.Fatalf("inclusive bound: want 1 result, got %d", len(results))
	}
	f.PriceRange = [2]float64{751, 10000}
	if got := svc.Search("aceite", f); len(got) != 0 {
		t.Fatalf("below lower bound: want 0 results, got %d", len(got))
	}
}

func TestSearchCategoryFilterIsExact(t *testing.T) {
	svc := loadedCatalog(t, memdb(t))

	f := domain.DefaultFilters()
	f.Category = "Aceites"
	results := svc.Search("a", f)
	if len(results) != 1 || results[0].Categoria != "Aceites" {
		t.Fatalf("want one result in Aceites, got %+v", results)
	}

	f.Category = "aceites" // exact match, not case-folded
	if got := svc.Search("a", f); len(got) != 0 {
		t.Fatalf("lowercase category: want 0 results, got %d", len(got))
	}
}

func TestSearchSortByMinPrice(t *testing.T) {
	svc := loadedCatalog(t, memdb(t))

	f := domain.DefaultFilters()
	asc := svc.Search("a", f)
	if len(asc) < 2 {
		t.Fatalf("want several results, got %d", len(asc))
	}
	for i := 1; i < len(asc); i++ {
		if asc[i-1].MinPrice > asc[i].MinPrice {
			t.Fatalf("ascending order broken at %d: %v > %v", i, asc[i-1].MinPrice, asc[i].MinPrice)
		}
	}

	f.SortBy = "price_desc"
	desc := svc.Search("a", f)
	for i := 1; i < len(desc); i++ {
		if desc[i-1].MinPrice < desc[i].MinPrice {
			t.Fatalf("descending order broken at %d: %v < %v", i, desc[i-1].MinPrice, desc[i].MinPrice)
		}
	}

	// Unknown sort keys fall back to ascending.
	f.SortBy = "name_asc"
	fallback := svc.Search("a", f)
	for i := 1; i < len(fallback); i++ {
		if fallback[i-1].MinPrice > fallback[i].MinPrice {
			t.Fatalf("fallback order broken at %d", i)
		}
	}
}

// A product with no price rows carries MinPrice 0 and is admitted by any
// range whose lower bound is 0.
func TestSearchPricelessProductInZeroRange(t *testing.T) {
	db := memdb(t)
	if _, err := db.Exec(`INSERT INTO products(id,nombre,categoria) VALUES('prod-sin-precio','Harina 000','Almacen')`); err != nil {
		t.Fatal(err)
	}
	svc := loadedCatalog(t, db)

	results := svc.Search("harina", domain.DefaultFilters())
	if len(results) != 1 || results[0].MinPrice != 0 {
		t.Fatalf("want priceless product with MinPrice 0, got %+v", results)
	}

	f := domain.DefaultFilters()
	f.PriceRange = [2]float64{1, 10000}
	if got := svc.Search("harina", f); len(got) != 0 {
		t.Fatalf("range excluding 0: want 0 results, got %d", len(got))
	}
}

func TestCategoriasDistinctSorted(t *testing.T) {
	db := memdb(t)
	if _, err := db.Exec(`INSERT INTO products(id,nombre,categoria) VALUES('prod-otro-aceite','Aceite de Oliva','Aceites')`); err != nil {
		t.Fatal(err)
	}
	svc := loadedCatalog(t, db)

	cats := svc.Categorias()
	want := []string{"Aceites", "Almacen", "Infusiones", "Lacteos"}
	if len(cats) != len(want) {
		t.Fatalf("want %v, got %v", want, cats)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Fatalf("want %v, got %v", want, cats)
		}
	}
}

func TestProductDetailStats(t *testing.T) {
	svc := loadedCatalog(t, memdb(t))

	product, precios, stats, ok := svc.ProductDetail("prod-aceite-girasol")
	if !ok {
		t.Fatal("product not found")
	}
	if product.Nombre != "Aceite de Girasol" {
		t.Fatalf("want Aceite de Girasol, got %s", product.Nombre)
	}
	if len(precios) != 2 || precios[0].Precio.Precio != 750 || precios[1].Precio.Precio != 850 {
		t.Fatalf("want prices [750 850] cheapest first, got %+v", precios)
	}
	if precios[0].Establecimiento.Nombre != "Mayorista Central" {
		t.Fatalf("cheapest row should join the wholesaler, got %s", precios[0].Establecimiento.Nombre)
	}
	if stats.Min != 750 || stats.Max != 850 || stats.Avg != 800 || stats.Diff != 100 {
		t.Fatalf("bad stats: %+v", stats)
	}
	if pct := stats.MaxSavingsPct; pct < 11.7 || pct > 11.8 {
		t.Fatalf("want savings ~11.76%%, got %v", pct)
	}

	if _, _, _, ok := svc.ProductDetail("prod-nope"); ok {
		t.Fatal("unknown id must report not found")
	}
}

// Price rows referencing an establishment that no longer exists are
// dropped from the detail view instead of rendering half-empty.
func TestProductDetailDropsOrphanedPrices(t *testing.T) {
	db := memdb(t)
	if _, err := db.Exec(`DELETE FROM establishments WHERE id='est-carrefour'`); err != nil {
		t.Fatal(err)
	}
	svc := loadedCatalog(t, db)

	_, precios, stats, ok := svc.ProductDetail("prod-aceite-girasol")
	if !ok {
		t.Fatal("product not found")
	}
	if len(precios) != 1 || precios[0].Precio.Precio != 750 {
		t.Fatalf("want only the wholesaler row, got %+v", precios)
	}
	if stats.Min != 750 || stats.Max != 750 || stats.Diff != 0 || stats.MaxSavingsPct != 0 {
		t.Fatalf("single-row stats wrong: %+v", stats)
	}
}

func TestEstablishmentDetail(t *testing.T) {
	svc := loadedCatalog(t, memdb(t))

	est, precios, ofertas, ok := svc.EstablishmentDetail("est-carrefour")
	if !ok {
		t.Fatal("establishment not found")
	}
	if est.Tipo != "supermercado" {
		t.Fatalf("want supermercado, got %s", est.Tipo)
	}
	if len(precios) != 2 {
		t.Fatalf("want 2 prices, got %d", len(precios))
	}
	if len(ofertas) != 1 || ofertas[0].ID != "of-1" {
		t.Fatalf("want only the active offer, got %+v", ofertas)
	}

	// Inactive offers stay out even for their own establishment.
	_, _, jumboOffers, _ := svc.EstablishmentDetail("est-jumbo")
	if len(jumboOffers) != 0 {
		t.Fatalf("inactive offer leaked: %+v", jumboOffers)
	}
}

// A failed reload records the error and keeps the previous snapshot
// visible; a later successful reload clears it.
func TestLoadFailureKeepsPreviousSnapshot(t *testing.T) {
	db := memdb(t)
	svc := loadedCatalog(t, db)

	before := len(svc.Productos())
	if before == 0 {
		t.Fatal("no products after first load")
	}

	if _, err := db.Exec(`ALTER TABLE offers RENAME TO offers_gone`); err != nil {
		t.Fatal(err)
	}
	if err := svc.Load(); err == nil {
		t.Fatal("load over missing table must fail")
	}
	if svc.Err() == nil {
		t.Fatal("failed load must be recorded")
	}
	if !svc.Loaded() || len(svc.Productos()) != before || len(svc.Ofertas()) == 0 {
		t.Fatal("previous snapshot must stay visible after a failed load")
	}

	if _, err := db.Exec(`ALTER TABLE offers_gone RENAME TO offers`); err != nil {
		t.Fatal(err)
	}
	if err := svc.Load(); err != nil {
		t.Fatalf("recovery load: %v", err)
	}
	if svc.Err() != nil {
		t.Fatalf("successful load must clear the recorded error, got %v", svc.Err())
	}
}
