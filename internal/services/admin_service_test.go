package services_test

import (
	"io"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/repos"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
)

// fakeStore records uploads instead of touching disk.
type fakeStore struct {
	saves []string // bucket/origName per call
}

func (f *fakeStore) Save(bucket, origName string, _ io.Reader) (string, error) {
	f.saves = append(f.saves, bucket+"/"+origName)
	return "/media/" + bucket + "/fake.jpg", nil
}

func adminFixture(t *testing.T) (*sqlx.DB, *services.AdminService, *fakeStore) {
	t.Helper()
	db := memdb(t)
	prodRepo := repos.NewProductRepo(db)
	estRepo := repos.NewEstablishmentRepo(db)
	priceRepo := repos.NewPriceRepo(db)
	offerRepo := repos.NewOfferRepo(db)
	catalog := services.NewCatalogService(prodRepo, estRepo, priceRepo, offerRepo)
	if err := catalog.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	store := &fakeStore{}
	admin := services.NewAdminService(prodRepo, estRepo, priceRepo, offerRepo, store, catalog)
	return db, admin, store
}

func count(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.Get(&n, db.Rebind(query), args...); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestCreateProductWithPrice(t *testing.T) {
	db, admin, store := adminFixture(t)

	p := domain.Producto{Nombre: "Fideos Guiseros", Categoria: "Almacen"}
	img := &services.Imagen{Nombre: "fideos.png", Datos: strings.NewReader("png-bytes")}
	if err := admin.CreateProductWithPrice(p, "est-coto", 430, img, "u-admin"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(store.saves) != 1 || store.saves[0] != "product-images/fideos.png" {
		t.Fatalf("want one upload to product-images, got %v", store.saves)
	}

	var row domain.Producto
	if err := db.Get(&row, db.Rebind(`SELECT id,nombre,descripcion,categoria,imagen_url,codigo_barras,user_id FROM products WHERE nombre=?`), "Fideos Guiseros"); err != nil {
		t.Fatalf("product row: %v", err)
	}
	if row.ImagenURL != "/media/product-images/fake.jpg" || row.UserID != "u-admin" {
		t.Fatalf("bad product row: %+v", row)
	}

	var precio domain.Precio
	if err := db.Get(&precio, db.Rebind(`SELECT id,producto_id,establecimiento_id,precio,fecha_actualizacion,user_id FROM prices WHERE producto_id=?`), row.ID); err != nil {
		t.Fatalf("price row: %v", err)
	}
	if precio.EstablecimientoID != "est-coto" || precio.Precio != 430 || precio.FechaActualizacion != "2025-11-15" {
		t.Fatalf("bad price row: %+v", precio)
	}

	// The catalog reloaded: the new product is searchable straight away.
	if got := admin.Catalog.Search("fideos", domain.DefaultFilters()); len(got) != 1 {
		t.Fatalf("reload missing: want 1 result, got %d", len(got))
	}
}

func TestCreateProductWithoutImageSkipsUpload(t *testing.T) {
	_, admin, store := adminFixture(t)

	p := domain.Producto{Nombre: "Azucar", Categoria: "Almacen"}
	if err := admin.CreateProductWithPrice(p, "est-coto", 600, nil, "u-admin"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(store.saves) != 0 {
		t.Fatalf("no image given, yet %d uploads happened", len(store.saves))
	}
}

// Updating without a new file keeps whatever imagen_url the form carried.
func TestUpdateProductKeepsFormImageURL(t *testing.T) {
	db, admin, store := adminFixture(t)

	p := domain.Producto{
		ID: "prod-aceite-girasol", Nombre: "Aceite de Girasol 900ml",
		Categoria: "Aceites", ImagenURL: "/media/product-images/existing.jpg",
	}
	if err := admin.UpdateProduct(p, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(store.saves) != 0 {
		t.Fatalf("unexpected upload: %v", store.saves)
	}

	var url string
	if err := db.Get(&url, db.Rebind(`SELECT imagen_url FROM products WHERE id=?`), "prod-aceite-girasol"); err != nil {
		t.Fatal(err)
	}
	if url != "/media/product-images/existing.jpg" {
		t.Fatalf("imagen_url overwritten: %s", url)
	}
}

func TestDeleteProductCascadesPrices(t *testing.T) {
	db, admin, _ := adminFixture(t)

	if n := count(t, db, `SELECT COUNT(*) FROM prices WHERE producto_id=?`, "prod-aceite-girasol"); n != 2 {
		t.Fatalf("fixture: want 2 prices, got %d", n)
	}
	if err := admin.DeleteProduct("prod-aceite-girasol"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM prices WHERE producto_id=?`, "prod-aceite-girasol"); n != 0 {
		t.Fatalf("prices survived the cascade: %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM products WHERE id=?`, "prod-aceite-girasol"); n != 0 {
		t.Fatal("product row survived")
	}
}

// A failed second step leaves the first step's deletions in place. The
// operation reports the error; retrying is the recovery path.
func TestDeleteProductNoRollback(t *testing.T) {
	db, admin, _ := adminFixture(t)

	if _, err := db.Exec(`ALTER TABLE products RENAME TO products_gone`); err != nil {
		t.Fatal(err)
	}
	if err := admin.DeleteProduct("prod-aceite-girasol"); err == nil {
		t.Fatal("want error from missing products table")
	}
	if n := count(t, db, `SELECT COUNT(*) FROM prices WHERE producto_id=?`, "prod-aceite-girasol"); n != 0 {
		t.Fatalf("price deletions must not roll back, %d rows remain", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM products_gone WHERE id=?`, "prod-aceite-girasol"); n != 1 {
		t.Fatal("product row must survive the failed step")
	}
}

func TestDeleteEstablishmentCascades(t *testing.T) {
	db, admin, _ := adminFixture(t)

	if err := admin.DeleteEstablishment("est-carrefour"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM prices WHERE establecimiento_id=?`, "est-carrefour"); n != 0 {
		t.Fatalf("prices survived: %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM offers WHERE establecimiento_id=?`, "est-carrefour"); n != 0 {
		t.Fatalf("offers survived: %d", n)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM establishments WHERE id=?`, "est-carrefour"); n != 0 {
		t.Fatal("establishment row survived")
	}

	// Cascade deletes are no-ops on absent rows: deleting again succeeds.
	if err := admin.DeleteEstablishment("est-carrefour"); err != nil {
		t.Fatalf("second delete must be a no-op success, got %v", err)
	}
}

func TestUpdatePriceStampsDate(t *testing.T) {
	db, admin, _ := adminFixture(t)

	if _, err := db.Exec(db.Rebind(`UPDATE prices SET fecha_actualizacion=? WHERE id=?`), "2025-01-01", "pr-1"); err != nil {
		t.Fatal(err)
	}
	if err := admin.UpdatePrice("pr-1", 999); err != nil {
		t.Fatalf("update: %v", err)
	}

	var p domain.Precio
	if err := db.Get(&p, db.Rebind(`SELECT id,producto_id,establecimiento_id,precio,fecha_actualizacion,user_id FROM prices WHERE id=?`), "pr-1"); err != nil {
		t.Fatal(err)
	}
	if p.Precio != 999 || p.FechaActualizacion != "2025-11-15" {
		t.Fatalf("bad price row after update: %+v", p)
	}
}

func TestCreatePriceAndOffer(t *testing.T) {
	db, admin, _ := adminFixture(t)

	if err := admin.CreatePrice("prod-leche-entera", "est-carrefour", 495, "u-admin"); err != nil {
		t.Fatalf("create price: %v", err)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM prices WHERE producto_id=?`, "prod-leche-entera"); n != 3 {
		t.Fatalf("want 3 prices for the milk, got %d", n)
	}

	o := domain.Oferta{
		EstablecimientoID: "est-coto",
		Descripcion:       "30% en almacen",
		Descuento:         30,
		FechaInicio:       "2025-11-20",
		FechaFin:          "2025-11-27",
		Activa:            true,
	}
	if err := admin.CreateOffer(o, "u-admin"); err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if n := count(t, db, `SELECT COUNT(*) FROM offers WHERE establecimiento_id=?`, "est-coto"); n != 1 {
		t.Fatalf("offer missing, got %d", n)
	}
}
