package repos

import (
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// OpenDB connects to the backing store. A postgres:// DSN targets the
// hosted database; anything else is treated as a sqlite file path
// (development and tests). Queries across the codebase use `?` bindvars
// and are rebound per driver with db.Rebind.
func OpenDB(dsn string) (*sqlx.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// One connection: sqlite serializes writers anyway, and pooled
		// connections against a :memory: DSN would each see their own
		// empty database.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return nil, err
		}
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline catalog data if the store is empty (establishments/products/prices/offers)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Establishments (supermarkets / wholesalers)
CREATE TABLE IF NOT EXISTS establishments(
  id TEXT PRIMARY KEY,
  nombre TEXT NOT NULL,
  direccion TEXT NOT NULL DEFAULT '',
  telefono TEXT NOT NULL DEFAULT '',
  tipo TEXT NOT NULL CHECK (tipo IN ('supermercado','mayorista')),
  horarios TEXT NOT NULL DEFAULT '',
  imagen_url TEXT NOT NULL DEFAULT '',
  user_id TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_establishments_nombre ON establishments(nombre);

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  nombre TEXT NOT NULL,
  descripcion TEXT NOT NULL DEFAULT '',
  categoria TEXT NOT NULL,
  imagen_url TEXT NOT NULL DEFAULT '',
  codigo_barras TEXT NOT NULL DEFAULT '',
  user_id TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_nombre    ON products(nombre);
CREATE INDEX IF NOT EXISTS idx_products_categoria ON products(categoria);

-- Prices: one product at one establishment at a point in time.
-- No uniqueness on (producto_id, establecimiento_id); duplicates are
-- accepted the way the hosted store accepts them.
CREATE TABLE IF NOT EXISTS prices(
  id TEXT PRIMARY KEY,
  producto_id TEXT NOT NULL,
  establecimiento_id TEXT NOT NULL,
  precio NUMERIC NOT NULL CHECK (precio >= 0),
  fecha_actualizacion TEXT NOT NULL DEFAULT '',
  user_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_prices_producto        ON prices(producto_id);
CREATE INDEX IF NOT EXISTS idx_prices_establecimiento ON prices(establecimiento_id);

-- Offers: time-bounded percentage discounts per establishment.
CREATE TABLE IF NOT EXISTS offers(
  id TEXT PRIMARY KEY,
  establecimiento_id TEXT NOT NULL,
  descripcion TEXT NOT NULL DEFAULT '',
  descuento NUMERIC NOT NULL CHECK (descuento >= 0 AND descuento <= 100),
  fecha_inicio TEXT NOT NULL DEFAULT '',
  fecha_fin TEXT NOT NULL DEFAULT '',
  activa BOOLEAN NOT NULL DEFAULT TRUE,
  user_id TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_offers_establecimiento ON offers(establecimiento_id);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

// seedIfEmpty loads the demo catalog (Buenos Aires supermarkets and
// wholesalers) on first start.
func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM establishments`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo establishments/products/prices/offers")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO establishments(id,nombre,direccion,telefono,tipo,horarios) VALUES
	  ('est-carrefour','Carrefour','Av. Corrientes 1234, CABA','011-4567-8900','supermercado','Lun-Dom 8:00-22:00'),
	  ('est-coto','Coto','Av. Santa Fe 2345, CABA','011-4567-8901','supermercado','Lun-Dom 7:30-23:00'),
	  ('est-disco','Disco','Av. Rivadavia 3456, CABA','011-4567-8902','supermercado','Lun-Dom 8:00-22:30'),
	  ('est-mayorista-central','Mayorista Central','Av. Warnes 4567, CABA','011-4567-8903','mayorista','Lun-Vie 6:00-18:00, Sab 6:00-14:00'),
	  ('est-jumbo','Jumbo','Av. del Libertador 5678, CABA','011-4567-8904','supermercado','Lun-Dom 8:00-23:00'),
	  ('est-makro','Makro','Ruta 8 Km 23, Provincia de Buenos Aires','011-4567-8905','mayorista','Lun-Vie 7:00-19:00, Sab 7:00-15:00')`)

	tx.MustExec(`INSERT INTO products(id,nombre,descripcion,categoria,codigo_barras) VALUES
	  ('prod-aceite-girasol','Aceite de Girasol','Aceite de girasol 900ml','Aceites','7790070410120'),
	  ('prod-arroz-largo','Arroz Largo Fino','Arroz largo fino 1kg','Almacen','7790070410121'),
	  ('prod-leche-entera','Leche Entera','Leche entera 1L','Lacteos','7790070410122'),
	  ('prod-yerba-mate','Yerba Mate','Yerba mate 1kg','Infusiones','7790070410123')`)

	tx.MustExec(`INSERT INTO prices(id,producto_id,establecimiento_id,precio,fecha_actualizacion) VALUES
	  ('pr-1','prod-aceite-girasol','est-carrefour',850,'2025-11-15'),
	  ('pr-2','prod-aceite-girasol','est-mayorista-central',750,'2025-11-15'),
	  ('pr-3','prod-arroz-largo','est-coto',620,'2025-11-15'),
	  ('pr-4','prod-arroz-largo','est-makro',540,'2025-11-15'),
	  ('pr-5','prod-leche-entera','est-disco',480,'2025-11-15'),
	  ('pr-6','prod-leche-entera','est-jumbo',510,'2025-11-15'),
	  ('pr-7','prod-yerba-mate','est-carrefour',1320,'2025-11-15'),
	  ('pr-8','prod-yerba-mate','est-mayorista-central',1150,'2025-11-15')`)

	tx.MustExec(`INSERT INTO offers(id,establecimiento_id,descripcion,descuento,fecha_inicio,fecha_fin,activa) VALUES
	  ('of-1','est-carrefour','2x1 en lacteos seleccionados',50,'2025-11-01','2025-12-01',TRUE),
	  ('of-2','est-mayorista-central','15% en compras mayores a $50000',15,'2025-11-10','2025-11-30',TRUE),
	  ('of-3','est-jumbo','20% en almacen los miercoles',20,'2025-10-01','2025-10-31',FALSE)`)

	return tx.Commit()
}

// seedUsers ensures one ADMIN and a demo USER exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-demo", "demo@comparar.test", "Demo", "USER", "Passw0rd!"),
		mk("u-admin", "admin@comparar.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		q := tx.Rebind(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`)
		if _, err := tx.Exec(q, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
