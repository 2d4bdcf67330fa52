package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// List returns every product ordered by name ascending, the catalog's
// default load order.
func (r *ProductRepo) List() ([]domain.Producto, error) {
	var out []domain.Producto
	err := r.db.Select(&out, `
  SELECT id, nombre, descripcion, categoria, imagen_url, codigo_barras, user_id,
         COALESCE(created_at,'') AS created_at
  FROM products
  ORDER BY nombre ASC
`)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Producto, error) {
	var p domain.Producto
	err := r.db.Get(&p, r.db.Rebind(`
  SELECT id, nombre, descripcion, categoria, imagen_url, codigo_barras, user_id,
         COALESCE(created_at,'') AS created_at
  FROM products
  WHERE id = ?
`), id)
	return p, err
}

// Insert stores a new product and returns its generated id.
func (r *ProductRepo) Insert(p domain.Producto) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.Exec(r.db.Rebind(`
  INSERT INTO products(id, nombre, descripcion, categoria, imagen_url, codigo_barras, user_id)
  VALUES(?,?,?,?,?,?,?)
`), p.ID, p.Nombre, p.Descripcion, p.Categoria, p.ImagenURL, p.CodigoBarras, p.UserID)
	return p.ID, err
}

func (r *ProductRepo) Update(p domain.Producto) error {
	_, err := r.db.Exec(r.db.Rebind(`
  UPDATE products
  SET nombre=?, descripcion=?, categoria=?, imagen_url=?, codigo_barras=?
  WHERE id=?
`), p.Nombre, p.Descripcion, p.Categoria, p.ImagenURL, p.CodigoBarras, p.ID)
	return err
}

// Delete removes a product row. Deleting an absent id is a no-op, not an
// error, so cascade retries stay idempotent.
func (r *ProductRepo) Delete(id string) error {
	_, err := r.db.Exec(r.db.Rebind(`DELETE FROM products WHERE id=?`), id)
	return err
}
