package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
)

type PriceRepo struct{ db *sqlx.DB }

func NewPriceRepo(db *sqlx.DB) *PriceRepo { return &PriceRepo{db: db} }

// List returns every price row. No ordering contract at fetch time; the
// catalog sorts in memory where views need it.
func (r *PriceRepo) List() ([]domain.Precio, error) {
	var out []domain.Precio
	err := r.db.Select(&out, `
  SELECT id, producto_id, establecimiento_id, precio, fecha_actualizacion, user_id
  FROM prices
`)
	return out, err
}

func (r *PriceRepo) Get(id string) (domain.Precio, error) {
	var p domain.Precio
	err := r.db.Get(&p, r.db.Rebind(`
  SELECT id, producto_id, establecimiento_id, precio, fecha_actualizacion, user_id
  FROM prices
  WHERE id = ?
`), id)
	return p, err
}

func (r *PriceRepo) Insert(p domain.Precio) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.Exec(r.db.Rebind(`
  INSERT INTO prices(id, producto_id, establecimiento_id, precio, fecha_actualizacion, user_id)
  VALUES(?,?,?,?,?,?)
`), p.ID, p.ProductoID, p.EstablecimientoID, p.Precio, p.FechaActualizacion, p.UserID)
	return p.ID, err
}

// UpdateAmount rewrites the amount and the last-updated date in place.
func (r *PriceRepo) UpdateAmount(id string, precio float64, fecha string) error {
	_, err := r.db.Exec(r.db.Rebind(`
  UPDATE prices SET precio=?, fecha_actualizacion=? WHERE id=?
`), precio, fecha, id)
	return err
}

func (r *PriceRepo) Delete(id string) error {
	_, err := r.db.Exec(r.db.Rebind(`DELETE FROM prices WHERE id=?`), id)
	return err
}

// DeleteByProduct removes every price referencing the product and reports
// how many rows went away. Zero rows is success (idempotent cascades).
func (r *PriceRepo) DeleteByProduct(productoID string) (int64, error) {
	res, err := r.db.Exec(r.db.Rebind(`DELETE FROM prices WHERE producto_id=?`), productoID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByEstablishment removes every price at the establishment.
func (r *PriceRepo) DeleteByEstablishment(establecimientoID string) (int64, error) {
	res, err := r.db.Exec(r.db.Rebind(`DELETE FROM prices WHERE establecimiento_id=?`), establecimientoID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
