package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
)

type OfferRepo struct{ db *sqlx.DB }

func NewOfferRepo(db *sqlx.DB) *OfferRepo { return &OfferRepo{db: db} }

func (r *OfferRepo) List() ([]domain.Oferta, error) {
	var out []domain.Oferta
	err := r.db.Select(&out, `
  SELECT id, establecimiento_id, descripcion, descuento, fecha_inicio, fecha_fin, activa, user_id
  FROM offers
`)
	return out, err
}

func (r *OfferRepo) Get(id string) (domain.Oferta, error) {
	var o domain.Oferta
	err := r.db.Get(&o, r.db.Rebind(`
  SELECT id, establecimiento_id, descripcion, descuento, fecha_inicio, fecha_fin, activa, user_id
  FROM offers
  WHERE id = ?
`), id)
	return o, err
}

func (r *OfferRepo) Insert(o domain.Oferta) (string, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	_, err := r.db.Exec(r.db.Rebind(`
  INSERT INTO offers(id, establecimiento_id, descripcion, descuento, fecha_inicio, fecha_fin, activa, user_id)
  VALUES(?,?,?,?,?,?,?,?)
`), o.ID, o.EstablecimientoID, o.Descripcion, o.Descuento, o.FechaInicio, o.FechaFin, o.Activa, o.UserID)
	return o.ID, err
}

func (r *OfferRepo) Update(o domain.Oferta) error {
	_, err := r.db.Exec(r.db.Rebind(`
  UPDATE offers
  SET establecimiento_id=?, descripcion=?, descuento=?, fecha_inicio=?, fecha_fin=?, activa=?
  WHERE id=?
`), o.EstablecimientoID, o.Descripcion, o.Descuento, o.FechaInicio, o.FechaFin, o.Activa, o.ID)
	return err
}

func (r *OfferRepo) Delete(id string) error {
	_, err := r.db.Exec(r.db.Rebind(`DELETE FROM offers WHERE id=?`), id)
	return err
}

// DeleteByEstablishment removes every offer scoped to the establishment.
func (r *OfferRepo) DeleteByEstablishment(establecimientoID string) (int64, error) {
	res, err := r.db.Exec(r.db.Rebind(`DELETE FROM offers WHERE establecimiento_id=?`), establecimientoID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
