package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
)

type EstablishmentRepo struct{ db *sqlx.DB }

func NewEstablishmentRepo(db *sqlx.DB) *EstablishmentRepo { return &EstablishmentRepo{db: db} }

// List returns every establishment ordered by name ascending.
func (r *EstablishmentRepo) List() ([]domain.Establecimiento, error) {
	var out []domain.Establecimiento
	err := r.db.Select(&out, `
  SELECT id, nombre, direccion, telefono, tipo, horarios, imagen_url, user_id,
         COALESCE(created_at,'') AS created_at
  FROM establishments
  ORDER BY nombre ASC
`)
	return out, err
}

func (r *EstablishmentRepo) Get(id string) (domain.Establecimiento, error) {
	var e domain.Establecimiento
	err := r.db.Get(&e, r.db.Rebind(`
  SELECT id, nombre, direccion, telefono, tipo, horarios, imagen_url, user_id,
         COALESCE(created_at,'') AS created_at
  FROM establishments
  WHERE id = ?
`), id)
	return e, err
}

func (r *EstablishmentRepo) Insert(e domain.Establecimiento) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.Exec(r.db.Rebind(`
  INSERT INTO establishments(id, nombre, direccion, telefono, tipo, horarios, imagen_url, user_id)
  VALUES(?,?,?,?,?,?,?,?)
`), e.ID, e.Nombre, e.Direccion, e.Telefono, e.Tipo, e.Horarios, e.ImagenURL, e.UserID)
	return e.ID, err
}

func (r *EstablishmentRepo) Update(e domain.Establecimiento) error {
	_, err := r.db.Exec(r.db.Rebind(`
  UPDATE establishments
  SET nombre=?, direccion=?, telefono=?, tipo=?, horarios=?, imagen_url=?
  WHERE id=?
`), e.Nombre, e.Direccion, e.Telefono, e.Tipo, e.Horarios, e.ImagenURL, e.ID)
	return err
}

func (r *EstablishmentRepo) Delete(id string) error {
	_, err := r.db.Exec(r.db.Rebind(`DELETE FROM establishments WHERE id=?`), id)
	return err
}
