// Package format holds the presentation-side helpers: localized currency
// strings and foreign-key to display-name resolution.
package format

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
)

var (
	esAR = message.NewPrinter(language.MustParse("es-AR"))
	ars  = currency.MustParseISO("ARS")
)

// Price renders an amount as an es-AR localized ARS currency string.
func Price(v float64) string {
	return esAR.Sprintf("%v", currency.Symbol(ars.Amount(v)))
}

// EstablishmentName resolves an establishment id to its display name.
func EstablishmentName(id string, establishments []domain.Establecimiento) string {
	for _, e := range establishments {
		if e.ID == id {
			return e.Nombre
		}
	}
	return "Desconocido"
}

// ProductName resolves a product id to its display name.
func ProductName(id string, products []domain.Producto) string {
	for _, p := range products {
		if p.ID == id {
			return p.Nombre
		}
	}
	return "Desconocido"
}
