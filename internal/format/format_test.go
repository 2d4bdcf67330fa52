package format_test

import (
	"strings"
	"testing"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/format"
)

func TestPriceCarriesCurrencyAndAmount(t *testing.T) {
	got := format.Price(850)
	if !strings.Contains(got, "850") {
		t.Fatalf("amount missing from %q", got)
	}
	if !strings.Contains(got, "$") {
		t.Fatalf("currency symbol missing from %q", got)
	}
}

func TestNameLookups(t *testing.T) {
	ests := []domain.Establecimiento{{ID: "e1", Nombre: "Coto"}}
	if got := format.EstablishmentName("e1", ests); got != "Coto" {
		t.Fatalf("want Coto, got %s", got)
	}
	if got := format.EstablishmentName("e-gone", ests); got != "Desconocido" {
		t.Fatalf("want Desconocido fallback, got %s", got)
	}

	prods := []domain.Producto{{ID: "p1", Nombre: "Yerba Mate"}}
	if got := format.ProductName("p1", prods); got != "Yerba Mate" {
		t.Fatalf("want Yerba Mate, got %s", got)
	}
	if got := format.ProductName("p-gone", nil); got != "Desconocido" {
		t.Fatalf("want Desconocido fallback, got %s", got)
	}
}
