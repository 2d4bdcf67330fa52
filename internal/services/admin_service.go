package services

import (
	"io"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/media"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/repos"
)

// fechaPrecio is the last-updated date stamped on created and updated
// price rows (fixed demo date, as the original panel does).
var fechaPrecio = "2025-11-15"

// Imagen is an uploaded image file handed down from a multipart form.
// A nil *Imagen means the form carried no file and no upload happens.
type Imagen struct {
	Nombre string
	Datos  io.Reader
}

// AdminService implements the admin panel's create/update/delete
// operations. Every mutation triggers a full catalog reload on success.
// Multi-step operations run each backend call separately: a failed step
// returns its error and earlier steps are not rolled back; retrying is
// safe because deletes on absent rows are no-ops.
type AdminService struct {
	Products       *repos.ProductRepo
	Establishments *repos.EstablishmentRepo
	Prices         *repos.PriceRepo
	Offers         *repos.OfferRepo
	Media          media.Store
	Catalog        *CatalogService
}

func NewAdminService(p *repos.ProductRepo, e *repos.EstablishmentRepo, pr *repos.PriceRepo, o *repos.OfferRepo, m media.Store, c *CatalogService) *AdminService {
	return &AdminService{Products: p, Establishments: e, Prices: pr, Offers: o, Media: m, Catalog: c}
}

// reload refreshes the snapshot after a successful mutation. A reload
// failure is recorded in the catalog state, not surfaced to the caller,
// so the mutation itself still reports success.
func (s *AdminService) reload() {
	_ = s.Catalog.Load()
}

// CreateProductWithPrice inserts a product together with its first price
// at one establishment. Steps in order: image upload (if any), product
// insert, price insert referencing the new product id.
func (s *AdminService) CreateProductWithPrice(p domain.Producto, establecimientoID string, precio float64, img *Imagen, userID string) error {
	if img != nil {
		url, err := s.Media.Save(media.BucketProducts, img.Nombre, img.Datos)
		if err != nil {
			return err
		}
		p.ImagenURL = url
	}
	p.UserID = userID

	id, err := s.Products.Insert(p)
	if err != nil {
		return err
	}
	_, err = s.Prices.Insert(domain.Precio{
		ProductoID:         id,
		EstablecimientoID:  establecimientoID,
		Precio:             precio,
		FechaActualizacion: fechaPrecio,
		UserID:             userID,
	})
	if err != nil {
		return err
	}
	s.reload()
	return nil
}

func (s *AdminService) CreateEstablishment(e domain.Establecimiento, img *Imagen, userID string) error {
	if img != nil {
		url, err := s.Media.Save(media.BucketEstablishments, img.Nombre, img.Datos)
		if err != nil {
			return err
		}
		e.ImagenURL = url
	}
	e.UserID = userID

	if _, err := s.Establishments.Insert(e); err != nil {
		return err
	}
	s.reload()
	return nil
}

// UpdateProduct rewrites a product row. A new image replaces the stored
// URL; otherwise whatever imagen_url came in the form data is kept.
func (s *AdminService) UpdateProduct(p domain.Producto, img *Imagen) error {
	if img != nil {
		url, err := s.Media.Save(media.BucketProducts, img.Nombre, img.Datos)
		if err != nil {
			return err
		}
		p.ImagenURL = url
	}
	if err := s.Products.Update(p); err != nil {
		return err
	}
	s.reload()
	return nil
}

func (s *AdminService) UpdateEstablishment(e domain.Establecimiento, img *Imagen) error {
	if img != nil {
		url, err := s.Media.Save(media.BucketEstablishments, img.Nombre, img.Datos)
		if err != nil {
			return err
		}
		e.ImagenURL = url
	}
	if err := s.Establishments.Update(e); err != nil {
		return err
	}
	s.reload()
	return nil
}

// CreatePrice adds a price for an existing product at an establishment.
func (s *AdminService) CreatePrice(productoID, establecimientoID string, precio float64, userID string) error {
	_, err := s.Prices.Insert(domain.Precio{
		ProductoID:         productoID,
		EstablecimientoID:  establecimientoID,
		Precio:             precio,
		FechaActualizacion: fechaPrecio,
		UserID:             userID,
	})
	if err != nil {
		return err
	}
	s.reload()
	return nil
}

func (s *AdminService) UpdatePrice(id string, precio float64) error {
	if err := s.Prices.UpdateAmount(id, precio, fechaPrecio); err != nil {
		return err
	}
	s.reload()
	return nil
}

func (s *AdminService) DeletePrice(id string) error {
	if err := s.Prices.Delete(id); err != nil {
		return err
	}
	s.reload()
	return nil
}

// DeleteProduct removes every price referencing the product, then the
// product row. If the price step fails the product stays; if the product
// step fails the prices stay deleted.
func (s *AdminService) DeleteProduct(id string) error {
	if _, err := s.Prices.DeleteByProduct(id); err != nil {
		return err
	}
	if err := s.Products.Delete(id); err != nil {
		return err
	}
	s.reload()
	return nil
}

// DeleteEstablishment cascades in a fixed order: prices, then offers,
// then the establishment row. Dependents always go before the parent so
// the backing store never holds orphaned references.
func (s *AdminService) DeleteEstablishment(id string) error {
	if _, err := s.Prices.DeleteByEstablishment(id); err != nil {
		return err
	}
	if _, err := s.Offers.DeleteByEstablishment(id); err != nil {
		return err
	}
	if err := s.Establishments.Delete(id); err != nil {
		return err
	}
	s.reload()
	return nil
}

func (s *AdminService) CreateOffer(o domain.Oferta, userID string) error {
	o.UserID = userID
	if _, err := s.Offers.Insert(o); err != nil {
		return err
	}
	s.reload()
	return nil
}

func (s *AdminService) UpdateOffer(o domain.Oferta) error {
	if err := s.Offers.Update(o); err != nil {
		return err
	}
	s.reload()
	return nil
}

func (s *AdminService) DeleteOffer(id string) error {
	if err := s.Offers.Delete(id); err != nil {
		return err
	}
	s.reload()
	return nil
}
