package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
	applog "github.com/gonzaloparrilla/CompaRar1.0/internal/log"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/validate"
)

// AdminHandler exposes the CRUD panel: four tables (products,
// establishments, prices, offers) and one POST endpoint per operation.
type AdminHandler struct {
	Admin   *services.AdminService
	Catalog *services.CatalogService
}

func actingUserID(c *fiber.Ctx) string {
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		return u.ID
	}
	return ""
}

// formImage pulls the optional uploaded file out of a multipart form.
// Returns a nil Imagen when the field is absent, and a cleanup func.
func formImage(c *fiber.Ctx, field string) (*services.Imagen, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &services.Imagen{Nombre: fh.Filename, Datos: f}, func() { _ = f.Close() }, nil
}

// GET /admin
func (h *AdminHandler) Panel(c *fiber.Ctx) error {
	products := h.Catalog.Productos()
	establishments := h.Catalog.Establecimientos()
	prices := h.Catalog.Precios()
	offers := h.Catalog.Ofertas()

	return render(c, "admin", fiber.Map{
		"Productos":        products,
		"Establecimientos": establishments,
		"Precios":          prices,
		"Ofertas":          offers,
		"CountProductos":   len(products),
		"CountEst":         len(establishments),
		"CountPrecios":     len(prices),
		"CountOfertas":     len(offers),
		"LoadErr":          h.Catalog.Err(),
	})
}

// POST /admin/productos — create a product together with its first price.
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	nombre, okN := validate.Nombre(c.FormValue("nombre"))
	categoria, okC := validate.Nombre(c.FormValue("categoria"))
	estID, okE := validate.ID(c.FormValue("establecimiento_id"))
	precio, okP := validate.Precio(c.FormValue("precio"))
	if !okN || !okC || !okE || !okP {
		return c.Status(fiber.StatusBadRequest).SendString("datos invalidos")
	}

	img, done, err := formImage(c, "imagen")
	if err != nil {
		applog.Error(c, "admin.productos.upload.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo leer la imagen")
	}
	defer done()

	p := domain.Producto{
		Nombre:       nombre,
		Descripcion:  strings.TrimSpace(c.FormValue("descripcion")),
		Categoria:    categoria,
		ImagenURL:    strings.TrimSpace(c.FormValue("imagen_url")),
		CodigoBarras: strings.TrimSpace(c.FormValue("codigo_barras")),
	}
	if err := h.Admin.CreateProductWithPrice(p, estID, precio, img, actingUserID(c)); err != nil {
		applog.Error(c, "admin.productos.create.fail", err, map[string]any{"nombre": nombre})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo crear el producto")
	}
	applog.Audit(c, "admin.productos.create", map[string]any{"nombre": nombre, "establecimiento": estID})
	return c.Redirect("/admin")
}

// POST /admin/productos/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	nombre, okN := validate.Nombre(c.FormValue("nombre"))
	categoria, okC := validate.Nombre(c.FormValue("categoria"))
	if !okID || !okN || !okC {
		return c.Status(fiber.StatusBadRequest).SendString("datos invalidos")
	}

	img, done, err := formImage(c, "imagen")
	if err != nil {
		applog.Error(c, "admin.productos.upload.fail", err, map[string]any{"producto": id})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo leer la imagen")
	}
	defer done()

	p := domain.Producto{
		ID:           id,
		Nombre:       nombre,
		Descripcion:  strings.TrimSpace(c.FormValue("descripcion")),
		Categoria:    categoria,
		ImagenURL:    strings.TrimSpace(c.FormValue("imagen_url")),
		CodigoBarras: strings.TrimSpace(c.FormValue("codigo_barras")),
	}
	if err := h.Admin.UpdateProduct(p, img); err != nil {
		applog.Error(c, "admin.productos.update.fail", err, map[string]any{"producto": id})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo actualizar el producto")
	}
	applog.Audit(c, "admin.productos.update", map[string]any{"producto": id})
	return c.Redirect("/admin")
}

// POST /admin/productos/:id/eliminar — cascades over the product's prices.
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("id invalido")
	}
	if err := h.Admin.DeleteProduct(id); err != nil {
		applog.Error(c, "admin.productos.delete.fail", err, map[string]any{"producto": id})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo eliminar el producto")
	}
	applog.Audit(c, "admin.productos.delete", map[string]any{"producto": id})
	return c.Redirect("/admin")
}

// POST /admin/establecimientos
func (h *AdminHandler) CreateEstablishment(c *fiber.Ctx) error {
	nombre, okN := validate.Nombre(c.FormValue("nombre"))
	tipo, okT := validate.Tipo(c.FormValue("tipo"))
	if !okN || !okT {
		return c.Status(fiber.StatusBadRequest).SendString("datos invalidos")
	}

	img, done, err := formImage(c, "imagen")
	if err != nil {
		applog.Error(c, "admin.establecimientos.upload.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo leer la imagen")
	}
	defer done()

	e := domain.Establecimiento{
		Nombre:    nombre,
		Direccion: strings.TrimSpace(c.FormValue("direccion")),
		Telefono:  strings.TrimSpace(c.FormValue("telefono")),
		Tipo:      tipo,
		Horarios:  strings.TrimSpace(c.FormValue("horarios")),
		ImagenURL: strings.TrimSpace(c.FormValue("imagen_url")),
	}
	if err := h.Admin.CreateEstablishment(e, img, actingUserID(c)); err != nil {
		applog.Error(c, "admin.establecimientos.create.fail", err, map[string]any{"nombre": nombre})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo crear el establecimiento")
	}
	applog.Audit(c, "admin.establecimientos.create", map[string]any{"nombre": nombre})
	return c.Redirect("/admin")
}

// POST /admin/establecimientos/:id
func (h *AdminHandler) UpdateEstablishment(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	nombre, okN := validate.Nombre(c.FormValue("nombre"))
	tipo, okT := validate.Tipo(c.FormValue("tipo"))
	if !okID || !okN || !okT {
		return c.Status(fiber.StatusBadRequest).SendString("datos invalidos")
	}

	img, done, err := formImage(c, "imagen")
	if err != nil {
		applog.Error(c, "admin.establecimientos.upload.fail", err, map[string]any{"establecimiento": id})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo leer la imagen")
	}
	defer done()

	e := domain.Establecimiento{
		ID:        id,
		Nombre:    nombre,
		Direccion: strings.TrimSpace(c.FormValue("direccion")),
		Telefono:  strings.TrimSpace(c.FormValue("telefono")),
		Tipo:      tipo,
		Horarios:  strings.TrimSpace(c.FormValue("horarios")),
		ImagenURL: strings.TrimSpace(c.FormValue("imagen_url")),
	}
	if err := h.Admin.UpdateEstablishment(e, img); err != nil {
		applog.Error(c, "admin.establecimientos.update.fail", err, map[string]any{"establecimiento": id})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo actualizar el establecimiento")
	}
	applog.Audit(c, "admin.establecimientos.update", map[string]any{"establecimiento": id})
	return c.Redirect("/admin")
}

// POST /admin/establecimientos/:id/eliminar — cascades prices, then
// offers, then the establishment itself.
func (h *AdminHandler) DeleteEstablishment(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("id invalido")
	}
	if err := h.Admin.DeleteEstablishment(id); err != nil {
		applog.Error(c, "admin.establecimientos.delete.fail", err, map[string]any{"establecimiento": id})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo eliminar el establecimiento")
	}
	applog.Audit(c, "admin.establecimientos.delete", map[string]any{"establecimiento": id})
	return c.Redirect("/admin")
}

// POST /admin/precios — add a price for an existing product.
func (h *AdminHandler) CreatePrice(c *fiber.Ctx) error {
	prodID, okP := validate.ID(c.FormValue("producto_id"))
	estID, okE := validate.ID(c.FormValue("establecimiento_id"))
	precio, okV := validate.Precio(c.FormValue("precio"))
	if !okP || !okE || !okV {
		return c.Status(fiber.StatusBadRequest).SendString("datos invalidos")
	}
	if err := h.Admin.CreatePrice(prodID, estID, precio, actingUserID(c)); err != nil {
		applog.Error(c, "admin.precios.create.fail", err, map[string]any{"producto": prodID})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo crear el precio")
	}
	applog.Audit(c, "admin.precios.create", map[string]any{"producto": prodID, "establecimiento": estID})
	return c.Redirect("/admin")
}

// POST /admin/precios/:id
func (h *AdminHandler) UpdatePrice(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	precio, okV := validate.Precio(c.FormValue("precio"))
	if !okID || !okV {
		return c.Status(fiber.StatusBadRequest).SendString("datos invalidos")
	}
	if err := h.Admin.UpdatePrice(id, precio); err != nil {
		applog.Error(c, "admin.precios.update.fail", err, map[string]any{"precio_id": id})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo actualizar el precio")
	}
	applog.Audit(c, "admin.precios.update", map[string]any{"precio_id": id, "precio": precio})
	return c.Redirect("/admin")
}

// POST /admin/precios/:id/eliminar
func (h *AdminHandler) DeletePrice(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("id invalido")
	}
	if err := h.Admin.DeletePrice(id); err != nil {
		applog.Error(c, "admin.precios.delete.fail", err, map[string]any{"precio_id": id})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo eliminar el precio")
	}
	applog.Audit(c, "admin.precios.delete", map[string]any{"precio_id": id})
	return c.Redirect("/admin")
}

// POST /admin/ofertas
func (h *AdminHandler) CreateOffer(c *fiber.Ctx) error {
	estID, okE := validate.ID(c.FormValue("establecimiento_id"))
	descuento, okD := validate.Descuento(c.FormValue("descuento"))
	if !okE || !okD {
		return c.Status(fiber.StatusBadRequest).SendString("datos invalidos")
	}
	o := domain.Oferta{
		EstablecimientoID: estID,
		Descripcion:       strings.TrimSpace(c.FormValue("descripcion")),
		Descuento:         descuento,
		FechaInicio:       strings.TrimSpace(c.FormValue("fecha_inicio")),
		FechaFin:          strings.TrimSpace(c.FormValue("fecha_fin")),
		Activa:            c.FormValue("activa") == "on" || c.FormValue("activa") == "true",
	}
	if err := h.Admin.CreateOffer(o, actingUserID(c)); err != nil {
		applog.Error(c, "admin.ofertas.create.fail", err, map[string]any{"establecimiento": estID})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo crear la oferta")
	}
	applog.Audit(c, "admin.ofertas.create", map[string]any{"establecimiento": estID})
	return c.Redirect("/admin")
}

// POST /admin/ofertas/:id
func (h *AdminHandler) UpdateOffer(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	estID, okE := validate.ID(c.FormValue("establecimiento_id"))
	descuento, okD := validate.Descuento(c.FormValue("descuento"))
	if !okID || !okE || !okD {
		return c.Status(fiber.StatusBadRequest).SendString("datos invalidos")
	}
	o := domain.Oferta{
		ID:                id,
		EstablecimientoID: estID,
		Descripcion:       strings.TrimSpace(c.FormValue("descripcion")),
		Descuento:         descuento,
		FechaInicio:       strings.TrimSpace(c.FormValue("fecha_inicio")),
		FechaFin:          strings.TrimSpace(c.FormValue("fecha_fin")),
		Activa:            c.FormValue("activa") == "on" || c.FormValue("activa") == "true",
	}
	if err := h.Admin.UpdateOffer(o); err != nil {
		applog.Error(c, "admin.ofertas.update.fail", err, map[string]any{"oferta": id})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo actualizar la oferta")
	}
	applog.Audit(c, "admin.ofertas.update", map[string]any{"oferta": id})
	return c.Redirect("/admin")
}

// POST /admin/ofertas/:id/eliminar
func (h *AdminHandler) DeleteOffer(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("id invalido")
	}
	if err := h.Admin.DeleteOffer(id); err != nil {
		applog.Error(c, "admin.ofertas.delete.fail", err, map[string]any{"oferta": id})
		return c.Status(fiber.StatusBadRequest).SendString("no se pudo eliminar la oferta")
	}
	applog.Audit(c, "admin.ofertas.delete", map[string]any{"oferta": id})
	return c.Redirect("/admin")
}
