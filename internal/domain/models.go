package domain

// Column names follow the original ComparAR schema (Spanish) so rows map
// 1:1 onto the hosted store's tables.

type Producto struct {
	ID           string `db:"id"`
	Nombre       string `db:"nombre"`
	Descripcion  string `db:"descripcion"`
	Categoria    string `db:"categoria"`
	ImagenURL    string `db:"imagen_url"`
	CodigoBarras string `db:"codigo_barras"`
	UserID       string `db:"user_id"`
	CreatedAt    string `db:"created_at"`
}

type Establecimiento struct {
	ID        string `db:"id"`
	Nombre    string `db:"nombre"`
	Direccion string `db:"direccion"`
	Telefono  string `db:"telefono"`
	Tipo      string `db:"tipo"` // supermercado | mayorista
	Horarios  string `db:"horarios"`
	ImagenURL string `db:"imagen_url"`
	UserID    string `db:"user_id"`
	CreatedAt string `db:"created_at"`
}

type Precio struct {
	ID                 string  `db:"id"`
	ProductoID         string  `db:"producto_id"`
	EstablecimientoID  string  `db:"establecimiento_id"`
	Precio             float64 `db:"precio"`
	FechaActualizacion string  `db:"fecha_actualizacion"`
	UserID             string  `db:"user_id"`
}

type Oferta struct {
	ID                string  `db:"id"`
	EstablecimientoID string  `db:"establecimiento_id"`
	Descripcion       string  `db:"descripcion"`
	Descuento         float64 `db:"descuento"` // percent, 0-100
	FechaInicio       string  `db:"fecha_inicio"`
	FechaFin          string  `db:"fecha_fin"`
	Activa            bool    `db:"activa"`
	UserID            string  `db:"user_id"`
}

// SearchResult is a product augmented with every price row referencing it
// and the minimum of those amounts (0 when the product has no prices).
type SearchResult struct {
	Producto
	Prices   []Precio
	MinPrice float64
}

// Filters is the active search filter configuration.
type Filters struct {
	Category      string
	PriceRange    [2]float64
	Establishment string
	SortBy        string // price_asc (default) | price_desc
}

// DefaultFilters mirrors the storefront's initial filter state.
func DefaultFilters() Filters {
	return Filters{PriceRange: [2]float64{0, 10000}, SortBy: "price_asc"}
}

// PrecioDetalle is a price row joined with its establishment, for the
// product detail comparison table.
type PrecioDetalle struct {
	Precio
	Establecimiento Establecimiento
}

// PriceStats summarizes the spread of a product's prices.
type PriceStats struct {
	Min  float64
	Max  float64
	Avg  float64
	Diff float64
	// MaxSavingsPct is (Max-Min)/Max*100, or 0 when Max is 0.
	MaxSavingsPct float64
}
