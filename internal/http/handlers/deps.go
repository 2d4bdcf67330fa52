package handlers

import (
	"github.com/jmoiron/sqlx"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/config"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/media"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/repos"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/services"
)

type Deps struct {
	Catalog *services.CatalogService

	HomeHandler          *HomeHandler
	SearchHandler        *SearchHandler
	ProductHandler       *ProductHandler
	EstablishmentHandler *EstablishmentHandler
	OffersHandler        *OffersHandler
	AdminHandler         *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db)
	estRepo := repos.NewEstablishmentRepo(db)
	priceRepo := repos.NewPriceRepo(db)
	offerRepo := repos.NewOfferRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo, estRepo, priceRepo, offerRepo)
	offerSvc := services.NewOfferService(catalogSvc)
	mediaStore := media.NewDiskStore(cfg.MediaDir)
	adminSvc := services.NewAdminService(prodRepo, estRepo, priceRepo, offerRepo, mediaStore, catalogSvc)

	return &Deps{
		Catalog:              catalogSvc,
		HomeHandler:          &HomeHandler{Catalog: catalogSvc, Offers: offerSvc},
		SearchHandler:        &SearchHandler{Catalog: catalogSvc},
		ProductHandler:       &ProductHandler{Catalog: catalogSvc},
		EstablishmentHandler: &EstablishmentHandler{Catalog: catalogSvc},
		OffersHandler:        &OffersHandler{Catalog: catalogSvc, Offers: offerSvc},
		AdminHandler:         &AdminHandler{Admin: adminSvc, Catalog: catalogSvc},
	}
}
