package handlers

import (
	"github.com/jmoiron/sqlx"

	"freshtrack/internal/config"
	"freshtrack/internal/dedup"
	"freshtrack/internal/expiry"
	"freshtrack/internal/repos"
	"freshtrack/internal/services"
)

// Deps holds the services shared by handlers and the notifier, plus the handlers themselves.
type Deps struct {
	Auth          *services.AuthService
	Inventory     *services.InventoryService
	Expiry        *services.ExpiryService
	Notifications *services.NotificationService

	AuthHandler         *AuthHandler
	CategoryHandler     *CategoryHandler
	ItemHandler         *ItemHandler
	ExpiryHandler       *ExpiryHandler
	InventoryHandler    *InventoryHandler
	NotificationHandler *NotificationHandler
	DashboardHandler    *DashboardHandler
}

// NewDeps wires repos into services into handlers. claimer may be nil.
func NewDeps(db *sqlx.DB, cfg config.Config, claimer *dedup.Claimer, clock expiry.Clock) *Deps {
	userRepo := repos.NewUserRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	itemRepo := repos.NewItemRepo(db)
	notifRepo := repos.NewNotificationRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	catSvc := services.NewCategoryService(catRepo)
	invSvc := services.NewInventoryService(itemRepo, catRepo, cfg.Policy, clock)
	expSvc := services.NewExpiryService(itemRepo, cfg.Policy, clock)
	notifSvc := services.NewNotificationService(notifRepo, itemRepo, claimer, services.LogDispatcher{}, cfg.Policy, clock)

	return &Deps{
		Auth:          authSvc,
		Inventory:     invSvc,
		Expiry:        expSvc,
		Notifications: notifSvc,

		AuthHandler:         &AuthHandler{Auth: authSvc, TTL: cfg.TokenTTL},
		CategoryHandler:     &CategoryHandler{Cats: catSvc},
		ItemHandler:         &ItemHandler{Inv: invSvc},
		ExpiryHandler:       &ExpiryHandler{Expiry: expSvc, Notifs: notifSvc},
		InventoryHandler:    &InventoryHandler{Inv: invSvc},
		NotificationHandler: &NotificationHandler{Notifs: notifSvc},
		DashboardHandler:    &DashboardHandler{Expiry: expSvc, Policy: cfg.Policy},
	}
}
