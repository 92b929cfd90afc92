package mockapi

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/donate-storefront/internal/config"
	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/payment"
	"github.com/your-org/donate-storefront/internal/domain/promo"
	"github.com/your-org/donate-storefront/internal/domain/upload"
	"github.com/your-org/donate-storefront/internal/domain/user"
	"github.com/your-org/donate-storefront/internal/pkg/auth"
)

// Handler serves the upstream REST API
type Handler struct {
	config   *config.Config
	catalog  *catalog.Service
	users    *user.Service
	promos   *promo.Service
	orders   *order.Service
	payments *payment.Service
	uploads  *upload.Service
	jwt      *auth.JWTManager
	log      logrus.FieldLogger
}

// NewHandler wires the domain services over one database
func NewHandler(cfg *config.Config, db *gorm.DB, log logrus.FieldLogger) *Handler {
	catalogService := catalog.NewService(db)
	promoService := promo.NewService(db)

	return &Handler{
		config:   cfg,
		catalog:  catalogService,
		users:    user.NewService(db),
		promos:   promoService,
		orders:   order.NewService(db, catalogService, promoService, payment.MethodIDs()),
		payments: payment.NewService(db),
		uploads:  upload.NewService(db, cfg.Upload),
		jwt:      auth.NewJWTManager(cfg),
		log:      log,
	}
}
