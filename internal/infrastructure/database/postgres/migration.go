package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/donate-storefront/internal/domain/catalog"
	"github.com/your-org/donate-storefront/internal/domain/order"
	"github.com/your-org/donate-storefront/internal/domain/payment"
	"github.com/your-org/donate-storefront/internal/domain/promo"
	"github.com/your-org/donate-storefront/internal/domain/upload"
	"github.com/your-org/donate-storefront/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{db: db}
}

// Models lists every persisted entity in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},

		&catalog.Game{},
		&catalog.Category{},
		&catalog.Product{},

		&promo.PromoCode{},

		&order.Order{},
		&order.Item{},
		&order.StatusHistory{},
		&payment.Payment{},

		&upload.UploadedFile{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	for _, model := range Models() {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates the composite indexes the list queries use
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_games_popular ON games(is_popular) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_products_game_category ON products(game_id, category_id)",
		"CREATE INDEX IF NOT EXISTS idx_products_game_price ON products(game_id, price)",
		"CREATE INDEX IF NOT EXISTS idx_products_rating ON products(rating DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_payments_order_status ON payments(order_id, status)",
	}

	successCount := 0
	failCount := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts the development catalog and promo codes
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	if err := m.seedPromoCodes(); err != nil {
		return fmt.Errorf("failed to seed promo codes: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

type seedProduct struct {
	name        string
	description string
	price       string
	rating      float64
	reviews     int
}

type seedCategory struct {
	name     string
	products []seedProduct
}

type seedGame struct {
	game       catalog.Game
	categories []seedCategory
}

func seedGames() []seedGame {
	return []seedGame{
		{
			game: catalog.Game{Name: "Genshin Impact", Description: "Открытый мир Тейвата", IsPopular: true,
				ImageURL: "https://placehold.co/400x225?text=Genshin"},
			categories: []seedCategory{
				{name: "Кристаллы", products: []seedProduct{
					{"60 Кристаллов Сотворения", "Небольшой набор кристаллов", "99", 4.8, 1250},
					{"330 Кристаллов Сотворения", "Набор кристаллов со скидкой", "499", 4.9, 980},
					{"1090 Кристаллов Сотворения", "Большой набор кристаллов", "1490", 4.9, 640},
				}},
				{name: "Подписки", products: []seedProduct{
					{"Благословение полой луны", "30 дней ежедневных наград", "399", 4.7, 2100},
				}},
			},
		},
		{
			game: catalog.Game{Name: "PUBG Mobile", Description: "Королевская битва на 100 игроков", IsPopular: true,
				ImageURL: "https://placehold.co/400x225?text=PUBG"},
			categories: []seedCategory{
				{name: "UC", products: []seedProduct{
					{"60 UC", "Внутриигровая валюта", "89", 4.6, 870},
					{"325 UC", "Внутриигровая валюта", "449", 4.7, 520},
				}},
				{name: "Royale Pass", products: []seedProduct{
					{"Royale Pass", "Элитный пропуск сезона", "799", 4.5, 310},
				}},
			},
		},
		{
			game: catalog.Game{Name: "Brawl Stars", Description: "Командные бои 3 на 3",
				ImageURL: "https://placehold.co/400x225?text=Brawl"},
			categories: []seedCategory{
				{name: "Гемы", products: []seedProduct{
					{"30 гемов", "Гемы для покупок в магазине", "149", 4.4, 410},
					{"170 гемов", "Гемы со скидкой", "749", 4.6, 205},
				}},
			},
		},
	}
}

func (m *Migration) seedCatalog() error {
	log.Println("🎮 Seeding games...")

	var count int64
	m.db.Model(&catalog.Game{}).Count(&count)
	if count > 0 {
		log.Println("⏭️ Games already exist")
		return nil
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		for _, sg := range seedGames() {
			game := sg.game
			if err := tx.Create(&game).Error; err != nil {
				return fmt.Errorf("failed to create game %s: %w", game.Name, err)
			}

			for _, sc := range sg.categories {
				category := catalog.Category{GameID: game.ID, Name: sc.name}
				if err := tx.Create(&category).Error; err != nil {
					return fmt.Errorf("failed to create category %s: %w", sc.name, err)
				}

				for _, sp := range sc.products {
					product := catalog.Product{
						GameID:       game.ID,
						CategoryID:   category.ID,
						Name:         sp.name,
						Description:  sp.description,
						Price:        decimal.RequireFromString(sp.price),
						Rating:       sp.rating,
						ReviewsCount: sp.reviews,
						IsAvailable:  true,
					}
					if err := tx.Create(&product).Error; err != nil {
						return fmt.Errorf("failed to create product %s: %w", sp.name, err)
					}
				}
			}
			log.Printf("✅ Created game: %s", game.Name)
		}
		return nil
	})
}

func (m *Migration) seedPromoCodes() error {
	log.Println("🏷️ Seeding promo codes...")

	expires := time.Now().UTC().AddDate(1, 0, 0)
	codes := []promo.PromoCode{
		{Code: "WELCOME10", DiscountPercent: 10, IsActive: true},
		{Code: "SALE20", DiscountPercent: 20, MaxUses: 100, IsActive: true, ExpiresAt: &expires},
	}

	for _, code := range codes {
		var existing promo.PromoCode
		if err := m.db.Where("code = ?", code.Code).First(&existing).Error; err == nil {
			log.Printf("⏭️ Promo code already exists: %s", code.Code)
			continue
		}
		if err := m.db.Create(&code).Error; err != nil {
			log.Printf("⚠️ Failed to create promo code %s: %v", code.Code, err)
		} else {
			log.Printf("✅ Created promo code: %s", code.Code)
		}
	}
	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	tables := []string{
		"uploaded_files",
		"payments",
		"order_status_history",
		"order_items",
		"orders",
		"promo_codes",
		"products",
		"categories",
		"games",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo logs the row count of every table
func (m *Migration) GetTableInfo() error {
	var tables []string
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}
		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	return nil
}
