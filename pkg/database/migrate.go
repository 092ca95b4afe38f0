package database

import (
	"fmt"

	"quixellMarket/domain"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "001_catalog",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.Product{}, &domain.InventoryItem{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("products", "inventory_items")
			},
		},
		{
			ID: "002_users_and_brands",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.User{}, &domain.Brand{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("users", "brands")
			},
		},
		{
			ID: "003_event_log",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.Event{}, &domain.Impression{}, &domain.Click{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("events", "impressions", "clicks")
			},
		},
		{
			ID: "004_sales",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.Sale{}, &domain.SalesForecast{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("sales", "sales_forecasts")
			},
		},
		{
			ID: "005_user_preferences",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&domain.UserPreference{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("user_preferences")
			},
		},
		{
			ID: "006_product_constraints",
			Migrate: func(tx *gorm.DB) error {
				stmts := []string{
					`ALTER TABLE products ADD CONSTRAINT chk_products_cost CHECK (cost > 0)`,
					`ALTER TABLE products ADD CONSTRAINT chk_products_selling_price CHECK (selling_price > 0)`,
				}
				for _, s := range stmts {
					if err := tx.Exec(s).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				stmts := []string{
					`ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_cost`,
					`ALTER TABLE products DROP CONSTRAINT IF EXISTS chk_products_selling_price`,
				}
				for _, s := range stmts {
					if err := tx.Exec(s).Error; err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

// Migrate applies every pending migration in order.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
