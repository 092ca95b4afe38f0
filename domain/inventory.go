package domain

import "time"

// CREATE TABLE public.inventory_items (
//     id                             BIGINT PRIMARY KEY,
//     product_id                     BIGINT,
//     created_at                     TIMESTAMPTZ,
//     sold_at                        TIMESTAMPTZ,
//     cost                           NUMERIC,
//     product_category               TEXT,
//     product_name                   TEXT,
//     product_brand                  TEXT,
//     product_retail_price           NUMERIC,
//     product_department             TEXT,
//     product_sku                    TEXT,
//     product_distribution_center_id BIGINT
// );

type InventoryItem struct {
	ID                          uint64     `gorm:"primaryKey" json:"id"`
	ProductID                   uint64     `gorm:"column:product_id" json:"product_id"`
	CreatedAt                   time.Time  `gorm:"column:created_at" json:"created_at"`
	SoldAt                      *time.Time `gorm:"column:sold_at" json:"sold_at"`
	Cost                        float64    `gorm:"column:cost;type:numeric" json:"cost"`
	ProductCategory             string     `gorm:"column:product_category;type:text" json:"product_category"`
	ProductName                 string     `gorm:"column:product_name;type:text" json:"product_name"`
	ProductBrand                string     `gorm:"column:product_brand;type:text" json:"product_brand"`
	ProductRetailPrice          float64    `gorm:"column:product_retail_price;type:numeric" json:"product_retail_price"`
	ProductDepartment           string     `gorm:"column:product_department;type:text" json:"product_department"`
	ProductSKU                  string     `gorm:"column:product_sku;type:text" json:"product_sku"`
	ProductDistributionCenterID uint64     `gorm:"column:product_distribution_center_id" json:"product_distribution_center_id"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}
