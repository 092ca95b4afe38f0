package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     product_name     TEXT NOT NULL,
//     product_category TEXT NOT NULL,
//     product_brand    TEXT NOT NULL,
//     department       TEXT,
//     cost             NUMERIC NOT NULL CHECK (cost > 0),
//     selling_price    NUMERIC NOT NULL CHECK (selling_price > 0),
//     optimized_price  NUMERIC,
//     max_margin       NUMERIC,
//     min_margin       NUMERIC,
//     created_at       TIMESTAMPTZ DEFAULT NOW(),
//     updated_at       TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName     string    `gorm:"column:product_name;type:text;not null" json:"product_name"`
	ProductCategory string    `gorm:"column:product_category;type:text;not null;index" json:"product_category"`
	ProductBrand    string    `gorm:"column:product_brand;type:text;not null" json:"product_brand"`
	Department      string    `gorm:"column:department;type:text" json:"department"`
	Cost            float64   `gorm:"column:cost;type:numeric;not null" json:"cost"`
	SellingPrice    float64   `gorm:"column:selling_price;type:numeric;not null" json:"selling_price"`
	OptimizedPrice  *float64  `gorm:"column:optimized_price;type:numeric" json:"optimized_price"`
	MaxMargin       float64   `gorm:"column:max_margin;type:numeric" json:"max_margin"`
	MinMargin       float64   `gorm:"column:min_margin;type:numeric" json:"min_margin"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductPatch carries the fields of a partial product update; nil means unchanged.
type ProductPatch struct {
	ProductName     *string
	ProductCategory *string
	ProductBrand    *string
	Department      *string
	Cost            *float64
	SellingPrice    *float64
	MaxMargin       *float64
	MinMargin       *float64
}

// Apply returns a copy of p with the patch applied.
func (patch ProductPatch) Apply(p Product) Product {
	if patch.ProductName != nil {
		p.ProductName = *patch.ProductName
	}
	if patch.ProductCategory != nil {
		p.ProductCategory = *patch.ProductCategory
	}
	if patch.ProductBrand != nil {
		p.ProductBrand = *patch.ProductBrand
	}
	if patch.Department != nil {
		p.Department = *patch.Department
	}
	if patch.Cost != nil {
		p.Cost = *patch.Cost
	}
	if patch.SellingPrice != nil {
		p.SellingPrice = *patch.SellingPrice
	}
	if patch.MaxMargin != nil {
		p.MaxMargin = *patch.MaxMargin
	}
	if patch.MinMargin != nil {
		p.MinMargin = *patch.MinMargin
	}
	return p
}
