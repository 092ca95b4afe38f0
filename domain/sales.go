package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.sales (
//     id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id          TEXT,
//     product_id       BIGINT,
//     product_name     TEXT,
//     product_category TEXT,
//     cost             NUMERIC,
//     selling_price    NUMERIC,
//     margin           NUMERIC,
//     quantity         INT,
//     amount           NUMERIC,
//     order_id         BIGINT,
//     order_date       TIMESTAMPTZ
// );

type Sale struct {
	ID              uint64     `gorm:"primaryKey;autoIncrement"`
	UserID          string     `gorm:"column:user_id;type:text"`
	ProductID       uint64     `gorm:"column:product_id"`
	ProductName     string     `gorm:"column:product_name;type:text"`
	ProductCategory string     `gorm:"column:product_category;type:text;index"`
	Cost            *float64   `gorm:"column:cost;type:numeric"`
	SellingPrice    *float64   `gorm:"column:selling_price;type:numeric"`
	Margin          *float64   `gorm:"column:margin;type:numeric"`
	Quantity        int        `gorm:"column:quantity"`
	Amount          *float64   `gorm:"column:amount;type:numeric"`
	OrderID         uint64     `gorm:"column:order_id"`
	OrderDate       *time.Time `gorm:"column:order_date;index"`
}

func (Sale) TableName() string {
	return "sales"
}

type MonthlySales struct {
	SaleYear   int     `json:"sale_year"`
	SaleMonth  int     `json:"sale_month"`
	TotalSales float64 `json:"total_sales"`
}

type CategorySales struct {
	ProductCategory string  `json:"product_category"`
	TotalSales      float64 `json:"total_sales"`
}

type DailySales struct {
	Date       time.Time `json:"date"`
	TotalSales float64   `json:"total_sales"`
}

// DecompositionPoint is one day of an additive seasonal decomposition.
// Trend and Resid are nil where the centered moving average is undefined.
type DecompositionPoint struct {
	Date     string   `json:"date"`
	Observed float64  `json:"observed"`
	Trend    *float64 `json:"trend"`
	Seasonal float64  `json:"seasonal"`
	Resid    *float64 `json:"resid"`
}

// CREATE TABLE public.sales_forecasts (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     target_year     INT NOT NULL,
//     target_month    INT NOT NULL,
//     predicted_sales NUMERIC NOT NULL,
//     request         JSONB,
//     response        JSONB,
//     created_at      TIMESTAMPTZ DEFAULT NOW()
// );

type SalesForecast struct {
	ID             uint64            `gorm:"primaryKey;autoIncrement"`
	TargetYear     int               `gorm:"column:target_year;not null"`
	TargetMonth    int               `gorm:"column:target_month;not null"`
	PredictedSales float64           `gorm:"column:predicted_sales;type:numeric;not null"`
	Request        datatypes.JSONMap `gorm:"column:request;type:jsonb"`
	Response       datatypes.JSONMap `gorm:"column:response;type:jsonb"`
	CreatedAt      time.Time         `gorm:"column:created_at"`
}

func (SalesForecast) TableName() string {
	return "sales_forecasts"
}
