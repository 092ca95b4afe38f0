package domain

import "time"

// CREATE TABLE public.events (
//     id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id    TEXT NOT NULL,
//     event_type TEXT NOT NULL,
//     uri        TEXT,
//     created_at TIMESTAMPTZ DEFAULT NOW()
// );

type Event struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;type:text;not null;index" json:"user_id"`
	EventType string    `gorm:"column:event_type;type:text;not null" json:"event_type"`
	URI       string    `gorm:"column:uri;type:text" json:"uri"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (Event) TableName() string {
	return "events"
}

// CREATE TABLE public.impressions (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id         TEXT NOT NULL,
//     product_id      BIGINT NOT NULL,
//     impression_time TIMESTAMPTZ DEFAULT NOW()
// );

type Impression struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	UserID         string    `gorm:"column:user_id;type:text;not null"`
	ProductID      uint64    `gorm:"column:product_id;not null"`
	ImpressionTime time.Time `gorm:"column:impression_time"`
}

func (Impression) TableName() string {
	return "impressions"
}

// CREATE TABLE public.clicks (
//     id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id    TEXT NOT NULL,
//     product_id BIGINT NOT NULL,
//     click_time TIMESTAMPTZ DEFAULT NOW()
// );

type Click struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"column:user_id;type:text;not null"`
	ProductID uint64    `gorm:"column:product_id;not null"`
	ClickTime time.Time `gorm:"column:click_time"`
}

func (Click) TableName() string {
	return "clicks"
}

// MonthlyConversion is the per-month trial/conversion aggregate.
type MonthlyConversion struct {
	Month            int     `json:"month"`
	TotalTrials      int64   `json:"total_trials"`
	TotalConversions int64   `json:"total_conversions"`
	ConversionRate   float64 `json:"conversion_rate"`
}
