package domain

import "time"

// CREATE TABLE public.user_preferences (
//     id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id      TEXT NOT NULL,
//     product_id   BIGINT NOT NULL,
//     category     TEXT,
//     product_name TEXT,
//     created_at   TIMESTAMPTZ DEFAULT NOW()
// );

type UserPreference struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string    `gorm:"column:user_id;type:text;not null" json:"user_id"`
	ProductID   uint64    `gorm:"column:product_id;not null" json:"product_id"`
	Category    string    `gorm:"column:category;type:text" json:"category"`
	ProductName string    `gorm:"column:product_name;type:text" json:"product_name"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
