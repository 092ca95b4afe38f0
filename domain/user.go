package domain

import (
	"time"
)

// CREATE TABLE public.users (
//     user_id    TEXT PRIMARY KEY,
//     age        INT,
//     gender     TEXT,
//     location   TEXT,
//     created_at TIMESTAMPTZ DEFAULT NOW(),
//     updated_at TIMESTAMPTZ DEFAULT NOW()
// );

type User struct {
	UserID    string    `gorm:"primaryKey;column:user_id;type:text" json:"user_id"`
	Age       *int      `gorm:"column:age" json:"age"`
	Gender    *string   `gorm:"column:gender;type:text" json:"gender"`
	Location  *string   `gorm:"column:location;type:text" json:"location"`
	CreatedAt time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// CREATE TABLE public.brands (
//     id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id    TEXT NOT NULL,
//     brand      TEXT NOT NULL,
//     created_at TIMESTAMPTZ DEFAULT NOW(),
//     UNIQUE (user_id, brand)
// );

type Brand struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"column:user_id;type:text;not null;uniqueIndex:idx_brands_user_brand"`
	Brand     string    `gorm:"column:brand;type:text;not null;uniqueIndex:idx_brands_user_brand"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Brand) TableName() string {
	return "brands"
}

// DemographicRow is one users⋈brands row. A user with several declared
// brands yields several rows; a user without brands yields one row with nil Brand.
type DemographicRow struct {
	UserID   string
	Age      *int
	Gender   *string
	Location *string
	Brand    *string
}

// Demographics is the read model served by the demographics endpoint.
type Demographics struct {
	UserID   *string  `json:"user_id"`
	Age      *int     `json:"age"`
	Gender   *string  `json:"gender"`
	Location *string  `json:"location"`
	Brands   []string `json:"brands"`
}

type DemographicsUpdate struct {
	Age      *int
	Gender   *string
	Location *string
	Brands   []string
}
