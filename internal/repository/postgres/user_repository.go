package postgres

import (
	"context"
	"errors"
	"fmt"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, fmt.Errorf("context error: %w", err)
	}

	var user domain.User

	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, apperror.NotFound("user not found")
		}
		return domain.User{}, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var users []domain.User
	if err := r.DB.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) FindBrands(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	brands := []string{}
	err := r.DB.WithContext(ctx).
		Model(&domain.Brand{}).
		Where("user_id = ?", userID).
		Order("brand").
		Pluck("brand", &brands).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find brands: %w", err)
	}

	return brands, nil
}

// FindDemographicRows returns one row per declared brand of the user, or a
// single row with a nil brand when none are declared. Unknown users yield
// no rows.
func (r *UserRepository) FindDemographicRows(ctx context.Context, userID string) ([]domain.DemographicRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.DemographicRow
	err := r.DB.WithContext(ctx).
		Table("users u").
		Select("u.user_id, u.age, u.gender, u.location, b.brand").
		Joins("LEFT JOIN brands b ON b.user_id = u.user_id").
		Where("u.user_id = ?", userID).
		Order("b.brand").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find demographic rows: %w", err)
	}

	return rows, nil
}

// UpsertWithBrands writes the user row and adds brand rows in a single
// transaction. Existing (user_id, brand) pairs are left alone.
func (r *UserRepository) UpsertWithBrands(ctx context.Context, user *domain.User, brands []string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"age", "gender", "location", "updated_at"}),
		}).Create(user).Error
		if err != nil {
			return fmt.Errorf("failed to upsert user: %w", err)
		}

		if len(brands) == 0 {
			return nil
		}

		rows := make([]domain.Brand, len(brands))
		for i, b := range brands {
			rows[i] = domain.Brand{UserID: user.UserID, Brand: b}
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "brand"}},
			DoNothing: true,
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to insert brands: %w", err)
		}

		return nil
	})
}
