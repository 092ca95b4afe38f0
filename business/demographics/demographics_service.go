package demographics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"quixellMarket/domain"
	"quixellMarket/pkg/apperror"
	"quixellMarket/pkg/logger"
)

const maxAge = 120

// DemographicsRepository contract interface
type DemographicsRepository interface {
	FindByID(ctx context.Context, userID string) (domain.User, error)
	FindBrands(ctx context.Context, userID string) ([]string, error)
	// UpsertWithBrands writes the user row and the brand rows in one transaction.
	UpsertWithBrands(ctx context.Context, user *domain.User, brands []string) error
}

type demographicsService struct {
	repo DemographicsRepository
}

func NewDemographicsService(repo DemographicsRepository) *demographicsService {
	return &demographicsService{repo: repo}
}

// GetDemographics returns the stored profile. Unknown users get an all-null
// profile rather than an error.
func (s *demographicsService) GetDemographics(ctx context.Context, userID string) (domain.Demographics, error) {
	if err := ctx.Err(); err != nil {
		return domain.Demographics{}, fmt.Errorf("context error: %w", err)
	}

	empty := domain.Demographics{Brands: []string{}}

	user, err := s.repo.FindByID(ctx, userID)
	if apperror.Is(err, apperror.KindNotFound) {
		return empty, nil
	}
	if err != nil {
		logger.Error("failed to find user demographics", "user_id", userID, "error", err)
		return empty, err
	}

	brands, err := s.repo.FindBrands(ctx, userID)
	if err != nil {
		logger.Error("failed to find user brands", "user_id", userID, "error", err)
		return empty, err
	}
	if brands == nil {
		brands = []string{}
	}

	return domain.Demographics{
		UserID:   &user.UserID,
		Age:      user.Age,
		Gender:   user.Gender,
		Location: user.Location,
		Brands:   brands,
	}, nil
}

func normalizeBrands(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, b := range in {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// UpdateDemographics upserts the user row with the given attributes and adds
// the declared brands. Either everything is written or nothing is.
func (s *demographicsService) UpdateDemographics(ctx context.Context, userID string, update domain.DemographicsUpdate) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if strings.TrimSpace(userID) == "" {
		return apperror.Validation("user id is required")
	}
	if update.Age != nil && (*update.Age < 0 || *update.Age > maxAge) {
		return apperror.Validation(fmt.Sprintf("age must be between 0 and %d", maxAge))
	}

	user := &domain.User{
		UserID:   userID,
		Age:      update.Age,
		Gender:   update.Gender,
		Location: update.Location,
	}
	brands := normalizeBrands(update.Brands)

	if err := s.repo.UpsertWithBrands(ctx, user, brands); err != nil {
		logger.Error("failed to upsert user demographics", "user_id", userID, "error", err)
		return apperror.WrapUnkinded(apperror.KindTransientWrite, "failed to update user demographics", err)
	}

	logger.Info("user demographics updated", "user_id", userID, "brands", len(brands))

	return nil
}
