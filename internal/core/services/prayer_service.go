package services

import (
	"context"
	"errors"
	"strings"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/core/domain"
	"congregation-api/internal/pkg/pagination"

	"gorm.io/gorm"
)

// ErrPrayerNotFound is returned for unknown prayer requests
var ErrPrayerNotFound = errors.New("prayer request not found")

// PrayerService handles prayer requests
type PrayerService struct {
	prayerRepo repositories.PrayerRepository
	governance *ContentGovernance
}

// NewPrayerService creates a new prayer service
func NewPrayerService(prayerRepo repositories.PrayerRepository, governance *ContentGovernance) *PrayerService {
	return &PrayerService{
		prayerRepo: prayerRepo,
		governance: governance,
	}
}

// CreatePrayerInput represents a new prayer request
type CreatePrayerInput struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Category     string   `json:"category"`
	IsAnonymous  bool     `json:"is_anonymous"`
	PrayerPoints []string `json:"prayer_points"`
}

// ListPrayersOutput represents a page of prayer requests
type ListPrayersOutput struct {
	Prayers    []*models.PrayerRequestResponse `json:"prayers"`
	Pagination *pagination.Meta                `json:"pagination"`
}

// Create submits a prayer request for the acting member
func (s *PrayerService) Create(ctx context.Context, actor *domain.Actor, input *CreatePrayerInput) (*models.PrayerRequestResponse, error) {
	if actor == nil || actor.Kind != domain.PrincipalMember {
		return nil, domain.ErrForbidden
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domain.ErrInvalidInput
	}

	points := make([]string, 0, len(input.PrayerPoints))
	for _, p := range input.PrayerPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}

	prayer := &models.PrayerRequest{
		Title:        strings.TrimSpace(input.Title),
		Content:      content,
		Category:     strings.ToLower(strings.TrimSpace(input.Category)),
		SubmitterID:  actor.ID,
		IsAnonymous:  input.IsAnonymous,
		PrayerPoints: points,
	}
	if err := s.prayerRepo.Create(ctx, prayer); err != nil {
		return nil, err
	}
	return prayer.ToResponse(), nil
}

// List lists prayer requests, optionally filtered by answered state
func (s *PrayerService) List(ctx context.Context, answered *bool, params *pagination.Params) (*ListPrayersOutput, error) {
	prayers, total, err := s.prayerRepo.List(ctx, answered, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.PrayerRequestResponse, len(prayers))
	for i, p := range prayers {
		responses[i] = p.ToResponse()
	}

	return &ListPrayersOutput{
		Prayers:    responses,
		Pagination: pagination.GetMeta(params, total),
	}, nil
}

// MarkAnswered marks a request answered. Only its submitter or a privileged
// actor may do so.
func (s *PrayerService) MarkAnswered(ctx context.Context, actor *domain.Actor, id uint) (*models.PrayerRequestResponse, error) {
	prayer, err := s.prayerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrayerNotFound
		}
		return nil, err
	}

	if !actor.IsMember(prayer.SubmitterID) && !actor.IsPrivileged() {
		return nil, domain.ErrForbidden
	}

	prayer, err = s.governance.MarkAnswered(ctx, prayer)
	if err != nil {
		return nil, err
	}
	return prayer.ToResponse(), nil
}
