package services

import (
	"context"

	"hoteldesk/internal/domain"
	"hoteldesk/internal/validate"
)

type HotelStore interface {
	List(ctx context.Context) ([]domain.Hotel, error)
	Create(ctx context.Context, name, description string) (int64, error)
	Update(ctx context.Context, id int64, name, description string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type HotelInput struct {
	Name        string `json:"name" form:"name" validate:"required"`
	Description string `json:"description" form:"description" validate:"required"`
}

type HotelService struct {
	repo HotelStore
}

func NewHotelService(repo HotelStore) *HotelService {
	return &HotelService{repo: repo}
}

func (s *HotelService) List(ctx context.Context) ([]domain.Hotel, error) {
	return s.repo.List(ctx)
}

func (s *HotelService) Create(ctx context.Context, in HotelInput) (int64, error) {
	if err := validate.Struct(in); err != nil {
		return 0, err
	}
	return s.repo.Create(ctx, in.Name, in.Description)
}

// Update overwrites the row unconditionally. changed is false when no row has that id.
func (s *HotelService) Update(ctx context.Context, id int64, in HotelInput) (changed bool, err error) {
	if err := validate.Struct(in); err != nil {
		return false, err
	}
	n, err := s.repo.Update(ctx, id, in.Name, in.Description)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete is a no-op for unknown ids.
func (s *HotelService) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
