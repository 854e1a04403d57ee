package services

import (
	"context"

	"github.com/brgy-records/apiserver/types"
)

// OfficialRepository defines persistence operations for council seats.
type OfficialRepository interface {
	List(ctx context.Context) ([]types.Official, error)
	Get(ctx context.Context, id int) (types.Official, error)
	Update(ctx context.Context, id int, official types.Official) (types.Official, error)
}

type OfficialService struct {
	repo OfficialRepository
}

func NewOfficialService(repo OfficialRepository) *OfficialService {
	return &OfficialService{repo: repo}
}

func (s *OfficialService) List(ctx context.Context) ([]types.Official, error) {
	return s.repo.List(ctx)
}

func (s *OfficialService) Update(ctx context.Context, id int, official types.Official) (types.Official, error) {
	return s.repo.Update(ctx, id, official)
}
