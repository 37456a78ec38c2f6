package memory

import (
	"context"
	"sort"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
)

type RegistrationRepository struct{ s *Store }

var _ repositories.IRegistrationRepository = (*RegistrationRepository)(nil)

func (r *RegistrationRepository) Create(_ context.Context, req *models.RegistrationRequest) error {
	r.s.write(func(t *tables) {
		req.ID = t.nextID("registration_requests")
		if req.Status == "" {
			req.Status = models.StatusPending
		}
		req.Email = models.NormalizeEmail(req.Email)
		req.CreatedAt = r.s.now()
		req.UpdatedAt = req.CreatedAt
		t.registrations[req.ID] = *req
	})
	return nil
}

func (r *RegistrationRepository) GetByID(_ context.Context, id int64) (*models.RegistrationRequest, error) {
	var found *models.RegistrationRequest
	r.s.read(func(t *tables) {
		if req, ok := t.registrations[id]; ok {
			found = &req
		}
	})
	if found == nil {
		return nil, apperrors.NewResourceNotFoundError("registration request not found")
	}
	return found, nil
}

// GetForUpdate is GetByID; transactions are already exclusive.
func (r *RegistrationRepository) GetForUpdate(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *RegistrationRepository) List(_ context.Context, filter repositories.RegistrationFilter) ([]models.RegistrationRequest, int64, error) {
	var all []models.RegistrationRequest
	r.s.read(func(t *tables) {
		for _, req := range t.registrations {
			if filter.Status == "" || req.Status == filter.Status {
				all = append(all, req)
			}
		}
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	if filter.Limit == 0 {
		return all, total, nil
	}
	start := min(filter.Offset, uint64(len(all)))
	end := min(start+filter.Limit, uint64(len(all)))
	return all[start:end], total, nil
}

func (r *RegistrationRepository) Update(_ context.Context, req *models.RegistrationRequest) error {
	var err error
	r.s.write(func(t *tables) {
		if _, ok := t.registrations[req.ID]; !ok {
			err = apperrors.NewResourceNotFoundError("registration request not found")
			return
		}
		req.UpdatedAt = r.s.now()
		t.registrations[req.ID] = *req
	})
	return err
}
