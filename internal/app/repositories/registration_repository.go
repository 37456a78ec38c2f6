package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/db"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
)

var registrationColumns = []string{
	"id", "name", "email", "phone", "role", "message", "status",
	"organization_id", "class_id", "section_id", "processed_by", "processed_at", "created_at", "updated_at",
}

// RegistrationRepository handles registration request database operations
type RegistrationRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

var _ IRegistrationRepository = (*RegistrationRepository)(nil)

// NewRegistrationRepository creates a new RegistrationRepository
func NewRegistrationRepository(q db.Querier) *RegistrationRepository {
	return &RegistrationRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a pending request
func (r *RegistrationRepository) Create(ctx context.Context, req *models.RegistrationRequest) error {
	if req.Status == "" {
		req.Status = models.StatusPending
	}

	sql, args, err := r.sb.Insert("registration_requests").
		Columns("name", "email", "phone", "role", "message", "status", "organization_id", "class_id", "section_id").
		Values(req.Name, req.Email, req.Phone, req.Role, req.Message, req.Status, req.OrganizationID, req.ClassID, req.SectionID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create registration query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("email", req.Email).Msg("Error creating registration request")
		return fmt.Errorf("error creating registration request: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) getOne(ctx context.Context, id int64, forUpdate bool) (*models.RegistrationRequest, error) {
	q := r.sb.Select(registrationColumns...).From("registration_requests").Where(squirrel.Eq{"id": id})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get registration query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving registration request: %w", err)
	}
	req, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.RegistrationRequest])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("registration request not found")
		}
		return nil, fmt.Errorf("error scanning registration request: %w", err)
	}
	return req, nil
}

// GetByID retrieves a request without locking it
func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	return r.getOne(ctx, id, false)
}

// GetForUpdate retrieves a request with SELECT ... FOR UPDATE
func (r *RegistrationRepository) GetForUpdate(ctx context.Context, id int64) (*models.RegistrationRequest, error) {
	return r.getOne(ctx, id, true)
}

// List returns one page of requests, newest first, and the total count
func (r *RegistrationRepository) List(ctx context.Context, filter RegistrationFilter) ([]models.RegistrationRequest, int64, error) {
	where := squirrel.And{}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("registration_requests").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count registration query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting registration requests: %w", err)
	}

	q := r.sb.Select(registrationColumns...).From("registration_requests").Where(where).
		OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list registration query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing registration requests: %w", err)
	}
	requests, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.RegistrationRequest])
	if err != nil {
		return nil, 0, fmt.Errorf("error scanning registration requests: %w", err)
	}
	return requests, total, nil
}

// Update writes every mutable column of req
func (r *RegistrationRepository) Update(ctx context.Context, req *models.RegistrationRequest) error {
	sql, args, err := r.sb.Update("registration_requests").
		SetMap(map[string]interface{}{
			"name":            req.Name,
			"email":           req.Email,
			"phone":           req.Phone,
			"role":            req.Role,
			"message":         req.Message,
			"status":          req.Status,
			"organization_id": req.OrganizationID,
			"class_id":        req.ClassID,
			"section_id":      req.SectionID,
			"processed_by":    req.ProcessedBy,
			"processed_at":    req.ProcessedAt,
			"updated_at":      squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": req.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update registration query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewResourceNotFoundError("registration request not found")
		}
		return fmt.Errorf("error updating registration request: %w", err)
	}
	return nil
}
