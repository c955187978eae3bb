package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
)

// ServiceCatalogRepository reads the service catalog.
type ServiceCatalogRepository interface {
	GetService(ctx context.Context, id string) (*domain.Service, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListServices(ctx context.Context, categoryID *string) ([]domain.Service, error)
}

type serviceCatalogRepository struct {
	pool *pgxpool.Pool
}

// NewServiceCatalogRepository instantiates repository.
func NewServiceCatalogRepository(pool *pgxpool.Pool) ServiceCatalogRepository {
	return &serviceCatalogRepository{pool: pool}
}

func (r *serviceCatalogRepository) GetService(ctx context.Context, id string) (*domain.Service, error) {
	const query = `
        SELECT id, category_id, name, requires_approval, support_group_id, is_active, created_at
        FROM services WHERE id=$1`
	var svc domain.Service
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.CategoryID,
		&svc.Name,
		&svc.RequiresApproval,
		&svc.SupportGroupID,
		&svc.IsActive,
		&svc.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *serviceCatalogRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	const query = `
        SELECT id, name, is_active, created_at
        FROM categories WHERE id=$1`
	var cat domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&cat.ID,
		&cat.Name,
		&cat.IsActive,
		&cat.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *serviceCatalogRepository) ListServices(ctx context.Context, categoryID *string) ([]domain.Service, error) {
	query := `
        SELECT id, category_id, name, requires_approval, support_group_id, is_active, created_at
        FROM services WHERE is_active=TRUE`
	args := []any{}
	if categoryID != nil {
		query += ` AND category_id=$1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Service
	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(
			&svc.ID,
			&svc.CategoryID,
			&svc.Name,
			&svc.RequiresApproval,
			&svc.SupportGroupID,
			&svc.IsActive,
			&svc.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}
