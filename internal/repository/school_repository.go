// Package repository implements data access for schools, expenses and
// expense payments on top of pgx.
package repository

import (
	"context"
	"fmt"

	"gitlab.com/adigun/schoolfin/internal/database"
	"gitlab.com/adigun/schoolfin/internal/models"
)

// SchoolRepository handles school database operations. Schools are managed
// by another service; this repository only resolves references and seeds
// test data.
type SchoolRepository struct {
	db database.PGXDB
}

// NewSchoolRepository creates a new SchoolRepository.
func NewSchoolRepository(db database.PGXDB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// Create adds a new school.
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO schools (name, short_code)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, school.Name, school.ShortCode).Scan(&school.ID, &school.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create school: %w", err)
	}
	return nil
}

// GetByID retrieves a school by ID.
func (r *SchoolRepository) GetByID(ctx context.Context, id int64) (*models.School, error) {
	var s models.School
	err := r.db.QueryRow(ctx, `
		SELECT id, name, short_code, created_at FROM schools WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.ShortCode, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	return &s, nil
}

// Exists reports whether a school with the given ID exists.
func (r *SchoolRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM schools WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check school existence: %w", err)
	}
	return exists, nil
}
