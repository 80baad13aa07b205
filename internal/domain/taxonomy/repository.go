package taxonomy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository persists the category tree in Postgres.
type Repository struct {
	db DB
}

// NewRepository creates a new taxonomy repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// GetCategorySet loads the user's full category tree, categories in creation
// order and subcategories in position order.
func (r *Repository) GetCategorySet(ctx context.Context, userID uuid.UUID) (*CategorySet, error) {
	query := `
		SELECT c.name, c.color, COALESCE(s.name, '')
		FROM categories c
		LEFT JOIN subcategories s ON s.category_id = c.id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.id, s.position, s.id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query category set: %w", err)
	}
	defer rows.Close()

	set := NewCategorySet()
	for rows.Next() {
		var name, color, sub string
		if err := rows.Scan(&name, &color, &sub); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}

		c, _ := set.Get(name)
		c.Color = color
		if sub != "" {
			c.Subcategories = append(c.Subcategories, sub)
		}
		set.Add(name, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return set, nil
}

// CreateCategory inserts a category and returns its id once the row is
// visible, so callers can re-read the set immediately instead of sleeping
// through a settle delay.
func (r *Repository) CreateCategory(ctx context.Context, userID uuid.UUID, name, color string) (uuid.UUID, error) {
	query := `
		INSERT INTO categories (user_id, name, color)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO UPDATE SET color = EXCLUDED.color
		RETURNING id
	`

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, userID, name, color).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("create category %q: %w", name, err)
	}
	return id, nil
}

// CreateSubcategory appends a subcategory to an existing category.
func (r *Repository) CreateSubcategory(ctx context.Context, userID uuid.UUID, category, name string) error {
	query := `
		INSERT INTO subcategories (category_id, name, position)
		SELECT c.id, $3, COALESCE(MAX(s.position), 0) + 1
		FROM categories c
		LEFT JOIN subcategories s ON s.category_id = c.id
		WHERE c.user_id = $1 AND c.name = $2
		GROUP BY c.id
	`

	tag, err := r.db.Exec(ctx, query, userID, category, name)
	if err != nil {
		return fmt.Errorf("create subcategory %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("create subcategory %q: category %q not found", name, category)
	}
	return nil
}
