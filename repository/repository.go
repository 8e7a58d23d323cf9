package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/natansdj/electives/drivers"
	"github.com/natansdj/electives/pool"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrQueryFailure = errors.New("query failed")
)

const (
	queryAllModules    = "SELECT * FROM module"
	querySearchModules = "SELECT * FROM module WHERE module_code LIKE ? OR module_name LIKE ?"
	queryModuleByCode  = "SELECT * FROM module WHERE module_code = ?"
	queryModuleReviews = "SELECT * FROM user_reviews WHERE Elective_Code = ?"
)

// Repository runs every statement on its own pool checkout
type Repository struct {
	DB   *gorm.DB
	Pool *pool.Pool
}

func New(db *gorm.DB, p *pool.Pool) *Repository {
	return &Repository{DB: db, Pool: p}
}

// run executes fn on a pinned session. Driver errors are wrapped in ErrQueryFailure,
// pool errors pass through unchanged.
func (r *Repository) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.Pool.With(ctx, func(c *pool.Conn) error {
		if err := fn(drivers.Session(ctx, r.DB, c)); err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrQueryFailure, err)
		}
		return nil
	})
}

func (r *Repository) AllModules(ctx context.Context) ([]Module, error) {
	modules := []Module{}
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Raw(queryAllModules).Scan(&modules).Error
	})
	return modules, err
}

// SearchModules matches q as a substring of the code or the name
func (r *Repository) SearchModules(ctx context.Context, q string) ([]Module, error) {
	like := "%" + q + "%"

	modules := []Module{}
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Raw(querySearchModules, like, like).Scan(&modules).Error
	})
	return modules, err
}

func (r *Repository) ModuleByCode(ctx context.Context, code string) (*Module, error) {
	var modules []Module
	err := r.run(ctx, func(tx *gorm.DB) error {
		if err := tx.Raw(queryModuleByCode, code).Scan(&modules).Error; err != nil {
			return err
		}
		if len(modules) == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &modules[0], nil
}

func (r *Repository) ModuleReviews(ctx context.Context, code string) ([]Review, error) {
	reviews := []Review{}
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Raw(queryModuleReviews, code).Scan(&reviews).Error
	})
	return reviews, err
}

// SubmitReview inserts review and fills its generated fields
func (r *Repository) SubmitReview(ctx context.Context, review *Review) error {
	return r.run(ctx, func(tx *gorm.DB) error {
		return tx.Create(review).Error
	})
}
