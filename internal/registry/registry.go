package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"deskmate-backend/internal/interval"
	"deskmate-backend/internal/model"
)

// ErrResourceNotFound is returned for unknown resource ids.
var ErrResourceNotFound = errors.New("resource not found")

// Filter narrows a catalog listing.
type Filter struct {
	Kind       model.ResourceKind
	Department string
	// Query matches case-insensitively against resource name and number.
	Query string
}

// Registry holds the catalog of bookable resources.
type Registry interface {
	Get(ctx context.Context, id uint) (model.Resource, error)
	List(ctx context.Context, f Filter) ([]model.Resource, error)
	Seed(ctx context.Context) error
}

// Granularity returns the interval granularity for a resource kind:
// desks are booked per whole calendar day, rooms per sub-day range.
func Granularity(kind model.ResourceKind) interval.Granularity {
	if kind == model.KindDesk {
		return interval.WholeDay
	}
	return interval.SubDay
}

// gormRegistry implements Registry using GORM.
type gormRegistry struct {
	db *gorm.DB
}

// NewGormRegistry creates a new GORM-backed registry.
func NewGormRegistry(db *gorm.DB) Registry {
	return &gormRegistry{db: db}
}

func (r *gormRegistry) Get(ctx context.Context, id uint) (model.Resource, error) {
	var res model.Resource
	err := r.db.WithContext(ctx).First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Resource{}, ErrResourceNotFound
	}
	if err != nil {
		return model.Resource{}, fmt.Errorf("failed to fetch resource %d: %w", id, err)
	}
	return res, nil
}

func (r *gormRegistry) List(ctx context.Context, f Filter) ([]model.Resource, error) {
	q := r.db.WithContext(ctx).Model(&model.Resource{})
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Department != "" {
		q = q.Where("department = ?", f.Department)
	}
	if f.Query != "" {
		needle := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(number) LIKE ?", needle, needle)
	}

	var out []model.Resource
	if err := q.Order("kind ASC, number ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return out, nil
}

// Seed inserts a default catalog when the table is empty, so a fresh
// install has something to book.
func (r *gormRegistry) Seed(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Resource{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count resources: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Printf("Seeding default resource catalog...")
	catalog := defaultCatalog()
	return r.db.WithContext(ctx).Create(&catalog).Error
}

func defaultCatalog() []model.Resource {
	resources := []model.Resource{
		{Kind: model.KindRoom, Number: "MR-101", Name: "Board Room", Floor: 1, Seats: 14, HasProjector: true, HasVideoConference: true},
		{Kind: model.KindRoom, Number: "MR-102", Name: "Huddle Room A", Floor: 1, Seats: 4, HasProjector: false, HasVideoConference: true},
		{Kind: model.KindRoom, Number: "MR-201", Name: "Conference Room", Floor: 2, Seats: 10, HasProjector: true, HasVideoConference: false},
		{Kind: model.KindRoom, Number: "MR-202", Name: "Huddle Room B", Floor: 2, Seats: 4, HasProjector: false, HasVideoConference: false},
	}

	departments := []string{"Engineering", "Engineering", "Design", "Sales"}
	for i := 0; i < 12; i++ {
		resources = append(resources, model.Resource{
			Kind:       model.KindDesk,
			Number:     fmt.Sprintf("D-%d%02d", i/6+1, i%6+1),
			Name:       fmt.Sprintf("Desk %d%02d", i/6+1, i%6+1),
			Floor:      i/6 + 1,
			Department: departments[i%len(departments)],
		})
	}
	return resources
}
