package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidSortField is returned when a page asks to sort by a column that is not exposed.
	ErrInvalidSortField = errors.New("invalid sort field")
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ParseSortDirection maps anything other than "asc" to DESC.
func ParseSortDirection(v string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(v), "asc") {
		return SortAsc
	}
	return SortDesc
}

// PageRequest is a zero-based page with an optional sort field (API name, not column name).
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir SortDirection
}

func (p PageRequest) normalized() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.SortDir != SortAsc {
		p.SortDir = SortDesc
	}
	return p
}

func (p PageRequest) offset() int {
	return p.Page * p.Size
}

func (p PageRequest) orderBy(columns map[string]string, fallback string) (string, error) {
	field := p.SortBy
	if field == "" {
		field = fallback
	}
	column, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortField, p.SortBy)
	}
	dir := "DESC"
	if p.SortDir == SortAsc {
		dir = "ASC"
	}
	return column + " " + dir, nil
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func newPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// paginate counts the rows matched by base and loads the requested slice of them.
func paginate[T any](base *gorm.DB, req PageRequest, order string) (Page[T], error) {
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Page[T]{}, fmt.Errorf("failed to count rows: %w", err)
	}

	var items []T
	err := base.
		Order(order).
		Offset(req.offset()).
		Limit(req.Size).
		Find(&items).
		Error
	if err != nil {
		return Page[T]{}, fmt.Errorf("failed to load page: %w", err)
	}

	return newPage(items, req, total), nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Reservations() ReservationRepository
	Links() ReservationLinkRepository
	Identities() IdentityRepository
	// Transaction runs fn inside a transaction. It commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Reservations() ReservationRepository {
	return NewReservationRepository(s.db)
}

func (s *GormStore) Links() ReservationLinkRepository {
	return NewReservationLinkRepository(s.db)
}

func (s *GormStore) Identities() IdentityRepository {
	return NewIdentityRepository(s.db)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
