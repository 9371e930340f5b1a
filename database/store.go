package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"parkdesk/billing"
)

// Store is the gorm-backed persistence layer. It implements billing.PaymentStore and
// billing.SubscriptionStore.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

var (
	_ billing.PaymentStore      = (*Store)(nil)
	_ billing.SubscriptionStore = (*Store)(nil)
)

// ListQuery selects one page of records.
type ListQuery struct {
	Page     int
	PageSize int
	// Filter is "paid", "unpaid" or empty.
	Filter string
	// Search is a case-insensitive substring of the vehicle number.
	Search string
	// Status is "active", "expired" or empty; vehicles only.
	Status string
	Now    time.Time
}

func (q ListQuery) normalized() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	q.Filter = strings.ToLower(strings.TrimSpace(q.Filter))
	q.Search = strings.TrimSpace(q.Search)
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	return q
}

func (q ListQuery) offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is one page of a listing plus the paid sum of its items.
type Page[T any] struct {
	Items      []T     `json:"items"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
	PagePaid   float64 `json:"pagePaidAmount"`
}

func newPage[T any](items []T, total int64, q ListQuery, paid func(T) float64) Page[T] {
	if items == nil {
		items = []T{}
	}
	var sum float64
	for _, it := range items {
		sum += paid(it)
	}
	pages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: pages,
		PagePaid:   billing.Round(sum),
	}
}

// scopeList applies the paid filter and vehicle-number search. totalColumn is the column a
// record's payment is measured against.
func scopeList(q ListQuery, totalColumn string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch q.Filter {
		case "paid":
			db = db.Where(fmt.Sprintf("paid_amount >= %s", totalColumn))
		case "unpaid":
			db = db.Where(fmt.Sprintf("paid_amount < %s", totalColumn))
		}
		if q.Search != "" {
			db = db.Where("LOWER(vehicle_number) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(q.Search))+"%")
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error and anything else to Storage.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &billing.Error{Kind: billing.ErrNotFound, Message: what + " not found", Err: err}
	}
	return billing.Storage("failed to load "+what, err)
}
