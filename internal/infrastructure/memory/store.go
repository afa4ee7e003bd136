// Package memory is a single-document store: every aggregate lives in one
// JSON blob with top-level arrays, optionally persisted to disk after each
// committed transaction.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/tiendc/go-deepcopy"
)

var (
	// ErrNotFound is returned when an update or delete targets a missing record
	ErrNotFound = errors.New("memory store: record not found")
	// ErrDuplicateKey mirrors a unique index violation
	ErrDuplicateKey = errors.New("memory store: duplicate key")
)

type document struct {
	Products                  []entity.Product                  `json:"products"`
	Orders                    []entity.Order                    `json:"orders"`
	KitchenOrders             []entity.KitchenOrder             `json:"kitchenOrders"`
	StockInReceipts           []entity.StockReceipt             `json:"stockInReceipts"`
	StockOutReceipts          []entity.StockReceipt             `json:"stockOutReceipts"`
	CustomerTreatmentPackages []entity.CustomerTreatmentPackage `json:"customerTreatmentPackages"`
	Tables                    []entity.Table                    `json:"tables"`
	Customers                 []entity.Customer                 `json:"customers"`
	IdempotencyKeys           []entity.IdempotencyKey           `json:"idempotencyKeys,omitempty"`
}

func (d *document) receipts(kind enum.ReceiptKind) *[]entity.StockReceipt {
	if kind == enum.ReceiptKindOut {
		return &d.StockOutReceipts
	}
	return &d.StockInReceipts
}

// Store holds the document. A transaction holds the store lock for its
// whole duration and restores a snapshot when it fails.
type Store struct {
	mu   sync.Mutex
	doc  *document
	path string
	now  func() time.Time
	log  *logrus.Entry
}

type txKey struct{}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now for record timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSnapshotPath persists the document to path after every commit and loads it on start
func WithSnapshotPath(path string) Option {
	return func(s *Store) { s.path = path }
}

// New creates a store, loading the snapshot file when one is configured and present
func New(log *logger.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		doc: &document{},
		now: time.Now,
		log: log.Component("memory-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.path == "" {
		return s, nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.WithField("path", s.path).Info("no snapshot found, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory store: read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, s.doc); err != nil {
		return nil, fmt.Errorf("memory store: decode snapshot: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"path":     s.path,
		"products": len(s.doc.Products),
		"orders":   len(s.doc.Orders),
	}).Info("snapshot loaded")
	return s, nil
}

// Repositories returns every repository backed by this store
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Products:      &productRepository{s: s},
		Orders:        &orderRepository{s: s},
		KitchenOrders: &kitchenOrderRepository{s: s},
		StockReceipts: &stockReceiptRepository{s: s},
		Packages:      &packageRepository{s: s},
		Tables:        &tableRepository{s: s},
		Customers:     &customerRepository{s: s},
		Idempotency:   &idempotencyRepository{s: s},
		Transactor:    s,
	}
}

// WithinTransaction implements repository.Transactor
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := clone(*s.doc)
	if err != nil {
		return fmt.Errorf("memory store: snapshot: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			s.doc = &snapshot
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.doc = &snapshot
		return err
	}
	if err := s.persistLocked(); err != nil {
		s.doc = &snapshot
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// view runs fn against the document, joining an open transaction
func (s *Store) view(ctx context.Context, fn func(d *document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn(s.doc)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc)
}

// update runs fn as a transaction of its own unless one is already open
func (s *Store) update(ctx context.Context, fn func(d *document) error) error {
	return s.WithinTransaction(ctx, func(context.Context) error {
		return fn(s.doc)
	})
}

func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("memory store: encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("memory store: create snapshot dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("memory store: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("memory store: replace snapshot: %w", err)
	}
	return nil
}

// clone deep-copies v so that callers never share memory with the document.
// Empty slices stay empty rather than becoming nil.
func clone[T any](v T) (T, error) {
	var out T
	err := deepcopy.Copy(&out, v)
	return out, err
}

func find[T any](items []T, match func(*T) bool) int {
	for i := range items {
		if match(&items[i]) {
			return i
		}
	}
	return -1
}

// cloneAll deep-copies items and never returns nil
func cloneAll[T any](items []T) ([]T, error) {
	if len(items) == 0 {
		return []T{}, nil
	}
	return clone(items)
}
