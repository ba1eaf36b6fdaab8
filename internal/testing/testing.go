// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/desertthunder/seqx/internal/models"
	"github.com/desertthunder/seqx/internal/shared"
)

// ErrStoreFailure is returned by every failing [StubStore] method.
var ErrStoreFailure = errors.New("store unavailable")

// MustNewDB opens an in-memory SQLite database with migrations applied and closes it when the test ends.
func MustNewDB(t *testing.T) *shared.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// StubStore is a test double for [models.SequenceStore].
//
// Each Fail* flag makes the matching method return [ErrStoreFailure]; otherwise it delegates to Store when set.
type StubStore struct {
	Store models.SequenceStore

	FailCount  bool
	FailInsert bool
	FailUpdate func(elementID int) bool
	FailFind   bool
	FailSave   bool
	FailList   bool
}

func (s *StubStore) CountByType(ctx context.Context, elementType string) (int, error) {
	if s.FailCount || s.Store == nil {
		return 0, ErrStoreFailure
	}
	return s.Store.CountByType(ctx, elementType)
}

func (s *StubStore) Insert(ctx context.Context, element *models.SequenceElement) (*models.SequenceElement, error) {
	if s.FailInsert || s.Store == nil {
		return nil, ErrStoreFailure
	}
	return s.Store.Insert(ctx, element)
}

func (s *StubStore) UpdateSequenceWhere(ctx context.Context, elementType string, elementID, newSequence int) (int64, error) {
	if (s.FailUpdate != nil && s.FailUpdate(elementID)) || s.Store == nil {
		return 0, ErrStoreFailure
	}
	return s.Store.UpdateSequenceWhere(ctx, elementType, elementID, newSequence)
}

func (s *StubStore) FindOneWhere(ctx context.Context, elementType string, elementID int) (*models.SequenceElement, error) {
	if s.FailFind || s.Store == nil {
		return nil, ErrStoreFailure
	}
	return s.Store.FindOneWhere(ctx, elementType, elementID)
}

func (s *StubStore) Save(ctx context.Context, element *models.SequenceElement) (*models.SequenceElement, error) {
	if s.FailSave || s.Store == nil {
		return nil, ErrStoreFailure
	}
	return s.Store.Save(ctx, element)
}

func (s *StubStore) List(ctx context.Context, elementType string) ([]*models.SequenceElement, error) {
	if s.FailList || s.Store == nil {
		return nil, ErrStoreFailure
	}
	return s.Store.List(ctx, elementType)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
