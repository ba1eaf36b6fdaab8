package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/seqx/internal/models"
	"github.com/desertthunder/seqx/internal/shared"
)

const sequenceElementColumns = "id, element_type, element_id, sequence_number, version_number"

// SequenceElementRepository implements [models.SequenceStore] for [models.SequenceElement] persistence.
type SequenceElementRepository struct {
	db *shared.DB
}

// NewSequenceElementRepository creates a new [SequenceElementRepository] with the given database connection
func NewSequenceElementRepository(db *shared.DB) *SequenceElementRepository {
	return &SequenceElementRepository{db: db}
}

// CountByType counts all rows of elementType, regardless of element id.
func (r *SequenceElementRepository) CountByType(ctx context.Context, elementType string) (int, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM sequence_elements WHERE element_type = ?`)

	var count int
	if err := r.db.QueryRowContext(ctx, query, elementType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sequence elements: %w", err)
	}

	return count, nil
}

// Insert stores a new element with a generated ID and returns it.
func (r *SequenceElementRepository) Insert(ctx context.Context, element *models.SequenceElement) (*models.SequenceElement, error) {
	if err := element.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	element.ID = shared.GenerateID()

	query := r.db.Rebind(`
		INSERT INTO sequence_elements (id, element_type, element_id, sequence_number, version_number) VALUES (?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		element.ID, element.ElementType, element.ElementID, element.SequenceNumber, element.VersionNumber,
	)
	if err != nil {
		element.ID = ""
		return nil, fmt.Errorf("failed to insert sequence element: %w", err)
	}

	return element, nil
}

// UpdateSequenceWhere sets the sequence number of every row matching (elementType, elementID).
//
// It returns the number of rows changed; zero is not an error.
func (r *SequenceElementRepository) UpdateSequenceWhere(ctx context.Context, elementType string, elementID, newSequence int) (int64, error) {
	query := r.db.Rebind(`
		UPDATE sequence_elements
		SET sequence_number = ?
		WHERE element_type = ? AND element_id = ?
	`)

	result, err := r.db.ExecContext(ctx, query, newSequence, elementType, elementID)
	if err != nil {
		return 0, fmt.Errorf("failed to update sequence number: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// FindOneWhere returns a row matching (elementType, elementID), or nil when there is none.
//
// When several rows match, which one is returned is up to the database.
func (r *SequenceElementRepository) FindOneWhere(ctx context.Context, elementType string, elementID int) (*models.SequenceElement, error) {
	query := r.db.Rebind(`
		SELECT ` + sequenceElementColumns + `
		FROM sequence_elements
		WHERE element_type = ? AND element_id = ?
		LIMIT 1
	`)

	element, err := scanSequenceElement(r.db.QueryRowContext(ctx, query, elementType, elementID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sequence element: %w", err)
	}

	return element, nil
}

// Save writes the version number of an existing element, matched by ID.
//
// Only version_number is written, so a sequence number changed by a concurrent reorder
// since element was read is left as the reorder set it.
func (r *SequenceElementRepository) Save(ctx context.Context, element *models.SequenceElement) (*models.SequenceElement, error) {
	if err := element.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := r.db.Rebind(`
		UPDATE sequence_elements
		SET version_number = ?
		WHERE id = ?
	`)

	result, err := r.db.ExecContext(ctx, query, element.VersionNumber, element.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to save sequence element: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrElementNotFound, element.ID)
	}

	return element, nil
}

// List returns every row of elementType ordered by sequence number.
func (r *SequenceElementRepository) List(ctx context.Context, elementType string) ([]*models.SequenceElement, error) {
	query := r.db.Rebind(`
		SELECT ` + sequenceElementColumns + `
		FROM sequence_elements
		WHERE element_type = ?
		ORDER BY sequence_number ASC, element_id ASC
	`)

	rows, err := r.db.QueryContext(ctx, query, elementType)
	if err != nil {
		return nil, fmt.Errorf("failed to query sequence elements: %w", err)
	}
	defer rows.Close()

	var elements []*models.SequenceElement
	for rows.Next() {
		element, err := scanSequenceElement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sequence element: %w", err)
		}
		elements = append(elements, element)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return elements, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSequenceElement(s scanner) (*models.SequenceElement, error) {
	var e models.SequenceElement
	if err := s.Scan(&e.ID, &e.ElementType, &e.ElementID, &e.SequenceNumber, &e.VersionNumber); err != nil {
		return nil, err
	}
	return &e, nil
}
