// package models defines the data model for the sequence service
package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/seqx/internal/shared"
)

// SequenceElement is the persisted position and version of one external element within its type.
type SequenceElement struct {
	ID             string `json:"id"`
	ElementType    string `json:"elementType"`
	ElementID      int    `json:"elementId"`
	SequenceNumber int    `json:"sequenceNumber"`
	VersionNumber  int    `json:"versionNumber"`
}

// NewSequenceElement creates an unsaved element at the given position with version 1.
func NewSequenceElement(elementType string, elementID, sequenceNumber int) *SequenceElement {
	return &SequenceElement{
		ElementType:    elementType,
		ElementID:      elementID,
		SequenceNumber: sequenceNumber,
		VersionNumber:  1,
	}
}

// Validate checks the fields every stored element must carry.
//
// Sequence numbers are not range-checked since reorders may place elements anywhere.
func (e *SequenceElement) Validate() error {
	if strings.TrimSpace(e.ElementType) == "" {
		return fmt.Errorf("%w: element type is required", shared.ErrInvalidInput)
	}
	if e.VersionNumber < 1 {
		return fmt.Errorf("%w: version number must be positive, got %d", shared.ErrInvalidInput, e.VersionNumber)
	}
	return nil
}

// SequenceRequest asks for the next sequence number of an element type.
type SequenceRequest struct {
	ElementType string
	ElementID   int
}

// ReorderEntry moves one element to a new sequence number.
type ReorderEntry struct {
	ElementID   int
	NewSequence int
}

// ReorderRequest moves several elements of one type.
type ReorderRequest struct {
	ElementType string
	Elements    []ReorderEntry
}

// VersionData is the content of a new version. It is accepted but not stored.
type VersionData struct {
	Text string
}

// VersionRequest bumps the version number of an element.
type VersionRequest struct {
	ElementType    string
	ElementID      int
	NewVersionData VersionData
}

// SequenceStore defines the storage operations behind the sequence API.
//
// Implementations handle database interactions for [SequenceElement] rows.
type SequenceStore interface {
	CountByType(ctx context.Context, elementType string) (int, error)                                      // CountByType counts rows of an element type
	Insert(ctx context.Context, element *SequenceElement) (*SequenceElement, error)                        // Insert stores a new row and assigns its ID
	UpdateSequenceWhere(ctx context.Context, elementType string, elementID, newSequence int) (int64, error) // UpdateSequenceWhere sets the sequence number of matching rows and returns how many changed
	FindOneWhere(ctx context.Context, elementType string, elementID int) (*SequenceElement, error)          // FindOneWhere returns one matching row, or nil when there is none
	Save(ctx context.Context, element *SequenceElement) (*SequenceElement, error)                          // Save writes every mutable field of an existing row
	List(ctx context.Context, elementType string) ([]*SequenceElement, error)                              // List returns the rows of an element type in sequence order
}
