// Package sequencer implements the three sequence operations on top of a [models.SequenceStore]:
//
//  1. [Sequencer.Generate] : register an element at the end of its type
//  2. [Sequencer.Reorder] : move elements of one type to new positions
//  3. [Sequencer.CreateVersion] : bump an element's version counter
package sequencer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seqx/internal/models"
	"github.com/desertthunder/seqx/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Sequencer runs sequence operations against a store.
type Sequencer struct {
	store  models.SequenceStore
	logger *log.Logger
}

// New creates a [Sequencer]. A nil logger falls back to [shared.NewLogger].
func New(store models.SequenceStore, logger *log.Logger) *Sequencer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Sequencer{store: store, logger: shared.WithLogger(logger, "component", "sequencer")}
}

// Generate stores a new element numbered one past the current count of its type.
//
// The count and the insert are separate statements with no lock or transaction between
// them: concurrent calls for the same type can read the same count and receive the same
// sequence number. Identical requests are not deduplicated.
func (s *Sequencer) Generate(ctx context.Context, req models.SequenceRequest) (*models.SequenceElement, error) {
	count, err := s.store.CountByType(ctx, req.ElementType)
	if err != nil {
		return nil, err
	}

	element, err := s.store.Insert(ctx, models.NewSequenceElement(req.ElementType, req.ElementID, count+1))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("generated sequence number",
		"type", element.ElementType, "element", element.ElementID, "sequence", element.SequenceNumber)
	return element, nil
}

// Reorder sets the sequence number of each listed element, one concurrent update per entry.
//
// It waits for every update and returns the first error. Updates that already succeeded
// are kept, and entries that match no row are skipped silently.
func (s *Sequencer) Reorder(ctx context.Context, req models.ReorderRequest) error {
	var g errgroup.Group

	for _, entry := range req.Elements {
		g.Go(func() error {
			rows, err := s.store.UpdateSequenceWhere(ctx, req.ElementType, entry.ElementID, entry.NewSequence)
			if err != nil {
				return fmt.Errorf("element %d: %w", entry.ElementID, err)
			}
			if rows == 0 {
				s.logger.Debug("reorder matched no rows", "type", req.ElementType, "element", entry.ElementID)
			}
			return nil
		})
	}

	return g.Wait()
}

// CreateVersion increments the version number of the element matching the request.
//
// The version text is not stored. It returns [shared.ErrElementNotFound] when no element matches.
func (s *Sequencer) CreateVersion(ctx context.Context, req models.VersionRequest) (*models.SequenceElement, error) {
	element, err := s.store.FindOneWhere(ctx, req.ElementType, req.ElementID)
	if err != nil {
		return nil, err
	}
	if element == nil {
		return nil, fmt.Errorf("%w: %s/%d", shared.ErrElementNotFound, req.ElementType, req.ElementID)
	}

	element.VersionNumber++
	saved, err := s.store.Save(ctx, element)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created version",
		"type", saved.ElementType, "element", saved.ElementID, "version", saved.VersionNumber,
		"text_len", len(req.NewVersionData.Text))
	return saved, nil
}

// List returns the elements of one type in sequence order.
func (s *Sequencer) List(ctx context.Context, elementType string) ([]*models.SequenceElement, error) {
	return s.store.List(ctx, elementType)
}
