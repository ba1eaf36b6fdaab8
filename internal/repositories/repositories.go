// package repositories provides persistence layer implementations for the sequence service.
package repositories

import "github.com/desertthunder/seqx/internal/models"

var _ models.SequenceStore = (*SequenceElementRepository)(nil)
