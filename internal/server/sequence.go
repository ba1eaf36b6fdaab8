package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seqx/internal/models"
	"github.com/desertthunder/seqx/internal/shared"
)

// Sequencer is the set of operations [SequenceHandler] exposes over HTTP.
type Sequencer interface {
	Generate(ctx context.Context, req models.SequenceRequest) (*models.SequenceElement, error)
	Reorder(ctx context.Context, req models.ReorderRequest) error
	CreateVersion(ctx context.Context, req models.VersionRequest) (*models.SequenceElement, error)
}

// Paths served by [SequenceHandler].
const (
	SequencePath = "/sequence"
	ReorderPath  = "/sequence/reorder"
	VersionPath  = "/sequence/version"
)

// SequenceHandler serves the POST-only sequence endpoints.
// Implements the [Handler] interface for registration with a [Router].
type SequenceHandler struct {
	seq    Sequencer
	logger *log.Logger
}

// NewSequenceHandler creates a [SequenceHandler] backed by seq.
func NewSequenceHandler(seq Sequencer, logger *log.Logger) *SequenceHandler {
	return &SequenceHandler{seq: seq, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SequenceHandler) Routes() []string {
	return []string{SequencePath, ReorderPath, VersionPath}
}

// ServeHTTP dispatches on the request path.
func (h *SequenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var serve http.HandlerFunc
	switch r.URL.Path {
	case SequencePath:
		serve = h.generate
	case ReorderPath:
		serve = h.reorder
	case VersionPath:
		serve = h.createVersion
	default:
		notFound(w, r)
		return
	}

	AllowMethods(serve, http.MethodPost).ServeHTTP(w, r)
}

// fail writes err with its mapped status. Server errors are logged and their details withheld.
func (h *SequenceHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}

type sequenceBody struct {
	ElementType *string `json:"elementType"`
	ElementID   *int    `json:"elementId"`
}

func (b sequenceBody) request() (models.SequenceRequest, error) {
	if err := requireType(b.ElementType); err != nil {
		return models.SequenceRequest{}, err
	}
	if b.ElementID == nil {
		return models.SequenceRequest{}, missingField("elementId")
	}
	return models.SequenceRequest{ElementType: *b.ElementType, ElementID: *b.ElementID}, nil
}

type reorderEntryBody struct {
	ElementID   *int `json:"elementId"`
	NewSequence *int `json:"newSequence"`
}

type reorderBody struct {
	ElementType *string             `json:"elementType"`
	Elements    *[]reorderEntryBody `json:"elements"`
}

func (b reorderBody) request() (models.ReorderRequest, error) {
	if err := requireType(b.ElementType); err != nil {
		return models.ReorderRequest{}, err
	}
	if b.Elements == nil {
		return models.ReorderRequest{}, missingField("elements")
	}

	req := models.ReorderRequest{ElementType: *b.ElementType, Elements: make([]models.ReorderEntry, 0, len(*b.Elements))}
	for i, e := range *b.Elements {
		if e.ElementID == nil {
			return models.ReorderRequest{}, missingField(fmt.Sprintf("elements[%d].elementId", i))
		}
		if e.NewSequence == nil {
			return models.ReorderRequest{}, missingField(fmt.Sprintf("elements[%d].newSequence", i))
		}
		req.Elements = append(req.Elements, models.ReorderEntry{ElementID: *e.ElementID, NewSequence: *e.NewSequence})
	}
	return req, nil
}

type versionBody struct {
	ElementType    *string `json:"elementType"`
	ElementID      *int    `json:"elementId"`
	NewVersionData *struct {
		Text *string `json:"text"`
	} `json:"newVersionData"`
}

func (b versionBody) request() (models.VersionRequest, error) {
	if err := requireType(b.ElementType); err != nil {
		return models.VersionRequest{}, err
	}
	if b.ElementID == nil {
		return models.VersionRequest{}, missingField("elementId")
	}
	if b.NewVersionData == nil {
		return models.VersionRequest{}, missingField("newVersionData")
	}
	if b.NewVersionData.Text == nil {
		return models.VersionRequest{}, missingField("newVersionData.text")
	}
	return models.VersionRequest{
		ElementType:    *b.ElementType,
		ElementID:      *b.ElementID,
		NewVersionData: models.VersionData{Text: *b.NewVersionData.Text},
	}, nil
}

func requireType(elementType *string) error {
	if elementType == nil {
		return missingField("elementType")
	}
	if strings.TrimSpace(*elementType) == "" {
		return fmt.Errorf("%w: elementType must not be empty", shared.ErrInvalidInput)
	}
	return nil
}

// generate handles POST /sequence.
func (h *SequenceHandler) generate(w http.ResponseWriter, r *http.Request) {
	var body sequenceBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := body.request()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	element, err := h.seq.Generate(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, element)
}

// reorder handles POST /sequence/reorder.
func (h *SequenceHandler) reorder(w http.ResponseWriter, r *http.Request) {
	var body reorderBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := body.request()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.seq.Reorder(r.Context(), req); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// createVersion handles POST /sequence/version.
func (h *SequenceHandler) createVersion(w http.ResponseWriter, r *http.Request) {
	var body versionBody
	if err := decodeJSON(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := body.request()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	element, err := h.seq.CreateVersion(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, element)
}
