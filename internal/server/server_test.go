package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/desertthunder/seqx/internal/models"
	"github.com/desertthunder/seqx/internal/repositories"
	"github.com/desertthunder/seqx/internal/sequencer"
	"github.com/desertthunder/seqx/internal/shared"
	tu "github.com/desertthunder/seqx/internal/testing"
)

type testServer struct {
	router *BasicRouter
	db     *shared.DB
	repo   *repositories.SequenceElementRepository
	logs   *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := tu.MustNewDB(t)
	repo := repositories.NewSequenceElementRepository(db)
	logs := &bytes.Buffer{}
	logger := shared.NewLogger(logs)

	cfg := shared.DefaultConfig().Server
	router := NewRouter(sequencer.New(repo, logger), db, cfg, logger)
	return &testServer{router: router, db: db, repo: repo, logs: logs}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeElement(t *testing.T, rec *httptest.ResponseRecorder) models.SequenceElement {
	t.Helper()

	var e models.SequenceElement
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("failed to decode element %q: %v", rec.Body.String(), err)
	}
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var e ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("failed to decode error %q: %v", rec.Body.String(), err)
	}
	return e
}

func TestGenerateEndpoint(t *testing.T) {
	t.Run("assigns consecutive sequence numbers", func(t *testing.T) {
		s := newTestServer(t)

		for i := 1; i <= 3; i++ {
			rec := s.do(t, http.MethodPost, "/sequence", `{"elementType":"photo","elementId":42}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("expected JSON content type, got %q", ct)
			}

			e := decodeElement(t, rec)
			if e.SequenceNumber != i || e.VersionNumber != 1 || e.ElementType != "photo" || e.ElementID != 42 || e.ID == "" {
				t.Errorf("call %d: unexpected element %+v", i, e)
			}
		}
	})

	t.Run("response field names", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/sequence", `{"elementType":"task","elementId":1}`)
		var raw map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		for _, key := range []string{"id", "elementType", "elementId", "sequenceNumber", "versionNumber"} {
			if _, ok := raw[key]; !ok {
				t.Errorf("expected key %q in %v", key, raw)
			}
		}
	})

	t.Run("malformed bodies", func(t *testing.T) {
		tc := []struct {
			name string
			body string
		}{
			{name: "empty", body: ""},
			{name: "not json", body: "elementType=photo"},
			{name: "missing elementId", body: `{"elementType":"photo"}`},
			{name: "missing elementType", body: `{"elementId":1}`},
			{name: "null elementId", body: `{"elementType":"photo","elementId":null}`},
			{name: "string elementId", body: `{"elementType":"photo","elementId":"1"}`},
			{name: "fractional elementId", body: `{"elementType":"photo","elementId":1.5}`},
			{name: "blank elementType", body: `{"elementType":" ","elementId":1}`},
			{name: "trailing data", body: `{"elementType":"photo","elementId":1} {}`},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				s := newTestServer(t)

				rec := s.do(t, http.MethodPost, "/sequence", tt.body)
				if rec.Code != http.StatusBadRequest {
					t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
				}
				if e := decodeError(t, rec); !e.Error || e.Reason == "" {
					t.Errorf("unexpected error body %+v", e)
				}

				count, err := s.repo.CountByType(context.Background(), "photo")
				if err != nil {
					t.Fatalf("failed to count: %v", err)
				}
				if count != 0 {
					t.Errorf("expected no rows, got %d", count)
				}
			})
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodGet, "/sequence", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
			t.Errorf("expected Allow POST, got %q", allow)
		}
	})
}

func TestReorderEndpoint(t *testing.T) {
	seed := func(t *testing.T, s *testServer, elementType string, ids ...int) {
		t.Helper()
		for _, id := range ids {
			body := `{"elementType":"` + elementType + `","elementId":` + strconv.Itoa(id) + `}`
			if rec := s.do(t, http.MethodPost, "/sequence", body); rec.Code != http.StatusOK {
				t.Fatalf("failed to seed: %d %s", rec.Code, rec.Body.String())
			}
		}
	}

	t.Run("updates only the matching pair", func(t *testing.T) {
		s := newTestServer(t)
		seed(t, s, "photo", 4, 5)
		seed(t, s, "task", 5)

		rec := s.do(t, http.MethodPost, "/sequence/reorder", `{"elementType":"photo","elements":[{"elementId":5,"newSequence":3}]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if rec.Body.Len() != 0 {
			t.Errorf("expected empty body, got %q", rec.Body.String())
		}

		ctx := context.Background()
		photo5, _ := s.repo.FindOneWhere(ctx, "photo", 5)
		photo4, _ := s.repo.FindOneWhere(ctx, "photo", 4)
		task5, _ := s.repo.FindOneWhere(ctx, "task", 5)
		if photo5.SequenceNumber != 3 {
			t.Errorf("expected photo 5 at 3, got %d", photo5.SequenceNumber)
		}
		if photo4.SequenceNumber != 1 {
			t.Errorf("expected photo 4 untouched at 1, got %d", photo4.SequenceNumber)
		}
		if task5.SequenceNumber != 1 {
			t.Errorf("expected task 5 untouched at 1, got %d", task5.SequenceNumber)
		}
	})

	t.Run("unknown element succeeds without changes", func(t *testing.T) {
		s := newTestServer(t)
		seed(t, s, "photo", 1)

		rec := s.do(t, http.MethodPost, "/sequence/reorder", `{"elementType":"photo","elements":[{"elementId":99,"newSequence":3}]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		list, err := s.repo.List(context.Background(), "photo")
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(list) != 1 || list[0].SequenceNumber != 1 {
			t.Errorf("expected no changes, got %+v", list)
		}
	})

	t.Run("empty elements", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/sequence/reorder", `{"elementType":"photo","elements":[]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("malformed bodies", func(t *testing.T) {
		for _, body := range []string{
			`{"elementType":"photo"}`,
			`{"elements":[]}`,
			`{"elementType":"photo","elements":[{"elementId":1}]}`,
			`{"elementType":"photo","elements":[{"newSequence":1}]}`,
			`{"elementType":"photo","elements":{"elementId":1,"newSequence":1}}`,
		} {
			s := newTestServer(t)
			if rec := s.do(t, http.MethodPost, "/sequence/reorder", body); rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", body, rec.Code)
			}
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		s := newTestServer(t)
		s.db.Close()

		rec := s.do(t, http.MethodPost, "/sequence/reorder", `{"elementType":"photo","elements":[{"elementId":1,"newSequence":1}]}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if e := decodeError(t, rec); e.Reason != http.StatusText(http.StatusInternalServerError) {
			t.Errorf("expected generic reason, got %q", e.Reason)
		}
	})
}

func TestVersionEndpoint(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		s := newTestServer(t)

		created := decodeElement(t, s.do(t, http.MethodPost, "/sequence", `{"elementType":"photo","elementId":5}`))

		found, err := s.repo.FindOneWhere(context.Background(), "photo", 5)
		if err != nil {
			t.Fatalf("failed to find: %v", err)
		}
		if found.ElementType != "photo" || found.ElementID != 5 || found.VersionNumber != 1 {
			t.Errorf("unexpected stored element %+v", found)
		}

		rec := s.do(t, http.MethodPost, "/sequence/version", `{"elementType":"photo","elementId":5,"newVersionData":{"text":"second draft"}}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		updated := decodeElement(t, rec)
		if updated.VersionNumber != 2 {
			t.Errorf("expected version 2, got %d", updated.VersionNumber)
		}
		if updated.ID != created.ID || updated.ElementType != created.ElementType || updated.ElementID != created.ElementID {
			t.Errorf("expected same identity, got %+v vs %+v", updated, created)
		}
	})

	t.Run("not found", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/sequence/version", `{"elementType":"photo","elementId":5,"newVersionData":{"text":"x"}}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if e := decodeError(t, rec); !e.Error {
			t.Errorf("expected error body, got %+v", e)
		}
	})

	t.Run("malformed bodies", func(t *testing.T) {
		for _, body := range []string{
			`{"elementType":"photo","elementId":5}`,
			`{"elementType":"photo","elementId":5,"newVersionData":{}}`,
			`{"elementType":"photo","newVersionData":{"text":"x"}}`,
			`{"elementId":5,"newVersionData":{"text":"x"}}`,
		} {
			s := newTestServer(t)
			if rec := s.do(t, http.MethodPost, "/sequence/version", body); rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", body, rec.Code)
			}
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(t, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if rec := s.do(t, http.MethodPost, "/health", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}

	s.db.Close()
	if rec := s.do(t, http.MethodGet, "/health", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after close, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tc := []struct {
		err  error
		want int
	}{
		{err: shared.ErrDecode, want: http.StatusBadRequest},
		{err: shared.ErrInvalidInput, want: http.StatusBadRequest},
		{err: shared.ErrElementNotFound, want: http.StatusNotFound},
		{err: errors.New("connection refused"), want: http.StatusInternalServerError},
	}

	for _, tt := range tc {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	t.Run("encodes value", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeJSON(rec, http.StatusOK, map[string]string{"status": "ok"})

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("expected JSON content type, got %q", ct)
		}
	})

	t.Run("unencodable value", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeJSON(rec, http.StatusOK, make(chan int))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if e := decodeError(t, rec); !e.Error {
			t.Errorf("expected error body, got %+v", e)
		}
	})
}

func TestUnknownPath(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/sequence/", "/sequence/other", "/"} {
		rec := s.do(t, http.MethodPost, path, `{}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
			continue
		}
		if e := decodeError(t, rec); !e.Error || e.Reason == "" {
			t.Errorf("%s: expected JSON error body, got %q", path, rec.Body.String())
		}
	}
}

func TestRouterRateLimit(t *testing.T) {
	db := tu.MustNewDB(t)
	logger := shared.NewLogger(&bytes.Buffer{})

	cfg := shared.DefaultConfig().Server
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	router := NewRouter(sequencer.New(repositories.NewSequenceElementRepository(db), logger), db, cfg, logger)

	codes := make([]int, 2)
	for i := range codes {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes[i] = rec.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("expected [200 429], got %v", codes)
	}
}
