package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"transferguard/internal/policy"
	"transferguard/pkg/requestcontext"
)

// HandlerSuite exercises the lifecycle endpoints against a real registry over
// the in-memory store. Time is injected per request so the activation delay
// gate is deterministic.
type HandlerSuite struct {
	suite.Suite
	router http.Handler
	now    time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	registry, err := policy.NewRegistry(policy.NewMemoryStore(),
		policy.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)

	r := chi.NewRouter()
	New(registry, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	s.router = r
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *HandlerSuite) do(method, path string, payload any, at time.Time) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(requestcontext.WithTime(req.Context(), at))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder) PolicyResponse {
	var resp PolicyResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func (s *HandlerSuite) register() PolicyResponse {
	rec := s.do(http.MethodPost, "/policies", RegisterRequest{ConfigRef: "s3://policies/v1.json"}, s.now)
	s.Require().Equal(http.StatusCreated, rec.Code)
	return s.decode(rec)
}

func (s *HandlerSuite) TestRegister() {
	s.Run("creates a draft with sequential versions", func() {
		first := s.register()
		s.Equal(1, first.Version)
		s.Equal("draft", first.Status)
		s.Equal(int64((24 * time.Hour) / time.Second), first.ActivationDelaySec)
		s.NotEmpty(first.ID)

		second := s.register()
		s.Equal(2, second.Version)
	})

	s.Run("missing config_ref rejected", func() {
		rec := s.do(http.MethodPost, "/policies", RegisterRequest{}, s.now)
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "config_ref is required")
	})

	s.Run("malformed body rejected", func() {
		req := httptest.NewRequest(http.MethodPost, "/policies", bytes.NewReader([]byte("not json")))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestLifecycle() {
	p := s.register()
	base := fmt.Sprintf("/policies/%d", p.Version)

	s.Run("stage starts the activation clock", func() {
		rec := s.do(http.MethodPost, base+"/stage", nil, s.now)
		s.Require().Equal(http.StatusOK, rec.Code)

		resp := s.decode(rec)
		s.Equal("staged", resp.Status)
		s.Equal(s.now, resp.StagedAt)
		s.Equal(s.now.Add(24*time.Hour), resp.ActivatableAt)
	})

	s.Run("activation before the delay elapses is rejected", func() {
		rec := s.do(http.MethodPost, base+"/activate", nil, s.now.Add(23*time.Hour))
		s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Contains(rec.Body.String(), "failed_precondition")
	})

	s.Run("activation at the boundary succeeds", func() {
		rec := s.do(http.MethodPost, base+"/activate", nil, s.now.Add(24*time.Hour))
		s.Require().Equal(http.StatusOK, rec.Code)

		resp := s.decode(rec)
		s.Equal("active", resp.Status)
		s.Zero(resp.ActivatableAt, "activatable_at only reported while staged")
	})

	s.Run("active version is served", func() {
		rec := s.do(http.MethodGet, "/policies/active", nil, s.now)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal(p.Version, s.decode(rec).Version)
	})
}

func (s *HandlerSuite) TestCancelStaging() {
	p := s.register()
	base := fmt.Sprintf("/policies/%d", p.Version)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, base+"/stage", nil, s.now).Code)

	rec := s.do(http.MethodPost, base+"/cancel-staging", nil, s.now.Add(time.Hour))
	s.Require().Equal(http.StatusOK, rec.Code)

	resp := s.decode(rec)
	s.Equal("draft", resp.Status)
	s.Zero(resp.StagedAt)
}

func (s *HandlerSuite) TestSetActivationDelay() {
	p := s.register()
	path := fmt.Sprintf("/policies/%d/activation-delay", p.Version)

	s.Run("updates the delay on a draft", func() {
		rec := s.do(http.MethodPut, path, SetActivationDelayRequest{DelaySeconds: 7200}, s.now)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal(int64(7200), s.decode(rec).ActivationDelaySec)
	})

	s.Run("delay below the floor rejected", func() {
		rec := s.do(http.MethodPut, path, SetActivationDelayRequest{DelaySeconds: 60}, s.now)
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "below")
	})
}

func (s *HandlerSuite) TestGet() {
	s.Run("unknown version is 404", func() {
		rec := s.do(http.MethodGet, "/policies/42", nil, s.now)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("non-numeric version is 400", func() {
		rec := s.do(http.MethodGet, "/policies/abc", nil, s.now)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("no active policy is 404", func() {
		rec := s.do(http.MethodGet, "/policies/active", nil, s.now)
		s.Require().Equal(http.StatusNotFound, rec.Code)
		s.Contains(rec.Body.String(), "no active policy")
	})

	s.Run("list returns registered versions in order", func() {
		s.register()
		s.register()

		rec := s.do(http.MethodGet, "/policies", nil, s.now)
		s.Require().Equal(http.StatusOK, rec.Code)

		var policies []PolicyResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&policies))
		s.Require().Len(policies, 2)
		s.Equal(1, policies[0].Version)
		s.Equal(2, policies[1].Version)
	})
}
