package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"transferguard/internal/audit"
	"transferguard/internal/compliance"
	"transferguard/internal/compliance/rules"
	"transferguard/internal/compliance/store/blacklist"
	"transferguard/internal/compliance/store/velocity"
)

const (
	velocityLimit  = uint64(1_000)
	velocityWindow = 24 * time.Hour
)

// HandlerSuite drives the evaluation endpoints against a real engine with
// real in-memory stores; only the HTTP concerns are under test here.
type HandlerSuite struct {
	suite.Suite
	router    http.Handler
	blacklist *blacklist.MemoryStore
	windows   *velocity.MemoryStore
	sink      *audit.MemorySink
	ctx       context.Context
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.blacklist = blacklist.NewMemoryStore()
	s.windows = velocity.NewMemoryStore()
	s.sink = audit.NewMemorySink()
	s.ctx = context.Background()

	velocityRule := rules.NewVelocity(s.windows, velocityLimit, velocityWindow)

	ruleSet := compliance.NewRuleSet()
	s.Require().NoError(ruleSet.AddRule(rules.NewBlacklist(s.blacklist), 10, true))
	s.Require().NoError(ruleSet.AddRule(velocityRule, 20, false))

	engine, err := compliance.NewEngine(ruleSet)
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(engine, velocityRule, logger, nil, audit.NewPublisher([]audit.Sink{s.sink}))

	r := chi.NewRouter()
	handler.Register(r)
	s.router = r
}

func (s *HandlerSuite) postJSON(path string, payload any) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestEvaluate() {
	s.Run("clean transfer passes", func() {
		rec := s.postJSON("/compliance/evaluate", EvaluateRequest{
			OperationType: "transfer",
			Actor:         "0xactor",
			Counterparty:  "0xother",
			Amount:        100,
			Asset:         "token-a",
		})
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp EvaluateResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.True(resp.Passed)
		s.Empty(resp.FailedRule)
		s.Equal(2, resp.EvaluatedRules)
		s.Equal("short_circuit", resp.Mode)
		s.Equal(uint64(1), resp.RuleSetVersion)
	})

	s.Run("blacklisted actor is denied with rule and reason", func() {
		s.Require().NoError(s.blacklist.Add(s.ctx, rules.BlacklistEntry{
			Address: "0xsanctioned",
			Reason:  "ofac sdn match",
		}))

		rec := s.postJSON("/compliance/evaluate", EvaluateRequest{
			OperationType: "transfer",
			Actor:         "0xsanctioned",
			Counterparty:  "0xother",
			Amount:        100,
			Asset:         "token-a",
		})
		s.Require().Equal(http.StatusOK, rec.Code, "a denial is a successful evaluation, not an error")

		var resp EvaluateResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.False(resp.Passed)
		s.Equal(rules.RuleIDBlacklist, resp.FailedRule)
		s.NotEmpty(resp.Reason)
	})

	s.Run("operation type is normalized before evaluation", func() {
		rec := s.postJSON("/compliance/evaluate", EvaluateRequest{
			OperationType: "  TRANSFER ",
			Actor:         "0xactor",
			Amount:        1,
		})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("unknown operation type rejected", func() {
		rec := s.postJSON("/compliance/evaluate", EvaluateRequest{
			OperationType: "teleport",
			Actor:         "0xactor",
		})
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "invalid_input")
	})

	s.Run("missing actor rejected", func() {
		rec := s.postJSON("/compliance/evaluate", EvaluateRequest{
			OperationType: "transfer",
			Amount:        1,
		})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("malformed body rejected", func() {
		req := httptest.NewRequest(http.MethodPost, "/compliance/evaluate",
			bytes.NewReader([]byte("not json")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("evaluation does not advance the velocity window", func() {
		rec := s.postJSON("/compliance/evaluate", EvaluateRequest{
			OperationType: "transfer",
			Actor:         "0xreadonly",
			Amount:        400,
		})
		s.Require().Equal(http.StatusOK, rec.Code)

		window, err := s.windows.Get(s.ctx, "0xreadonly")
		s.Require().NoError(err)
		s.Zero(window.Amount)
	})
}

func (s *HandlerSuite) TestRecordTransfer() {
	s.Run("commits the transfer into the window", func() {
		rec := s.postJSON("/compliance/transfers/record", RecordTransferRequest{
			Actor:  "0xactor",
			Amount: 600,
		})
		s.Require().Equal(http.StatusNoContent, rec.Code)

		window, err := s.windows.Get(s.ctx, "0xactor")
		s.Require().NoError(err)
		s.Equal(uint64(600), window.Amount)

		events := s.sink.ListByType(audit.EventTransferRecorded)
		s.Require().Len(events, 1)
		s.Equal("0xactor", string(events[0].Address))
	})

	s.Run("recorded transfers count against later evaluations", func() {
		s.Require().Equal(http.StatusNoContent, s.postJSON("/compliance/transfers/record", RecordTransferRequest{
			Actor:  "0xheavy",
			Amount: 900,
		}).Code)

		rec := s.postJSON("/compliance/evaluate", EvaluateRequest{
			OperationType: "transfer",
			Actor:         "0xheavy",
			Amount:        200,
		})
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp EvaluateResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.False(resp.Passed)
		s.Equal(rules.RuleIDVelocity, resp.FailedRule)
	})

	s.Run("zero amount rejected", func() {
		rec := s.postJSON("/compliance/transfers/record", RecordTransferRequest{
			Actor:  "0xactor",
			Amount: 0,
		})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing actor rejected", func() {
		rec := s.postJSON("/compliance/transfers/record", RecordTransferRequest{Amount: 5})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestRecordTransferWithoutRecorder() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := compliance.NewEngine(compliance.NewRuleSet())
	s.Require().NoError(err)

	r := chi.NewRouter()
	New(engine, nil, logger, nil, nil).Register(r)

	req := httptest.NewRequest(http.MethodPost, "/compliance/transfers/record",
		bytes.NewReader([]byte(`{"actor":"0xactor","amount":5}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "velocity tracking is not enabled")
}
