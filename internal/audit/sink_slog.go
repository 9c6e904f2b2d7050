package audit

import (
	"context"
	"log/slog"
)

// SlogSink mirrors every audit event into the structured application log.
// Useful in development and as a last-resort trail when Kafka is down.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Write(ctx context.Context, event Event) error {
	attrs := []any{
		"event_id", event.ID,
		"category", event.Category,
		"type", event.Type,
	}
	if event.Actor != "" {
		attrs = append(attrs, "actor", event.Actor)
	}
	if event.RuleID != "" {
		attrs = append(attrs, "rule_id", event.RuleID)
	}
	if event.PolicyVersion != 0 {
		attrs = append(attrs, "policy_version", event.PolicyVersion)
	}
	if event.Passed != nil {
		attrs = append(attrs, "passed", *event.Passed)
		if !*event.Passed {
			attrs = append(attrs, "failed_rule", event.FailedRule, "reason", event.Reason)
		}
	}
	s.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}
