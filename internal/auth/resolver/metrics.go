package resolver

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type outcome string

const (
	outcomeAuthenticated outcome = "authenticated"
	outcomeRejected      outcome = "rejected"
	outcomeError         outcome = "error"
	outcomeDenied        outcome = "denied"
)

// Metrics counts resolution attempts per channel and outcome. A nil
// *Metrics records nothing.
type Metrics struct {
	resolutions metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	counter, err := meter.Int64Counter(
		"auth_resolutions_total",
		metric.WithDescription("Credential resolution attempts by channel and outcome."),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create resolutions counter: %w", err)
	}
	return &Metrics{resolutions: counter}, nil
}

func (m *Metrics) record(ctx context.Context, ch Channel, o outcome) {
	if m == nil {
		return
	}
	m.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", string(ch)),
		attribute.String("outcome", string(o)),
	))
}
