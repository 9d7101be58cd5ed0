package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes commit-outcome counters to CloudWatch.
// All calls are best-effort; callers log and move on when publication fails.
type Metrics struct {
	CW        CloudWatchAPI
	Namespace string
}

// NewMetrics returns a Metrics publisher for the given namespace.
func NewMetrics(cw CloudWatchAPI, namespace string) *Metrics {
	if namespace == "" {
		namespace = "HelpOrphan/Donations"
	}
	return &Metrics{CW: cw, Namespace: namespace}
}

// RecordCommitOutcome increments a counter named after the workflow outcome
// (e.g., "committed", "partial", "conflict").
func (m *Metrics) RecordCommitOutcome(ctx context.Context, outcome string) error {
	if m == nil || m.CW == nil {
		return nil
	}
	one := 1.0
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &m.Namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("CommitOutcome"),
				Value:      &one,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Outcome"), Value: &outcome},
				},
			},
		},
	}
	if _, err := m.CW.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
