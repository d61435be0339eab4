// Package metrics publishes operational counters to CloudWatch. Publishing
// is best effort: a metrics failure is logged, never surfaced to the user.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/marcheligne/storefront/internal/aws"
)

// Publisher emits metric data under a fixed namespace.
type Publisher struct {
	client    aws.CloudWatchAPI
	namespace string
	logger    zerolog.Logger
	nowFunc   func() time.Time
}

// NewPublisher returns a Publisher. A nil client disables publishing, which
// keeps local runs free of AWS calls.
func NewPublisher(client aws.CloudWatchAPI, namespace string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		client:    client,
		namespace: namespace,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// CountCartMutation counts one committed cart mutation by action.
func (p *Publisher) CountCartMutation(ctx context.Context, action string) {
	p.put(ctx, cwtypes.MetricDatum{
		MetricName: awsString("CartMutation"),
		Unit:       cwtypes.StandardUnitCount,
		Value:      awsFloat(1),
		Dimensions: []cwtypes.Dimension{
			{Name: awsString("Action"), Value: awsString(action)},
		},
	})
}

// RecordSearchLatency records how long one catalog search took.
func (p *Publisher) RecordSearchLatency(ctx context.Context, elapsed time.Duration) {
	p.put(ctx, cwtypes.MetricDatum{
		MetricName: awsString("SearchLatency"),
		Unit:       cwtypes.StandardUnitMilliseconds,
		Value:      awsFloat(float64(elapsed.Milliseconds())),
	})
}

func (p *Publisher) put(ctx context.Context, datum cwtypes.MetricDatum) {
	if p.client == nil {
		return
	}
	now := p.nowFunc()
	datum.Timestamp = &now
	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  &p.namespace,
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		ev := p.logger.Warn().Err(err).Str("metric", *datum.MetricName)
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			ev = ev.Str("aws_error_code", apiErr.ErrorCode())
		}
		ev.Msg("put metric failed")
	}
}

func awsString(s string) *string { return &s }
func awsFloat(f float64) *float64 { return &f }
