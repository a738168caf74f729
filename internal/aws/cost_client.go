package aws

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/smithy-go"
	"github.com/zgpcy/cloud-cost-collector/internal/config"
	"github.com/zgpcy/cloud-cost-collector/internal/logger"
	"github.com/zgpcy/cloud-cost-collector/internal/provider"
)

// costMetric is the Cost Explorer metric the collector normalizes on
const costMetric = "AmortizedCost"

// Client wraps the AWS Cost Explorer client and implements provider.CostFetcher
type Client struct {
	client *costexplorer.Client
	cfg    *config.Config
	logger *logger.Logger
}

// Verify that Client implements provider.CostFetcher
var _ provider.CostFetcher = (*Client)(nil)

// NewClient creates a new Cost Explorer client from explicit credentials;
// no ambient environment or shared-profile lookup happens here.
func NewClient(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWS.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, "")),
	}
	if cfg.AWS.Endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.AWS.Endpoint))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &Client{
		client: costexplorer.NewFromConfig(awsCfg),
		cfg:    cfg,
		logger: log,
	}, nil
}

// Name returns the provider type
func (c *Client) Name() provider.ProviderType {
	return provider.ProviderAWS
}

// Fetch pulls cost-and-usage rows grouped by service and linked account,
// plus one extra query per configured tag key. Any failure, including one
// mid-pagination, discards everything and fails the whole call.
func (c *Client) Fetch(ctx context.Context, tf provider.Timeframe, gran provider.Granularity) ([]provider.CostRecord, error) {
	var records []provider.CostRecord

	primary, err := c.query(ctx, tf, gran, []types.GroupDefinition{
		{Type: types.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		{Type: types.GroupDefinitionTypeDimension, Key: aws.String("LINKED_ACCOUNT")},
	}, "")
	if err != nil {
		return nil, err
	}
	records = append(records, primary...)

	for _, tag := range c.cfg.AWS.GroupByTags {
		tagged, err := c.query(ctx, tf, gran, []types.GroupDefinition{
			{Type: types.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
			{Type: types.GroupDefinitionTypeTag, Key: aws.String(tag)},
		}, tag)
		if err != nil {
			return nil, err
		}
		records = append(records, tagged...)
	}

	if err := provider.ValidateAll(records); err != nil {
		return nil, provider.NewFetchError(provider.ProviderAWS, provider.FetchErrMalformed, err)
	}

	c.logger.Debug("AWS fetch complete",
		"record_count", len(records),
		"timeframe_start", tf.Start,
		"timeframe_end", tf.End)
	return records, nil
}

// query runs one GetCostAndUsage query to completion, following pagination
func (c *Client) query(ctx context.Context, tf provider.Timeframe, gran provider.Granularity, groups []types.GroupDefinition, tagKey string) ([]provider.CostRecord, error) {
	apiTimeout := time.Duration(c.cfg.APITimeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	granularity := types.GranularityDaily
	if gran == provider.GranularityMonthly {
		granularity = types.GranularityMonthly
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(tf.Start),
			End:   aws.String(exclusiveEnd(tf.End)),
		},
		Granularity: granularity,
		Metrics:     []string{costMetric},
		GroupBy:     groups,
	}

	var records []provider.CostRecord
	for {
		out, err := c.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, classifyErr(err)
		}

		parsed, err := c.parseResults(out.ResultsByTime, tagKey)
		if err != nil {
			return nil, provider.NewFetchError(provider.ProviderAWS, provider.FetchErrMalformed, err)
		}
		records = append(records, parsed...)

		if out.NextPageToken == nil || *out.NextPageToken == "" {
			break
		}
		input.NextPageToken = out.NextPageToken
	}
	return records, nil
}

// parseResults normalizes one page of results. When tagKey is set, the
// second group key carries the tag value in "Key$value" form.
func (c *Client) parseResults(results []types.ResultByTime, tagKey string) ([]provider.CostRecord, error) {
	var records []provider.CostRecord

	for _, rbt := range results {
		if rbt.TimePeriod == nil || rbt.TimePeriod.Start == nil || rbt.TimePeriod.End == nil {
			return nil, errors.New("result missing time period")
		}
		periodStart := *rbt.TimePeriod.Start
		periodEnd := inclusiveEnd(periodStart, *rbt.TimePeriod.End)

		for _, g := range rbt.Groups {
			if len(g.Keys) < 2 {
				return nil, fmt.Errorf("group has %d keys, expected 2", len(g.Keys))
			}
			metric, ok := g.Metrics[costMetric]
			if !ok || metric.Amount == nil {
				return nil, fmt.Errorf("group missing %s metric", costMetric)
			}
			amount, err := strconv.ParseFloat(*metric.Amount, 64)
			if err != nil {
				return nil, fmt.Errorf("unparseable amount %q: %w", *metric.Amount, err)
			}

			currency := "USD"
			if metric.Unit != nil && *metric.Unit != "" {
				currency = *metric.Unit
			}

			record := provider.CostRecord{
				Provider:    provider.ProviderAWS,
				Service:     g.Keys[0],
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
				Amount:      amount,
				Currency:    currency,
			}

			if tagKey != "" {
				record.Tags = map[string]string{tagKey: tagValue(g.Keys[1])}
			} else {
				record.Account = g.Keys[1]
			}

			records = append(records, record)
		}
	}
	return records, nil
}

// tagValue strips the "Key$" prefix Cost Explorer puts on tag group keys
func tagValue(key string) string {
	if i := strings.Index(key, "$"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// exclusiveEnd converts an inclusive end date to the exclusive form the
// Cost Explorer API expects
func exclusiveEnd(end string) string {
	t, err := time.Parse("2006-01-02", end)
	if err != nil {
		return end
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}

// inclusiveEnd converts the API's exclusive period end back to the
// inclusive date the normalized record shape uses
func inclusiveEnd(start, end string) string {
	t, err := time.Parse("2006-01-02", end)
	if err != nil {
		return end
	}
	inclusive := t.AddDate(0, 0, -1).Format("2006-01-02")
	if inclusive < start {
		return start
	}
	return inclusive
}

// classifyErr maps SDK failures onto the fetch error taxonomy
func classifyErr(err error) *provider.FetchError {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "Throttling", "TooManyRequestsException", "LimitExceededException":
			return provider.NewFetchError(provider.ProviderAWS, provider.FetchErrThrottled, err)
		case "AccessDeniedException", "AccessDenied", "UnrecognizedClientException",
			"InvalidClientTokenId", "ExpiredTokenException", "AuthFailure":
			return provider.NewFetchError(provider.ProviderAWS, provider.FetchErrAuth, err)
		default:
			// Service-side errors (5xx and friends) are transient transport
			// failures as far as the retry loop is concerned
			return provider.NewFetchError(provider.ProviderAWS, provider.FetchErrNetwork, err)
		}
	}
	return provider.NewFetchError(provider.ProviderAWS, provider.FetchErrNetwork, err)
}
