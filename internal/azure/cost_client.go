package azure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/zgpcy/cloud-cost-collector/internal/config"
	"github.com/zgpcy/cloud-cost-collector/internal/logger"
	"github.com/zgpcy/cloud-cost-collector/internal/provider"
)

// Client wraps the Azure Cost Management client and implements provider.CostFetcher
type Client struct {
	client *armcostmanagement.QueryClient
	cfg    *config.Config
	logger *logger.Logger
}

// Verify that Client implements provider.CostFetcher
var _ provider.CostFetcher = (*Client)(nil)

// NewClient creates a new Azure Cost Management client from the service
// principal credentials in the configuration
func NewClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	cred, err := azidentity.NewClientSecretCredential(
		cfg.Azure.TenantID, cfg.Azure.ClientID, cfg.Azure.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := armcostmanagement.NewQueryClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}

	return &Client{
		client: client,
		cfg:    cfg,
		logger: log,
	}, nil
}

// Name returns the provider type
func (c *Client) Name() provider.ProviderType {
	return provider.ProviderAzure
}

// Fetch queries actual cost for the configured subscription, grouped by
// service name and resource group, and normalizes the rows. A failed call
// or an unparseable response fails the whole fetch; retrying is the
// caller's concern.
func (c *Client) Fetch(ctx context.Context, tf provider.Timeframe, gran provider.Granularity) ([]provider.CostRecord, error) {
	apiTimeout := time.Duration(c.cfg.APITimeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()

	startDate, err := time.Parse("2006-01-02", tf.Start)
	if err != nil {
		return nil, provider.NewFetchError(provider.ProviderAzure, provider.FetchErrMalformed,
			fmt.Errorf("invalid timeframe start %q: %w", tf.Start, err))
	}
	endDate, err := time.Parse("2006-01-02", tf.End)
	if err != nil {
		return nil, provider.NewFetchError(provider.ProviderAzure, provider.FetchErrMalformed,
			fmt.Errorf("invalid timeframe end %q: %w", tf.End, err))
	}
	// End of day so the last day's usage is included
	endDate = endDate.Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	c.logger.Debug("Querying Azure Cost Management API",
		"subscription", c.cfg.Azure.SubscriptionID,
		"start_date", tf.Start,
		"end_date", tf.End,
		"granularity", gran)

	scope := fmt.Sprintf("/subscriptions/%s", c.cfg.Azure.SubscriptionID)
	queryType := armcostmanagement.ExportTypeActualCost
	timeframe := armcostmanagement.TimeframeTypeCustom
	granularity := armcostmanagement.GranularityTypeDaily
	if gran == provider.GranularityMonthly {
		granularity = armcostmanagement.GranularityType("Monthly")
	}

	queryDef := armcostmanagement.QueryDefinition{
		Type:      &queryType,
		Timeframe: &timeframe,
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &startDate,
			To:   &endDate,
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: &granularity,
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     stringPtr("Cost"),
					Function: functionPtr(armcostmanagement.FunctionTypeSum),
				},
			},
			Grouping: []*armcostmanagement.QueryGrouping{
				{Type: columnTypePtr(armcostmanagement.QueryColumnTypeDimension), Name: stringPtr("ServiceName")},
				{Type: columnTypePtr(armcostmanagement.QueryColumnTypeDimension), Name: stringPtr("ResourceGroup")},
			},
		},
	}

	resp, err := c.client.Usage(ctx, scope, queryDef, nil)
	if err != nil {
		return nil, classifyErr(err)
	}

	records, err := parseResponse(resp.QueryResult, gran)
	if err != nil {
		return nil, provider.NewFetchError(provider.ProviderAzure, provider.FetchErrMalformed, err)
	}

	if err := provider.ValidateAll(records); err != nil {
		return nil, provider.NewFetchError(provider.ProviderAzure, provider.FetchErrMalformed, err)
	}

	c.logger.Debug("Azure fetch complete", "record_count", len(records))
	return records, nil
}

// parseResponse converts an Azure query result into normalized cost records
func parseResponse(result armcostmanagement.QueryResult, gran provider.Granularity) ([]provider.CostRecord, error) {
	if result.Properties == nil {
		return nil, errors.New("response missing properties")
	}

	columnMap := buildColumnMap(result.Properties.Columns)

	costIdx, ok := columnMap["Cost"]
	if !ok {
		return nil, errors.New("response missing Cost column")
	}
	dateIdx, ok := columnMap["UsageDate"]
	if !ok {
		dateIdx, ok = columnMap["BillingMonth"]
	}
	if !ok {
		return nil, errors.New("response missing UsageDate/BillingMonth column")
	}

	var records []provider.CostRecord
	for i, row := range result.Properties.Rows {
		if len(row) <= costIdx || len(row) <= dateIdx {
			return nil, fmt.Errorf("row %d has %d columns, expected at least %d",
				i, len(row), maxIdx(costIdx, dateIdx)+1)
		}

		amount, ok := parseCost(row[costIdx])
		if !ok {
			return nil, fmt.Errorf("row %d has unparseable cost %v", i, row[costIdx])
		}

		periodStart, periodEnd, err := rowPeriod(parseDate(row[dateIdx]), gran)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		service := getStringFromRow(row, columnMap, "ServiceName")
		if service == "" {
			service = getStringFromRow(row, columnMap, "MeterCategory")
		}
		if service == "" {
			service = "Unknown"
		}

		account := getStringFromRow(row, columnMap, "ResourceGroup")
		if account == "" {
			account = getStringFromRow(row, columnMap, "ResourceGroupName")
		}

		currency := getStringFromRow(row, columnMap, "Currency")
		if currency == "" {
			currency = getStringFromRow(row, columnMap, "CurrencyCode")
		}
		if currency == "" {
			currency = "USD"
		}

		records = append(records, provider.CostRecord{
			Provider:    provider.ProviderAzure,
			Service:     service,
			Account:     account,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
			Amount:      amount,
			Currency:    currency,
		})
	}
	return records, nil
}

// rowPeriod derives the record period from the row date: one day for daily
// granularity, the containing calendar month for monthly
func rowPeriod(date string, gran provider.Granularity) (string, string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", "", fmt.Errorf("unparseable date %q: %w", date, err)
	}
	if gran == provider.GranularityMonthly {
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, -1)
		return start.Format("2006-01-02"), end.Format("2006-01-02"), nil
	}
	return date, date, nil
}

// buildColumnMap creates a map of column names to their indices
func buildColumnMap(columns []*armcostmanagement.QueryColumn) map[string]int {
	columnMap := make(map[string]int)
	for i, col := range columns {
		if col.Name != nil {
			columnMap[*col.Name] = i
		}
	}
	return columnMap
}

// getStringFromRow extracts a string value from a row by column name
func getStringFromRow(row []interface{}, columnMap map[string]int, columnName string) string {
	if idx, ok := columnMap[columnName]; ok && len(row) > idx {
		value := fmt.Sprintf("%v", row[idx])
		if value != "" && value != "<nil>" {
			return value
		}
	}
	return ""
}

// parseCost extracts and converts a cost value to float64
func parseCost(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// formatDateValue converts various date types to string
func formatDateValue(value interface{}) string {
	switch v := value.(type) {
	case int, int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// extractDigits extracts only digit characters from a string
func extractDigits(s string) string {
	var digits strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	return digits.String()
}

// parseDate extracts and formats a date column value as YYYY-MM-DD. The API
// returns usage dates as integers like 20250615.
func parseDate(value interface{}) string {
	dateDigits := extractDigits(formatDateValue(value))
	if len(dateDigits) >= 8 {
		return fmt.Sprintf("%s-%s-%s", dateDigits[0:4], dateDigits[4:6], dateDigits[6:8])
	}
	return dateDigits
}

// classifyErr maps Azure SDK failures onto the fetch error taxonomy
func classifyErr(err error) *provider.FetchError {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.StatusCode == 401 || respErr.StatusCode == 403:
			return provider.NewFetchError(provider.ProviderAzure, provider.FetchErrAuth, err)
		case respErr.StatusCode == 429:
			return provider.NewFetchError(provider.ProviderAzure, provider.FetchErrThrottled, err)
		case respErr.StatusCode >= 500:
			return provider.NewFetchError(provider.ProviderAzure, provider.FetchErrNetwork, err)
		default:
			return provider.NewFetchError(provider.ProviderAzure, provider.FetchErrMalformed, err)
		}
	}
	var authErr *azidentity.AuthenticationFailedError
	if errors.As(err, &authErr) {
		return provider.NewFetchError(provider.ProviderAzure, provider.FetchErrAuth, err)
	}
	return provider.NewFetchError(provider.ProviderAzure, provider.FetchErrNetwork, err)
}

func maxIdx(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func stringPtr(s string) *string {
	return &s
}

func functionPtr(f armcostmanagement.FunctionType) *armcostmanagement.FunctionType {
	return &f
}

func columnTypePtr(t armcostmanagement.QueryColumnType) *armcostmanagement.QueryColumnType {
	return &t
}
