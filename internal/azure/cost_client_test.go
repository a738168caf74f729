package azure

import (
	"errors"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/zgpcy/cloud-cost-collector/internal/provider"
)

func queryResult(columns []string, rows [][]interface{}) armcostmanagement.QueryResult {
	cols := make([]*armcostmanagement.QueryColumn, 0, len(columns))
	for _, name := range columns {
		cols = append(cols, &armcostmanagement.QueryColumn{Name: stringPtr(name)})
	}
	return armcostmanagement.QueryResult{
		Properties: &armcostmanagement.QueryProperties{
			Columns: cols,
			Rows:    rows,
		},
	}
}

// TestParseResponse_FullResponse tests parsing a response with all expected columns
func TestParseResponse_FullResponse(t *testing.T) {
	result := queryResult(
		[]string{"Cost", "UsageDate", "ServiceName", "ResourceGroup", "Currency"},
		[][]interface{}{
			{12.34, int64(20250615), "Storage", "production-rg", "EUR"},
			{45.67, int64(20250616), "Azure Database for PostgreSQL", "data-rg", "EUR"},
		})

	records, err := parseResponse(result, provider.GranularityDaily)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	r1 := records[0]
	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Provider", r1.Provider, provider.ProviderAzure},
		{"Service", r1.Service, "Storage"},
		{"Account", r1.Account, "production-rg"},
		{"PeriodStart", r1.PeriodStart, "2025-06-15"},
		{"PeriodEnd", r1.PeriodEnd, "2025-06-15"},
		{"Amount", r1.Amount, 12.34},
		{"Currency", r1.Currency, "EUR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	r2 := records[1]
	if r2.Service != "Azure Database for PostgreSQL" {
		t.Errorf("Record 2 Service: got %v, want 'Azure Database for PostgreSQL'", r2.Service)
	}
	if r2.Amount != 45.67 {
		t.Errorf("Record 2 Amount: got %v, want 45.67", r2.Amount)
	}
}

// TestParseResponse_MinimalResponse tests parsing with only required columns
func TestParseResponse_MinimalResponse(t *testing.T) {
	result := queryResult(
		[]string{"Cost", "UsageDate"},
		[][]interface{}{
			{10.50, int64(20250615)},
		})

	records, err := parseResponse(result, provider.GranularityDaily)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	r1 := records[0]
	if r1.Service != "Unknown" {
		t.Errorf("Service: got %v, want Unknown", r1.Service)
	}
	if r1.Account != "" {
		t.Errorf("Account should be empty, got %v", r1.Account)
	}
	if r1.Currency != "USD" {
		t.Errorf("Currency: got %v, want USD fallback", r1.Currency)
	}
}

// TestParseResponse_MonthlyGranularity tests that monthly rows span the calendar month
func TestParseResponse_MonthlyGranularity(t *testing.T) {
	result := queryResult(
		[]string{"Cost", "BillingMonth", "ServiceName"},
		[][]interface{}{
			{100.0, "2025-06-01", "Storage"},
		})

	records, err := parseResponse(result, provider.GranularityMonthly)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].PeriodStart != "2025-06-01" {
		t.Errorf("PeriodStart: got %v, want 2025-06-01", records[0].PeriodStart)
	}
	if records[0].PeriodEnd != "2025-06-30" {
		t.Errorf("PeriodEnd: got %v, want 2025-06-30", records[0].PeriodEnd)
	}
}

// TestParseResponse_EmptyResponse tests handling of a result with no rows
func TestParseResponse_EmptyResponse(t *testing.T) {
	result := queryResult([]string{"Cost", "UsageDate"}, [][]interface{}{})

	records, err := parseResponse(result, provider.GranularityDaily)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected 0 records for empty response, got %d", len(records))
	}
}

// TestParseResponse_Malformed tests that structurally broken responses error out
func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		result armcostmanagement.QueryResult
	}{
		{
			name:   "nil properties",
			result: armcostmanagement.QueryResult{Properties: nil},
		},
		{
			name: "missing Cost column",
			result: queryResult([]string{"UsageDate", "ServiceName"},
				[][]interface{}{{int64(20250615), "Storage"}}),
		},
		{
			name: "missing date column",
			result: queryResult([]string{"Cost", "ServiceName"},
				[][]interface{}{{10.5, "Storage"}}),
		},
		{
			name: "short row",
			result: queryResult([]string{"Cost", "UsageDate"},
				[][]interface{}{{10.5}}),
		},
		{
			name: "unparseable cost",
			result: queryResult([]string{"Cost", "UsageDate"},
				[][]interface{}{{"not-a-number", int64(20250615)}}),
		},
		{
			name: "unparseable date",
			result: queryResult([]string{"Cost", "UsageDate"},
				[][]interface{}{{10.5, "junk"}}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseResponse(tt.result, provider.GranularityDaily); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// TestDateParsing tests various date column value conversions
func TestDateParsing(t *testing.T) {
	tests := []struct {
		name         string
		dateValue    interface{}
		expectedDate string
	}{
		{"int date", 20250615, "2025-06-15"},
		{"int64 date", int64(20250616), "2025-06-16"},
		{"float64 date", float64(20250617), "2025-06-17"},
		{"string date digits", "20250618", "2025-06-18"},
		{"string date formatted", "2025-06-19", "2025-06-19"},
		{"string with spaces", "  20250620  ", "2025-06-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.dateValue)
			if got != tt.expectedDate {
				t.Errorf("parseDate(%v): got %v, want %v", tt.dateValue, got, tt.expectedDate)
			}
		})
	}
}

// TestClassifyErr tests HTTP status to error kind mapping
func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want provider.FetchErrorKind
	}{
		{"unauthorized", &azcore.ResponseError{StatusCode: http.StatusUnauthorized}, provider.FetchErrAuth},
		{"forbidden", &azcore.ResponseError{StatusCode: http.StatusForbidden}, provider.FetchErrAuth},
		{"throttled", &azcore.ResponseError{StatusCode: http.StatusTooManyRequests}, provider.FetchErrThrottled},
		{"server error", &azcore.ResponseError{StatusCode: http.StatusInternalServerError}, provider.FetchErrNetwork},
		{"bad request", &azcore.ResponseError{StatusCode: http.StatusBadRequest}, provider.FetchErrMalformed},
		{"plain error", errors.New("connection refused"), provider.FetchErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := classifyErr(tt.err)
			if fe.Provider != provider.ProviderAzure {
				t.Errorf("Provider: got %v, want azure", fe.Provider)
			}
			if fe.Kind != tt.want {
				t.Errorf("Kind: got %v, want %v", fe.Kind, tt.want)
			}
		})
	}
}
