// Package azure provides the Azure Cost Management fetcher.
//
// This package implements provider.CostFetcher on top of the Cost
// Management query API. It handles:
//   - Authentication using a service principal (client secret credential)
//   - Actual-cost queries over a custom timeframe, grouped by service
//     name and resource group
//   - Column-map response parsing into normalized cost records
//   - Classification of API failures into the fetch error taxonomy
//
// The client performs exactly one logical fetch per call and carries no
// retry logic of its own.
//
// Example usage:
//
//	client, err := azure.NewClient(cfg, log)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	tf := provider.LastNDays(time.Now(), 7, 0)
//	records, err := client.Fetch(ctx, tf, provider.GranularityDaily)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, record := range records {
//		fmt.Printf("%s %s %.2f %s\n",
//			record.PeriodStart, record.Service, record.Amount, record.Currency)
//	}
package azure
