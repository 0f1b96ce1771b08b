package persistence

import (
	"strings"

	"github.com/marketplace/backend/internal/domain/catalog"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField maps a public sort field to a column through the whitelist.
// Returns defaultColumn if the input is empty or not in the whitelist.
func ValidateSortField(sortField string, allowed map[string]string, defaultColumn string) string {
	if column, ok := allowed[strings.TrimSpace(sortField)]; ok {
		return column
	}
	return defaultColumn
}

// ProductSortFields maps the accepted product sort fields to columns
var ProductSortFields = map[string]string{
	catalog.SortByBarcode:           "p.bar_code",
	catalog.SortByName:              "p.name",
	catalog.SortByManufacturingDate: "p.manufacturing_date",
	catalog.SortByExpiredDate:       "p.expired_date",
}
