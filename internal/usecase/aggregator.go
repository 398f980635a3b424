package usecase

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/liquidationblitz/backend/internal/domain"
)

const (
	// maxAdditionalImages caps the additional_image_link column per the feed format
	maxAdditionalImages = 10

	// fallbackBrand is used when no line item carries a vendor name
	fallbackBrand = "Mixed Brands"
)

// AggregatorConfig holds configuration for the aggregator
type AggregatorConfig struct {
	// CategoryMapping maps upper-cased category labels to Google product
	// category taxonomy strings
	CategoryMapping map[string]string

	// DefaultCategory is used when a label has no mapping entry
	DefaultCategory string
}

// Aggregator derives one catalog record from a batch's line items plus a
// markup percentage. It is pure: it never mutates its input and performs no I/O.
type Aggregator struct {
	categoryMapping map[string]string
	defaultCategory string
}

// NewAggregator creates a new aggregator. The mapping is copied so later
// changes to the caller's map cannot leak into aggregation.
func NewAggregator(config AggregatorConfig) *Aggregator {
	mapping := make(map[string]string, len(config.CategoryMapping))
	for label, category := range config.CategoryMapping {
		mapping[strings.ToUpper(label)] = category
	}

	return &Aggregator{
		categoryMapping: mapping,
		defaultCategory: config.DefaultCategory,
	}
}

// Aggregate derives the catalog record for a batch.
// Price is the marked-up sum of line prices rounded to two decimals, brand and
// category are the most common values across items (first-seen wins ties), and
// image links are deduplicated in line-item order.
func (a *Aggregator) Aggregate(batch *domain.Batch, markupPct float64) (domain.CatalogRecord, error) {
	if batch == nil || len(batch.Items) == 0 {
		return domain.CatalogRecord{}, domain.ErrEmptyBatch
	}
	if markupPct < 0 {
		return domain.CatalogRecord{}, domain.ErrInvalidMarkup
	}

	price := 0.0
	for _, item := range batch.Items {
		price += item.Price * (1 + markupPct/100)
	}
	price = roundTo2(price)
	if price < 0 {
		// Saturate rather than publish a negative price
		price = 0
	}

	images := collectImages(batch.Items)
	primaryImage := ""
	additionalImages := ""
	if len(images) > 0 {
		primaryImage = images[0]
		rest := images[1:]
		if len(rest) > maxAdditionalImages {
			rest = rest[:maxAdditionalImages]
		}
		additionalImages = strings.Join(rest, ",")
	}

	units := batch.Summary.TotalUnits
	if units == 0 {
		units = len(batch.Items)
	}

	record := domain.CatalogRecord{
		ID:                    batch.Summary.LotNumber,
		Title:                 buildTitle(batch.Summary.Category, units),
		Description:           buildDescription(batch),
		Availability:          domain.AvailabilityInStock,
		Condition:             domain.ConditionNew,
		Price:                 domain.FormatPrice(price),
		ImageLink:             primaryImage,
		Brand:                 dominantBrand(batch.Items),
		GoogleProductCategory: a.mapCategory(batch),
		AdditionalImageLink:   additionalImages,
	}

	return record, nil
}

// mapCategory looks up the batch's dominant category label in the mapping,
// falling back to the configured default for unmapped labels. The fallback is
// informational, never an error: a listed batch beats a rejected one.
func (a *Aggregator) mapCategory(batch *domain.Batch) string {
	labels := make([]string, 0, len(batch.Items))
	for _, item := range batch.Items {
		if item.Category != "" {
			labels = append(labels, item.Category)
		}
	}

	label := batch.Summary.Category
	if len(labels) > 0 {
		label = mostCommon(labels)
	}

	if category, ok := a.categoryMapping[strings.ToUpper(label)]; ok {
		return category
	}

	log.Printf("[AGGREGATE] No category mapping for %q, using default", label)
	return a.defaultCategory
}

// dominantBrand returns the most common vendor name across items, first-seen
// order breaking ties. Vendor cells sometimes carry "vendor / style" text, so
// only the part before the first slash is used.
func dominantBrand(items []domain.LineItem) string {
	vendors := make([]string, 0, len(items))
	for _, item := range items {
		if item.VendorName != "" {
			vendors = append(vendors, item.VendorName)
		}
	}

	if len(vendors) == 0 {
		return fallbackBrand
	}

	brand := mostCommon(vendors)
	brand = strings.TrimSpace(strings.SplitN(brand, "/", 2)[0])
	if brand == "" {
		return fallbackBrand
	}
	return brand
}

// mostCommon returns the most frequent value; ties go to the value that
// appears first in slice order, so results are stable across runs.
func mostCommon(values []string) string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	best := values[0]
	for _, v := range values {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

// collectImages gathers non-empty image URLs in line-item order, dropping
// duplicates while keeping the first occurrence
func collectImages(items []domain.LineItem) []string {
	seen := make(map[string]bool, len(items))
	images := make([]string, 0, len(items))

	for _, item := range items {
		url := strings.TrimSpace(item.ImageURL)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		images = append(images, url)
	}
	return images
}

func buildTitle(category string, units int) string {
	return fmt.Sprintf("%s Liquidation Batch - %d Units", titleCase(category), units)
}

func buildDescription(batch *domain.Batch) string {
	summary := batch.Summary

	parts := []string{
		fmt.Sprintf("Liquidation Batch #%s", summary.LotNumber),
		fmt.Sprintf("Category: %s", summary.Category),
		fmt.Sprintf("Total Units: %d", summary.TotalUnits),
		fmt.Sprintf("Condition: %s", summary.ReturnType),
	}

	if summary.SeasonCode != "" {
		parts = append(parts, fmt.Sprintf("Season: %s", summary.SeasonCode))
	}
	if summary.NumPallets > 0 {
		parts = append(parts, fmt.Sprintf("Pallets: %d", summary.NumPallets))
	}
	if summary.NumCartons > 0 {
		parts = append(parts, fmt.Sprintf("Cartons: %d", summary.NumCartons))
	}

	parts = append(parts,
		fmt.Sprintf("Original Retail Value: $%.2f", summary.TotalOriginalRetail),
		fmt.Sprintf("Batch Price: $%.2f", summary.TotalClientCost),
		fmt.Sprintf("Location: %s", summary.Location),
	)

	return strings.Join(parts, " | ")
}

// titleCase capitalizes the first letter of each space-separated word
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
