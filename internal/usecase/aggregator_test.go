package usecase

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/liquidationblitz/backend/internal/domain"
)

func testAggregator() *Aggregator {
	return NewAggregator(AggregatorConfig{
		CategoryMapping: map[string]string{
			"MENS SHIRTS":  "Apparel & Accessories > Clothing > Shirts & Tops",
			"WOMENS SHOES": "Apparel & Accessories > Shoes",
		},
		DefaultCategory: "Apparel & Accessories",
	})
}

func testBatch(items ...domain.LineItem) *domain.Batch {
	return &domain.Batch{
		Summary: domain.BatchSummary{
			LotNumber:  "16601678",
			Category:   "MENS SHIRTS",
			TotalUnits: len(items),
			Location:   "NJ",
		},
		Items: items,
	}
}

func item(price float64, vendor, image string) domain.LineItem {
	return domain.LineItem{
		UPC:        "000000000000",
		Price:      price,
		VendorName: vendor,
		Category:   "MENS SHIRTS",
		ImageURL:   image,
	}
}

func TestAggregate_Validation(t *testing.T) {
	agg := testAggregator()

	t.Run("rejects nil batch", func(t *testing.T) {
		_, err := agg.Aggregate(nil, 0)
		if !errors.Is(err, domain.ErrEmptyBatch) {
			t.Errorf("error = %v, want ErrEmptyBatch", err)
		}
	})

	t.Run("rejects empty batch", func(t *testing.T) {
		_, err := agg.Aggregate(testBatch(), 0)
		if !errors.Is(err, domain.ErrEmptyBatch) {
			t.Errorf("error = %v, want ErrEmptyBatch", err)
		}
	})

	t.Run("rejects negative markup", func(t *testing.T) {
		_, err := agg.Aggregate(testBatch(item(10, "Nike", "")), -1)
		if !errors.Is(err, domain.ErrInvalidMarkup) {
			t.Errorf("error = %v, want ErrInvalidMarkup", err)
		}
	})
}

func TestAggregate_Price(t *testing.T) {
	agg := testAggregator()

	t.Run("sums line prices with markup", func(t *testing.T) {
		batch := testBatch(item(100, "Nike", ""), item(200, "Nike", ""), item(50, "Adidas", ""))
		record, err := agg.Aggregate(batch, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Price != "385.00 USD" {
			t.Errorf("Price = %q, want \"385.00 USD\"", record.Price)
		}
	})

	t.Run("zero markup keeps base price", func(t *testing.T) {
		record, err := agg.Aggregate(testBatch(item(19.99, "Nike", ""), item(5.01, "Nike", "")), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Price != "25.00 USD" {
			t.Errorf("Price = %q, want \"25.00 USD\"", record.Price)
		}
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		record, err := agg.Aggregate(testBatch(item(10.004, "Nike", "")), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Price != "10.00 USD" {
			t.Errorf("Price = %q, want \"10.00 USD\"", record.Price)
		}
	})

	t.Run("saturates at zero instead of going negative", func(t *testing.T) {
		record, err := agg.Aggregate(testBatch(item(-50, "Nike", "")), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Price != "0.00 USD" {
			t.Errorf("Price = %q, want \"0.00 USD\"", record.Price)
		}
	})
}

func TestAggregate_Brand(t *testing.T) {
	agg := testAggregator()

	t.Run("picks most common vendor", func(t *testing.T) {
		batch := testBatch(item(1, "Nike", ""), item(1, "Adidas", ""), item(1, "Nike", ""))
		record, _ := agg.Aggregate(batch, 0)
		if record.Brand != "Nike" {
			t.Errorf("Brand = %q, want Nike", record.Brand)
		}
	})

	t.Run("tie goes to first-seen vendor", func(t *testing.T) {
		batch := testBatch(item(1, "Adidas", ""), item(1, "Nike", ""))
		record, _ := agg.Aggregate(batch, 0)
		if record.Brand != "Adidas" {
			t.Errorf("Brand = %q, want Adidas (first seen)", record.Brand)
		}
	})

	t.Run("strips style suffix after slash", func(t *testing.T) {
		batch := testBatch(item(1, "Nike / 1234-AB", ""))
		record, _ := agg.Aggregate(batch, 0)
		if record.Brand != "Nike" {
			t.Errorf("Brand = %q, want Nike", record.Brand)
		}
	})

	t.Run("falls back when no vendors present", func(t *testing.T) {
		batch := testBatch(item(1, "", ""))
		record, _ := agg.Aggregate(batch, 0)
		if record.Brand != "Mixed Brands" {
			t.Errorf("Brand = %q, want Mixed Brands", record.Brand)
		}
	})
}

func TestAggregate_Images(t *testing.T) {
	agg := testAggregator()

	t.Run("first image becomes image_link", func(t *testing.T) {
		batch := testBatch(
			item(1, "Nike", "https://img.example.com/a.jpg"),
			item(1, "Nike", "https://img.example.com/b.jpg"),
		)
		record, _ := agg.Aggregate(batch, 0)
		if record.ImageLink != "https://img.example.com/a.jpg" {
			t.Errorf("ImageLink = %q, want a.jpg", record.ImageLink)
		}
		if record.AdditionalImageLink != "https://img.example.com/b.jpg" {
			t.Errorf("AdditionalImageLink = %q, want b.jpg", record.AdditionalImageLink)
		}
	})

	t.Run("deduplicates preserving first-seen order", func(t *testing.T) {
		batch := testBatch(
			item(1, "Nike", "https://img.example.com/a.jpg"),
			item(1, "Nike", "https://img.example.com/b.jpg"),
			item(1, "Nike", "https://img.example.com/a.jpg"),
			item(1, "Nike", "https://img.example.com/c.jpg"),
		)
		record, _ := agg.Aggregate(batch, 0)
		want := "https://img.example.com/b.jpg,https://img.example.com/c.jpg"
		if record.AdditionalImageLink != want {
			t.Errorf("AdditionalImageLink = %q, want %q", record.AdditionalImageLink, want)
		}
	})

	t.Run("caps additional images at ten", func(t *testing.T) {
		items := make([]domain.LineItem, 0, 15)
		for i := 0; i < 15; i++ {
			items = append(items, item(1, "Nike", fmt.Sprintf("https://img.example.com/%d.jpg", i)))
		}
		record, _ := agg.Aggregate(testBatch(items...), 0)

		additional := strings.Split(record.AdditionalImageLink, ",")
		if len(additional) != 10 {
			t.Errorf("additional image count = %d, want 10", len(additional))
		}
		seen := make(map[string]bool)
		for _, url := range additional {
			if seen[url] {
				t.Errorf("duplicate additional image %q", url)
			}
			seen[url] = true
		}
	})

	t.Run("empty images leave links empty", func(t *testing.T) {
		record, _ := agg.Aggregate(testBatch(item(1, "Nike", "")), 0)
		if record.ImageLink != "" || record.AdditionalImageLink != "" {
			t.Errorf("image links = %q / %q, want empty", record.ImageLink, record.AdditionalImageLink)
		}
	})
}

func TestAggregate_Category(t *testing.T) {
	agg := testAggregator()

	t.Run("maps dominant category label", func(t *testing.T) {
		record, _ := agg.Aggregate(testBatch(item(1, "Nike", "")), 0)
		if record.GoogleProductCategory != "Apparel & Accessories > Clothing > Shirts & Tops" {
			t.Errorf("GoogleProductCategory = %q", record.GoogleProductCategory)
		}
	})

	t.Run("unmapped label falls back to default without error", func(t *testing.T) {
		it := item(1, "Nike", "")
		it.Category = "GARDEN GNOMES"
		record, err := agg.Aggregate(testBatch(it), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.GoogleProductCategory != "Apparel & Accessories" {
			t.Errorf("GoogleProductCategory = %q, want default", record.GoogleProductCategory)
		}
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		it := item(1, "Nike", "")
		it.Category = "Womens Shoes"
		record, _ := agg.Aggregate(testBatch(it), 0)
		if record.GoogleProductCategory != "Apparel & Accessories > Shoes" {
			t.Errorf("GoogleProductCategory = %q", record.GoogleProductCategory)
		}
	})
}

func TestAggregate_Record(t *testing.T) {
	agg := testAggregator()
	batch := testBatch(item(100, "Nike", ""), item(200, "Nike", ""), item(50, "Adidas", ""))

	record, err := agg.Aggregate(batch, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.ID != "16601678" {
		t.Errorf("ID = %q, want 16601678", record.ID)
	}
	if record.Availability != "in stock" {
		t.Errorf("Availability = %q, want \"in stock\"", record.Availability)
	}
	if record.Condition != "New" {
		t.Errorf("Condition = %q, want New", record.Condition)
	}
	if record.Brand != "Nike" {
		t.Errorf("Brand = %q, want Nike", record.Brand)
	}
	if !strings.Contains(record.Title, "Liquidation Batch") {
		t.Errorf("Title = %q, want it to mention Liquidation Batch", record.Title)
	}
	if !strings.Contains(record.Description, "Liquidation Batch #16601678") {
		t.Errorf("Description = %q, want it to carry the lot number", record.Description)
	}
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	agg := testAggregator()
	batch := testBatch(item(100, "Nike", "https://img.example.com/a.jpg"), item(50, "Adidas", ""))

	before := *batch
	beforeItems := make([]domain.LineItem, len(batch.Items))
	copy(beforeItems, batch.Items)

	if _, err := agg.Aggregate(batch, 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if batch.Summary != before.Summary {
		t.Error("aggregate mutated the batch summary")
	}
	for i := range beforeItems {
		if batch.Items[i] != beforeItems[i] {
			t.Errorf("aggregate mutated item %d", i)
		}
	}
}

func TestMostCommon(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"clear winner", []string{"A", "B", "A"}, "A"},
		{"tie keeps first seen", []string{"A", "B"}, "A"},
		{"single value", []string{"X"}, "X"},
		{"later majority wins", []string{"A", "B", "B"}, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mostCommon(tt.values); got != tt.want {
				t.Errorf("mostCommon(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}
