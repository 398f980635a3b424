package domain

import "time"

// LineItem represents one physical unit or SKU within a liquidation batch.
// Items are parsed once from the source spreadsheet and never mutated afterwards.
type LineItem struct {
	UPC            string  `json:"upc"`
	Description    string  `json:"description"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`      // client cost per unit, USD
	Price          float64 `json:"price"`          // client cost for the whole line, USD
	OriginalCost   float64 `json:"originalCost"`
	OriginalRetail float64 `json:"originalRetail"`
	VendorStyle    string  `json:"vendorStyle,omitempty"`
	VendorName     string  `json:"vendorName,omitempty"`
	Color          string  `json:"color,omitempty"`
	Size           string  `json:"size,omitempty"`
	Division       string  `json:"division,omitempty"`
	Category       string  `json:"category,omitempty"` // department/category label, e.g. "MENS SHIRTS"
	ImageURL       string  `json:"imageUrl,omitempty"`
}

// BatchSummary holds the lot-level header block of a liquidation batch spreadsheet.
type BatchSummary struct {
	Location            string    `json:"location"`
	LotNumber           string    `json:"lotNumber"`
	BOLNumber           string    `json:"bolNumber"`
	Category            string    `json:"category"`
	Subcategory         string    `json:"subcategory,omitempty"`
	SeasonCode          string    `json:"seasonCode,omitempty"`
	ReturnType          string    `json:"returnType,omitempty"`
	NumPallets          int       `json:"numPallets"`
	NumCartons          int       `json:"numCartons"`
	TotalOriginalCost   float64   `json:"totalOriginalCost"`
	TotalOriginalRetail float64   `json:"totalOriginalRetail"`
	TotalUnits          int       `json:"totalUnits"`
	TotalClientCost     float64   `json:"totalClientCost"`
	ProcessedAt         time.Time `json:"processedAt"`
	SourceFile          string    `json:"sourceFile,omitempty"`
}

// Batch is one liquidation lot: a summary block plus its ordered line items.
// A Batch is transient - built per processing run, consumed by the aggregator,
// then discarded.
type Batch struct {
	Summary BatchSummary `json:"summary"`
	Items   []LineItem   `json:"items"`
}

// TotalItems returns the number of line items in the batch
func (b *Batch) TotalItems() int {
	return len(b.Items)
}

// TotalValue returns the summed client cost of all line items
func (b *Batch) TotalValue() float64 {
	total := 0.0
	for _, item := range b.Items {
		total += item.Price
	}
	return total
}
