package excel

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/liquidationblitz/backend/internal/domain"
)

// Spreadsheet layout (0-based row indexes): the batch summary headers sit on
// row 1 with their values on row 2; item headers sit on row 8 with one item
// per row from row 9 on.
const (
	summaryHeaderRow = 1
	summaryValueRow  = 2
	itemHeaderRow    = 8
	itemFirstRow     = 9
)

// Parser reads liquidation batch spreadsheets into domain batches
type Parser struct{}

// NewParser creates a new spreadsheet parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parses an xlsx file into a Batch. Item rows without a UPC are
// skipped (footers, blank separators); rows with broken numeric cells are
// skipped with a warning rather than failing the whole file.
func (p *Parser) ParseFile(path string) (*domain.Batch, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet %s: %w", path, err)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}

	if len(rows) <= itemFirstRow {
		return nil, fmt.Errorf("%w: expected at least %d rows, got %d", domain.ErrInvalidSpreadsheet, itemFirstRow+1, len(rows))
	}

	summary, err := parseSummary(rows)
	if err != nil {
		return nil, err
	}
	summary.SourceFile = path
	summary.ProcessedAt = time.Now()

	items := parseItems(rows, summary.Category)

	log.Printf("[EXCEL] Parsed batch #%s: %d items, category %q", summary.LotNumber, len(items), summary.Category)
	return &domain.Batch{Summary: summary, Items: items}, nil
}

// parseSummary reads the lot-level header block
func parseSummary(rows [][]string) (domain.BatchSummary, error) {
	fields := zipRow(rows[summaryHeaderRow], rows[summaryValueRow])

	summary := domain.BatchSummary{
		Location:            fields["LOCATION"],
		LotNumber:           fields["LOT #"],
		BOLNumber:           fields["BOL #"],
		Category:            fields["CATEGORY"],
		Subcategory:         fields["SUBCATEGORY"],
		SeasonCode:          fields["SEASON CODE"],
		ReturnType:          fields["RETURN TYPE"],
		NumPallets:          parseInt(fields["# OF PALLETS"]),
		NumCartons:          parseInt(fields["# OF CARTONS"]),
		TotalOriginalCost:   parseFloat(fields["TOTAL ORIGINAL COST"]),
		TotalOriginalRetail: parseFloat(fields["TOTAL ORIGINAL RETAIL"]),
		TotalUnits:          parseInt(fields["# OF UNITS"]),
		TotalClientCost:     parseFloat(fields["TOTAL CLIENT COST"]),
	}

	if summary.LotNumber == "" {
		return domain.BatchSummary{}, fmt.Errorf("%w: missing LOT # in summary block", domain.ErrInvalidSpreadsheet)
	}
	return summary, nil
}

// parseItems reads the per-item table below the summary block
func parseItems(rows [][]string, batchCategory string) []domain.LineItem {
	headers := rows[itemHeaderRow]
	items := make([]domain.LineItem, 0, len(rows)-itemFirstRow)

	for i := itemFirstRow; i < len(rows); i++ {
		fields := zipRow(headers, rows[i])

		upc := fields["UPC"]
		if upc == "" {
			continue
		}

		quantity := parseInt(fields["ORIGINAL QTY"])
		unitPrice := parseFloat(fields["CLIENT COST"])
		linePrice := parseFloat(fields["TOTAL CLIENT COST"])
		if linePrice == 0 && unitPrice > 0 {
			linePrice = unitPrice * float64(quantity)
		}
		if unitPrice < 0 || linePrice < 0 {
			log.Printf("[EXCEL] Skipping row %d: negative price values", i+1)
			continue
		}

		category := fields["DEPARTMENT NAME"]
		if category == "" {
			category = batchCategory
		}

		items = append(items, domain.LineItem{
			UPC:            upc,
			Description:    fields["ITEM DESCRIPTION"],
			Quantity:       quantity,
			UnitPrice:      unitPrice,
			Price:          linePrice,
			OriginalCost:   parseFloat(fields["ORIGINAL COST"]),
			OriginalRetail: parseFloat(fields["ORIGINAL RETAIL"]),
			VendorStyle:    fields["VENDOR / STYLE #"],
			VendorName:     fields["VENDOR NAME"],
			Color:          fields["COLOR"],
			Size:           fields["SIZE"],
			Division:       fields["DIVISION"],
			Category:       category,
			ImageURL:       fields["IMAGE"],
		})
	}

	return items
}

// zipRow pairs header cells with value cells, trimming whitespace and
// dropping empty headers
func zipRow(headers, values []string) map[string]string {
	fields := make(map[string]string, len(headers))
	for i, header := range headers {
		key := strings.TrimSpace(header)
		if key == "" {
			continue
		}
		if i < len(values) {
			fields[key] = strings.TrimSpace(values[i])
		}
	}
	return fields
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	// Spreadsheet integers sometimes render as "12.0"
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return int(f)
	}
	return 0
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	cleaned := strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return f
	}
	return 0
}
