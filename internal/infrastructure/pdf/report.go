package pdf

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/liquidationblitz/backend/internal/domain"
)

// Renderer writes batch report PDFs: a summary block followed by the item table
type Renderer struct{}

// NewRenderer creates a new PDF report renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderReport writes the report for a batch to outPath, creating the output
// directory if needed
func (r *Renderer) RenderReport(batch *domain.Batch, outPath string) error {
	if batch == nil || len(batch.Items) == 0 {
		return domain.ErrEmptyBatch
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	writeHeader(doc, batch.Summary)
	writeSummary(doc, batch.Summary)
	writeItems(doc, batch.Items)

	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("writing report pdf: %w", err)
	}

	log.Printf("[PDF] Report written: %s (%d items)", outPath, len(batch.Items))
	return nil
}

func writeHeader(doc *fpdf.Fpdf, summary domain.BatchSummary) {
	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 12, fmt.Sprintf("Liquidation Batch #%s", summary.LotNumber), "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 7, summary.Category, "", 1, "C", false, 0, "")
	doc.Ln(4)
}

func writeSummary(doc *fpdf.Fpdf, summary domain.BatchSummary) {
	rows := [][2]string{
		{"Location", summary.Location},
		{"BOL #", summary.BOLNumber},
		{"Return Type", summary.ReturnType},
		{"Season Code", summary.SeasonCode},
		{"Pallets", fmt.Sprintf("%d", summary.NumPallets)},
		{"Cartons", fmt.Sprintf("%d", summary.NumCartons)},
		{"Total Units", fmt.Sprintf("%d", summary.TotalUnits)},
		{"Original Retail", fmt.Sprintf("$%.2f", summary.TotalOriginalRetail)},
		{"Batch Price", fmt.Sprintf("$%.2f", summary.TotalClientCost)},
	}

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, "Batch Summary", "B", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)

	for _, row := range rows {
		if row[1] == "" || row[1] == "0" {
			continue
		}
		doc.CellFormat(50, 6, row[0], "", 0, "L", false, 0, "")
		doc.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	doc.Ln(6)
}

func writeItems(doc *fpdf.Fpdf, items []domain.LineItem) {
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 8, "Items", "B", 1, "L", false, 0, "")

	widths := []float64{28, 78, 12, 20, 22, 30}
	headers := []string{"UPC", "Description", "Qty", "Size", "Price", "Vendor"}

	doc.SetFont("Helvetica", "B", 8)
	for i, header := range headers {
		doc.CellFormat(widths[i], 6, header, "1", 0, "L", false, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 8)
	for _, item := range items {
		cells := []string{
			item.UPC,
			truncate(item.Description, 55),
			fmt.Sprintf("%d", item.Quantity),
			item.Size,
			fmt.Sprintf("$%.2f", item.Price),
			truncate(item.VendorName, 20),
		}
		for i, cell := range cells {
			doc.CellFormat(widths[i], 5, cell, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
