package s3

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/liquidationblitz/backend/internal/domain"
)

// DecodeSnapshot parses a catalog CSV into a snapshot. The header actually
// present in the file is kept on the snapshot, so columns written by other
// tools survive the next save untouched. An empty body yields an empty
// snapshot with the standard column set.
func DecodeSnapshot(r io.Reader) (domain.CatalogSnapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("parsing catalog csv: %w", err)
	}

	if len(rows) == 0 {
		return domain.NewCatalogSnapshot(), nil
	}

	snapshot := domain.CatalogSnapshot{
		Columns: rows[0],
		Records: make([]domain.CatalogRecord, 0, len(rows)-1),
	}

	for _, row := range rows[1:] {
		var record domain.CatalogRecord
		for i, column := range snapshot.Columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			record.SetField(column, value)
		}
		snapshot.Records = append(snapshot.Records, record)
	}

	return snapshot, nil
}

// EncodeSnapshot serializes a snapshot back to catalog CSV bytes. Every row
// carries the full column set; missing optional values are empty strings.
func EncodeSnapshot(snapshot domain.CatalogSnapshot) ([]byte, error) {
	columns := snapshot.Columns
	if len(columns) == 0 {
		columns = domain.CatalogColumns
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(columns); err != nil {
		return nil, fmt.Errorf("writing catalog header: %w", err)
	}

	row := make([]string, len(columns))
	for i := range snapshot.Records {
		for j, column := range columns {
			row[j] = snapshot.Records[i].Field(column)
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("writing catalog row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flushing catalog csv: %w", err)
	}
	return buf.Bytes(), nil
}
