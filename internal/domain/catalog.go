package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Fixed values required by the Google Shopping feed format
const (
	AvailabilityInStock = "in stock"
	ConditionNew        = "New"
)

// CatalogColumns is the fixed column set of the exported catalog file.
// Every row serializes all columns; optional ones are empty strings, never omitted.
var CatalogColumns = []string{
	"id",
	"title",
	"description",
	"availability",
	"condition",
	"price",
	"link",
	"image_link",
	"brand",
	"google_product_category",
	"item_group_id",
	"shipping_weight",
	"video[0].url",
	"additional_image_link",
}

// CatalogRecord is the derived single-row representation of one batch in the
// Google Shopping feed. Columns outside the fixed set survive a load/save
// round trip through Extra.
type CatalogRecord struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	Description           string `json:"description"`
	Availability          string `json:"availability"`
	Condition             string `json:"condition"`
	Price                 string `json:"price"` // "<amount> USD", two decimals
	Link                  string `json:"link"`
	ImageLink             string `json:"imageLink"`
	Brand                 string `json:"brand"`
	GoogleProductCategory string `json:"googleProductCategory"`
	ItemGroupID           string `json:"itemGroupId"`
	ShippingWeight        string `json:"shippingWeight"`
	VideoURL              string `json:"videoUrl"`
	AdditionalImageLink   string `json:"additionalImageLink"`

	// Extra preserves columns this application does not know about
	Extra map[string]string `json:"extra,omitempty"`
}

// Field returns the record's value for a catalog column name
func (r *CatalogRecord) Field(column string) string {
	switch column {
	case "id":
		return r.ID
	case "title":
		return r.Title
	case "description":
		return r.Description
	case "availability":
		return r.Availability
	case "condition":
		return r.Condition
	case "price":
		return r.Price
	case "link":
		return r.Link
	case "image_link":
		return r.ImageLink
	case "brand":
		return r.Brand
	case "google_product_category":
		return r.GoogleProductCategory
	case "item_group_id":
		return r.ItemGroupID
	case "shipping_weight":
		return r.ShippingWeight
	case "video[0].url":
		return r.VideoURL
	case "additional_image_link":
		return r.AdditionalImageLink
	default:
		return r.Extra[column]
	}
}

// SetField assigns the record's value for a catalog column name
func (r *CatalogRecord) SetField(column, value string) {
	switch column {
	case "id":
		r.ID = value
	case "title":
		r.Title = value
	case "description":
		r.Description = value
	case "availability":
		r.Availability = value
	case "condition":
		r.Condition = value
	case "price":
		r.Price = value
	case "link":
		r.Link = value
	case "image_link":
		r.ImageLink = value
	case "brand":
		r.Brand = value
	case "google_product_category":
		r.GoogleProductCategory = value
	case "item_group_id":
		r.ItemGroupID = value
	case "shipping_weight":
		r.ShippingWeight = value
	case "video[0].url":
		r.VideoURL = value
	case "additional_image_link":
		r.AdditionalImageLink = value
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[column] = value
	}
}

// Clone returns a deep copy of the record
func (r CatalogRecord) Clone() CatalogRecord {
	out := r
	if r.Extra != nil {
		out.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// FormatPrice renders an amount in the catalog's price format
func FormatPrice(amount float64) string {
	return fmt.Sprintf("%.2f USD", amount)
}

// ParsePrice extracts the numeric amount from a catalog price value
func ParsePrice(price string) (float64, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(price), "USD"))
	return strconv.ParseFloat(trimmed, 64)
}

// CatalogSnapshot is the full remote catalog at a point in time: an ordered
// record sequence plus the header actually read from the remote file, so
// columns added by other tools are carried through unchanged.
// Invariant: no two records share an ID.
type CatalogSnapshot struct {
	Columns []string        `json:"columns"`
	Records []CatalogRecord `json:"records"`
}

// NewCatalogSnapshot returns an empty snapshot with the standard column set
func NewCatalogSnapshot() CatalogSnapshot {
	columns := make([]string, len(CatalogColumns))
	copy(columns, CatalogColumns)
	return CatalogSnapshot{Columns: columns}
}

// IndexOf returns the position of the record with the given id, or -1
func (s CatalogSnapshot) IndexOf(id string) int {
	for i := range s.Records {
		if s.Records[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the snapshot
func (s CatalogSnapshot) Clone() CatalogSnapshot {
	out := CatalogSnapshot{
		Columns: make([]string, len(s.Columns)),
		Records: make([]CatalogRecord, len(s.Records)),
	}
	copy(out.Columns, s.Columns)
	for i := range s.Records {
		out.Records[i] = s.Records[i].Clone()
	}
	return out
}
