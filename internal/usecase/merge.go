package usecase

import (
	"github.com/liquidationblitz/backend/internal/domain"
)

// Merge computes the next snapshot from upserting one record by its id.
// A record with a matching id is replaced at its existing position, keeping
// exported-file diffs minimal for human reviewers; otherwise the record is
// appended. All other records are carried over unchanged, so the no-duplicate
// id invariant of the input holds for the output. Merge is total and
// idempotent: merging the same record twice equals merging it once.
func Merge(current domain.CatalogSnapshot, incoming domain.CatalogRecord) domain.CatalogSnapshot {
	next := current.Clone()
	if len(next.Columns) == 0 {
		next = domain.NewCatalogSnapshot()
		next.Records = current.Clone().Records
	}

	if i := next.IndexOf(incoming.ID); i >= 0 {
		next.Records[i] = incoming.Clone()
		return next
	}

	next.Records = append(next.Records, incoming.Clone())
	return next
}

// Remove computes the next snapshot with the given batch ids dropped,
// preserving the order of all remaining records
func Remove(current domain.CatalogSnapshot, ids []string) domain.CatalogSnapshot {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	next := current.Clone()
	kept := next.Records[:0]
	for _, record := range next.Records {
		if !drop[record.ID] {
			kept = append(kept, record)
		}
	}
	next.Records = kept
	return next
}
