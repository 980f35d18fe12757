package domain

import "fmt"

// DocType10K is the only document type indexed by this service.
const DocType10K = "10-K"

// Sentinels used when chunk metadata is missing or unparsable.
const (
	UnknownCompany = "Unknown"
	UnknownTicker  = "SEC"
	DefaultYear    = 2023
	NoPreviewText  = "No text preview available"
)

// SourceRecord is the deduplicated, UI-facing projection of a retrieved
// chunk. At most one record per (company, year) pair survives deduplication.
type SourceRecord struct {
	ID         string  `json:"id"`
	Ticker     string  `json:"ticker"`
	Company    string  `json:"company"`
	Year       int     `json:"year"`
	DocType    string  `json:"docType"`
	Snippet    string  `json:"snippet"`
	Page       int     `json:"page"`
	Confidence float32 `json:"confidence"`
}

// DedupKey identifies a source record for deduplication purposes.
func (s SourceRecord) DedupKey() string {
	return fmt.Sprintf("%s-%d", s.Company, s.Year)
}

// DedupSources keeps the first record seen per (company, year) key,
// preserving first-seen order.
func DedupSources(records []SourceRecord) []SourceRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]SourceRecord, 0, len(records))
	for _, r := range records {
		key := r.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
