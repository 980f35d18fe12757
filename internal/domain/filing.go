package domain

import "time"

// Filing is one indexed 10-K filing. Rows in the filings table prevent the
// same (ticker, year) from being re-ingested.
type Filing struct {
	ID          string
	Ticker      string
	CIK         string
	CompanyName string
	Year        int
	Accession   string
	PrimaryDoc  string
	ChunkCount  int
	CreatedAt   time.Time
}
