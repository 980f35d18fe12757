package domain

// Chunk is one retrieved span of filing text together with the metadata it
// was indexed with. Chunks are read-only once returned from the vector store.
type Chunk struct {
	Text    string
	Company string
	Year    string
	Source  string
	Excerpt string
	// Score is the cosine similarity against the query embedding, in (0,1].
	Score float32
}

// FilingChunk is one chunk as stored at ingestion time, before retrieval.
type FilingChunk struct {
	ID        string
	Company   string
	Year      int
	Source    string
	Content   string
	Excerpt   string
	Embedding []float32
}

// EvidenceGroup holds the chunks retrieved for a single sub-query, in rank
// order as returned by the vector store.
type EvidenceGroup struct {
	SubQuery string
	Chunks   []Chunk
}

// EvidencePool is the full non-deduplicated evidence gathered for one run,
// one group per sub-query in execution order.
type EvidencePool struct {
	Groups []EvidenceGroup
}

// IsEmpty reports whether no chunk was retrieved for any sub-query.
func (p EvidencePool) IsEmpty() bool {
	for _, g := range p.Groups {
		if len(g.Chunks) > 0 {
			return false
		}
	}
	return true
}
