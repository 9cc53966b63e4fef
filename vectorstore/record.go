package vectorstore

import "time"

// Category partitions embedding records by what they are used for.
type Category string

const (
	CategoryExample  Category = "example"
	CategoryFeedback Category = "feedback"
)

// Pair is an unembedded (text, cypher) input for batch stores.
type Pair struct {
	Text   string
	Cypher string
}

// Record is a stored (text, vector, payload) row. Immutable once written.
type Record struct {
	Id        string
	Category  Category
	Text      string
	Cypher    string
	Embedding []float32
	Threshold float64
	CreatedAt time.Time
}

// Match is a retrieval result: a stored record scored against a query.
type Match struct {
	Text       string
	Cypher     string
	Similarity float64
	Threshold  float64
}

// CacheEntry is a previously answered question keyed by its content hash for
// exact lookup and by its embedding for approximate lookup.
type CacheEntry struct {
	Id           string
	Hash         string
	Question     string
	Cypher       string
	Summary      string
	Embedding    []float32
	Similarity   float64
	AccessCount  int
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Feedback is a human correction of a generated query. Append-only.
type Feedback struct {
	Id              string
	Question        string
	GeneratedCypher string
	CorrectedCypher string
	Rating          int
	CreatedAt       time.Time
}

// CacheStats summarizes cache effectiveness for the stats endpoint.
type CacheStats struct {
	TotalEntries    int           `json:"total_entries"`
	AccessedEntries int           `json:"accessed_entries"`
	HitRate         float64       `json:"hit_rate"`
	AvgAccessCount  float64       `json:"avg_access_count"`
	TopAccessed     []TopAccessed `json:"top_accessed"`
}

type TopAccessed struct {
	Question string `json:"question"`
	Count    int    `json:"count"`
}
