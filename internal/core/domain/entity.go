package domain

// EntityKind classifies an extracted contract entity
type EntityKind string

const (
	EntityParty        EntityKind = "party"
	EntityDate         EntityKind = "date"
	EntityAmount       EntityKind = "amount"
	EntityJurisdiction EntityKind = "jurisdiction"
	EntityObligation   EntityKind = "obligation"
)

// Entity is a legally-relevant value extracted from a single clause.
// Entities below the extractor's confidence floor are never returned.
type Entity struct {
	Kind EntityKind `json:"kind"`

	// Value is the raw matched text
	Value string `json:"value"`

	// NormalizedValue is the canonical form where one exists:
	// RFC 3339 date for dates, "CUR 1234.56" for amounts,
	// trimmed name for parties and jurisdictions.
	NormalizedValue string `json:"normalized_value,omitempty"`

	ClauseID   string  `json:"clause_id"`
	Confidence float64 `json:"confidence"` // [0,1]
}
