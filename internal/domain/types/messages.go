package types

// Message is what the messaging collaborator carries between public ids. The
// first field is always an operation tag.
type Message struct {
	From      PublicID `json:"from"`
	To        PublicID `json:"to"`
	Fields    []string `json:"fields"`
	Timestamp int64    `json:"timestamp"`
}
