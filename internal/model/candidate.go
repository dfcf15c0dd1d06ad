package model

type Status string

const (
	Pending Status = "pending"
	Sending Status = "sending"
	Sent    Status = "sent"
	Skipped Status = "skipped"
	Failed  Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case Pending, Sending, Sent, Skipped, Failed:
		return true
	}
	return false
}

// Sendable reports whether a send attempt may begin from this status.
// Sending itself is excluded: attempts never overlap on one candidate.
func (s Status) Sendable() bool {
	return s == Pending || s == Failed || s == Skipped
}

// Row is one spreadsheet row as ingested: header name to cell text.
// Values are always textual, keys match the sheet's header line exactly.
type Row map[string]string

type Candidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	OriginalRow Row    `json:"originalRow"`
	Status      Status `json:"status"`
}
