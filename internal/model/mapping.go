package model

// ColumnMapping is the best guess at which sheet columns hold the
// candidate name and phone number. Both columns always name real
// headers of the ingested sheet.
type ColumnMapping struct {
	NameColumn  string `json:"name_column"`
	PhoneColumn string `json:"phone_column"`
	Reasoning   string `json:"reasoning"`
}
