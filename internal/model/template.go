package model

import "strings"

const nameToken = "{{name}}"

// MessageTemplate is the editable outreach message. Empty fields are
// permitted; there is no validity rule beyond existing as a value.
type MessageTemplate struct {
	Intro     string   `json:"intro"`
	Questions []string `json:"questions"`
	Outro     string   `json:"outro"`
}

// Compose renders the final message for one candidate: intro, the
// questions joined by newlines, and outro, each as its own block,
// trimmed. The {{name}} token is replaced by the candidate's first
// name token (up to the first space).
func (t MessageTemplate) Compose(candidateName string) string {
	first := FirstNameToken(candidateName)

	blocks := make([]string, 0, 3)
	if intro := strings.TrimSpace(t.Intro); intro != "" {
		blocks = append(blocks, personalize(intro, first))
	}
	if len(t.Questions) > 0 {
		qs := make([]string, 0, len(t.Questions))
		for _, q := range t.Questions {
			if q = strings.TrimSpace(q); q != "" {
				qs = append(qs, personalize(q, first))
			}
		}
		if len(qs) > 0 {
			blocks = append(blocks, strings.Join(qs, "\n"))
		}
	}
	if outro := strings.TrimSpace(t.Outro); outro != "" {
		blocks = append(blocks, personalize(outro, first))
	}

	return strings.TrimSpace(strings.Join(blocks, "\n\n"))
}

func FirstNameToken(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

func personalize(s, firstName string) string {
	return strings.ReplaceAll(s, nameToken, firstName)
}
