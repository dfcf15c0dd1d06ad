package mapper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneCasual       Tone = "casual"
	ToneEnthusiastic Tone = "enthusiastic"
)

func ParseTone(s string) (Tone, error) {
	switch t := Tone(strings.ToLower(strings.TrimSpace(s))); t {
	case ToneProfessional, ToneFriendly, ToneCasual, ToneEnthusiastic:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tone %q", s)
	}
}

// Rewrite restyles outreach text in the given tone while keeping any
// embedded questions intact. This never surfaces an error: when the AI
// call fails the original text comes back unchanged.
func (m *Mapper) Rewrite(ctx context.Context, text string, tone Tone) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	out, err := m.gen.GenerateText(ctx, rewritePrompt(text, tone))
	if err != nil || strings.TrimSpace(out) == "" {
		slog.Warn("tone rewrite failed, keeping original text", "tone", tone, "error", err)
		return text
	}
	return strings.TrimSpace(out)
}

func rewritePrompt(text string, tone Tone) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rewrite the following recruiter outreach message in a %s tone.\n", tone)
	sb.WriteString("Keep every question it asks, keep the {{name}} placeholder if present, ")
	sb.WriteString("and return ONLY the rewritten message with no commentary.\n\n")
	sb.WriteString(text)
	return sb.String()
}
