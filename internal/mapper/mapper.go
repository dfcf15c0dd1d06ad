// Package mapper guesses which sheet columns hold the candidate name
// and phone number, and rewrites outreach text in a requested tone.
// Both lean on the AI service but degrade deterministically: mapping
// falls back to header heuristics, rewriting to the original text.
package mapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbalint/candidate-outreach/internal/cache"
	"github.com/rbalint/candidate-outreach/internal/model"
)

type Mapper struct {
	gen   Generator
	cache cache.MappingCache
}

// New builds a Mapper. The cache may be nil; the generator may not.
func New(gen Generator, mc cache.MappingCache) *Mapper {
	return &Mapper{gen: gen, cache: mc}
}

// MapColumns returns the best-guess name and phone columns for the
// given headers. It never fails: an unusable AI answer falls back to
// the header heuristics.
func (m *Mapper) MapColumns(ctx context.Context, headers []string, sample model.Row) model.ColumnMapping {
	key := cache.MappingKey(headers)
	if m.cache != nil {
		if hit, err := m.cache.GetMapping(ctx, key); err == nil && hit != nil {
			return *hit
		}
	}

	mapping, err := m.askModel(ctx, headers, sample)
	if err != nil {
		slog.Warn("column mapping via AI failed, using heuristics", "error", err)
		return Fallback(headers)
	}

	if m.cache != nil {
		if err := m.cache.StoreMapping(ctx, key, mapping); err != nil {
			slog.Warn("failed to cache column mapping", "error", err)
		}
	}
	return mapping
}

func (m *Mapper) askModel(ctx context.Context, headers []string, sample model.Row) (model.ColumnMapping, error) {
	raw, err := m.gen.GenerateJSON(ctx, mappingPrompt(headers, sample))
	if err != nil {
		return model.ColumnMapping{}, err
	}

	var mapping model.ColumnMapping
	if err := json.Unmarshal([]byte(stripFences(raw)), &mapping); err != nil {
		return model.ColumnMapping{}, fmt.Errorf("malformed mapping answer: %w", err)
	}

	if !containsHeader(headers, mapping.NameColumn) || !containsHeader(headers, mapping.PhoneColumn) {
		return model.ColumnMapping{}, fmt.Errorf("mapping answer names unknown columns: %q / %q",
			mapping.NameColumn, mapping.PhoneColumn)
	}
	return mapping, nil
}

func mappingPrompt(headers []string, sample model.Row) string {
	var sb strings.Builder
	sb.WriteString("You are looking at a spreadsheet of job candidates.\n")
	sb.WriteString("Decide which column holds the candidate's name and which holds their phone number.\n\n")

	sb.WriteString("Columns: ")
	sb.WriteString(strings.Join(headers, ", "))
	sb.WriteString("\n\nSample row:\n")
	for _, h := range headers {
		fmt.Fprintf(&sb, "  %s: %s\n", h, sample[h])
	}

	sb.WriteString("\nReturn ONLY valid JSON matching this exact structure:\n")
	sb.WriteString(`{"name_column": string, "phone_column": string, "reasoning": string}` + "\n\n")
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- name_column and phone_column must exactly match one of the listed columns.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")
	return sb.String()
}

// Fallback is the deterministic local mapping used whenever the AI
// answer is unavailable or unusable.
func Fallback(headers []string) model.ColumnMapping {
	mapping := model.ColumnMapping{Reasoning: "heuristic fallback: matched header names locally"}

	mapping.NameColumn = headers[0]
	for _, h := range headers {
		if strings.Contains(strings.ToLower(h), "name") {
			mapping.NameColumn = h
			break
		}
	}

	phoneIdx := 0
	if len(headers) > 1 {
		phoneIdx = 1
	}
	mapping.PhoneColumn = headers[phoneIdx]
	for _, h := range headers {
		lower := strings.ToLower(h)
		if strings.Contains(lower, "phone") || strings.Contains(lower, "mobile") || strings.Contains(lower, "contact") {
			mapping.PhoneColumn = h
			break
		}
	}
	return mapping
}

func containsHeader(headers []string, h string) bool {
	for _, header := range headers {
		if header == h {
			return true
		}
	}
	return false
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
