package mapper

import (
	"context"
	"errors"
	"testing"

	"github.com/rbalint/candidate-outreach/internal/model"
)

type fakeGenerator struct {
	jsonOut string
	jsonErr error
	textOut string
	textErr error

	jsonCalls int
	textCalls int
}

var _ Generator = (*fakeGenerator)(nil)

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	f.jsonCalls++
	return f.jsonOut, f.jsonErr
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.textCalls++
	return f.textOut, f.textErr
}

type fakeMappingCache struct {
	entries map[string]model.ColumnMapping
}

func newFakeCache() *fakeMappingCache {
	return &fakeMappingCache{entries: make(map[string]model.ColumnMapping)}
}

func (f *fakeMappingCache) GetMapping(ctx context.Context, key string) (*model.ColumnMapping, error) {
	if m, ok := f.entries[key]; ok {
		return &m, nil
	}
	return nil, nil
}

func (f *fakeMappingCache) StoreMapping(ctx context.Context, key string, m model.ColumnMapping) error {
	f.entries[key] = m
	return nil
}

func sampleRow() model.Row {
	return model.Row{"Full Name": "Jane Doe", "Mobile No": "5550123456", "Role": "Engineer"}
}

func TestMapColumns_UsesModelAnswer(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		jsonOut: `{"name_column":"Full Name","phone_column":"Mobile No","reasoning":"header names"}`,
	}
	m := New(gen, nil)

	got := m.MapColumns(context.Background(), []string{"Full Name", "Mobile No", "Role"}, sampleRow())

	if got.NameColumn != "Full Name" || got.PhoneColumn != "Mobile No" {
		t.Fatalf("unexpected mapping: %+v", got)
	}
	if got.Reasoning != "header names" {
		t.Errorf("expected reasoning carried through, got %q", got.Reasoning)
	}
}

func TestMapColumns_FallbackOnGeneratorError(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{jsonErr: errors.New("timeout")}
	m := New(gen, nil)

	got := m.MapColumns(context.Background(), []string{"Full Name", "Mobile No", "Role"}, sampleRow())

	if got.NameColumn != "Full Name" {
		t.Errorf("expected fallback name column, got %q", got.NameColumn)
	}
	if got.PhoneColumn != "Mobile No" {
		t.Errorf("expected fallback phone column, got %q", got.PhoneColumn)
	}
}

func TestMapColumns_FallbackOnMalformedJSON(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{jsonOut: "sorry, I cannot help with that"}
	m := New(gen, nil)

	got := m.MapColumns(context.Background(), []string{"Full Name", "Mobile No"}, sampleRow())
	if got.NameColumn != "Full Name" || got.PhoneColumn != "Mobile No" {
		t.Fatalf("expected heuristic mapping, got %+v", got)
	}
}

func TestMapColumns_FallbackOnUnknownColumns(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		jsonOut: `{"name_column":"Candidate","phone_column":"Cell","reasoning":"made up"}`,
	}
	m := New(gen, nil)

	got := m.MapColumns(context.Background(), []string{"Full Name", "Mobile No"}, sampleRow())
	if got.NameColumn != "Full Name" || got.PhoneColumn != "Mobile No" {
		t.Fatalf("expected heuristic mapping when answer names unknown columns, got %+v", got)
	}
}

func TestMapColumns_AcceptsFencedJSON(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		jsonOut: "```json\n{\"name_column\":\"Full Name\",\"phone_column\":\"Mobile No\",\"reasoning\":\"x\"}\n```",
	}
	m := New(gen, nil)

	got := m.MapColumns(context.Background(), []string{"Full Name", "Mobile No"}, sampleRow())
	if got.NameColumn != "Full Name" {
		t.Fatalf("expected fenced answer accepted, got %+v", got)
	}
}

func TestMapColumns_CacheHitSkipsGenerator(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		jsonOut: `{"name_column":"Full Name","phone_column":"Mobile No","reasoning":"x"}`,
	}
	mc := newFakeCache()
	m := New(gen, mc)

	headers := []string{"Full Name", "Mobile No"}
	first := m.MapColumns(context.Background(), headers, sampleRow())
	second := m.MapColumns(context.Background(), headers, sampleRow())

	if first != second {
		t.Fatalf("expected identical mappings, got %+v vs %+v", first, second)
	}
	if gen.jsonCalls != 1 {
		t.Errorf("expected a single generator call, got %d", gen.jsonCalls)
	}
}

func TestFallback(t *testing.T) {
	t.Parallel()

	got := Fallback([]string{"Full Name", "Mobile No", "Role"})
	if got.NameColumn != "Full Name" {
		t.Errorf("expected Full Name, got %q", got.NameColumn)
	}
	if got.PhoneColumn != "Mobile No" {
		t.Errorf("expected Mobile No, got %q", got.PhoneColumn)
	}
}

func TestFallback_NoMatchingHeaders(t *testing.T) {
	t.Parallel()

	got := Fallback([]string{"A", "B", "C"})
	if got.NameColumn != "A" {
		t.Errorf("expected first header for name, got %q", got.NameColumn)
	}
	if got.PhoneColumn != "B" {
		t.Errorf("expected second header for phone, got %q", got.PhoneColumn)
	}
}

func TestFallback_SingleHeader(t *testing.T) {
	t.Parallel()

	got := Fallback([]string{"Everything"})
	if got.NameColumn != "Everything" || got.PhoneColumn != "Everything" {
		t.Fatalf("expected the only header used twice, got %+v", got)
	}
}

func TestFallback_CaseInsensitive(t *testing.T) {
	t.Parallel()

	got := Fallback([]string{"CANDIDATE NAME", "CONTACT NUMBER"})
	if got.NameColumn != "CANDIDATE NAME" {
		t.Errorf("expected case-insensitive name match, got %q", got.NameColumn)
	}
	if got.PhoneColumn != "CONTACT NUMBER" {
		t.Errorf("expected contact matched for phone, got %q", got.PhoneColumn)
	}
}
