package sharedstringsxml_test

import (
	"strings"
	"testing"

	"github.com/beingidly/litexl/model"
	"github.com/beingidly/litexl/sharedstringsxml"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	shared := model.NewSharedStrings()
	shared.Add("hello")
	shared.Add("world")
	shared.Add("hello") // dedup: still two unique entries

	data, err := sharedstringsxml.Encode(shared)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), `count="2"`) || !strings.Contains(string(data), `uniqueCount="2"`) {
		t.Errorf("encoded sst counts wrong: %s", data)
	}

	got, err := sharedstringsxml.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Decode Len() = %d, want 2", got.Len())
	}
	v0, _ := got.At(0)
	v1, _ := got.At(1)
	if v0 != "hello" || v1 != "world" {
		t.Errorf("Decode values = %q, %q, want %q, %q", v0, v1, "hello", "world")
	}
}

func TestDecodeEmptyDocument(t *testing.T) {
	got, err := sharedstringsxml.Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil): %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("Decode(nil).Len() = %d, want 0", got.Len())
	}
}

func TestDecodePreservesDuplicatePositionalIndexes(t *testing.T) {
	// Two <si> entries with identical text must decode into two distinct
	// indices, since a writer that never deduplicated could have emitted
	// the same payload twice and cells may reference either position.
	xml := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="2" uniqueCount="2">` +
		`<si><t>dup</t></si><si><t>dup</t></si></sst>`

	got, err := sharedstringsxml.Decode([]byte(xml))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	v0, _ := got.At(0)
	v1, _ := got.At(1)
	if v0 != "dup" || v1 != "dup" {
		t.Errorf("At(0)=%q At(1)=%q, want both %q", v0, v1, "dup")
	}
}

func TestDecodeFoldsMultipleRunsIntoOneEntry(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="1" uniqueCount="1">` +
		`<si><r><t>foo</t></r><r><t>bar</t></r></si></sst>`

	got, err := sharedstringsxml.Decode([]byte(xml))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	v0, ok := got.At(0)
	if !ok || v0 != "foobar" {
		t.Errorf("At(0) = %q, %v, want %q, true", v0, ok, "foobar")
	}
}
