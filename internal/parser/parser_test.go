package parser

import (
	"errors"
	"strings"
	"testing"

	"sweeper/internal/format"
)

func TestParseDispatch(t *testing.T) {
	tb, err := Parse("people.csv", []byte("name;age\nann;31\n"), format.CSV, Options{Comma: ';'})
	if err != nil {
		t.Fatalf("Parse csv: %v", err)
	}
	if got := tb.Names(); len(got) != 2 || got[1] != "age" {
		t.Fatalf("names=%q", got)
	}

	p, err := ForFormat(format.XLSX, Options{})
	if err != nil || p == nil {
		t.Fatalf("ForFormat xlsx: %v", err)
	}
}

/*
TestParseErrorCarriesFileName verifies that failures from either adapter and
from an unsupported tag surface as *ParseError naming the input file.
*/
func TestParseErrorCarriesFileName(t *testing.T) {
	cases := []struct {
		name string
		data string
		f    format.Format
	}{
		{"broken.csv", "a\n1,2\n", format.CSV},
		{"empty.csv", "", format.CSV},
		{"fake.xlsx", "definitely not a zip archive", format.XLSX},
		{"data.json", "{}", format.Format("json")},
	}
	for _, c := range cases {
		_, err := Parse(c.name, []byte(c.data), c.f, Options{})
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected *ParseError, got %v", c.name, err)
		}
		if pe.File != c.name {
			t.Fatalf("%s: File=%q", c.name, pe.File)
		}
		if !strings.Contains(pe.Error(), c.name) {
			t.Fatalf("%s: message lacks file name: %q", c.name, pe.Error())
		}
		if pe.Unwrap() == nil {
			t.Fatalf("%s: missing cause", c.name)
		}
	}

	_, err := Parse("data.json", nil, format.Format("json"), Options{})
	if !errors.Is(err, format.ErrUnsupported) {
		t.Fatalf("unsupported tag should wrap format.ErrUnsupported: %v", err)
	}
}
