package extract

import (
	"reflect"
	"testing"
)

func TestMentions(t *testing.T) {
	tests := []struct {
		text      string
		shortform string
		want      []Mention
	}{
		{"the insulin receptor (IR) and IR-A", "IR", []Mention{{22, 24}, {30, 32}}},
		{"IRS1 and MIR21 are not mentions", "IR", nil},
		{"ir lowercase", "IR", nil},
		{"IR", "IR", []Mention{{0, 2}}},
		{"anything", "", nil},
	}
	for _, tt := range tests {
		got := Mentions(tt.text, tt.shortform)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Mentions(%q, %q) = %v, want %v", tt.text, tt.shortform, got, tt.want)
		}
	}
}

func TestWindow(t *testing.T) {
	text := "a b c IR d e f g h i j k IR l m"
	tests := []struct {
		name   string
		radius int
		want   string
	}{
		{"separate windows", 1, "c IR d\nk IR l"},
		{"merged windows", 5, "a b c IR d e f g h i j k IR l m"},
		{"no radius", 0, text},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Window(text, "IR", tt.radius); got != tt.want {
				t.Errorf("Window() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := Window("  no mention here  ", "IR", 3); got != "no mention here" {
		t.Errorf("Window() without mention = %q", got)
	}
	if got := Window("(IR) at the start", "IR", 1); got != "(IR) at" {
		t.Errorf("Window() at start = %q", got)
	}
}
