package textutil

import (
	"testing"
	"time"
)

func TestNormalizeField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"north wall", "north wall"},
		{"  North   Wall ", "north wall"},
		{"North\tWall\n", "north wall"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeField(tt.in); got != tt.want {
			t.Fatalf("NormalizeField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"living_room", "Living Room"},
		{"master bedroom", "Master Bedroom"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := TitleCase(tt.in); got != tt.want {
			t.Fatalf("TitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContainsKeyword(t *testing.T) {
	keywords := []string{"crack", "stain", "hole"}
	if !ContainsKeyword("The wall is badly CRACKED near the door", keywords) {
		t.Fatal("expected prefix match on cracked")
	}
	if ContainsKeyword("Everything looks clean", keywords) {
		t.Fatal("unexpected match")
	}
	if ContainsKeyword("stain", nil) {
		t.Fatal("expected no match without keywords")
	}
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	got := Tokenize("a small dent on it")
	want := []string{"small", "dent"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tokenize = %v, want %v", got, want)
		}
	}
}

func TestReportFileName(t *testing.T) {
	at := time.Date(2026, 3, 12, 9, 5, 7, 0, time.UTC)
	tests := []struct {
		id, want string
	}{
		{"7f3a9c20-11aa", "condish-7f3a9c20-11aa-20260312-090507.xlsx"},
		{"Session 7F3A", "condish-session_7f3a-20260312-090507.xlsx"},
		{"a/b::c", "condish-a_b_c-20260312-090507.xlsx"},
		{"  ", "condish-session-20260312-090507.xlsx"},
	}
	for _, tt := range tests {
		if got := ReportFileName(tt.id, at); got != tt.want {
			t.Fatalf("ReportFileName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
