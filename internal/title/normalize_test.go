package title_test

import (
	"testing"

	"afisha/internal/title"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"punctuation collapses", "Матрица: Воскрешение", "матрица воскрешение"},
		{"multiple separators", "Салют-7  (режиссерская версия)", "салют 7 режиссерская версия"},
		{"yo folds", "Ёлки 8", "елки 8"},
		{"short i folds", "Война и мир. Андрей Болконский", "воина и мир андреи болконскии"},
		{"latin lowercased", "DUNE: Part Two", "dune part two"},
		{"leading and trailing junk", "  ...Охота!  ", "охота"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := title.Normalize(tc.input)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeComposesCombiningMarks(t *testing.T) {
	// и + combining breve is how some pages serve й.
	decomposed := "Война"
	if got := title.Normalize(decomposed); got != "воина" {
		t.Fatalf("Normalize(%q) = %q, want %q", decomposed, got, "воина")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Матрица: Воскрешение",
		"Ёжик в тумане!",
		"", "a  b\tc",
		"Война и мир",
	}
	for _, input := range inputs {
		once := title.Normalize(input)
		twice := title.Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}
