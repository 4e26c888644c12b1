package features

import (
	"errors"
	"reflect"
	"testing"
)

func TestHashTitleBias(t *testing.T) {
	titles := []string{
		"Go",
		"Quarterly Earnings Beat Estimates",
		"  padded   with   spaces  ",
		"日本のニュース",
		"a a a a a a a a",
	}

	for _, title := range titles {
		v, err := HashTitle(title)
		if err != nil {
			t.Fatalf("HashTitle(%q) error: %v", title, err)
		}
		if got := v.Get(BiasIndex); got != 1.0 {
			t.Errorf("HashTitle(%q) bias = %v, want 1.0", title, got)
		}
		if !v.Valid() {
			t.Errorf("HashTitle(%q) produced invalid vector %v", title, v)
		}
	}
}

func TestHashTitleEmpty(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := HashTitle(title)
		if !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("HashTitle(%q) error = %v, want ErrEmptyTitle", title, err)
		}
	}
}

// Golden values pin the hash function. If these change, every persisted
// corpus silently stops matching new predictions.
func TestHashTitleGolden(t *testing.T) {
	tests := []struct {
		title    string
		expected Vector
	}{
		{
			title: "Go Go",
			expected: Vector{
				{1, 1.0}, {28551, 0.5}, {35712, 0.5}, {64276, 1.0}, {64907, 0.5},
			},
		},
		{
			title: "日本",
			expected: Vector{
				{1, 1.0}, {12570, 0.5}, {15954, 0.5}, {40230, 0.5}, {41399, 0.5}, {51767, 0.5},
			},
		},
		{
			title: "Quarterly Earnings Beat Estimates",
			expected: Vector{
				{1, 1.0}, {3797, 0.25}, {8719, 0.25}, {10783, 0.25}, {22192, 0.25},
				{22785, 0.25}, {32891, 0.25}, {44926, 0.25}, {52492, 0.25}, {54162, 0.25},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, err := HashTitle(tt.title)
			if err != nil {
				t.Fatalf("HashTitle() error: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("HashTitle(%q) = %v, want %v", tt.title, got, tt.expected)
			}
		})
	}
}

func TestHashTitleDeterministic(t *testing.T) {
	title := "Breaking: Markets Rally As Rates Hold"
	first, err := HashTitle(title)
	if err != nil {
		t.Fatalf("HashTitle() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := HashTitle(title)
		if !first.Equal(again) {
			t.Fatalf("HashTitle() not deterministic: %v vs %v", first, again)
		}
	}
}

func TestHashTitleCaseInsensitive(t *testing.T) {
	lower, _ := HashTitle("rust release notes")
	upper, _ := HashTitle("RUST Release NOTES")
	if !lower.Equal(upper) {
		t.Errorf("expected case-insensitive vectors, got %v and %v", lower, upper)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Hello World", []string{"hello", "world"}},
		{"  many   spaces ", []string{"many", "spaces"}},
		{"日本語", []string{"日", "本", "語"}},
		{"Go言語 news", []string{"go", "言", "語", "news"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := Tokenize(tt.input)
		if len(got) == 0 && len(tt.expected) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestBigramOrderMatters(t *testing.T) {
	if BigramIndex("a", "b") == BigramIndex("b", "a") {
		t.Error("expected ordered bigram keys to hash differently")
	}
	if UnigramIndex("ab") == BigramIndex("a", "b") {
		t.Error("expected unigram and bigram keys to be tagged apart")
	}
}

func TestIndexRange(t *testing.T) {
	for _, tok := range []string{"", "x", "[BEGIN]", "[END]", "longer token value"} {
		idx := UnigramIndex(tok)
		if idx < 1 || idx > NumFeatures {
			t.Errorf("UnigramIndex(%q) = %d, out of range", tok, idx)
		}
	}
}

func TestVectorGet(t *testing.T) {
	v := Vector{{1, 1.0}, {10, 0.5}, {300, 0.25}}
	if v.Get(10) != 0.5 {
		t.Errorf("Get(10) = %v, want 0.5", v.Get(10))
	}
	if v.Get(11) != 0 {
		t.Errorf("Get(11) = %v, want 0", v.Get(11))
	}
	if v.SquaredNorm() != 1.0+0.25+0.0625 {
		t.Errorf("SquaredNorm() = %v", v.SquaredNorm())
	}
}

func TestVectorValid(t *testing.T) {
	tests := []struct {
		name  string
		v     Vector
		valid bool
	}{
		{"bias only", Vector{{1, 1}}, true},
		{"missing bias", Vector{{2, 1}}, false},
		{"empty", Vector{}, false},
		{"unsorted", Vector{{1, 1}, {9, 1}, {5, 1}}, false},
		{"out of range", Vector{{1, 1}, {NumFeatures + 1, 1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}
