package search

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lexandro/bugreport-agent/language"
)

func Test_ExtractKeywords_FiltersShortTokens(t *testing.T) {
	got := ExtractKeywords("add function error")
	want := []string{"function", "error"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords = %v, want %v", got, want)
	}
}

func Test_ExtractKeywords_LowercasesAndDeduplicates(t *testing.T) {
	got := ExtractKeywords("Login FAILS when login_button is clicked; login fails again")
	want := []string{"login", "fails", "when", "login_button", "clicked", "again"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords = %v, want %v", got, want)
	}
}

func Test_ExtractKeywords_SplitsOnPunctuation(t *testing.T) {
	got := ExtractKeywords("user.profile->save() threw TypeError: cannot read 'name'")
	want := []string{"user", "profile", "save", "threw", "typeerror", "cannot", "read", "name"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords = %v, want %v", got, want)
	}
}

func Test_ExtractKeywords_CountsRunesNotBytes(t *testing.T) {
	// "héé" is three characters but five bytes
	got := ExtractKeywords("héé ñandú")
	want := []string{"ñandú"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords = %v, want %v", got, want)
	}
}

func Test_ExtractKeywords_Properties(t *testing.T) {
	inputs := []string{
		"",
		"a bb ccc",
		"The QUICK brown fox jumps over the lazy dog. The quick brown fox!",
		"CheckoutService.processPayment(order) returned 500 for order 12345",
	}
	for _, input := range inputs {
		seen := make(map[string]bool)
		for _, kw := range ExtractKeywords(input) {
			if len([]rune(kw)) <= 3 {
				t.Errorf("keyword %q from %q is too short", kw, input)
			}
			if kw != strings.ToLower(kw) {
				t.Errorf("keyword %q from %q is not lower-cased", kw, input)
			}
			if seen[kw] {
				t.Errorf("keyword %q from %q is duplicated", kw, input)
			}
			seen[kw] = true
		}
	}
}

func Test_ExtractKeywords_Empty(t *testing.T) {
	if got := ExtractKeywords("   a, b, c  "); len(got) != 0 {
		t.Errorf("expected no keywords, got %v", got)
	}
}

func Test_ExtractFallbackKeywords_KeepsThreeLetterWords(t *testing.T) {
	got := ExtractFallbackKeywords("Add function error to a db")
	want := []string{"add", "function", "error"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractFallbackKeywords = %v, want %v", got, want)
	}
}

func Test_ExtractKeywords_FoldsLikeSearchedText(t *testing.T) {
	for _, word := range []string{"ΟΔΟΣ", "Straße", "İSTANBUL", "HTTPServer"} {
		got := ExtractKeywords(word)
		if len(got) != 1 || got[0] != language.Lower(word) {
			t.Errorf("ExtractKeywords(%q) = %q, want [%q]", word, got, language.Lower(word))
		}
	}
}
