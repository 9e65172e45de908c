package model

import (
	"strings"
	"testing"
)

func TestKnownRating(t *testing.T) {
	for _, rating := range []string{
		RatingLikelyTrue, RatingLikelyFalse, RatingMisleading,
		RatingUncertain, RatingCannotVerify, RatingParseError, RatingLLMError,
		NoClaimSentinel,
	} {
		if !KnownRating(rating) {
			t.Errorf("Expected %q to be a known rating", rating)
		}
	}

	for _, rating := range []string{"Mostly True", "True", "", "likely true-ish"} {
		if KnownRating(rating) {
			t.Errorf("Expected %q to be unknown", rating)
		}
	}
}

func TestVerdictIsNoClaim(t *testing.T) {
	v := Verdict{Rating: NoClaimSentinel}
	if !v.IsNoClaim() {
		t.Error("Expected no-claim verdict")
	}

	v = Verdict{Rating: " inga verifierbara påståenden hittades. "}
	if !v.IsNoClaim() {
		t.Error("Expected case- and whitespace-insensitive sentinel match")
	}

	v = Verdict{Rating: RatingLikelyTrue}
	if v.IsNoClaim() {
		t.Error("Expected regular verdict")
	}
}

func TestTruncateClaim(t *testing.T) {
	short := "ett kort påstående"
	if got := TruncateClaim(short); got != short {
		t.Errorf("Expected short claim unchanged, got %q", got)
	}

	long := strings.Repeat("å", MaxClaimRunes+100)
	got := TruncateClaim(long)
	if n := len([]rune(got)); n != MaxClaimRunes {
		t.Errorf("Expected exactly %d runes, got %d", MaxClaimRunes, n)
	}
	// Rune-safe: no broken UTF-8 at the cut point.
	if !strings.HasSuffix(got, "å") {
		t.Error("Expected truncation on a rune boundary")
	}
}
