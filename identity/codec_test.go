package identity

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTripLowercases(t *testing.T) {
	for _, email := range []string{
		"john@example.com",
		"John.Doe+news@Example.COM",
		"élodie@exemple.fr",
	} {
		id := EncodeContactID(email)
		if id == "" {
			t.Fatalf("expected identifier for %q", email)
		}
		if got, want := DecodeContactID(id), strings.ToLower(email); got != want {
			t.Fatalf("round trip of %q: expected %q got %q", email, want, got)
		}
	}
}

func TestEncodeIsCaseInsensitive(t *testing.T) {
	if EncodeContactID("A@B.com") != EncodeContactID("a@b.com") {
		t.Fatalf("expected case insensitive encoding")
	}
	if got := EncodeContactID("a@b.com"); got != "YUBiLmNvbQ==" {
		t.Fatalf("unexpected encoding %q", got)
	}
}

func TestDecodeInvalidInputIsEmpty(t *testing.T) {
	for _, id := range []string{"", "   ", "%%%not-base64%%%", "YUBi*"} {
		if got := DecodeContactID(id); got != "" {
			t.Fatalf("expected empty decode for %q, got %q", id, got)
		}
	}
}

func TestDecodeAcceptsUnpaddedInput(t *testing.T) {
	if got := DecodeContactID("YUBiLmNvbQ"); got != "a@b.com" {
		t.Fatalf("expected unpadded decode, got %q", got)
	}
}

func TestSameContact(t *testing.T) {
	if !SameContact(" Jane@Example.com", "jane@example.com ") {
		t.Fatalf("expected same contact")
	}
	if SameContact("jane@example.com", "john@example.com") {
		t.Fatalf("expected different contacts")
	}
}
