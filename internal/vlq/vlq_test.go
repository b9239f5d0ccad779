package vlq

import (
	"strings"
	"testing"
)

func TestEncodeDecodeUnsignedRoundTrip(t *testing.T) {
	tests := []uint64{0, 1, 15, 16, 31, 32, 1000, 1 << 20, 1 << 40}
	for _, n := range tests {
		var sb strings.Builder
		EncodeUnsigned(&sb, n)
		it := NewTokenIterator(sb.String())
		got, err := it.NextUnsignedVLQ()
		if err != nil {
			t.Fatalf("EncodeUnsigned(%d): decode error: %v", n, err)
		}
		if got != n {
			t.Errorf("EncodeUnsigned(%d) round-tripped to %d", n, got)
		}
		if it.HasNext() {
			t.Errorf("EncodeUnsigned(%d): trailing characters after decode", n)
		}
	}
}

func TestEncodeDecodeSignedRoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 15, -15, 1000, -1000, 1 << 30, -(1 << 30)}
	for _, n := range tests {
		var sb strings.Builder
		EncodeSigned(&sb, n)
		it := NewTokenIterator(sb.String())
		got, err := it.NextSignedVLQ()
		if err != nil {
			t.Fatalf("EncodeSigned(%d): decode error: %v", n, err)
		}
		if got != n {
			t.Errorf("EncodeSigned(%d) round-tripped to %d", n, got)
		}
	}
}

func TestTokenIteratorMultipleFields(t *testing.T) {
	var sb strings.Builder
	EncodeUnsigned(&sb, 5)
	EncodeSigned(&sb, -3)
	EncodeUnsigned(&sb, 200)

	it := NewTokenIterator(sb.String())
	if v, err := it.NextUnsignedVLQ(); err != nil || v != 5 {
		t.Fatalf("field 1: got %d, %v", v, err)
	}
	if v, err := it.NextSignedVLQ(); err != nil || v != -3 {
		t.Fatalf("field 2: got %d, %v", v, err)
	}
	if v, err := it.NextUnsignedVLQ(); err != nil || v != 200 {
		t.Fatalf("field 3: got %d, %v", v, err)
	}
	if it.HasNext() {
		t.Fatal("expected iterator to be exhausted")
	}
}

func TestDiscardRemainingVLQs(t *testing.T) {
	var sb strings.Builder
	EncodeUnsigned(&sb, 1)
	EncodeUnsigned(&sb, 2)
	EncodeUnsigned(&sb, 3)

	it := NewTokenIterator(sb.String())
	if _, err := it.NextUnsignedVLQ(); err != nil {
		t.Fatal(err)
	}
	if err := it.DiscardRemainingVLQs(); err != nil {
		t.Fatal(err)
	}
	if it.HasNext() {
		t.Fatal("expected iterator to be exhausted after discard")
	}
}

func TestNextUnsignedVLQInvalidCharacter(t *testing.T) {
	it := NewTokenIterator("!!!")
	if _, err := it.NextUnsignedVLQ(); err == nil {
		t.Fatal("expected an error decoding an invalid character")
	}
}

func TestNextUnsignedVLQUnexpectedEOF(t *testing.T) {
	// "B" alone has its continuation bit set (digit value 1 << 5 | ...),
	// so a lone continuation digit with nothing after it must error.
	var sb strings.Builder
	EncodeUnsigned(&sb, 1<<10)
	truncated := sb.String()[:1]
	it := NewTokenIterator(truncated)
	if _, err := it.NextUnsignedVLQ(); err == nil {
		t.Fatal("expected an error decoding a truncated VLQ")
	}
}
