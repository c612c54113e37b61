package embedding

import (
	"testing"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, types := tok.Tokenize("hello world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths: %d %d %d", len(ids), len(attn), len(types))
	}
	if ids[0] != clsToken {
		t.Errorf("expected CLS, got %d", ids[0])
	}
	if ids[3] != sepToken {
		t.Errorf("expected SEP after two words, got %d", ids[3])
	}
	for i, want := range []int64{1, 1, 1, 1, 0} {
		if attn[i] != want {
			t.Errorf("attention[%d] = %d, want %d", i, attn[i], want)
		}
	}
}

func TestSimpleTokenizer_TruncatesLongInput(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, _ := tok.Tokenize("a b c d e f g h i j k l", 6)
	if ids[5] != sepToken || attn[5] != 1 {
		t.Errorf("last slot should hold SEP, got ids=%v", ids)
	}
}

func TestSimpleTokenizer_CaseInsensitive(t *testing.T) {
	tok := &SimpleTokenizer{}
	a, _, _ := tok.Tokenize("Invoice", 8)
	b, _, _ := tok.Tokenize("invoice", 8)
	if a[1] != b[1] {
		t.Errorf("token ids differ by case: %d vs %d", a[1], b[1])
	}
}

func TestSplitWords(t *testing.T) {
	words := SplitWords("  a \n b\tc  ")
	if len(words) != 3 {
		t.Errorf("expected 3 words, got %v", words)
	}
	if SplitWords("   ") != nil {
		t.Error("blank string should return nil")
	}
}

func TestHashString(t *testing.T) {
	if HashString("abc") != HashString("abc") {
		t.Error("hash should be deterministic")
	}
	if HashString("abc") == HashString("abd") {
		t.Error("distinct words should hash apart")
	}
	if HashString("a long word that would overflow a naive hash") < 0 {
		t.Error("hash must be non-negative")
	}
}
