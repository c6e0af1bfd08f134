package lexer

import "testing"

func kinds(toks []Token) []TokenKind {
	ks := make([]TokenKind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestTokenizeKeywordsAndIdents(t *testing.T) {
	toks := New("int main private self").Tokenize()
	want := []TokenKind{TokInt, TokIdent, TokPrivate, TokSelf, TokEOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i, k := range want {
		if got[i] != k {
			t.Fatalf("token %d = %s, want %s", i, got[i], k)
		}
	}
}

func TestTokenizeNumericSuffixes(t *testing.T) {
	toks := New("10 3.5 7u 2l 1.0f").Tokenize()
	if toks[0].Kind != TokIntLiteral || toks[0].IntValue != 10 {
		t.Fatalf("token 0 = %+v", toks[0])
	}
	if toks[1].Kind != TokFloatLiteral || toks[1].FloatValue != 3.5 {
		t.Fatalf("token 1 = %+v", toks[1])
	}
	if toks[2].Kind != TokIntLiteral || toks[2].Suffix != "u" {
		t.Fatalf("token 2 = %+v", toks[2])
	}
	if toks[3].Kind != TokIntLiteral || toks[3].Suffix != "l" {
		t.Fatalf("token 3 = %+v", toks[3])
	}
	if toks[4].Kind != TokFloatLiteral || toks[4].Suffix != "f" {
		t.Fatalf("token 4 = %+v", toks[4])
	}
}

func TestScanStringEscapes(t *testing.T) {
	toks := New(`"a\nb\t\"c\\d"`).Tokenize()
	if toks[0].Kind != TokStringLiteral {
		t.Fatalf("expected string literal, got %s", toks[0].Kind)
	}
	want := "a\nb\t\"c\\d"
	if toks[0].StringValue != want {
		t.Fatalf("StringValue = %q, want %q", toks[0].StringValue, want)
	}
}

func TestScanStringUTF8CodePoints(t *testing.T) {
	toks := New(`"aあb"`).Tokenize()
	if toks[0].Kind != TokStringLiteral {
		t.Fatalf("expected string literal, got %s", toks[0].Kind)
	}
	runes := []rune(toks[0].StringValue)
	if len(runes) != 3 {
		t.Fatalf("expected 3 code points, got %d (%q)", len(runes), toks[0].StringValue)
	}
}

func TestUnterminatedStringReportsError(t *testing.T) {
	l := New(`"unterminated`)
	l.Tokenize()
	if len(l.Errors()) == 0 {
		t.Fatal("expected an unterminated-string error")
	}
}

func TestScanOperators(t *testing.T) {
	toks := New("<= >= == != && || :: -> += ::").Tokenize()
	want := []TokenKind{TokLtEq, TokGtEq, TokEqEq, TokBangEq, TokAmpAmp, TokPipePipe, TokColonColon, TokArrow, TokPlusEq, TokColonColon, TokEOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i, k := range want {
		if got[i] != k {
			t.Fatalf("token %d = %s, want %s", i, got[i], k)
		}
	}
}

func TestSkipsLineAndBlockComments(t *testing.T) {
	toks := New("int // comment\nx /* block */ ;").Tokenize()
	want := []TokenKind{TokInt, TokIdent, TokSemicolon, TokEOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestUnexpectedCharacterReportsError(t *testing.T) {
	l := New("int x = 1 @ 2;")
	l.Tokenize()
	if len(l.Errors()) == 0 {
		t.Fatal("expected an unexpected-character error for '@'")
	}
}
