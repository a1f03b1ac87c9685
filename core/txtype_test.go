package core

import "testing"

func TestTxTypeShortCodeRoundTrip(t *testing.T) {
	for tt := range shortCodes {
		code := tt.ShortCode("")
		got := ParseTxTypeShortCode(code)
		if got != tt {
			t.Fatalf("round trip broke for %v: short code %q parsed back to %v", tt, code, got)
		}
	}
}

func TestParseTxTypeLongForm(t *testing.T) {
	if got := ParseTxTypeLongForm("PoolSwap"); got != PoolSwap {
		t.Fatalf("PoolSwap: got %v", got)
	}
	if got := ParseTxTypeLongForm("ICXClaimDFCHTLC"); got != ICXClaimDFCHTLC {
		t.Fatalf("ICXClaimDFCHTLC: got %v", got)
	}
	if got := ParseTxTypeLongForm("_"); got != Unknown {
		t.Fatalf("_: got %v", got)
	}
	if got := ParseTxTypeLongForm("cb"); got != Coinbase {
		t.Fatalf("cb: got %v", got)
	}
	if got := ParseTxTypeLongForm("utxo"); got != Utxo {
		t.Fatalf("utxo: got %v", got)
	}
	if got := ParseTxTypeLongForm("some-unrecognized-type"); got != OtherType {
		t.Fatalf("unrecognized: got %v, want OtherType", got)
	}
}

func TestShortCodeForUtxoIsSingleChar(t *testing.T) {
	// Regularized asymmetry (§3): short code "u" for Utxo, distinct from the
	// long-form parser's "utxo" literal.
	if Utxo.ShortCode("") != "u" {
		t.Fatalf("expected short code \"u\" for Utxo, got %q", Utxo.ShortCode(""))
	}
	if ParseTxTypeShortCode("u") != Utxo {
		t.Fatalf("expected short code \"u\" to parse back to Utxo")
	}
}
