package blockchain

import (
	"slices"
	"testing"
)

func TestRepairValidChainUnchanged(t *testing.T) {
	signer := newTestSigner(t, "k")
	blocks := buildChain(t, signer, 3).Blocks()

	fixed, report := Repair(blocks, signer)
	if report.Changed() {
		t.Fatalf("valid chain reported changes: %s", report)
	}
	for i := range blocks {
		if fixed[i].Signature != blocks[i].Signature {
			t.Fatalf("block %d re-signed needlessly", i+1)
		}
	}
}

func TestRepairDamagedChain(t *testing.T) {
	signer := newTestSigner(t, "k")
	blocks := buildChain(t, signer, 3).Blocks()
	blocks[1].Index = 7
	blocks[2].Transactions[0].Items = "<built-in method items of dict object at 0x7f>"
	blocks[3].PreviousHash = "bogus"

	fixed, report := Repair(blocks, signer)
	if err := ValidateChain(fixed, signer); err != nil {
		t.Fatalf("repaired chain does not validate: %v", err)
	}

	if !slices.Equal(report.Reindexed, []int{2}) {
		t.Fatalf("Reindexed = %v", report.Reindexed)
	}
	if report.SanitizedTxns != 1 || fixed[2].Transactions[0].Items != CorruptedItemMarker {
		t.Fatalf("items not sanitized: %s", report)
	}
	if !slices.Equal(report.Relinked, []int{3, 4}) {
		t.Fatalf("Relinked = %v", report.Relinked)
	}
	if !slices.Equal(report.Resigned, []int{2, 3, 4}) {
		t.Fatalf("Resigned = %v", report.Resigned)
	}
	if blocks[1].Index != 7 {
		t.Fatal("Repair modified its input")
	}
}

func TestRepairForeignKey(t *testing.T) {
	blocks := buildChain(t, newTestSigner(t, "old"), 2).Blocks()
	signer := newTestSigner(t, "new")

	fixed, report := Repair(blocks, signer)
	if len(report.Resigned) != 3 {
		t.Fatalf("expected every block re-signed, got %v", report.Resigned)
	}
	if err := ValidateChain(fixed, signer); err != nil {
		t.Fatalf("ValidateChain: %v", err)
	}
}

func TestRepairLegacyChain(t *testing.T) {
	signer := newTestSigner(t, "k")
	blocks, err := ParseLenientChain([]byte(legacyChain))
	if err != nil {
		t.Fatalf("ParseLenientChain: %v", err)
	}

	fixed, report := Repair(blocks, signer)
	if err := ValidateChain(fixed, signer); err != nil {
		t.Fatalf("repaired legacy chain does not validate: %v", err)
	}
	if !slices.Equal(report.Relinked, []int{2, 3}) {
		t.Fatalf("Relinked = %v", report.Relinked)
	}
	if len(report.Resigned) != 3 {
		t.Fatalf("expected every block signed, got %v", report.Resigned)
	}

	data, err := MarshalChain(fixed)
	if err != nil {
		t.Fatalf("MarshalChain: %v", err)
	}
	if _, err := ParseChain(data); err != nil {
		t.Fatalf("repaired file still needs the lenient decoder: %v", err)
	}
}
