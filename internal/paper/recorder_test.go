package paper

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"obot-go/internal/broker"
)

func TestJSONLRecorderWritesFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fills", "fills.jsonl")
	recorder, err := NewJSONLRecorder(path)
	if err != nil {
		t.Fatalf("NewJSONLRecorder returned error: %v", err)
	}

	fill := broker.Fill{
		PositionID: "paper-1",
		Pair:       "EURUSD",
		Side:       broker.Buy,
		Units:      10000,
		Price:      1.1,
		Reason:     ReasonEntry,
		Ts:         time.Now().UTC(),
	}
	recorder.Record(fill)
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	// Record after Close is a no-op, not a panic.
	recorder.Record(fill)

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open fills file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var lines int
	for scanner.Scan() {
		lines++
		var decoded broker.Fill
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		if decoded.Pair != "EURUSD" || decoded.Reason != ReasonEntry {
			t.Fatalf("unexpected decoded fill: %+v", decoded)
		}
	}
	if lines != 1 {
		t.Fatalf("expected 1 line, got %d", lines)
	}
}

func TestLedgerSummarizesSession(t *testing.T) {
	ledger := NewLedger(-1)
	ledger.Record(broker.Fill{Pair: "EURUSD", Reason: ReasonEntry})
	ledger.Record(broker.Fill{Pair: "EURUSD", Reason: ReasonTakeProfit, RealizedPnL: 120})
	ledger.Record(broker.Fill{Pair: "USDJPY", Reason: ReasonEntry})
	ledger.Record(broker.Fill{Pair: "USDJPY", Reason: ReasonStopLoss, RealizedPnL: -40})

	sum := ledger.Summary()
	if sum.Fills != 4 || sum.Entries != 2 || sum.Closes != 2 {
		t.Fatalf("unexpected summary counts: %+v", sum)
	}
	if sum.Realized != 80 {
		t.Fatalf("expected realized 80, got %v", sum.Realized)
	}

	ledger.Reset()
	if sum := ledger.Summary(); sum.Fills != 0 || sum.Realized != 0 {
		t.Fatalf("expected zeroed summary after reset, got %+v", sum)
	}
	if len(ledger.Recent()) != 0 {
		t.Fatalf("expected empty ledger after reset")
	}
}

func TestLedgerTrimsToCapacityButKeepsTotals(t *testing.T) {
	ledger := NewLedger(2)
	for i := 0; i < 5; i++ {
		ledger.Record(broker.Fill{PositionID: string(rune('a' + i)), Reason: ReasonEntry})
	}

	recent := ledger.Recent()
	if len(recent) != 2 {
		t.Fatalf("expected 2 retained fills, got %d", len(recent))
	}
	if recent[0].PositionID != "d" || recent[1].PositionID != "e" {
		t.Fatalf("expected the newest fills retained, got %+v", recent)
	}
	if sum := ledger.Summary(); sum.Fills != 5 {
		t.Fatalf("expected totals to count all 5 fills, got %d", sum.Fills)
	}
}
