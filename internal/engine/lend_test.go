package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danieljhkim/lendlog/internal/ledger"
)

func TestLend_RecordsBatch(t *testing.T) {
	eng, fs, _ := newTestEngine(t, false)

	result := mustLend(t, eng, "12", "0001", "0002")

	if len(result.Applied) != 2 {
		t.Fatalf("expected 2 applied operations, got %d", len(result.Applied))
	}
	if fs.Writes != 1 {
		t.Errorf("expected a single write for the batch, got %d", fs.Writes)
	}

	ops := loadAll(t, eng)
	if len(ops) != 2 {
		t.Fatalf("expected 2 persisted operations, got %d", len(ops))
	}
	for i, want := range []string{"0001", "0002"} {
		if ops[i].Seq != int64(i+1) {
			t.Errorf("op %d seq = %d", i, ops[i].Seq)
		}
		if ops[i].Kind != (ledger.Lend{Item: want, Destination: "12"}) {
			t.Errorf("op %d = %#v", i, ops[i].Kind)
		}
		if !ops[i].Time.Equal(eventStart) {
			t.Errorf("op %d time = %v, want %v", i, ops[i].Time, eventStart)
		}
	}
}

func TestLend_ValidatesItems(t *testing.T) {
	eng, fs, _ := newTestEngine(t, false)
	ctx := context.Background()

	for _, items := range [][]string{nil, {""}, {"A", "  "}} {
		if _, err := eng.Lend(ctx, &LendRequest{Items: items, Destination: "1"}); !errors.Is(err, ErrValidation) {
			t.Errorf("Lend(%q) error = %v, want ErrValidation", items, err)
		}
	}
	if fs.Writes != 0 {
		t.Error("invalid requests must not write")
	}
}

func TestLend_DoubleLendWarnsByDefault(t *testing.T) {
	eng, _, clk := newTestEngine(t, false)
	mustLend(t, eng, "12", "0001")
	clk.Advance(time.Minute)

	result := mustLend(t, eng, "13", "0001")

	if len(result.Plan.Warnings) != 1 || result.Plan.Warnings[0].Kind != ledger.DoubleLend {
		t.Errorf("expected a DoubleLend warning, got %+v", result.Plan.Warnings)
	}
	if len(loadAll(t, eng)) != 2 {
		t.Error("a warned lend should still be recorded")
	}
}

func TestLend_StrictBlocksWholeBatch(t *testing.T) {
	eng, fs, _ := newTestEngine(t, true)
	mustLend(t, eng, "12", "0001")
	writes := fs.Writes

	result, err := eng.Lend(context.Background(), &LendRequest{
		Items:       []string{"0002", "0001", "0003"},
		Destination: "13",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if result == nil || len(result.Plan.Conflicts) != 1 || len(result.Applied) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if fs.Writes != writes {
		t.Error("a blocked batch must not write")
	}
	if len(loadAll(t, eng)) != 1 {
		t.Error("a blocked batch must not be partially recorded")
	}
}

func TestLend_DryRunDoesNotWrite(t *testing.T) {
	eng, fs, _ := newTestEngine(t, false)

	result, err := eng.Lend(context.Background(), &LendRequest{Items: []string{"A"}, Destination: "1", DryRun: true})
	if err != nil {
		t.Fatalf("Lend failed: %v", err)
	}
	if len(result.Plan.Operations) != 1 || len(result.Applied) != 0 {
		t.Errorf("unexpected dry-run result: %+v", result)
	}
	if fs.Writes != 0 {
		t.Error("dry run wrote to the log")
	}
}

func TestReturn(t *testing.T) {
	tests := []struct {
		name     string
		strict   bool
		extra    []string
		items    []string
		dest     string
		wantErr  error
		wantLogs int
	}{
		{name: "matching", items: []string{"0001"}, dest: "12", wantLogs: 3},
		{name: "multi item", items: []string{"0001", "0002"}, dest: "12", wantLogs: 4},
		{name: "loan without destination", extra: []string{"0003"}, items: []string{"0003"}, dest: "99", wantLogs: 4},
		{name: "mismatch always blocks", items: []string{"0001"}, dest: "13", wantErr: ErrConflict, wantLogs: 2},
		{name: "not lent warns", items: []string{"0009"}, dest: "12", wantLogs: 3},
		{name: "not lent strict", strict: true, items: []string{"0009"}, dest: "12", wantErr: ErrConflict, wantLogs: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _, _ := newTestEngine(t, tt.strict)
			mustLend(t, eng, "12", "0001", "0002")
			if len(tt.extra) > 0 {
				mustLend(t, eng, "", tt.extra...)
			}

			_, err := eng.Return(context.Background(), &ReturnRequest{Items: tt.items, Destination: tt.dest})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Return failed: %v", err)
			}
			if got := len(loadAll(t, eng)); got != tt.wantLogs {
				t.Errorf("log has %d operations, want %d", got, tt.wantLogs)
			}
		})
	}
}

func TestReturn_ClosesLoan(t *testing.T) {
	eng, _, _ := newTestEngine(t, false)
	mustLend(t, eng, "12", "0001", "0002")

	if _, err := eng.Return(context.Background(), &ReturnRequest{Items: []string{"0001"}, Destination: "12"}); err != nil {
		t.Fatalf("Return failed: %v", err)
	}

	show, err := eng.Show(context.Background(), &ShowRequest{})
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if len(show.Loans) != 1 || show.Loans[0].Item != "0002" {
		t.Errorf("open loans = %+v, want only 0002", show.Loans)
	}
}
