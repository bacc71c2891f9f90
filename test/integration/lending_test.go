package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danieljhkim/lendlog/internal/clock"
	"github.com/danieljhkim/lendlog/internal/config"
	"github.com/danieljhkim/lendlog/internal/engine"
	"github.com/danieljhkim/lendlog/internal/ledger"
)

func TestLending_FullCycle(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			eng, clk, cfg := setupTestEngine(t, backend, false)
			ctx := context.Background()

			// Morning: two items go out to club 12, one to club 13
			if _, err := eng.Lend(ctx, &engine.LendRequest{Items: []string{"0001", "0002"}, Destination: "12"}); err != nil {
				t.Fatalf("Lend() error = %v", err)
			}
			clk.Advance(10 * time.Minute)
			if _, err := eng.Lend(ctx, &engine.LendRequest{Items: []string{"0003"}, Destination: "13"}); err != nil {
				t.Fatalf("Lend() error = %v", err)
			}

			// The operator typed the wrong item for operation 3
			clk.Advance(time.Minute)
			if _, err := eng.Edit(ctx, &engine.EditRequest{Target: 3, NewItem: "0004", NewDestination: "13"}); err != nil {
				t.Fatalf("Edit() error = %v", err)
			}

			// 0001 comes back; 0002 was never really lent
			clk.Advance(time.Hour)
			if _, err := eng.Return(ctx, &engine.ReturnRequest{Items: []string{"0001"}, Destination: "12"}); err != nil {
				t.Fatalf("Return() error = %v", err)
			}
			if _, err := eng.Remove(ctx, &engine.RemoveRequest{Target: 2}); err != nil {
				t.Fatalf("Remove() error = %v", err)
			}

			// A fresh engine over the same file sees the same state
			reopened := openEngine(t, cfg, clk)
			show, err := reopened.Show(ctx, &engine.ShowRequest{})
			if err != nil {
				t.Fatalf("Show() error = %v", err)
			}
			if len(show.Loans) != 1 {
				t.Fatalf("expected 1 open loan, got %+v", show.Loans)
			}
			loan := show.Loans[0]
			if loan.Item != "0004" || loan.Destination != "13" || loan.OpenedAt != 3 {
				t.Errorf("loan = %+v, want 0004 to 13 opened by operation 3", loan)
			}
			if !loan.LentAt.Equal(eventStart.Add(10 * time.Minute)) {
				t.Errorf("LentAt = %v, want the time of the original lend", loan.LentAt)
			}

			all, err := reopened.All(ctx)
			if err != nil {
				t.Fatalf("All() error = %v", err)
			}
			if len(all.Operations) != 6 {
				t.Errorf("raw log has %d operations, want 6", len(all.Operations))
			}

			check, err := reopened.Check(ctx)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if !check.OK() {
				t.Errorf("unexpected diagnostics: %+v", check.Diagnostics)
			}
		})
	}
}

func TestLending_StrictBatchIsAtomic(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			eng, _, _ := setupTestEngine(t, backend, true)
			ctx := context.Background()

			if _, err := eng.Lend(ctx, &engine.LendRequest{Items: []string{"A"}, Destination: "1"}); err != nil {
				t.Fatalf("Lend() error = %v", err)
			}

			_, err := eng.Lend(ctx, &engine.LendRequest{Items: []string{"B", "C", "A"}, Destination: "2"})
			if !errors.Is(err, engine.ErrConflict) {
				t.Fatalf("error = %v, want ErrConflict", err)
			}

			all, err := eng.All(ctx)
			if err != nil {
				t.Fatalf("All() error = %v", err)
			}
			if len(all.Operations) != 1 {
				t.Errorf("blocked batch left %d operations, want 1", len(all.Operations))
			}

			// the next successful command still gets the next free number
			result, err := eng.Lend(ctx, &engine.LendRequest{Items: []string{"B"}, Destination: "2"})
			if err != nil {
				t.Fatalf("Lend() error = %v", err)
			}
			if result.Applied[0].Seq != 2 {
				t.Errorf("seq = %d, want 2", result.Applied[0].Seq)
			}
		})
	}
}

func TestLending_RemoveOfRemoveRestores(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			eng, _, _ := setupTestEngine(t, backend, false)
			ctx := context.Background()

			if _, err := eng.Lend(ctx, &engine.LendRequest{Items: []string{"A"}, Destination: "1"}); err != nil {
				t.Fatalf("Lend() error = %v", err)
			}
			if _, err := eng.Remove(ctx, &engine.RemoveRequest{Target: 1}); err != nil {
				t.Fatalf("Remove() error = %v", err)
			}

			// a Remove cannot itself be the target of a new correction
			if _, err := eng.Remove(ctx, &engine.RemoveRequest{Target: 2}); !errors.Is(err, engine.ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}

			show, err := eng.Show(ctx, &engine.ShowRequest{})
			if err != nil {
				t.Fatalf("Show() error = %v", err)
			}
			if len(show.Loans) != 0 {
				t.Errorf("expected no open loans, got %+v", show.Loans)
			}
		})
	}
}

func TestLending_ReadsLegacyEventFile(t *testing.T) {
	_, _, cfg := setupTestEngine(t, config.BackendCSV, false)
	legacy := withData(cfg, "2021.csv")
	content := strings.Join([]string{
		"操作時刻,どの種類の操作か,品名,貸出先,削除・編集する先の操作番号,編集後の品名,編集後の貸出先,操作番号",
		"2021-01-09T10:00:00+09:00,Lend,0001,12,,,,1",
		"2021-01-09T10:01:00+09:00,Lend,0002,12,,,,2",
		"2021-01-09T10:02:00+09:00,Edit,,30,2,0003,,3",
		"2021-01-09T10:03:00+09:00,Return,0001,12,,,,4",
	}, "\n") + "\n"
	if err := os.WriteFile(legacy.Data, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	old := openEngine(t, legacy, clock.NewFakeClock(eventStart))
	ctx := context.Background()

	show, err := old.Show(ctx, &engine.ShowRequest{})
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if len(show.Loans) != 1 || show.Loans[0].Item != "0003" || show.Loans[0].Destination != "30" {
		t.Fatalf("open loans = %+v, want 0003 to 30", show.Loans)
	}

	// appending keeps the old header and rows intact
	result, err := old.Lend(ctx, &engine.LendRequest{Items: []string{"0005"}, Destination: "7"})
	if err != nil {
		t.Fatalf("Lend() error = %v", err)
	}
	if result.Applied[0].Seq != 5 {
		t.Errorf("seq = %d, want 5", result.Applied[0].Seq)
	}
	data, err := os.ReadFile(legacy.Data)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), content) {
		t.Error("existing rows were rewritten")
	}
	if !strings.HasSuffix(string(data), "Lend,0005,7,,,,5\n") {
		t.Errorf("unexpected appended row in:\n%s", data)
	}
}

func TestLending_NoTempFilesLeftBehind(t *testing.T) {
	eng, _, cfg := setupTestEngine(t, config.BackendCSV, false)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := eng.Lend(ctx, &engine.LendRequest{Items: []string{"A"}, Destination: "1"}); err != nil {
			t.Fatalf("Lend() error = %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(cfg.Data))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(cfg.Data) {
			t.Errorf("unexpected file %s next to the log", e.Name())
		}
	}

	check, err := eng.Check(ctx)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(check.Diagnostics) != 2 || check.Diagnostics[0].Kind != ledger.DoubleLend {
		t.Errorf("diagnostics = %+v, want two double lends", check.Diagnostics)
	}
}
