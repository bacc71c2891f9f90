package stores

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/lendlog/internal/fsops"
	"github.com/danieljhkim/lendlog/internal/ledger"
)

var jst = time.FixedZone("UTC+09", 9*3600)

func op(seq int64, k ledger.Kind) ledger.Operation {
	return ledger.Operation{
		Seq:  seq,
		Time: time.Date(2021, 1, 23, 10, int(seq), 0, 0, jst),
		Kind: k,
	}
}

func sampleOps() []ledger.Operation {
	return []ledger.Operation{
		op(1, ledger.Lend{Item: "0001", Destination: "12"}),
		op(2, ledger.Return{Item: "0001", Destination: "12"}),
		op(3, ledger.Lend{Item: "0002"}),
		op(4, ledger.Edit{Target: 3, NewItem: "0003", NewDestination: "7"}),
		op(5, ledger.Remove{Target: 2}),
	}
}

func TestCSVStore_LoadMissingFileIsEmpty(t *testing.T) {
	s := NewCSVStore(fsops.NewMemFS(), "/data/log.csv")

	ops, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestCSVStore_AppendThenLoad(t *testing.T) {
	fs := fsops.NewMemFS()
	s := NewCSVStore(fs, "/data/log.csv")
	ctx := context.Background()

	all := sampleOps()
	require.NoError(t, s.Append(ctx, all[:2]))
	require.NoError(t, s.Append(ctx, all[2:]))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(all))
	for i := range all {
		assert.Equal(t, all[i].Seq, got[i].Seq)
		assert.Equal(t, all[i].Kind, got[i].Kind)
		assert.True(t, all[i].Time.Equal(got[i].Time), "time of %d", all[i].Seq)
	}

	data, err := fs.ReadFile("/data/log.csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 1+len(all))
	assert.Equal(t, "timestamp,kind,item,destination,target,new_item,new_destination,seq", lines[0])
	assert.Equal(t, "2021-01-23T10:04:00+09:00,Edit,,,3,0003,7,4", lines[4])
	assert.Equal(t, 2, fs.Writes)
}

func TestCSVStore_AppendRejectsDuplicateSeq(t *testing.T) {
	fs := fsops.NewMemFS()
	s := NewCSVStore(fs, "/data/log.csv")
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, sampleOps()[:1]))
	err := s.Append(ctx, []ledger.Operation{op(2, ledger.Lend{Item: "A"}), op(1, ledger.Lend{Item: "B"})})
	require.ErrorIs(t, err, ErrDuplicateSeq)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1, "a rejected batch must not be partially written")
}

func TestCSVStore_FailedWriteKeepsLog(t *testing.T) {
	fs := fsops.NewMemFS()
	s := NewCSVStore(fs, "/data/log.csv")
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, sampleOps()[:1]))

	fs.WriteErr = errors.New("disk full")
	require.Error(t, s.Append(ctx, sampleOps()[1:]))

	fs.WriteErr = nil
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCSVStore_ReadsLegacyFile(t *testing.T) {
	legacy := strings.Join([]string{
		"操作時刻,どの種類の操作か,品名,貸出先,削除・編集する先の操作番号,編集後の品名,編集後の貸出先,操作番号",
		"2021-01-09T10:00:00.123+09:00,Lend,0001,12,,,,1",
		"2021-01-09T10:05:00+09:00,RETURN,0001,,,,,2",
		"2021-01-09T10:06:00+09:00,Edit,,30,1,0002,,3",
		"2021-01-09T10:07:00+09:00,remove,,,2,,,4",
	}, "\n")
	fs := fsops.NewMemFS()
	fs.SetFile("/data/old.csv", []byte(legacy))

	got, err := NewCSVStore(fs, "/data/old.csv").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, ledger.Lend{Item: "0001", Destination: "12"}, got[0].Kind)
	assert.Equal(t, ledger.Return{Item: "0001"}, got[1].Kind)
	assert.Equal(t, ledger.Edit{Target: 1, NewItem: "0002", NewDestination: "30"}, got[2].Kind)
	assert.Equal(t, ledger.Remove{Target: 2}, got[3].Kind)
}

func TestCSVStore_AppendToFileWithoutTrailingNewline(t *testing.T) {
	fs := fsops.NewMemFS()
	fs.SetFile("/data/log.csv", []byte("h1,h2,h3,h4,h5,h6,h7,h8\n2021-01-09T10:00:00+09:00,Lend,A,,,,,1"))
	s := NewCSVStore(fs, "/data/log.csv")

	require.NoError(t, s.Append(context.Background(), []ledger.Operation{op(2, ledger.Return{Item: "A"})}))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[1].Seq)
}

func TestCSVStore_AppendToBlankFileWritesHeader(t *testing.T) {
	for _, blank := range []string{"\n", "  \r\n\n"} {
		fs := fsops.NewMemFS()
		fs.SetFile("/data/log.csv", []byte(blank))
		s := NewCSVStore(fs, "/data/log.csv")
		ctx := context.Background()

		require.NoError(t, s.Append(ctx, []ledger.Operation{op(1, ledger.Lend{Item: "A", Destination: "1"})}))
		got, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), ledger.NextSeq(got))

		require.NoError(t, s.Append(ctx, []ledger.Operation{op(2, ledger.Lend{Item: "B", Destination: "1"})}))
		got, err = s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "A", got[0].Item())
		assert.Equal(t, "B", got[1].Item())

		data, err := fs.ReadFile("/data/log.csv")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), strings.Join(header, ",")+"\n"))
	}
}

func TestCSVStore_MalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"bad timestamp", "yesterday,Lend,A,,,,,1", "invalid timestamp"},
		{"bad seq", "2021-01-09T10:00:00+09:00,Lend,A,,,,,one", "invalid sequence number"},
		{"bad kind", "2021-01-09T10:00:00+09:00,Borrow,A,,,,,1", "unknown operation kind"},
		{"bad target", "2021-01-09T10:00:00+09:00,Remove,,,x,,,1", "invalid target"},
		{"short row", "2021-01-09T10:00:00+09:00,Lend,A", "expected 8 columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := fsops.NewMemFS()
			fs.SetFile("/log.csv", []byte(strings.Join(header, ",")+"\n"+tt.row+"\n"))

			_, err := NewCSVStore(fs, "/log.csv").Load(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCSVStore_RealFilesystem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event", "log.csv")
	s := NewCSVStore(fsops.NewRealFS(), path)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, sampleOps()))
	_, err := os.Stat(path)
	require.NoError(t, err)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, len(sampleOps()))
	assert.Equal(t, path, s.Path())
	assert.NoError(t, s.Close())
}

func TestCSVStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewCSVStore(fsops.NewMemFS(), "/log.csv")
	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Append(ctx, sampleOps()), context.Canceled)
}
