package events

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BasketMint/internal/model"
)

func TestSQLiteRecorder_RecordAndHistory(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "events.db"), nil)
	require.NoError(t, err)
	defer rec.Close()

	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rec.Publish(model.Event{Kind: model.EventFundCreated, FundID: "f1", Minimum: decimal.RequireFromString("43.75"), TierLabel: "Ultra High", At: at})
	rec.Publish(model.Event{Kind: model.EventDepositRecorded, FundID: "f1", Contributor: "alice", Asset: "A",
		Amount: decimal.NewFromInt(300), Contribution: decimal.NewFromInt(600), Value: decimal.NewFromInt(900), At: at.Add(time.Second)})
	rec.Publish(model.Event{Kind: model.EventDepositRecorded, FundID: "f2", Contributor: "bob", At: at})

	hist, err := rec.History("f1")
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, model.EventFundCreated, hist[0].Kind)
	assert.True(t, hist[0].Minimum.Equal(decimal.RequireFromString("43.75")))
	assert.Equal(t, "Ultra High", hist[0].TierLabel)
	assert.True(t, hist[0].At.Equal(at))
	assert.Equal(t, "alice", hist[1].Contributor)
	assert.True(t, hist[1].Amount.Equal(decimal.NewFromInt(300)))
	assert.True(t, hist[1].Contribution.Equal(decimal.NewFromInt(600)))
	assert.True(t, hist[1].Value.Equal(decimal.NewFromInt(900)))
}

func TestMulti_FansOutInOrder(t *testing.T) {
	var got []string
	m := Multi{
		Func(func(e model.Event) { got = append(got, "a:"+e.FundID) }),
		Noop{},
		Func(func(e model.Event) { got = append(got, "b:"+e.FundID) }),
	}
	m.Publish(model.Event{FundID: "x"})
	assert.Equal(t, []string{"a:x", "b:x"}, got)
}
