// Package storetest holds the behaviour every store.Store implementation
// must share. Implementations call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/collocate/pkg/collocate/assoc"
	"github.com/cognicore/collocate/pkg/collocate/internalerr"
	"github.com/cognicore/collocate/pkg/collocate/ngram"
	"github.com/cognicore/collocate/pkg/collocate/store"
)

// Run exercises open() against the store contract. open must return a fresh,
// empty store for every call.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("Tables", func(t *testing.T) { testTables(t, open(t)) })
	t.Run("Runs", func(t *testing.T) { testRuns(t, open(t)) })
	t.Run("Rankings", func(t *testing.T) { testRankings(t, open(t)) })
}

func testTables(t *testing.T, st store.Store) {
	ctx := context.Background()

	_, ok, err := st.LoadTable(ctx, "ictihat", 2)
	require.NoError(t, err)
	assert.False(t, ok, "empty store should not have a table")

	bigrams := ngram.NewTable(2)
	bigrams.Counts["yüksek mahkeme"] = 3
	bigrams.Counts["genel kurul"] = 2
	require.NoError(t, st.SaveTable(ctx, "ictihat", store.CachedTable{Table: bigrams, Fingerprint: "9f2c"}))

	got, ok, err := st.LoadTable(ctx, "ictihat", 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Table.N)
	assert.Equal(t, bigrams.Counts, got.Table.Counts)
	assert.Equal(t, "9f2c", got.Fingerprint)

	// other corpus and other n stay separate
	_, ok, err = st.LoadTable(ctx, "danistay", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = st.LoadTable(ctx, "ictihat", 3)
	require.NoError(t, err)
	assert.False(t, ok)

	// saving again replaces counts and fingerprint
	replacement := ngram.NewTable(2)
	replacement.Counts["dava reddedildi"] = 1
	require.NoError(t, st.SaveTable(ctx, "ictihat", store.CachedTable{Table: replacement, Fingerprint: "a001"}))
	got, _, err = st.LoadTable(ctx, "ictihat", 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"dava reddedildi": 1}, got.Table.Counts)
	assert.Equal(t, "a001", got.Fingerprint)

	// loaded tables are copies
	got.Table.Counts["dava reddedildi"] = 99
	again, _, err := st.LoadTable(ctx, "ictihat", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Table.Get("dava reddedildi"))

	// an empty table is still a cached table
	require.NoError(t, st.SaveTable(ctx, "bos", store.CachedTable{Table: ngram.NewTable(3)}))
	empty, ok, err := st.LoadTable(ctx, "bos", 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, empty.Table.Len())
}

func testRuns(t *testing.T, st store.Store) {
	ctx := context.Background()

	first, err := st.CreateRun(ctx, store.Run{Corpus: "ictihat", Documents: 10, Tokens: 1200})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := st.CreateRun(ctx, store.Run{Corpus: "ictihat", Documents: 12, Tokens: 1500})
	require.NoError(t, err)
	assert.Less(t, first.ID, second.ID, "run ids should sort by creation")

	_, err = st.CreateRun(ctx, store.Run{Corpus: "danistay"})
	require.NoError(t, err)

	at := time.Date(2021, 1, 5, 10, 0, 0, 0, time.UTC)
	fixed, err := st.CreateRun(ctx, store.Run{ID: "manual", Corpus: "elle", CreatedAt: at})
	require.NoError(t, err)
	assert.Equal(t, "manual", fixed.ID)

	_, err = st.CreateRun(ctx, store.Run{ID: "manual", Corpus: "elle"})
	assert.ErrorIs(t, err, internalerr.ErrDuplicate)

	runs, err := st.ListRuns(ctx, "ictihat")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	assert.Equal(t, 12, runs[1].Documents)
	assert.Equal(t, int64(1500), runs[1].Tokens)

	manual, err := st.ListRuns(ctx, "elle")
	require.NoError(t, err)
	require.Len(t, manual, 1)
	assert.True(t, at.Equal(manual[0].CreatedAt))

	none, err := st.ListRuns(ctx, "yok")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testRankings(t *testing.T, st store.Store) {
	ctx := context.Background()

	run, err := st.CreateRun(ctx, store.Run{Corpus: "ictihat"})
	require.NoError(t, err)

	list := assoc.RankedList{
		{NGram: "yüksek mahkeme", Score: 33.0},
		{NGram: "genel kurul", Score: 23.9},
		{NGram: "mahkeme genel", Score: 9.2},
	}
	require.NoError(t, st.SaveRanking(ctx, run.ID, "chi_square", assoc.KindBigram, list))

	got, ok, err := st.GetRanking(ctx, run.ID, "chi_square", assoc.KindBigram)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, list, got, "rank order must survive a round trip")

	_, ok, err = st.GetRanking(ctx, run.ID, "pmi", assoc.KindBigram)
	require.NoError(t, err)
	assert.False(t, ok)

	// empty lists are stored, not treated as missing
	require.NoError(t, st.SaveRanking(ctx, run.ID, "pmi", assoc.KindBigram, assoc.RankedList{}))
	empty, ok, err := st.GetRanking(ctx, run.ID, "pmi", assoc.KindBigram)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, empty)

	// saving again replaces
	require.NoError(t, st.SaveRanking(ctx, run.ID, "chi_square", assoc.KindBigram, list[:1]))
	got, _, err = st.GetRanking(ctx, run.ID, "chi_square", assoc.KindBigram)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	err = st.SaveRanking(ctx, "missing-run", "pmi", assoc.KindBigram, list)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}
