package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "mifile/pkg/errors"
)

func filledPostingList(t *testing.T) *PostingList {
	t.Helper()
	l := newPostingList(4)
	for pos := 0; pos < 4; pos++ {
		require.NoError(t, l.Insert(pos, uint32(10+pos)))
	}
	require.NoError(t, l.Insert(2, 20))
	return l
}

func TestPostingList_InsertRejectsOutOfRange(t *testing.T) {
	l := newPostingList(4)
	assert.ErrorIs(t, l.Insert(-1, 1), pkgerrors.ErrInvalidPosition)
	assert.ErrorIs(t, l.Insert(4, 1), pkgerrors.ErrInvalidPosition)
	assert.Equal(t, 0, l.Len())
}

func TestPostingList_AllEntries(t *testing.T) {
	l := filledPostingList(t)
	assert.Equal(t, 5, l.Len())
	assert.Equal(t, []Posting{
		{ID: 10, Position: 0},
		{ID: 11, Position: 1},
		{ID: 12, Position: 2},
		{ID: 20, Position: 2},
		{ID: 13, Position: 3},
	}, l.AllEntries())
}

func TestPostingList_SubRange(t *testing.T) {
	l := filledPostingList(t)

	tests := []struct {
		name     string
		from, to int
		want     []uint32
	}{
		{"inner window", 1, 2, []uint32{11, 12, 20}},
		{"clipped both sides", -5, 10, []uint32{10, 11, 12, 20, 13}},
		{"single bucket", 3, 3, []uint32{13}},
		{"empty when reversed", 3, 1, nil},
		{"entirely above", 6, 9, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := l.SubRange(tt.from, tt.to)
			var ids []uint32
			for _, p := range snap.AllEntries() {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), snap.Len())
		})
	}
}

func TestPostingList_SnapshotIsImmutableAndIsolated(t *testing.T) {
	l := filledPostingList(t)
	snap := l.SubRange(0, 3)

	require.NoError(t, l.Insert(0, 99))
	require.NoError(t, l.Insert(2, 98))
	assert.Equal(t, 5, snap.Len())
	assert.Equal(t, 7, l.Len())

	assert.ErrorIs(t, snap.Insert(0, 1), errReadOnlySnapshot)

	entries := snap.AllEntries()
	entries[0].ID = 12345
	assert.Equal(t, uint32(10), snap.AllEntries()[0].ID)
	assert.Equal(t, uint32(10), l.AllEntries()[0].ID)
}

func TestPostingList_ConcurrentInsertAndSnapshot(t *testing.T) {
	l := newPostingList(8)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				assert.NoError(t, l.Insert(i%8, uint32(w*1000+i)))
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				snap := l.SubRange(0, 7)
				assert.Equal(t, snap.Len(), len(snap.AllEntries()))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, l.Len())
}
