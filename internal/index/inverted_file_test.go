package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "mifile/pkg/errors"
)

func TestInvertedFile_Insert(t *testing.T) {
	f := newInvertedFile[string](4, 2)

	id, err := f.insert("a", []RankedReference{{Ref: 3}, {Ref: 1}})
	require.NoError(t, err)
	assert.Equal(t, uint32(0), id)
	assert.Equal(t, []Posting{{ID: 0, Position: 0}}, f.postingList(3).AllEntries())
	assert.Equal(t, []Posting{{ID: 0, Position: 1}}, f.postingList(1).AllEntries())
	assert.Equal(t, "a", f.object(0))
}

func TestInvertedFile_RejectsWithoutPartialState(t *testing.T) {
	tests := []struct {
		name       string
		projection []RankedReference
	}{
		{"reference out of range", []RankedReference{{Ref: 0}, {Ref: 4}}},
		{"negative reference", []RankedReference{{Ref: 2}, {Ref: -1}}},
		{"projection longer than ki", []RankedReference{{Ref: 0}, {Ref: 1}, {Ref: 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInvertedFile[string](4, 2)
			_, err := f.insert("bad", tt.projection)
			assert.ErrorIs(t, err, pkgerrors.ErrInvalidPosition)

			assert.Zero(t, f.numObjects())
			for ref := range 4 {
				assert.Zero(t, f.postingList(ref).Len(), "reference %d", ref)
			}

			id, err := f.insert("good", []RankedReference{{Ref: 0}, {Ref: 1}})
			require.NoError(t, err)
			assert.Equal(t, uint32(0), id)
		})
	}
}
