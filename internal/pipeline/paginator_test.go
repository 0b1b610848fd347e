package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	p := NewPaginator(10)
	require.Equal(t, 0, p.TotalPages(0))
	require.Equal(t, 1, p.TotalPages(1))
	require.Equal(t, 1, p.TotalPages(10))
	require.Equal(t, 2, p.TotalPages(11))
	require.Equal(t, 3, p.TotalPages(25))
}

func TestSliceClampsToAvailableRecords(t *testing.T) {
	p := NewPaginator(10)
	records := someRecords(25)

	p.GoTo(2, len(records))
	page := p.Slice(records)
	require.Equal(t, 2, page.Index)
	require.Len(t, page.Items, 5)
	require.Equal(t, "visit-20", page.Items[0].ID)
}

func TestGoToClampsOutOfRangeIndices(t *testing.T) {
	p := NewPaginator(10)

	p.GoTo(-3, 25)
	require.Equal(t, 0, p.Index())

	p.GoTo(99, 25)
	require.Equal(t, 2, p.Index())

	// Same index again is a no-op, not an error.
	p.GoTo(2, 25)
	require.Equal(t, 2, p.Index())

	p.GoTo(1, 0)
	require.Equal(t, 0, p.Index())
}

func TestSliceEmptySet(t *testing.T) {
	p := NewPaginator(10)
	page := p.Slice(nil)
	require.Equal(t, 0, page.TotalPages)
	require.Empty(t, page.Items)
}
