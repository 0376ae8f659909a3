package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/gobcf/pkg/bcf"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(guid string) *bcf.Viewpoint {
	return &bcf.Viewpoint{
		GUID: guid,
		PerspectiveCamera: &bcf.PerspectiveCamera{
			Direction:   bcf.Vector{X: 1},
			UpVector:    bcf.Vector{Z: 1},
			FieldOfView: 60,
		},
	}
}

func TestRecordAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	entry, err := s.Record(ctx, Import, "cli", sample("a"), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "ok", entry.Status)

	got, err := s.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.ViewpointGUID)
	assert.Equal(t, Import, got.Direction)
	assert.Equal(t, "cli", got.Source)
	assert.WithinDuration(t, entry.CreatedAt, got.CreatedAt, time.Microsecond)

	vp, err := got.Viewpoint()
	require.NoError(t, err)
	require.NotNil(t, vp.PerspectiveCamera)
	assert.Equal(t, 60.0, vp.PerspectiveCamera.FieldOfView)
}

func TestRecordFailure(t *testing.T) {
	s := openStore(t)
	entry, err := s.Record(context.Background(), Import, "bridge", sample("b"), errors.New("clipping step failed"))
	require.NoError(t, err)
	assert.Equal(t, "clipping step failed", entry.Status)
}

func TestListNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * 100 * time.Millisecond)
	}

	for _, guid := range []string{"1", "2", "3"} {
		_, err := s.Record(ctx, Export, "cli", sample(guid), nil)
		require.NoError(t, err)
	}

	entries, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "3", entries[0].ViewpointGUID)
	assert.Equal(t, "1", entries[2].ViewpointGUID)

	entries, err = s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.Record(ctx, Import, "inbox", sample("x"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordNil(t *testing.T) {
	s := openStore(t)
	_, err := s.Record(context.Background(), Export, "cli", nil, nil)
	assert.Error(t, err)
}
