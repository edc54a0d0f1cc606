package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/SAP-F-2025/assessment-session/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonCache mimics redisCache's JSON round trip without a server
type jsonCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newJSONCache() *jsonCache {
	return &jsonCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *jsonCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	c.ttls[key] = ttl
	return nil
}

func (c *jsonCache) Get(_ context.Context, key string, dest interface{}) error {
	b, ok := c.data[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (c *jsonCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *jsonCache) DeletePattern(_ context.Context, _ string) error { return nil }

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newJSONCache()
	store := NewSnapshotStore(c, 2*time.Hour)

	qs := []session.Question{
		session.MultipleChoice{ID: 1, Correct: []string{"a"}},
		session.FreeResponse{ID: 2},
	}
	s, err := session.New(5, qs, 90)
	require.NoError(t, err)
	require.NoError(t, s.SetAnswer(1, session.Choice("a")))
	require.NoError(t, s.SetAnswer(2, session.Text("essay")))
	_, err = s.ToggleFlag(2)
	require.NoError(t, err)
	s.Tick()

	err = store.Save(ctx, &SessionSnapshot{SessionID: "abc", StudentID: "stu", State: s.Snapshot()})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, c.ttls["session:snapshot:abc"])

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "stu", loaded.StudentID)
	assert.False(t, loaded.SavedAt.IsZero())

	restored, err := session.Restore(qs, loaded.State)
	require.NoError(t, err)
	assert.Equal(t, 89, restored.Remaining())
	assert.True(t, restored.IsFlagged(2))
	a, ok := restored.Answer(2)
	require.True(t, ok)
	assert.Equal(t, "essay", a.Value())

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemorySnapshotStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySnapshotStore()

	require.NoError(t, store.Save(ctx, &SessionSnapshot{SessionID: "x"}))
	assert.Equal(t, 1, store.Len())

	snap, err := store.Load(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", snap.SessionID)

	require.NoError(t, store.Delete(ctx, "x"))
	_, err = store.Load(ctx, "x")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
