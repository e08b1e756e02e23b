package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetOrCreateGeneratesID(t *testing.T) {
	store := NewStore()

	id := store.GetOrCreate("")
	require.NotEmpty(t, id)

	other := store.GetOrCreate("")
	require.NotEqual(t, id, other)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	store := NewStore()

	id := store.GetOrCreate("abc")
	require.Equal(t, "abc", id)

	store.AppendTurn("abc", RoleUser, "halo")
	store.GetOrCreate("abc")

	turns, ok := store.Snapshot("abc")
	require.True(t, ok)
	require.Len(t, turns, 1)
}

func TestAppendTurnPreservesOrder(t *testing.T) {
	store := NewStore()
	id := store.GetOrCreate("")

	for i := 0; i < 5; i++ {
		store.AppendTurn(id, RoleUser, fmt.Sprintf("user %d", i))
		store.AppendTurn(id, RoleAssistant, fmt.Sprintf("assistant %d", i))
	}

	turns, ok := store.Snapshot(id)
	require.True(t, ok)
	require.Len(t, turns, 10)

	for i, turn := range turns {
		if i%2 == 0 {
			require.Equal(t, RoleUser, turn.Role)
			require.Equal(t, fmt.Sprintf("user %d", i/2), turn.Text)
		} else {
			require.Equal(t, RoleAssistant, turn.Role)
			require.Equal(t, fmt.Sprintf("assistant %d", i/2), turn.Text)
		}
	}
}

func TestSnapshotReturnsCopy(t *testing.T) {
	store := NewStore()
	id := store.GetOrCreate("")
	store.AppendTurn(id, RoleUser, "original")

	turns, ok := store.Snapshot(id)
	require.True(t, ok)
	turns[0].Text = "mutated"

	fresh, _ := store.Snapshot(id)
	require.Equal(t, "original", fresh[0].Text)
}

func TestSnapshotUnknownSession(t *testing.T) {
	store := NewStore()

	turns, ok := store.Snapshot("nope")
	require.False(t, ok)
	require.Nil(t, turns)
}

func TestInfoCountsRoles(t *testing.T) {
	store := NewStore()
	id := store.GetOrCreate("")
	store.AppendTurn(id, RoleUser, "satu")
	store.AppendTurn(id, RoleAssistant, "dua")
	store.AppendTurn(id, RoleUser, "tiga")

	info, ok := store.Info(id)
	require.True(t, ok)
	require.Equal(t, id, info.ID)
	require.Equal(t, 3, info.TurnCount)
	require.Equal(t, 2, info.UserTurns)
	require.Equal(t, 1, info.AssistantTurns)
	require.GreaterOrEqual(t, info.DurationSeconds, 0.0)
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	store := NewStore()
	id := store.GetOrCreate("")

	store.Delete("does-not-exist")

	_, ok := store.Snapshot(id)
	require.True(t, ok)
}

func TestDeleteRemovesSession(t *testing.T) {
	store := NewStore()
	id := store.GetOrCreate("")
	store.AppendTurn(id, RoleUser, "halo")

	store.Delete(id)

	_, ok := store.Snapshot(id)
	require.False(t, ok)
	require.Empty(t, store.List())
}

func TestCleanupInactive(t *testing.T) {
	store := NewStore()
	stale := store.GetOrCreate("")
	_ = stale

	time.Sleep(20 * time.Millisecond)
	fresh := store.GetOrCreate("")
	store.AppendTurn(fresh, RoleUser, "baru saja")

	removed := store.CleanupInactive(10 * time.Millisecond)
	require.Equal(t, 1, removed)

	_, ok := store.Snapshot(fresh)
	require.True(t, ok)
}

func TestConcurrentAppendsSameSession(t *testing.T) {
	store := NewStore()
	id := store.GetOrCreate("")

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				store.AppendTurn(id, RoleUser, fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	turns, ok := store.Snapshot(id)
	require.True(t, ok)
	require.Len(t, turns, writers*perWriter)
}
