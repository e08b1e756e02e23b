package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"TenangChat/internal/session"
)

func TestKeyIsStable(t *testing.T) {
	turns := []session.Turn{
		{Role: session.RoleUser, Text: "halo", Timestamp: time.Now()},
		{Role: session.RoleAssistant, Text: "hai"},
	}
	require.Equal(t, Key(turns), Key(turns))
}

func TestKeyIgnoresTimestamps(t *testing.T) {
	a := []session.Turn{{Role: session.RoleUser, Text: "halo", Timestamp: time.Now()}}
	b := []session.Turn{{Role: session.RoleUser, Text: "halo", Timestamp: time.Now().Add(time.Hour)}}
	require.Equal(t, Key(a), Key(b))
}

func TestKeyDependsOnRoleAndText(t *testing.T) {
	base := []session.Turn{{Role: session.RoleUser, Text: "halo"}}
	otherText := []session.Turn{{Role: session.RoleUser, Text: "halo!"}}
	otherRole := []session.Turn{{Role: session.RoleAssistant, Text: "halo"}}

	require.NotEqual(t, Key(base), Key(otherText))
	require.NotEqual(t, Key(base), Key(otherRole))
}
