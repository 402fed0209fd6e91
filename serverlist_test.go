package relay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerListRoundRobin(t *testing.T) {
	a := &Endpoint{Address: "a"}
	b := &Endpoint{Address: "b"}
	c := &Endpoint{Address: "c"}
	sl := newServerList([]*Endpoint{a, b, c})

	got := []string{
		sl.nextServer().Address,
		sl.nextServer().Address,
		sl.nextServer().Address,
		sl.nextServer().Address,
	}
	require.Equal(t, []string{"a", "b", "c", "a"}, got)
}

func TestServerListCurrentServerTracksLastNext(t *testing.T) {
	a := &Endpoint{Address: "a"}
	b := &Endpoint{Address: "b"}
	sl := newServerList([]*Endpoint{a, b})

	require.Nil(t, sl.currentServer())
	sl.nextServer()
	require.Equal(t, "a", sl.currentServer().Address)
	sl.nextServer()
	require.Equal(t, "b", sl.currentServer().Address)
}

func TestServerListNextServerPanicsOnEmpty(t *testing.T) {
	sl := newServerList(nil)
	require.Panics(t, func() { sl.nextServer() })
}

func TestEndpointRecordsSuccessAndFailureIndependently(t *testing.T) {
	e := &Endpoint{Address: "a"}
	e.RecordSuccess()
	e.RecordSuccess()
	e.RecordFailure()

	require.Equal(t, uint64(2), e.SuccessCount())
	require.Equal(t, uint64(1), e.FailureCount())
}

func TestServerListRoundRobinProperty(t *testing.T) {
	for n := 1; n <= 10; n++ {
		endpoints := make([]*Endpoint, n)
		for i := range endpoints {
			endpoints[i] = &Endpoint{Address: string(rune('a' + i))}
		}
		sl := newServerList(endpoints)

		// Walking 3*n steps should visit every endpoint exactly 3 times,
		// regardless of n.
		counts := make(map[string]int, n)
		for step := 0; step < 3*n; step++ {
			counts[sl.nextServer().Address]++
		}
		for _, e := range endpoints {
			require.Equal(t, 3, counts[e.Address], "endpoint %s visited unevenly for n=%d", e.Address, n)
		}
	}
}
