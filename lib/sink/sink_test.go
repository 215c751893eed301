package sink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryAppendOrder(t *testing.T) {
	m := NewMemory()
	require.Zero(t, m.Len())

	for i := 1; i <= 3; i++ {
		m.Append(Sample{
			Elapsed: time.Duration(i) * time.Second,
			Voltage: float64(i),
			Current: 2 * float64(i),
		})
	}
	require.Equal(t, 3, m.Len())

	all := m.All()
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		require.Greater(t, all[i].Elapsed, all[i-1].Elapsed)
	}
}

func TestMemoryAllReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.Append(Sample{Elapsed: time.Second, Voltage: 5, Current: 1})

	all := m.All()
	all[0].Voltage = 99

	require.Equal(t, 5.0, m.All()[0].Voltage)
}
