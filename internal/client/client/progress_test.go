package client

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, percent(0, 100))
	assert.Equal(t, 50, percent(1, 2))
	assert.Equal(t, 33, percent(1, 3))
	assert.Equal(t, 67, percent(2, 3))
	assert.Equal(t, 100, percent(100, 100))
	assert.Equal(t, 100, percent(150, 100))
	assert.Equal(t, 0, percent(10, 0))
}

func TestProgressTracker_MonotonicAndSilencedAfterFinish(t *testing.T) {
	var got []int
	p := newProgressTracker(10, func(v int) { got = append(got, v) })

	p.add(3)
	p.add(0)
	p.add(3)
	p.finish(true)
	p.add(4)
	p.finish(true)

	assert.Equal(t, []int{30, 60, 100}, got)
}

func TestProgressTracker_FailureDoesNotForceHundred(t *testing.T) {
	var got []int
	p := newProgressTracker(10, func(v int) { got = append(got, v) })

	p.add(5)
	p.finish(false)

	assert.Equal(t, []int{50}, got)
}

func TestProgressReader_CountsBytes(t *testing.T) {
	var got []int
	tracker := newProgressTracker(4, func(v int) { got = append(got, v) })
	r := &progressReader{r: bytes.NewReader([]byte("abcd")), tracker: tracker}

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(b))
	require.NotEmpty(t, got)
	assert.Equal(t, 100, got[len(got)-1])
}
