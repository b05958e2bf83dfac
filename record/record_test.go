package record

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_lifecycle(t *testing.T) {
	var r Registry

	_, err := r.Open("gui")
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, r.Exists("gui"))
	require.Equal(t, -1, r.Refs("gui"))

	data := new(int)
	require.NoError(t, r.Create("gui", data))
	require.ErrorIs(t, r.Create("gui", data), ErrExists)

	v, err := r.Open("gui")
	require.NoError(t, err)
	assert.Same(t, data, v)
	_, err = r.Open("gui")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Refs("gui"))

	require.ErrorIs(t, r.Destroy("gui"), ErrInUse)

	require.NoError(t, r.Close("gui"))
	require.NoError(t, r.Close("gui"))
	require.ErrorIs(t, r.Close("gui"), ErrNotOpen)

	require.NoError(t, r.Destroy("gui"))
	require.False(t, r.Exists("gui"))
	require.ErrorIs(t, r.Destroy("gui"), ErrNotFound)
	require.ErrorIs(t, r.Close("gui"), ErrNotFound)
}

func TestRegistry_concurrentOpenClose(t *testing.T) {
	var r Registry
	require.NoError(t, r.Create("svc", "value"))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := r.Open("svc"); err != nil {
					t.Error(err)
					return
				}
				if err := r.Close("svc"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if refs := r.Refs("svc"); refs != 0 {
		t.Fatalf("expected 0 refs, got %d", refs)
	}
}

func TestDefault(t *testing.T) {
	if Default() != Default() {
		t.Fatal("expected the same registry")
	}
	err := Default().Close("record-test-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}
