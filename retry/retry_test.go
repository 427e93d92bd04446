package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ridge/karst/test"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	ctx := test.Context(t)
	config := FixedConfig{}

	count := 0
	err := Do(ctx, config, func() error {
		count++
		if count == 10 {
			return errors.New("ten")
		}
		return Retriable(fmt.Errorf("%d", count))
	})
	require.EqualError(t, err, "ten")
	require.Equal(t, 10, count)

	count = 0
	ret, err := Do1(ctx, config, func() (int, error) {
		count++
		if count == 5 {
			return 5, errors.New("five")
		}
		return count, Retriable(fmt.Errorf("%d", count))
	})
	require.EqualError(t, err, "five")
	require.Equal(t, 5, ret)
}

func TestDoStopsOnSuccess(t *testing.T) {
	ctx := test.Context(t)

	count := 0
	require.NoError(t, Do(ctx, FixedConfig{}, func() error {
		count++
		if count < 3 {
			return Retriable(errors.New("not yet"))
		}
		return nil
	}))
	require.Equal(t, 3, count)
}

func TestDoMaxAttempts(t *testing.T) {
	ctx := test.Context(t)

	count := 0
	err := Do(ctx, FixedConfig{MaxAttempts: 4}, func() error {
		count++
		return Retriable(errors.New("again"))
	})
	require.EqualError(t, err, "again")
	require.Equal(t, 4, count)
}

func TestDoCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(test.Context(t))

	count := 0
	err := Do(ctx, FixedConfig{}, func() error {
		count++
		cancel()
		return Retriable(ctx.Err())
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, count)
}
