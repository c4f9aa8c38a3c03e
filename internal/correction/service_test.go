package correction

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCorrector struct {
	calls atomic.Int32
}

func (c *countingCorrector) Correct(_ context.Context, text string) (string, error) {
	c.calls.Add(1)
	return text, nil
}

type closingCorrector struct {
	countingCorrector
	closed bool
}

func (c *closingCorrector) Close() error {
	c.closed = true
	return nil
}

func TestServiceBuildsCorrectorOncePerLanguage(t *testing.T) {
	var builds atomic.Int32
	svc := NewService(func(language string) (Corrector, error) {
		builds.Add(1)
		return &countingCorrector{}, nil
	}, 0)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.Correct(ctx, "hello", "en")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), builds.Load())

	_, err := svc.Correct(ctx, "hallo", "de")
	require.NoError(t, err)
	assert.Equal(t, int32(2), builds.Load())
}

func TestServiceDoesNotCacheFailedBuilds(t *testing.T) {
	var builds atomic.Int32
	svc := NewService(func(language string) (Corrector, error) {
		if builds.Add(1) == 1 {
			return nil, errors.New("model unavailable")
		}
		return &countingCorrector{}, nil
	}, 0)

	ctx := context.Background()
	_, err := svc.Correct(ctx, "hello", "en")
	require.Error(t, err)

	// The next call retries the build instead of returning a cached error.
	_, err = svc.Correct(ctx, "hello", "en")
	require.NoError(t, err)
	assert.Equal(t, int32(2), builds.Load())
}

func TestServiceAppliesTimeout(t *testing.T) {
	svc := NewService(func(language string) (Corrector, error) {
		return corrFunc(func(ctx context.Context, text string) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(5 * time.Second):
				return text, nil
			}
		}), nil
	}, 20*time.Millisecond)

	_, err := svc.Correct(context.Background(), "slow", "en")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServiceCloseReleasesCorrectors(t *testing.T) {
	closing := &closingCorrector{}
	svc := NewService(func(language string) (Corrector, error) {
		return closing, nil
	}, 0)

	_, err := svc.Correct(context.Background(), "hello", "en")
	require.NoError(t, err)

	require.NoError(t, svc.Close())
	assert.True(t, closing.closed)
}

// corrFunc adapts a function to the Corrector interface.
type corrFunc func(ctx context.Context, text string) (string, error)

func (f corrFunc) Correct(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}
