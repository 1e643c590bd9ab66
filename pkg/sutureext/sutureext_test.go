package sutureext

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thejerf/suture/v4"
)

func TestOneShot(t *testing.T) {
	errBoom := errors.New("boom")

	err := OneShot(NewServiceFunc("nil", func(ctx context.Context) error { return nil })).Serve(context.Background())
	assert.ErrorIs(t, err, suture.ErrDoNotRestart)

	err = OneShot(NewServiceFunc("boom", func(ctx context.Context) error { return errBoom })).Serve(context.Background())
	assert.ErrorIs(t, err, suture.ErrDoNotRestart)
	assert.ErrorIs(t, err, errBoom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = OneShot(NewServiceFunc("stopped", func(ctx context.Context) error { return errBoom })).Serve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, suture.ErrDoNotRestart)
}

func TestSanitizeError(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, SanitizeError(ctx, nil))

	errBoom := errors.New("boom")
	assert.Equal(t, errBoom, SanitizeError(ctx, errBoom))

	err := SanitizeError(ctx, context.Canceled)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, context.Canceled, "a stale context error must not stop the service")
}
