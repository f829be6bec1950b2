package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")
	assert.Equal(t, "run-123", GetRunID(ctx))
}

func TestWithTrigger(t *testing.T) {
	ctx := WithTrigger(context.Background(), "watch")
	assert.Equal(t, "watch", GetTrigger(ctx))
}

func TestContextValues_NotPresent(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRunID(ctx))
	assert.Empty(t, GetTrigger(ctx))
}

func TestContextValues_Both(t *testing.T) {
	ctx := WithTrigger(WithRunID(context.Background(), "run-1"), "manual")

	assert.Equal(t, "run-1", GetRunID(ctx))
	assert.Equal(t, "manual", GetTrigger(ctx))
}
