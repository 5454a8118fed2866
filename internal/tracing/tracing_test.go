package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInit_EmptyEndpointIsNoop(t *testing.T) {
	shutdown, err := Init("", "gophnotes-test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_ReturnsUsableSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test", attribute.String("k", "v"))
	defer span.End()

	require.NotNil(t, ctx)
	boom := errors.New("boom")
	assert.Equal(t, boom, RecordError(span, boom))
	assert.NoError(t, RecordError(span, nil))
}
