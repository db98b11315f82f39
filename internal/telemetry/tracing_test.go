package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/rickgao/fred-data/internal/config"
)

func TestSetupNone(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(&buf, "fredread", config.TracingConfig{Exporter: "none"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestSetupUnknown(t *testing.T) {
	_, err := Setup(&bytes.Buffer{}, "fredread", config.TracingConfig{Exporter: "jaeger"})
	assert.EqualError(t, err, "unsupported trace exporter: jaeger")
}

func TestSetupStdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	var buf bytes.Buffer
	shutdown, err := Setup(&buf, "fredread", config.TracingConfig{Exporter: "stdout", SampleRatio: 1})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "fred.Read")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name": "fred.Read"`)
	assert.Contains(t, buf.String(), "fredread")
}
