package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ourcodingkiddos/backend/config"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.TelemetryConfig{Enabled: false}, "test", zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_Stdout(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.TelemetryConfig{
		Enabled:     true,
		Exporter:    "stdout",
		ServiceName: "ock-test",
	}, "test", zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), &config.TelemetryConfig{Enabled: true, Exporter: "zipkin"}, "test", zap.NewNop())
	assert.Error(t, err)
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 1.0, sampleRatio(0))
	assert.Equal(t, 1.0, sampleRatio(3))
	assert.Equal(t, 0.25, sampleRatio(0.25))
}
