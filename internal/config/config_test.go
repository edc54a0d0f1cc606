package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/assessment-session/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TICK_INTERVAL", "250ms")
	t.Setenv("SNAPSHOT_ENABLED", "false")
	t.Setenv("SNAPSHOT_INTERVAL_TICKS", "5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.TickInterval)
	assert.False(t, cfg.Session.SnapshotEnabled)
	assert.Equal(t, 5, cfg.Session.SnapshotIntervalTicks)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.GetKafkaBrokers())
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_TICK_INTERVAL", "not-a-duration")
	t.Setenv("SNAPSHOT_INTERVAL_TICKS", "x")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Session.TickInterval)
	assert.Equal(t, 15, cfg.Session.SnapshotIntervalTicks)
	assert.False(t, cfg.IsProduction())
}

func TestCreateEventPublisherFallsBackToMock(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, c := range []EventConfig{
		{Enabled: false, Publisher: "kafka"},
		{Enabled: true, Publisher: "mock"},
		{Enabled: true, Publisher: "carrier-pigeon"},
	} {
		p, err := c.CreateEventPublisher(logger)
		require.NoError(t, err)
		_, ok := p.(*events.MockEventPublisher)
		assert.True(t, ok, "publisher %q", c.Publisher)
	}
}
