package simulator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jagostokes/zipline-data-analytics-p1v1/internal/models"
)

func eventPayload(t *testing.T, ts time.Time) []byte {
	t.Helper()
	event := OrderCreatedEvent{
		BaseEvent:  NewBaseEvent(models.TopicOrderCreated, ts, "run_test"),
		OrderID:    1,
		Lat:        -1.95,
		Lon:        30.06,
		DistanceKm: 3.2,
		VehicleID:  2,
		Status:     models.OrderStatusScheduled,
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return payload
}

// expectedPartition mirrors the sink's local-time partitioning.
func expectedPartition(ts time.Time) string {
	local := time.Unix(ts.Unix(), 0)
	year, month, day := local.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, int(month), day, local.Hour())
}

func TestJSONOutputPartitionsByEventTime(t *testing.T) {
	dir := t.TempDir()
	sink := NewJSONOutput(dir, "events")

	ts := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, sink.WriteMessage(models.TopicOrderCreated, eventPayload(t, ts)))
	require.NoError(t, sink.WriteMessage(models.TopicOrderCreated, eventPayload(t, ts.Add(time.Minute))))
	require.NoError(t, sink.WriteMessage(models.TopicOrderCreated, eventPayload(t, ts.Add(2*time.Hour))))
	require.NoError(t, sink.Close())

	first := filepath.Join(dir, "events", models.TopicOrderCreated, expectedPartition(ts), "data.json")
	data, err := os.ReadFile(first)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)

	var event OrderCreatedEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, int64(1), event.OrderID)
	assert.Equal(t, models.TopicOrderCreated, event.EventType)

	second := filepath.Join(dir, "events", models.TopicOrderCreated, expectedPartition(ts.Add(2*time.Hour)), "data.json")
	assert.FileExists(t, second)
}

func TestCSVOutputWritesSortedHeader(t *testing.T) {
	dir := t.TempDir()
	sink := NewCSVOutput(dir, "events")

	ts := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	payload := eventPayload(t, ts)
	require.NoError(t, sink.WriteMessage(models.TopicOrderCreated, payload))
	require.NoError(t, sink.WriteMessage(models.TopicOrderCreated, payload))
	require.NoError(t, sink.Close())

	f, err := os.Open(filepath.Join(dir, "events", models.TopicOrderCreated, expectedPartition(ts), "data.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.True(t, sort.StringsAreSorted(header))
	assert.Contains(t, header, "orderId")
	assert.Contains(t, header, "timestamp")
	assert.Len(t, records[1], len(header))
}

func TestParquetOutputWritesLocalFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.OutputPath = dir
	cfg.OutputFolder = "events"
	cfg.OutputDestination = "local"

	sink, err := NewParquetOutput(cfg)
	require.NoError(t, err)

	ts := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, sink.WriteMessage(models.TopicOrderCreated, eventPayload(t, ts)))
	}
	require.Error(t, sink.WriteMessage("bogus_topic", eventPayload(t, ts)))
	require.NoError(t, sink.Close())

	info, err := os.Stat(filepath.Join(dir, "events", models.TopicOrderCreated, expectedPartition(ts), "data.parquet"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestDetermineOutputDestination(t *testing.T) {
	cfg := testConfig()
	sink, err := DetermineOutputDestination(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleOutput{}, sink)

	cfg.OutputPath = t.TempDir()
	cfg.OutputFolder = "events"

	cfg.OutputFormat = "json"
	sink, err = DetermineOutputDestination(cfg)
	require.NoError(t, err)
	assert.IsType(t, &JSONOutput{}, sink)

	cfg.OutputFormat = "csv"
	sink, err = DetermineOutputDestination(cfg)
	require.NoError(t, err)
	assert.IsType(t, &CSVOutput{}, sink)

	cfg.OutputFormat = "parquet"
	cfg.OutputDestination = "local"
	sink, err = DetermineOutputDestination(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ParquetOutput{}, sink)

	cfg.OutputFormat = "xml"
	_, err = DetermineOutputDestination(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestPartitionKeyRejectsBadPayloads(t *testing.T) {
	_, _, err := partitionKey([]byte("not json"))
	require.Error(t, err)

	_, _, err = partitionKey([]byte(`{"eventType":"x"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")
}

func TestConsoleOutputWrites(t *testing.T) {
	sink := &ConsoleOutput{}
	assert.NoError(t, sink.WriteMessage("topic", []byte(`{"a":1}`)))
	assert.NoError(t, sink.Close())
}
