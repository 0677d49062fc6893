//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/adapter/kafka"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/adapter/worldbank"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/config"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/dashboard"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/observability"
)

const testTopic = "test-co2-observations"

// Run with: go test -tags=integration ./internal/integration/ -v -count=1

// publishedMessage holds a deserialized message read from the snapshot topic.
type publishedMessage struct {
	Key     string
	Headers map[string]string
	Record  map[string]any
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("co2-test-cluster"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func readMessages(ctx context.Context, t *testing.T, broker string, n int) []publishedMessage {
	t.Helper()
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out := make([]publishedMessage, 0, n)
	for range n {
		msg, err := reader.ReadMessage(readCtx)
		require.NoError(t, err, "read from snapshot topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &rec))
		out = append(out, publishedMessage{Key: string(msg.Key), Headers: headers, Record: rec})
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestSnapshotPublish_EndToEnd fetches the fixture table from a fake World
// Bank API through the dashboard service and checks every kept observation
// lands on the snapshot topic.
func TestSnapshotPublish_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	page, err := os.ReadFile(filepath.Join("..", "adapter", "worldbank", "testdata", "co2_page.json"))
	require.NoError(t, err)
	countries, err := os.ReadFile(filepath.Join("..", "adapter", "worldbank", "testdata", "countries.json"))
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /country/all/indicator/{code}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(page)
	})
	mux.HandleFunc("GET /country", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(countries)
	})
	api := httptest.NewServer(mux)
	defer api.Close()

	metrics := observability.NewMetricsForTesting()
	client := worldbank.NewClient(worldbank.Options{
		BaseURL: api.URL,
		Source:  "75",
		PerPage: 20000,
		Timeout: 5 * time.Second,
	}, metrics, discardLogger())

	writer := kafka.NewWriter(&config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}, discardLogger())
	defer writer.Close()

	svc := dashboard.New(client, writer, dashboard.Options{
		Indicator: "EN.ATM.CO2E.PC",
		TTL:       time.Minute,
	}, discardLogger(), metrics)

	table, err := svc.Table(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 5, table.Len())
	require.NoError(t, svc.Wait(ctx))

	msgs := readMessages(ctx, t, broker, table.Len())

	keys := make([]string, 0, len(msgs))
	for _, m := range msgs {
		keys = append(keys, m.Key)
		assert.Equal(t, "EN.ATM.CO2E.PC", m.Headers["indicator"])
		assert.Equal(t, table.FetchedAt.Format(time.RFC3339), m.Headers["fetched_at"])
		assert.Equal(t, "EN.ATM.CO2E.PC", m.Record["indicator"])
	}
	assert.ElementsMatch(t, []string{"USA:2018", "USA:2017", "CHN:2018", "QAT:2018", "DEU:2018"}, keys)
}

// TestWriter_PublishTable verifies the writer alone round-trips a table.
func TestWriter_PublishTable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	writer := kafka.NewWriter(&config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}, discardLogger())
	defer writer.Close()

	table := domain.Table{
		Indicator: domain.Indicator{ID: "EN.ATM.CO2E.PC"},
		Source:    "75",
		FetchedAt: time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
		Observations: []domain.Observation{
			{CountryCode: "QAT", CountryName: "Qatar", Year: 2018, Value: 37.02},
		},
	}
	require.NoError(t, writer.Publish(ctx, table))

	msgs := readMessages(ctx, t, broker, 1)
	assert.Equal(t, "QAT:2018", msgs[0].Key)
	assert.Equal(t, "2024-07-01T12:00:00Z", msgs[0].Headers["fetched_at"])
	assert.Equal(t, "Qatar", msgs[0].Record["country_name"])
	assert.InDelta(t, 37.02, msgs[0].Record["value"], 1e-9)
}
