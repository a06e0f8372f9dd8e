//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/lightning-report-etl/internal/adapter/kafka"
	"github.com/couchcryptid/lightning-report-etl/internal/config"
	"github.com/couchcryptid/lightning-report-etl/internal/domain"
	"github.com/couchcryptid/lightning-report-etl/internal/observability"
	"github.com/couchcryptid/lightning-report-etl/internal/pipeline"
)

const testTopic = "test-strikes"

const feed2020 = `Time Months Year Day Latitude Longitude
2020-152T13:04:05.123Z [Jun 2020] 152 40.1000, 44.5000)
2020-153T02:10:00.5Z [Jun 2020] 153 39.5000, 45.2500)
2020-201T11:00:00.0Z [Jul 2020] 201 52.0000, 13.4000)
`

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("lightning-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

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
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPipelinePublishesToKafka runs BuildDataset with the Kafka writer attached
// and reads the published strikes back.
func TestPipelinePublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := config.DefaultConfig()
	fetcher := &stubFetcher{body: feed2020}
	metrics := observability.NewMetrics()
	logger := observability.DiscardLogger()

	writer := kafka.NewWriter([]string{broker}, testTopic, logger, metrics)
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(fetcher, logger, metrics).WithPublisher(writer)
	ds, err := p.BuildDataset(ctx, []config.Feed{{Year: 2020, Source: "stub"}}, cfg.Region)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Count(2020))

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = reader.Close() })

	for i, want := range ds[2020] {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := reader.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read message %d", i)

		assert.Equal(t, domain.StrikeID(2020, want), string(msg.Key))

		var rec kafka.StrikeRecord
		require.NoError(t, json.Unmarshal(msg.Value, &rec))
		assert.Equal(t, want.Hour, rec.Hour)
		assert.Equal(t, want.Month, rec.Month)
		assert.InDelta(t, want.Lat, rec.Lat, 1e-9)
		assert.InDelta(t, want.Lon, rec.Lon, 1e-9)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "2020", headers["year"])
		assert.NotEmpty(t, headers["processed_at"])
	}
}

type stubFetcher struct {
	body string
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.body)), nil
}
