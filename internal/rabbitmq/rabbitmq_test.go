package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// amqpURI возвращает адрес брокера из TEST_RABBITMQ_URL или поднимает контейнер.
func amqpURI(ctx context.Context, t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping RabbitMQ test in short mode")
	}
	if uri := os.Getenv("TEST_RABBITMQ_URL"); uri != "" {
		return uri
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3-management",
			ExposedPorts: []string{"5672/tcp"},
			Env: map[string]string{
				"RABBITMQ_DEFAULT_USER": "guest",
				"RABBITMQ_DEFAULT_PASS": "guest",
			},
			WaitingFor: wait.ForListeningPort("5672/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate rabbitmq container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func setupChannel(ctx context.Context, t *testing.T) *amqp.Channel {
	t.Helper()
	conn, err := Connect(amqpURI(ctx, t), 5, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := SetupChannel(conn, GetQueues())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func TestSetupChannel_DeclaresQueues(t *testing.T) {
	ch := setupChannel(context.Background(), t)
	for _, q := range GetQueues() {
		queue, err := ch.QueueInspect(q.QueueName)
		require.NoError(t, err)
		assert.Equal(t, q.QueueName, queue.Name)
	}
}

func TestPublisher_RoutesByKey(t *testing.T) {
	ch := setupChannel(context.Background(), t)
	_, err := ch.QueuePurge(TrialQueue, false)
	require.NoError(t, err)

	type reminder struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, NewPublisher(ch).Publish(Exchange, TrialRoutingKey, reminder{UserID: "u1"}))

	deliveries, err := ch.Consume(TrialQueue, "publisher-test", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got reminder
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, "u1", got.UserID)
		assert.Equal(t, "application/json", d.ContentType)
		assert.NotEmpty(t, d.MessageId)
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for published message")
	}
}

func TestConsumerMessage_AckAndRequeue(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ch := setupChannel(ctx, t)
	queue, err := DeclareInstanceQueue(ch, RefreshRoutingKey)
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		received []string
		failOnce = true
	)
	done := make(chan struct{})
	handler := func(body []byte) error {
		mu.Lock()
		defer mu.Unlock()
		if string(body) == `"bad"` && failOnce {
			failOnce = false
			return errors.New("transient")
		}
		received = append(received, string(body))
		if len(received) == 2 {
			close(done)
		}
		return nil
	}

	stopped, err := ConsumerMessage(ctx, newNoopLogger(), ch, queue, 2, handler)
	require.NoError(t, err)

	pub := NewPublisher(ch)
	require.NoError(t, pub.Publish(Exchange, RefreshRoutingKey, "good"))
	require.NoError(t, pub.Publish(Exchange, RefreshRoutingKey, "bad"))

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timeout waiting for messages")
	}
	cancel()
	stopped()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{`"good"`, `"bad"`}, received)
}

func TestDeclareInstanceQueue_EveryInstanceGetsEvent(t *testing.T) {
	ch := setupChannel(context.Background(), t)

	first, err := DeclareInstanceQueue(ch, RefreshRoutingKey)
	require.NoError(t, err)
	second, err := DeclareInstanceQueue(ch, RefreshRoutingKey)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.NoError(t, NewPublisher(ch).Publish(Exchange, RefreshRoutingKey, map[string]string{"user_id": "u1"}))

	for _, q := range []string{first, second} {
		require.Eventually(t, func() bool {
			_, ok, err := ch.Get(q, true)
			return err == nil && ok
		}, 10*time.Second, 100*time.Millisecond, "queue %s must receive the event", q)
	}
}
