package redis

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
)

var (
	testRedisURL   string
	redisContainer testcontainers.Container
)

func TestMain(m *testing.M) {
	flag.Parse()

	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	redisContainer, err = redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start redis container: %v\n", err)
		os.Exit(1)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis endpoint: %v\n", err)
		os.Exit(1)
	}
	testRedisURL = "redis://" + endpoint

	code := m.Run()

	if err := redisContainer.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate redis container: %v\n", err)
	}
	os.Exit(code)
}

func setupTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, testRedisURL, metrics.NewStorageMetrics(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}

	if err := client.FlushAll(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestNewClient_Connects(t *testing.T) {
	client := setupTestClient(t)
	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not-a-url", metrics.NewStorageMetrics(prometheus.NewRegistry()))
	assert.Error(t, err)
}
