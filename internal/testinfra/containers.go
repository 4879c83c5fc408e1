//go:build integration

// Package testinfra starts throwaway Redis and Postgres containers for
// repository integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	RedisImage    = "redis:7-alpine"
	PostgresImage = "postgres:16-alpine"

	redisPort    nat.Port = "6379/tcp"
	postgresPort nat.Port = "5432/tcp"

	startTimeout = 60 * time.Second
)

// SkipIfNoDocker skips the test if Docker is not available.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// StartRedis returns the host:port of a fresh Redis. The container is
// terminated when the test ends.
func StartRedis(t *testing.T) string {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        RedisImage,
			ExposedPorts: []string{string(redisPort)},
			WaitingFor:   wait.ForListeningPort(redisPort).WithStartupTimeout(startTimeout),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("create redis container: %v", err)
	}
	t.Cleanup(func() { cleanup(t, c) })

	return endpoint(t, c, redisPort)
}

// StartPostgres returns a DSN for a fresh Postgres database.
func StartPostgres(t *testing.T) string {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        PostgresImage,
			ExposedPorts: []string{string(postgresPort)},
			Env: map[string]string{
				"POSTGRES_USER":     "reco",
				"POSTGRES_PASSWORD": "reco",
				"POSTGRES_DB":       "reco",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(postgresPort),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithStartupTimeout(startTimeout),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("create postgres container: %v", err)
	}
	t.Cleanup(func() { cleanup(t, c) })

	return fmt.Sprintf("postgres://reco:reco@%s/reco?sslmode=disable", endpoint(t, c, postgresPort))
}

func endpoint(t *testing.T, c testcontainers.Container, port nat.Port) string {
	t.Helper()
	ctx := context.Background()

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("get mapped port: %v", err)
	}
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

func cleanup(t *testing.T, c testcontainers.Container) {
	if err := c.Terminate(context.Background()); err != nil {
		t.Logf("Warning: failed to terminate container: %v", err)
	}
}
