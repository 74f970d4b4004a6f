package testutil

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/pkg/errors"
	"github.com/pseudomuto/gatekeeper/pkg/docker"
	"github.com/stretchr/testify/require"
)

// ErrContainerNotFound is the default inspect error returned by the mock
// Docker client, mimicking a daemon that knows nothing about the container.
var ErrContainerNotFound = errors.New("container not found")

// SkipIfNoDocker skips the test if Docker is not available
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	// Check if Docker binary exists
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	// Check if Docker daemon is running
	cmd := exec.CommandContext(t.Context(), "docker", "ps")
	if err := cmd.Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}

// SetupMySQLContainer creates a MySQL container for testing with the given
// database precreated. An empty version uses the default. The container is
// not started; cleanup is registered.
func SetupMySQLContainer(t *testing.T, version, database string) *docker.MySQLContainer {
	t.Helper()

	SkipIfNoDocker(t)

	mysqlContainer := docker.NewWithOptions(docker.DockerOptions{
		Version:  version,
		Database: database,
	})

	t.Cleanup(func() {
		_ = mysqlContainer.Stop(context.Background())
	})

	return mysqlContainer
}

// StartMySQLContainer starts a MySQL container and returns it along with the
// host and mapped port for connecting as root.
func StartMySQLContainer(t *testing.T, version, database string) (*docker.MySQLContainer, string, int) {
	t.Helper()

	mysqlContainer := SetupMySQLContainer(t, version, database)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	require.NoError(t, mysqlContainer.Start(ctx), "Failed to start MySQL container")

	host, port, err := mysqlContainer.HostPort(ctx)
	require.NoError(t, err, "Failed to get container address")

	return mysqlContainer, host, port
}

// MockDockerClient is a test double for docker.DockerClient. Each method
// delegates to the corresponding func field, so tests can observe and
// control individual Docker operations.
type MockDockerClient struct {
	ImagePullFunc        func(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreateFunc  func(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *v1.Platform, containerName string) (container.CreateResponse, error)
	ContainerStartFunc   func(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerListFunc    func(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerStopFunc    func(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemoveFunc  func(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerInspectFunc func(ctx context.Context, containerID string) (container.InspectResponse, error)
}

// NewMockDockerClient creates a mock Docker client with benign defaults: every
// operation succeeds, listings are empty, and inspect reports the container as
// missing.
func NewMockDockerClient() *MockDockerClient {
	return &MockDockerClient{
		ImagePullFunc: func(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("pulling image")), nil
		},
		ContainerCreateFunc: func(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *v1.Platform, containerName string) (container.CreateResponse, error) {
			return container.CreateResponse{ID: "mock-container-id"}, nil
		},
		ContainerStartFunc: func(ctx context.Context, containerID string, options container.StartOptions) error {
			return nil
		},
		ContainerListFunc: func(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
			return []container.Summary{}, nil
		},
		ContainerStopFunc: func(ctx context.Context, containerID string, options container.StopOptions) error {
			return nil
		},
		ContainerRemoveFunc: func(ctx context.Context, containerID string, options container.RemoveOptions) error {
			return nil
		},
		ContainerInspectFunc: func(ctx context.Context, containerID string) (container.InspectResponse, error) {
			return container.InspectResponse{}, ErrContainerNotFound
		},
	}
}

// ImagePull implements docker.DockerClient
func (m *MockDockerClient) ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error) {
	if m.ImagePullFunc != nil {
		return m.ImagePullFunc(ctx, refStr, options)
	}

	return io.NopCloser(strings.NewReader("pulling image")), nil
}

// ContainerCreate implements docker.DockerClient
func (m *MockDockerClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *v1.Platform, containerName string) (container.CreateResponse, error) {
	if m.ContainerCreateFunc != nil {
		return m.ContainerCreateFunc(ctx, config, hostConfig, networkingConfig, platform, containerName)
	}

	return container.CreateResponse{ID: "mock-container-id"}, nil
}

// ContainerStart implements docker.DockerClient
func (m *MockDockerClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	if m.ContainerStartFunc != nil {
		return m.ContainerStartFunc(ctx, containerID, options)
	}

	return nil
}

// ContainerList implements docker.DockerClient
func (m *MockDockerClient) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	if m.ContainerListFunc != nil {
		return m.ContainerListFunc(ctx, options)
	}

	return []container.Summary{}, nil
}

// ContainerStop implements docker.DockerClient
func (m *MockDockerClient) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	if m.ContainerStopFunc != nil {
		return m.ContainerStopFunc(ctx, containerID, options)
	}

	return nil
}

// ContainerRemove implements docker.DockerClient
func (m *MockDockerClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	if m.ContainerRemoveFunc != nil {
		return m.ContainerRemoveFunc(ctx, containerID, options)
	}

	return nil
}

// ContainerInspect implements docker.DockerClient
func (m *MockDockerClient) ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error) {
	if m.ContainerInspectFunc != nil {
		return m.ContainerInspectFunc(ctx, containerID)
	}

	return container.InspectResponse{}, ErrContainerNotFound
}
