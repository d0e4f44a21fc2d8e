package cart

import (
	"context"
	"os"
	"testing"

	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const skipIntegrationTests = "STOREFRONT_SKIP_INTEGRATION_TESTS"

// RedisStorageSuite is a test suite for the Redis-backed slot storage.
type RedisStorageSuite struct {
	suite.Suite
	redisContainer *tcredis.RedisContainer
	client         *goredis.Client
	storage        Storage
	ctx            context.Context
}

// SetupSuite starts a Redis container and connects a client to it.
func (s *RedisStorageSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.redisContainer, err = tcredis.Run(s.ctx, "redis:7.4-alpine")
	require.NoError(s.T(), err, "failed to start redis container")

	connStr, err := s.redisContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err, "failed to get redis connection string")

	opts, err := goredis.ParseURL(connStr)
	require.NoError(s.T(), err, "failed to parse redis connection string")

	s.client = goredis.NewClient(opts)
	require.NoError(s.T(), s.client.Ping(s.ctx).Err(), "failed to ping redis")

	s.storage = NewRedisStorage(s.client)
}

// TearDownSuite closes the client and terminates the container.
func (s *RedisStorageSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.redisContainer != nil {
		require.NoError(s.T(), s.redisContainer.Terminate(s.ctx))
	}
}

// SetupTest starts every test from an empty keyspace.
func (s *RedisStorageSuite) SetupTest() {
	require.NoError(s.T(), s.client.FlushAll(s.ctx).Err())
}

func (s *RedisStorageSuite) TestLoad_MissingSlot() {
	_, err := s.storage.Load(s.ctx, Slot)
	s.Require().ErrorIs(err, ErrSlotNotFound)
}

func (s *RedisStorageSuite) TestSaveLoad_RoundTrip() {
	blob := []byte(`[{"product":{"id":1},"quantity":2}]`)
	s.Require().NoError(s.storage.Save(s.ctx, Slot, blob))

	data, err := s.storage.Load(s.ctx, Slot)
	s.Require().NoError(err)
	s.Require().Equal(blob, data)
}

func (s *RedisStorageSuite) TestSave_LastWriteWins() {
	s.Require().NoError(s.storage.Save(s.ctx, Slot, []byte(`["first"]`)))
	s.Require().NoError(s.storage.Save(s.ctx, Slot, []byte(`["second"]`)))

	data, err := s.storage.Load(s.ctx, Slot)
	s.Require().NoError(err)
	s.Require().Equal([]byte(`["second"]`), data)
}

func TestRedisStorageSuite(t *testing.T) {
	if os.Getenv(skipIntegrationTests) != "" {
		t.Skip("skipping integration tests")
	}
	suite.Run(t, new(RedisStorageSuite))
}
