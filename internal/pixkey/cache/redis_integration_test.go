//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pixkeys/internal/pixkey/cache"
	"pixkeys/internal/pixkey/models"
	id "pixkeys/pkg/domain"
	"pixkeys/pkg/platform/sentinel"
	"pixkeys/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedis(s.redis.Client.Client, cache.WithTTL(time.Minute))
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTripAndInvalidate() {
	ctx := context.Background()
	deactivated := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	key := &models.PixKey{
		ID:            id.NewPixKeyID(),
		KeyType:       models.KeyTypePhone,
		KeyValue:      "+5511987654321",
		AccountType:   models.AccountTypeSavings,
		Account:       models.Account{Branch: 1, Number: 2},
		Owner:         models.Owner{FirstName: "Rita"},
		CreatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DeactivatedAt: &deactivated,
	}

	_, err := s.cache.Get(ctx, key.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.cache.Set(ctx, key))
	got, err := s.cache.Get(ctx, key.ID)
	s.Require().NoError(err)
	s.Equal(key, got)

	ttl, err := s.redis.Client.TTL(ctx, "pix:key:"+key.ID.String()).Result()
	s.Require().NoError(err)
	s.LessOrEqual(ttl, time.Minute)

	s.Require().NoError(s.cache.Invalidate(ctx, key.ID))
	_, err = s.cache.Get(ctx, key.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestFillAfterInvalidateIsSuppressed() {
	ctx := context.Background()
	guarded := cache.NewRedis(s.redis.Client.Client, cache.WithInvalidationGuard(300*time.Millisecond))
	key := &models.PixKey{
		ID:          id.NewPixKeyID(),
		KeyType:     models.KeyTypeCPF,
		KeyValue:    "12345678909",
		AccountType: models.AccountTypeChecking,
		Account:     models.Account{Branch: 1, Number: 2},
		Owner:       models.Owner{FirstName: "Rita"},
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	stale := key.Clone()

	// a reader loaded stale before the amend; the engine invalidates first
	s.Require().NoError(guarded.Invalidate(ctx, key.ID))
	s.Require().NoError(guarded.Set(ctx, stale))
	_, err := guarded.Get(ctx, key.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "snapshot from before the change must not be cached")

	s.Eventually(func() bool {
		if err := guarded.Set(ctx, key); err != nil {
			return false
		}
		_, err := guarded.Get(ctx, key.ID)
		return err == nil
	}, 3*time.Second, 100*time.Millisecond, "fills resume once the guard expires")
}
