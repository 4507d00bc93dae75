package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	pixmetrics "pixkeys/internal/pixkey/metrics"
	"pixkeys/internal/pixkey/models"
	"pixkeys/internal/pixkey/service/mocks"
	id "pixkeys/pkg/domain"
	dErrors "pixkeys/pkg/domain-errors"
	"pixkeys/pkg/platform/sentinel"
)

type ResolverSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	reader   *mocks.MockReader
	cache    *mocks.MockCache
	metrics  *pixmetrics.Metrics
	resolver *Resolver
	ctx      context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.reader = mocks.NewMockReader(s.ctrl)
	s.cache = mocks.NewMockCache(s.ctrl)
	s.metrics = pixmetrics.New(prometheus.NewRegistry())
	s.ctx = context.Background()

	var err error
	s.resolver, err = NewResolver(s.reader, WithCache(s.cache), WithMetrics(s.metrics))
	s.Require().NoError(err)
}

func (s *ResolverSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ResolverSuite) TestNewResolver() {
	_, err := NewResolver(nil)
	s.Require().Error(err)
}

func (s *ResolverSuite) TestByIDCache() {
	key := activeKey(time.Now())

	s.Run("hit skips the store", func() {
		s.cache.EXPECT().Get(gomock.Any(), key.ID).Return(key, nil)

		got, err := s.resolver.ByID(s.ctx, key.ID, models.Filter{})
		s.Require().NoError(err)
		s.Equal(key.ID, got.ID)
	})

	s.Run("miss reads through and fills the cache", func() {
		s.cache.EXPECT().Get(gomock.Any(), key.ID).Return(nil, sentinel.ErrNotFound)
		s.reader.EXPECT().FindByID(gomock.Any(), key.ID).Return(key, nil)
		s.cache.EXPECT().Set(gomock.Any(), key).Return(nil)

		_, err := s.resolver.ByID(s.ctx, key.ID, models.Filter{})
		s.Require().NoError(err)
	})

	s.Run("cache failure falls back to the store", func() {
		s.cache.EXPECT().Get(gomock.Any(), key.ID).Return(nil, errors.New("redis down"))
		s.reader.EXPECT().FindByID(gomock.Any(), key.ID).Return(key, nil)
		s.cache.EXPECT().Set(gomock.Any(), key).Return(errors.New("redis down"))

		_, err := s.resolver.ByID(s.ctx, key.ID, models.Filter{})
		s.Require().NoError(err)
	})

	s.InDelta(1, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("hit")), 0)
	s.InDelta(1, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("miss")), 0)
	s.InDelta(1, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("error")), 0)
}

func (s *ResolverSuite) TestByIDRejections() {
	s.Run("other criteria are rejected before any lookup", func() {
		_, err := s.resolver.ByID(s.ctx, id.NewPixKeyID(), models.Filter{KeyValue: models.Ptr("x")})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidFilterCombination))
	})

	s.Run("nil id is a bad request", func() {
		_, err := s.resolver.ByID(s.ctx, id.PixKeyID{}, models.Filter{})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("missing key is not cached", func() {
		keyID := id.NewPixKeyID()
		s.cache.EXPECT().Get(gomock.Any(), keyID).Return(nil, sentinel.ErrNotFound)
		s.reader.EXPECT().FindByID(gomock.Any(), keyID).Return(nil, sentinel.ErrNotFound)

		_, err := s.resolver.ByID(s.ctx, keyID, models.Filter{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ResolverSuite) TestByFilters() {
	s.Run("valid filter is passed through", func() {
		f := models.Filter{Branch: models.Ptr(1234)}
		s.reader.EXPECT().FindByFilters(gomock.Any(), f).Return([]*models.PixKey{}, nil)

		got, err := s.resolver.ByFilters(s.ctx, f)
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("store fault is Unavailable", func() {
		f := models.Filter{Branch: models.Ptr(1)}
		s.reader.EXPECT().FindByFilters(gomock.Any(), f).Return(nil, errors.New("conn refused"))

		_, err := s.resolver.ByFilters(s.ctx, f)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("conflicting dates never reach the store", func() {
		now := time.Now()
		_, err := s.resolver.ByFilters(s.ctx, models.Filter{CreatedAfter: &now, DeactivatedAfter: &now})
		s.True(dErrors.HasCode(err, dErrors.CodeConflictingDateFilters))
	})
}

func (s *ResolverSuite) TestDayLookupsUseUTCBounds() {
	brt := time.FixedZone("BRT", -3*3600)
	day := time.Date(2024, 3, 1, 23, 30, 0, 0, brt) // 2024-03-02 02:30 UTC
	start := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	s.reader.EXPECT().FindByCreatedBetween(gomock.Any(), start, end).Return(nil, nil)
	_, err := s.resolver.ByCreatedOn(s.ctx, day)
	s.NoError(err)

	s.reader.EXPECT().FindByDeactivatedBetween(gomock.Any(), start, end).Return(nil, nil)
	_, err = s.resolver.ByDeactivatedOn(s.ctx, day)
	s.NoError(err)
}

func (s *ResolverSuite) TestByAccountValidates() {
	_, err := s.resolver.ByAccount(s.ctx, models.Account{Branch: 0, Number: 1})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
