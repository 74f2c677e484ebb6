package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/apperrors"
	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/services"
	"github.com/SscSPs/fx_rate_dashboard/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindRatesByDate(ctx context.Context, date time.Time, source string) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, date, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ReplaceRatesForDate(ctx context.Context, date time.Time, source string, rates []domain.ExchangeRate) error {
	args := m.Called(ctx, date, source, rates)
	return args.Error(0)
}

func rate(from, to, value string) domain.ExchangeRate {
	return domain.ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         decimal.RequireFromString(value),
		FetchedAt:    time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC),
	}
}

func fixedFetcher(rates []domain.ExchangeRate, err error) (services.RateFetcher, *atomic.Int32) {
	var calls atomic.Int32
	return func(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
		calls.Add(1)
		return rates, err
	}, &calls
}

// --- Test Suite ---
type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	day          time.Time
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.day = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *ExchangeRateServiceTestSuite) newService(primary, fallback services.RateFetcher) portssvc.ExchangeRateSvcFacade {
	return services.NewExchangeRateService(suite.mockRateRepo, primary, services.WithFallbackFetcher(fallback))
}

func (suite *ExchangeRateServiceTestSuite) TestGetRatesForDate_Success() {
	ctx := context.Background()
	stored := []domain.ExchangeRate{rate("USD", "INR", "83.12")}
	suite.mockRateRepo.On("FindRatesByDate", ctx, suite.day, domain.SourceDaily).Return(stored, nil).Once()

	rates, err := suite.newService(nil, nil).GetRatesForDate(ctx, suite.day.Add(15*time.Hour))

	suite.Require().NoError(err)
	suite.Equal(stored, rates)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestGetRatesForDate_EmptyIsNotNil() {
	ctx := context.Background()
	suite.mockRateRepo.On("FindRatesByDate", ctx, suite.day, domain.SourceDaily).Return(nil, nil).Once()

	rates, err := suite.newService(nil, nil).GetRatesForDate(ctx, suite.day)

	suite.Require().NoError(err)
	suite.NotNil(rates)
	suite.Empty(rates)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRatesForDate_RepoError() {
	ctx := context.Background()
	dbErr := apperrors.NewAppError(500, "failed to query exchange rates", errors.New("conn reset"))
	suite.mockRateRepo.On("FindRatesByDate", ctx, suite.day, domain.SourceDaily).Return(nil, dbErr).Once()

	_, err := suite.newService(nil, nil).GetRatesForDate(ctx, suite.day)

	suite.Require().Error(err)
	suite.ErrorIs(err, dbErr)
}

func (suite *ExchangeRateServiceTestSuite) TestIngestForDate_UsesPrimary() {
	primary, _ := fixedFetcher([]domain.ExchangeRate{rate(" usd", "inr ", "83.12"), rate("USD", "EUR", "0.92")}, nil)
	fallback, fallbackCalls := fixedFetcher(nil, nil)

	suite.mockRateRepo.On("ReplaceRatesForDate", mock.Anything, suite.day, domain.SourceDaily,
		mock.MatchedBy(func(rates []domain.ExchangeRate) bool {
			return len(rates) == 2 &&
				rates[0].FromCurrency == "USD" && rates[0].ToCurrency == "INR" &&
				rates[0].RateDate.Equal(suite.day) && rates[0].Source == domain.SourceDaily
		})).Return(nil).Once()

	count, err := suite.newService(primary, fallback).IngestForDate(context.Background(), suite.day)

	suite.Require().NoError(err)
	suite.Equal(2, count)
	suite.Equal(int32(0), fallbackCalls.Load())
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestIngestForDate_FallsBackOnEmptyPrimary() {
	primary, _ := fixedFetcher([]domain.ExchangeRate{}, nil)
	fallback, fallbackCalls := fixedFetcher([]domain.ExchangeRate{rate("USD", "SAR", "3.75")}, nil)

	suite.mockRateRepo.On("ReplaceRatesForDate", mock.Anything, suite.day, domain.SourceDaily,
		mock.MatchedBy(func(rates []domain.ExchangeRate) bool { return len(rates) == 1 })).Return(nil).Once()

	count, err := suite.newService(primary, fallback).IngestForDate(context.Background(), suite.day)

	suite.Require().NoError(err)
	suite.Equal(1, count)
	suite.Equal(int32(1), fallbackCalls.Load())
}

func (suite *ExchangeRateServiceTestSuite) TestIngestForDate_FallsBackOnPrimaryError() {
	primary, _ := fixedFetcher(nil, errors.New("dial tcp: refused"))
	fallback, _ := fixedFetcher([]domain.ExchangeRate{rate("USD", "AED", "3.6725")}, nil)

	suite.mockRateRepo.On("ReplaceRatesForDate", mock.Anything, suite.day, domain.SourceDaily, mock.Anything).Return(nil).Once()

	count, err := suite.newService(primary, fallback).IngestForDate(context.Background(), suite.day)

	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *ExchangeRateServiceTestSuite) TestIngestForDate_BothEmptyClearsDay() {
	primary, _ := fixedFetcher(nil, nil)
	fallback, _ := fixedFetcher(nil, nil)

	suite.mockRateRepo.On("ReplaceRatesForDate", mock.Anything, suite.day, domain.SourceDaily,
		mock.MatchedBy(func(rates []domain.ExchangeRate) bool { return len(rates) == 0 })).Return(nil).Once()

	count, err := suite.newService(primary, fallback).IngestForDate(context.Background(), suite.day)

	suite.Require().NoError(err)
	suite.Zero(count)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestIngestForDate_AllSourcesFailKeepsStoredRows() {
	primary, _ := fixedFetcher(nil, errors.New("primary down"))
	fallback, _ := fixedFetcher(nil, errors.New("fallback down"))

	_, err := suite.newService(primary, fallback).IngestForDate(context.Background(), suite.day)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUpstream)
	suite.Contains(err.Error(), "primary down")
	suite.Contains(err.Error(), "fallback down")
	suite.mockRateRepo.AssertNotCalled(suite.T(), "ReplaceRatesForDate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestIngestForDate_KeepsLastDuplicatePair() {
	primary, _ := fixedFetcher([]domain.ExchangeRate{rate("USD", "INR", "83.00"), rate("usd", "INR", "83.50")}, nil)

	suite.mockRateRepo.On("ReplaceRatesForDate", mock.Anything, suite.day, domain.SourceDaily,
		mock.MatchedBy(func(rates []domain.ExchangeRate) bool {
			return len(rates) == 1 && rates[0].Rate.Equal(decimal.RequireFromString("83.50"))
		})).Return(nil).Once()

	count, err := suite.newService(primary, nil).IngestForDate(context.Background(), suite.day)

	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *ExchangeRateServiceTestSuite) TestIngestForDate_RepoError() {
	primary, _ := fixedFetcher([]domain.ExchangeRate{rate("USD", "INR", "83.12")}, nil)
	suite.mockRateRepo.On("ReplaceRatesForDate", mock.Anything, suite.day, domain.SourceDaily, mock.Anything).
		Return(errors.New("tx aborted")).Once()

	_, err := suite.newService(primary, nil).IngestForDate(context.Background(), suite.day)

	suite.Require().Error(err)
	suite.Contains(err.Error(), "tx aborted")
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}

func TestIngestForDate_ConcurrentCallsShareOneIngest(t *testing.T) {
	repo := new(MockExchangeRateRepository)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	release := make(chan struct{})
	var calls atomic.Int32
	primary := func(ctx context.Context, date time.Time) ([]domain.ExchangeRate, error) {
		calls.Add(1)
		<-release
		return []domain.ExchangeRate{rate("USD", "INR", "83.12")}, nil
	}
	repo.On("ReplaceRatesForDate", mock.Anything, day, domain.SourceDaily, mock.Anything).Return(nil)

	svc := services.NewExchangeRateService(repo, primary)

	const callers = 4
	var started, wg sync.WaitGroup
	started.Add(callers)
	wg.Add(callers)
	counts := make([]int, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			started.Done()
			n, err := svc.IngestForDate(context.Background(), day)
			assert.NoError(t, err)
			counts[i] = n
		}(i)
	}
	started.Wait()
	// Give the goroutines time to reach the singleflight group.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for _, n := range counts {
		assert.Equal(t, 1, n)
	}
}
