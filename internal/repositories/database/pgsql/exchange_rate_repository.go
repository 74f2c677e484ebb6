package pgsql

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/apperrors"
	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/fx_rate_dashboard/internal/models"
	"github.com/SscSPs/fx_rate_dashboard/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository implements the exchange rate repository ports using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// newPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func newPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

const insertExchangeRateSQL = `
	INSERT INTO exchange_rate (rate_date, from_currency, to_currency, source, rate, fetched_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (rate_date, from_currency, to_currency, source)
	DO UPDATE SET rate = EXCLUDED.rate, fetched_at = EXCLUDED.fetched_at`

// FindRatesByDate retrieves the rates stored for a date and source.
func (r *PgxExchangeRateRepository) FindRatesByDate(ctx context.Context, date time.Time, source string) ([]domain.ExchangeRate, error) {
	query := `
		SELECT rate_date, from_currency, to_currency, source, rate, fetched_at
		FROM exchange_rate
		WHERE rate_date = $1 AND source = $2
		ORDER BY from_currency, to_currency;
	`

	rows, err := r.Pool.Query(ctx, query, domain.DateOnly(date), source)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to query exchange rates", err)
	}
	defer rows.Close()

	var modelRates []models.ExchangeRate
	for rows.Next() {
		var m models.ExchangeRate
		if err := rows.Scan(&m.RateDate, &m.FromCurrency, &m.ToCurrency, &m.Source, &m.Rate, &m.FetchedAt); err != nil {
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to scan exchange rate", err)
		}
		modelRates = append(modelRates, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "error iterating exchange rates", err)
	}

	return mapping.ToDomainExchangeRates(modelRates), nil
}

// ReplaceRatesForDate swaps the stored rates for a date and source in one transaction.
func (r *PgxExchangeRateRepository) ReplaceRatesForDate(ctx context.Context, date time.Time, source string, rates []domain.ExchangeRate) error {
	day := domain.DateOnly(date)

	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM exchange_rate WHERE rate_date = $1 AND source = $2`, day, source); err != nil {
			return apperrors.NewAppError(http.StatusInternalServerError, "failed to delete exchange rates", err)
		}
		if len(rates) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, rate := range rates {
			m := mapping.ToModelExchangeRate(rate)
			batch.Queue(insertExchangeRateSQL,
				day, strings.ToUpper(m.FromCurrency), strings.ToUpper(m.ToCurrency), source, m.Rate, m.FetchedAt,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return apperrors.NewAppError(http.StatusInternalServerError, "failed to insert exchange rates", err)
		}
		return nil
	})
}
