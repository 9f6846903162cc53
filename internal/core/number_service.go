package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DefaultSeries is the number series used when none is configured.
const DefaultSeries = "INV"

// NumberService is the document number sequence authority. It must
// return a number unique across all invoices ever issued and never
// reuse one. Allocation runs inside the caller's transaction so the
// sequence increment commits or rolls back together with the issuance.
type NumberService interface {
	NextNumber(ctx context.Context, tx pgx.Tx, series string) (string, error)
}

type numberService struct{}

func NewNumberService() NumberService {
	return &numberService{}
}

// NextNumber allocates the next gapless number in the series. The
// ON CONFLICT upsert serializes concurrent issuers on the series row,
// so two invoices can never receive the same number.
func (s *numberService) NextNumber(ctx context.Context, tx pgx.Tx, series string) (string, error) {
	if series == "" {
		series = DefaultSeries
	}

	var last int64
	err := tx.QueryRow(ctx, `
		INSERT INTO invoice_sequences (series, last_number)
		VALUES ($1, 1)
		ON CONFLICT (series)
		DO UPDATE SET last_number = invoice_sequences.last_number + 1
		RETURNING last_number
	`, series).Scan(&last)
	if err != nil {
		return "", &NumberAllocationError{Err: err}
	}

	return FormatNumber(series, last), nil
}

// FormatNumber renders a sequence value as a human-facing invoice
// number, e.g. INV-000123.
func FormatNumber(series string, n int64) string {
	return fmt.Sprintf("%s-%06d", series, n)
}
