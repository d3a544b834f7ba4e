package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerhq/ledgercore/internal/apperrors"
	"github.com/ledgerhq/ledgercore/internal/core/domain"
	portsrepo "github.com/ledgerhq/ledgercore/internal/core/ports/repositories"
	"github.com/ledgerhq/ledgercore/internal/utils/pagination"
)

// pgxJournalRepository implements JournalRepositoryWithTx against Postgres,
// grounded on the teacher's journal_repository.go: pgx.Batch for bulk line
// inserts, sql.NullString for nullable FK/tax fields, base64 cursor tokens
// for pagination.
type pgxJournalRepository struct {
	BaseRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool) *pgxJournalRepository {
	return &pgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryWithTx = (*pgxJournalRepository)(nil)

const journalColumns = `journal_id, organization_id, period_id, journal_number, description, reference,
	posting_date, status, currency, hash_prev, hash_self, reversal_journal_id, original_journal_id,
	ext_uid, posted_by, posted_at, created_at, created_by, last_updated_at, last_updated_by`

const journalLineColumns = `journal_id, account_id, line_number, description, debit_amount, credit_amount,
	original_currency, original_amount, exchange_rate, tax_code, tax_amount, tax_rate`

// nullableHash maps the genesis (empty) hash to SQL NULL so a CHAR/VARCHAR
// column never space-pads or otherwise stores a non-NULL empty string that
// would read back as anything other than domain.EmptyHash.
func nullableHash(h domain.JournalHash) interface{} {
	if h == domain.EmptyHash {
		return nil
	}
	return h.String()
}

func scanJournalRow(row pgx.Row) (*domain.Journal, error) {
	var j domain.Journal
	var reference, reversalJournalID, originalJournalID, extUID, postedBy sql.NullString
	var postedAt sql.NullTime
	var hashPrev, hashSelf sql.NullString

	err := row.Scan(
		&j.JournalID, &j.OrganizationID, &j.PeriodID, &j.JournalNumber, &j.Description, &reference,
		&j.PostingDate, &j.Status, &j.Currency, &hashPrev, &hashSelf, &reversalJournalID, &originalJournalID,
		&extUID, &postedBy, &postedAt, &j.CreatedAt, &j.CreatedBy, &j.LastUpdatedAt, &j.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("journal not found", nil)
		}
		return nil, fmt.Errorf("failed to scan journal: %w", err)
	}

	j.HashPrev = domain.EmptyHash
	if hashPrev.Valid {
		j.HashPrev = domain.JournalHash(hashPrev.String)
	}
	j.HashSelf = domain.EmptyHash
	if hashSelf.Valid {
		j.HashSelf = domain.JournalHash(hashSelf.String)
	}
	if reference.Valid {
		v := reference.String
		j.Reference = &v
	}
	if reversalJournalID.Valid {
		v := reversalJournalID.String
		j.ReversalJournalID = &v
	}
	if originalJournalID.Valid {
		v := originalJournalID.String
		j.OriginalJournalID = &v
	}
	if extUID.Valid {
		v := extUID.String
		j.ExtUID = &v
	}
	if postedBy.Valid {
		v := postedBy.String
		j.PostedBy = &v
	}
	if postedAt.Valid {
		v := postedAt.Time
		j.PostedAt = &v
	}
	return &j, nil
}

func scanJournalLineRow(rows pgx.Rows) (domain.JournalLine, error) {
	var l domain.JournalLine
	var originalCurrency string
	var originalAmount, debitAmount, creditAmount, exchangeRate decimal.Decimal
	var taxCode sql.NullString
	var taxAmount, taxRate sql.NullString

	err := rows.Scan(
		&l.JournalID, &l.AccountID, &l.LineNumber, &l.Description, &debitAmount, &creditAmount,
		&originalCurrency, &originalAmount, &exchangeRate, &taxCode, &taxAmount, &taxRate,
	)
	if err != nil {
		return domain.JournalLine{}, fmt.Errorf("failed to scan journal line: %w", err)
	}

	l.DebitAmount = domain.NewAmount(debitAmount)
	l.CreditAmount = domain.NewAmount(creditAmount)
	l.ExchangeRate = exchangeRate
	money, err := domain.NewMoney(domain.NewAmount(originalAmount), originalCurrency)
	if err != nil {
		return domain.JournalLine{}, fmt.Errorf("failed to build original amount: %w", err)
	}
	l.OriginalAmount = money

	if taxCode.Valid {
		v := taxCode.String
		l.TaxCode = &v
	}
	if taxAmount.Valid {
		a, err := domain.AmountFromString(taxAmount.String)
		if err != nil {
			return domain.JournalLine{}, fmt.Errorf("failed to parse tax amount: %w", err)
		}
		l.TaxAmount = &a
	}
	if taxRate.Valid {
		d, err := decimal.NewFromString(taxRate.String)
		if err != nil {
			return domain.JournalLine{}, fmt.Errorf("failed to parse tax rate: %w", err)
		}
		l.TaxRate = &d
	}
	return l, nil
}

func (r *pgxJournalRepository) fetchLines(ctx context.Context, db DB, journalID string) ([]domain.JournalLine, error) {
	rows, err := db.Query(ctx, `SELECT `+journalLineColumns+` FROM journal_lines WHERE journal_id = $1 ORDER BY line_number ASC`, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.JournalLine
	for rows.Next() {
		l, err := scanJournalLineRow(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal lines: %w", err)
	}
	return lines, nil
}

func (r *pgxJournalRepository) FindJournalByID(ctx context.Context, organizationID, journalID string) (*domain.Journal, error) {
	row := r.DB().QueryRow(ctx, `SELECT `+journalColumns+` FROM journals WHERE organization_id = $1 AND journal_id = $2`,
		organizationID, journalID)
	j, err := scanJournalRow(row)
	if err != nil {
		return nil, err
	}
	lines, err := r.fetchLines(ctx, r.DB(), j.JournalID)
	if err != nil {
		return nil, err
	}
	j.Lines = lines
	return j, nil
}

func (r *pgxJournalRepository) FindJournalByNumber(ctx context.Context, organizationID, journalNumber string) (*domain.Journal, error) {
	row := r.DB().QueryRow(ctx, `SELECT `+journalColumns+` FROM journals WHERE organization_id = $1 AND journal_number = $2`,
		organizationID, journalNumber)
	j, err := scanJournalRow(row)
	if err != nil {
		return nil, err
	}
	lines, err := r.fetchLines(ctx, r.DB(), j.JournalID)
	if err != nil {
		return nil, err
	}
	j.Lines = lines
	return j, nil
}

func (r *pgxJournalRepository) FindByExtUID(ctx context.Context, organizationID, extUID string) (*domain.Journal, error) {
	row := r.DB().QueryRow(ctx, `SELECT `+journalColumns+` FROM journals WHERE organization_id = $1 AND ext_uid = $2`,
		organizationID, extUID)
	j, err := scanJournalRow(row)
	if err != nil {
		return nil, err
	}
	lines, err := r.fetchLines(ctx, r.DB(), j.JournalID)
	if err != nil {
		return nil, err
	}
	j.Lines = lines
	return j, nil
}

func (r *pgxJournalRepository) CountJournalNumbersWithPrefix(ctx context.Context, organizationID, prefix string) (int, error) {
	var count int
	err := r.DB().QueryRow(ctx,
		`SELECT COUNT(*) FROM journals WHERE organization_id = $1 AND journal_number LIKE $2`,
		organizationID, prefix+"-%",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count journal numbers with prefix: %w", err)
	}
	return count, nil
}

// ListJournalsByPeriod paginates on (posting_date, journal_id)
// ascending, encoding the cursor with the teacher's multi-field token codec.
func (r *pgxJournalRepository) ListJournalsByPeriod(ctx context.Context, organizationID, periodID string, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	var (
		afterDate time.Time
		afterID   string
		hasCursor bool
	)
	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("invalid pagination token: %w", err)
		}
		afterDate, err = time.Parse(time.RFC3339Nano, fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pagination token: %w", err)
		}
		afterID = fields[1]
		hasCursor = true
	}

	query := `SELECT ` + journalColumns + ` FROM journals
		WHERE organization_id = $1 AND period_id = $2`
	args := []interface{}{organizationID, periodID}
	if hasCursor {
		query += ` AND (posting_date, journal_id) > ($3, $4)`
		args = append(args, afterDate, afterID)
	}
	query += ` ORDER BY posting_date ASC, journal_id ASC LIMIT ` + fmt.Sprintf("%d", limit+1)

	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journals: %w", err)
	}
	defer rows.Close()

	var journals []domain.Journal
	for rows.Next() {
		j, err := scanJournalRow(rows)
		if err != nil {
			return nil, nil, err
		}
		journals = append(journals, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate journals: %w", err)
	}

	var next *string
	if len(journals) > limit {
		last := journals[limit-1]
		token := pagination.EncodeMultiFieldToken(last.PostingDate.UTC().Format(time.RFC3339Nano), last.JournalID)
		next = &token
		journals = journals[:limit]
	}

	for i := range journals {
		lines, err := r.fetchLines(ctx, r.DB(), journals[i].JournalID)
		if err != nil {
			return nil, nil, err
		}
		journals[i].Lines = lines
	}

	return journals, next, nil
}

// FindByDateRange paginates on (posting_date, journal_id) ascending within
// [start, end] inclusive, using the same cursor codec as ListJournalsByPeriod.
func (r *pgxJournalRepository) FindByDateRange(ctx context.Context, organizationID string, start, end time.Time, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	var (
		afterDate time.Time
		afterID   string
		hasCursor bool
	)
	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("invalid pagination token: %w", err)
		}
		afterDate, err = time.Parse(time.RFC3339Nano, fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pagination token: %w", err)
		}
		afterID = fields[1]
		hasCursor = true
	}

	query := `SELECT ` + journalColumns + ` FROM journals
		WHERE organization_id = $1 AND posting_date >= $2 AND posting_date <= $3`
	args := []interface{}{organizationID, start, end}
	if hasCursor {
		query += ` AND (posting_date, journal_id) > ($4, $5)`
		args = append(args, afterDate, afterID)
	}
	query += ` ORDER BY posting_date ASC, journal_id ASC LIMIT ` + fmt.Sprintf("%d", limit+1)

	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list journals by date range: %w", err)
	}
	defer rows.Close()

	var journals []domain.Journal
	for rows.Next() {
		j, err := scanJournalRow(rows)
		if err != nil {
			return nil, nil, err
		}
		journals = append(journals, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate journals by date range: %w", err)
	}

	var next *string
	if len(journals) > limit {
		last := journals[limit-1]
		token := pagination.EncodeMultiFieldToken(last.PostingDate.UTC().Format(time.RFC3339Nano), last.JournalID)
		next = &token
		journals = journals[:limit]
	}

	for i := range journals {
		lines, err := r.fetchLines(ctx, r.DB(), journals[i].JournalID)
		if err != nil {
			return nil, nil, err
		}
		journals[i].Lines = lines
	}

	return journals, next, nil
}

// FindPostedJournalsChronological streams posted journals in hash-chain
// order (posted_at, journal_id ascending), for HashService.VerifyOrganizationChain.
func (r *pgxJournalRepository) FindPostedJournalsChronological(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	var (
		afterPosted time.Time
		afterID     string
		hasCursor   bool
	)
	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("invalid pagination token: %w", err)
		}
		afterPosted, err = time.Parse(time.RFC3339Nano, fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pagination token: %w", err)
		}
		afterID = fields[1]
		hasCursor = true
	}

	query := `SELECT ` + journalColumns + ` FROM journals
		WHERE organization_id = $1 AND status IN ('POSTED', 'REVERSED')`
	args := []interface{}{organizationID}
	if hasCursor {
		query += ` AND (posted_at, journal_id) > ($2, $3)`
		args = append(args, afterPosted, afterID)
	}
	query += ` ORDER BY posted_at ASC, journal_id ASC LIMIT ` + fmt.Sprintf("%d", limit+1)

	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stream posted journals: %w", err)
	}
	defer rows.Close()

	var journals []domain.Journal
	for rows.Next() {
		j, err := scanJournalRow(rows)
		if err != nil {
			return nil, nil, err
		}
		journals = append(journals, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate posted journals: %w", err)
	}

	var next *string
	if len(journals) > limit {
		last := journals[limit-1]
		token := pagination.EncodeMultiFieldToken(last.PostedAt.UTC().Format(time.RFC3339Nano), last.JournalID)
		next = &token
		journals = journals[:limit]
	}

	for i := range journals {
		lines, err := r.fetchLines(ctx, r.DB(), journals[i].JournalID)
		if err != nil {
			return nil, nil, err
		}
		journals[i].Lines = lines
	}

	return journals, next, nil
}

func (r *pgxJournalRepository) FindLatestPostedHash(ctx context.Context, organizationID string) (domain.JournalHash, error) {
	var hashSelf sql.NullString
	err := r.DB().QueryRow(ctx,
		`SELECT hash_self FROM journals WHERE organization_id = $1 AND status IN ('POSTED', 'REVERSED')
		 ORDER BY posted_at DESC, journal_id DESC LIMIT 1`,
		organizationID,
	).Scan(&hashSelf)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.EmptyHash, nil
		}
		return domain.EmptyHash, fmt.Errorf("failed to load latest posted hash: %w", err)
	}
	if !hashSelf.Valid {
		return domain.EmptyHash, nil
	}
	return domain.JournalHash(hashSelf.String), nil
}

func insertJournalLines(ctx context.Context, db DB, journalID string, lines []domain.JournalLine) error {
	batch := &pgx.Batch{}
	for _, l := range lines {
		var taxCode, taxAmount, taxRate interface{}
		if l.TaxCode != nil {
			taxCode = *l.TaxCode
		}
		if l.TaxAmount != nil {
			taxAmount = l.TaxAmount.Decimal()
		}
		if l.TaxRate != nil {
			taxRate = *l.TaxRate
		}
		batch.Queue(
			`INSERT INTO journal_lines (`+journalLineColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			journalID, l.AccountID, l.LineNumber, l.Description, l.DebitAmount.Decimal(), l.CreditAmount.Decimal(),
			l.OriginalAmount.Currency, l.OriginalAmount.Amount.Decimal(), l.ExchangeRate, taxCode, taxAmount, taxRate,
		)
	}

	results := db.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	}).SendBatch(ctx, batch)
	defer results.Close()

	for range lines {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert journal line: %w", err)
		}
	}
	return nil
}

func (r *pgxJournalRepository) CreateDraftJournal(ctx context.Context, journal domain.Journal) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO journals (`+journalColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
			journal.JournalID, journal.OrganizationID, journal.PeriodID, journal.JournalNumber, journal.Description,
			journal.Reference, journal.PostingDate, journal.Status, journal.Currency, nullableHash(journal.HashPrev),
			nullableHash(journal.HashSelf), journal.ReversalJournalID, journal.OriginalJournalID, journal.ExtUID,
			journal.PostedBy, journal.PostedAt, journal.CreatedAt, journal.CreatedBy, journal.LastUpdatedAt, journal.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert journal: %w", err)
		}
		return insertJournalLines(ctx, tx, journal.JournalID, journal.Lines)
	})
}

func (r *pgxJournalRepository) UpdateDraftJournal(ctx context.Context, journal domain.Journal) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE journals SET description = $1, reference = $2, posting_date = $3,
				last_updated_at = $4, last_updated_by = $5
			 WHERE organization_id = $6 AND journal_id = $7 AND status = 'DRAFT'`,
			journal.Description, journal.Reference, journal.PostingDate,
			journal.LastUpdatedAt, journal.LastUpdatedBy, journal.OrganizationID, journal.JournalID,
		)
		if err != nil {
			return fmt.Errorf("failed to update journal: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.AlreadyPosted("only draft journals can be updated", map[string]any{"journalID": journal.JournalID})
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE journal_id = $1`, journal.JournalID); err != nil {
			return fmt.Errorf("failed to clear journal lines: %w", err)
		}
		return insertJournalLines(ctx, tx, journal.JournalID, journal.Lines)
	})
}

func (r *pgxJournalRepository) DeleteDraftJournal(ctx context.Context, organizationID, journalID string) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE journal_id = $1`, journalID); err != nil {
			return fmt.Errorf("failed to delete journal lines: %w", err)
		}
		tag, err := tx.Exec(ctx,
			`DELETE FROM journals WHERE organization_id = $1 AND journal_id = $2 AND status = 'DRAFT'`,
			organizationID, journalID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete journal: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.AlreadyPosted("only draft journals can be deleted", map[string]any{"journalID": journalID})
		}
		return nil
	})
}

// acquireOrgPostingLock takes the per-organization advisory lock required by
// spec §5 so concurrent posts/reversals for the same organization serialize
// and the hash chain extends without gaps. The lock is released
// automatically at transaction end.
func acquireOrgPostingLock(ctx context.Context, tx pgx.Tx, organizationID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, organizationID); err != nil {
		return fmt.Errorf("failed to acquire organization posting lock: %w", err)
	}
	return nil
}

func (r *pgxJournalRepository) PostJournal(ctx context.Context, journal domain.Journal) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		if err := acquireOrgPostingLock(ctx, tx, journal.OrganizationID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE journals SET status = $1, hash_prev = $2, hash_self = $3, posted_by = $4, posted_at = $5,
				last_updated_at = $6, last_updated_by = $7
			 WHERE organization_id = $8 AND journal_id = $9 AND status = 'DRAFT'`,
			journal.Status, nullableHash(journal.HashPrev), nullableHash(journal.HashSelf), journal.PostedBy, journal.PostedAt,
			journal.LastUpdatedAt, journal.LastUpdatedBy, journal.OrganizationID, journal.JournalID,
		)
		if err != nil {
			return fmt.Errorf("failed to post journal: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.AlreadyPosted("only draft journals can be posted", map[string]any{"journalID": journal.JournalID})
		}
		return nil
	})
}

func (r *pgxJournalRepository) ReverseJournal(ctx context.Context, originalJournalID string, reversal domain.Journal) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		if err := acquireOrgPostingLock(ctx, tx, reversal.OrganizationID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE journals SET status = 'REVERSED', reversal_journal_id = $1, last_updated_at = $2, last_updated_by = $3
			 WHERE organization_id = $4 AND journal_id = $5 AND status = 'POSTED'`,
			reversal.JournalID, time.Now().UTC(), reversal.PostedBy, reversal.OrganizationID, originalJournalID,
		)
		if err != nil {
			return fmt.Errorf("failed to mark original journal reversed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.BusinessRule("only a posted journal can be reversed", map[string]any{"journalID": originalJournalID})
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO journals (`+journalColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
			reversal.JournalID, reversal.OrganizationID, reversal.PeriodID, reversal.JournalNumber, reversal.Description,
			reversal.Reference, reversal.PostingDate, reversal.Status, reversal.Currency, nullableHash(reversal.HashPrev),
			nullableHash(reversal.HashSelf), reversal.ReversalJournalID, reversal.OriginalJournalID, reversal.ExtUID,
			reversal.PostedBy, reversal.PostedAt, reversal.CreatedAt, reversal.CreatedBy, reversal.LastUpdatedAt, reversal.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert reversal journal: %w", err)
		}

		return insertJournalLines(ctx, tx, reversal.JournalID, reversal.Lines)
	})
}
