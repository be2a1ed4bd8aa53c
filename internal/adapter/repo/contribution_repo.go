package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// ContributionRepositoryPG implements domain.ContributionRepository using PostgreSQL.
type ContributionRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewContributionRepository creates a new contribution repo.
func NewContributionRepository(sql infra.SQLExecutor) *ContributionRepositoryPG {
	return &ContributionRepositoryPG{sql: sql}
}

// Create inserts a pending contribution. The insert is conditional on the
// campaign existing, so a missing campaign never leaves a row behind.
func (r *ContributionRepositoryPG) Create(ctx context.Context, contribution *domain.Contribution) error {
	if !contribution.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	}
	campaignID, err := uuid.Parse(contribution.CampaignID)
	if err != nil {
		return fmt.Errorf("%w: campaign does not exist", domain.ErrValidation)
	}
	id := uuid.New()
	row := r.sql.QueryRow(ctx, sqlinline.QInsertContribution,
		id,
		campaignID,
		contribution.Amount.String(),
		contribution.ContributorName,
		contribution.ContributorEmail,
	)
	if err := row.Scan(&contribution.CreatedAt, &contribution.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return fmt.Errorf("%w: campaign does not exist", domain.ErrValidation)
		}
		return fmt.Errorf("insert contribution: %w", err)
	}
	contribution.ID = id.String()
	contribution.Status = domain.ContributionPending
	return nil
}

// GetByID fetches a contribution by its identifier.
func (r *ContributionRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Contribution, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return scanContribution(r.sql.QueryRow(ctx, sqlinline.QSelectContributionByID, parsed))
}

// TransitionStatus applies the status change only if the row still has status from.
func (r *ContributionRepositoryPG) TransitionStatus(ctx context.Context, id string, from, to domain.ContributionStatus, transactionNSU *string) (*domain.Contribution, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateContributionStatus, parsed, string(to), transactionNSU, string(from))
	c, err := scanContribution(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: contribution %s is no longer %s", domain.ErrInvalidTransition, id, from)
	}
	return c, err
}

// AttachOrderNSU records the checkout order reference on a pending contribution.
func (r *ContributionRepositoryPG) AttachOrderNSU(ctx context.Context, id, orderNSU string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrNotFound
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QAttachOrderNSU, parsed, orderNSU)
	if err != nil {
		return fmt.Errorf("attach order nsu: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListCompletedByCampaigns returns completed contributions of the given campaigns, newest first.
func (r *ContributionRepositoryPG) ListCompletedByCampaigns(ctx context.Context, campaignIDs []string) ([]domain.Contribution, error) {
	ids := make([]uuid.UUID, 0, len(campaignIDs))
	for _, raw := range campaignIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []domain.Contribution{}, nil
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListCompletedContributions, ids)
	if err != nil {
		return nil, fmt.Errorf("list completed contributions: %w", err)
	}
	return collectContributions(rows)
}

// ListStalePending returns pending contributions created before olderThan, oldest first.
func (r *ContributionRepositoryPG) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.Contribution, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListStalePendingContributions, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale pending contributions: %w", err)
	}
	return collectContributions(rows)
}

func collectContributions(rows pgx.Rows) ([]domain.Contribution, error) {
	defer rows.Close()

	items := []domain.Contribution{}
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var (
		c         domain.Contribution
		amountRaw string
		status    string
	)
	if err := row.Scan(
		&c.ID,
		&c.CampaignID,
		&amountRaw,
		&c.ContributorName,
		&c.ContributorEmail,
		&status,
		&c.TransactionNSU,
		&c.OrderNSU,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		return nil, fmt.Errorf("contribution %s: parse amount: %w", c.ID, err)
	}
	c.Amount = amount
	c.Status = domain.ContributionStatus(status)
	return &c, nil
}
