package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// CampaignRepositoryPG implements domain.CampaignRepository using PostgreSQL.
type CampaignRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewCampaignRepository creates a new campaign repo.
func NewCampaignRepository(sql infra.SQLExecutor) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{sql: sql}
}

// Create inserts the campaign, assigning its identifier and timestamps.
func (r *CampaignRepositoryPG) Create(ctx context.Context, campaign *domain.Campaign) error {
	images, err := domain.EncodeImages(campaign.Images)
	if err != nil {
		return err
	}
	id := uuid.New()
	row := r.sql.QueryRow(ctx, sqlinline.QInsertCampaign,
		id,
		campaign.Name,
		campaign.Description,
		images,
		campaign.Goal.String(),
		campaign.Handle,
		campaign.UserID,
		campaign.CheckoutURL,
	)
	if err := row.Scan(&campaign.CreatedAt, &campaign.UpdatedAt); err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	campaign.ID = id.String()
	if campaign.Images == nil {
		campaign.Images = []string{}
	}
	return nil
}

// GetByID fetches a campaign by its identifier.
func (r *CampaignRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return scanCampaign(r.sql.QueryRow(ctx, sqlinline.QSelectCampaignByID, parsed))
}

// ListAll returns every campaign, newest first.
func (r *CampaignRepositoryPG) ListAll(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListCampaigns)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return collectCampaigns(rows)
}

// ListByOwner returns the campaigns owned by userID, newest first.
func (r *CampaignRepositoryPG) ListByOwner(ctx context.Context, userID string) ([]domain.Campaign, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListCampaignsByOwner, userID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns by owner: %w", err)
	}
	return collectCampaigns(rows)
}

// Update overwrites the owner-editable fields.
func (r *CampaignRepositoryPG) Update(ctx context.Context, id string, upd domain.CampaignUpdate) (*domain.Campaign, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	images, err := domain.EncodeImages(upd.Images)
	if err != nil {
		return nil, err
	}
	row := r.sql.QueryRow(ctx, sqlinline.QUpdateCampaign,
		parsed,
		upd.Name,
		upd.Description,
		images,
		upd.Goal.String(),
		upd.Handle,
	)
	return scanCampaign(row)
}

func collectCampaigns(rows pgx.Rows) ([]domain.Campaign, error) {
	defer rows.Close()

	items := []domain.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
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

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var (
		c         domain.Campaign
		imagesRaw string
		goalRaw   string
	)
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&imagesRaw,
		&goalRaw,
		&c.Handle,
		&c.UserID,
		&c.CheckoutURL,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	images, err := domain.DecodeImages(imagesRaw)
	if err != nil {
		return nil, fmt.Errorf("campaign %s: %w", c.ID, err)
	}
	goal, err := decimal.NewFromString(goalRaw)
	if err != nil {
		return nil, fmt.Errorf("campaign %s: parse goal: %w", c.ID, err)
	}
	c.Images = images
	c.Goal = goal
	return &c, nil
}
