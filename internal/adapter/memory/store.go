// Package memory provides in-process campaign and contribution stores for
// local development without PostgreSQL and for handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"crowdfund/internal/domain"
)

// Store keeps campaigns and contributions in maps guarded by a single mutex.
type Store struct {
	mu            sync.RWMutex
	now           func() time.Time
	seq           int64
	campaigns     map[string]*domain.Campaign
	contributions map[string]*domain.Contribution
	order         map[string]int64
}

// NewStore creates an empty store. A nil clock defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:           now,
		campaigns:     map[string]*domain.Campaign{},
		contributions: map[string]*domain.Contribution{},
		order:         map[string]int64{},
	}
}

// Campaigns exposes the store as a domain.CampaignRepository.
func (s *Store) Campaigns() domain.CampaignRepository { return campaignRepo{s} }

// Contributions exposes the store as a domain.ContributionRepository.
func (s *Store) Contributions() domain.ContributionRepository { return contributionRepo{s} }

func (s *Store) stamp(id string) time.Time {
	s.seq++
	s.order[id] = s.seq
	return s.now().UTC()
}

// newestFirst orders by creation time, breaking ties by insertion order.
func (s *Store) newestFirst(ids []string, created func(string) time.Time) {
	sort.SliceStable(ids, func(i, j int) bool {
		ci, cj := created(ids[i]), created(ids[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return s.order[ids[i]] > s.order[ids[j]]
	})
}

type campaignRepo struct{ s *Store }

func (r campaignRepo) Create(_ context.Context, c *domain.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.ID = uuid.NewString()
	c.CreatedAt = r.s.stamp(c.ID)
	c.UpdatedAt = c.CreatedAt
	if c.Images == nil {
		c.Images = []string{}
	}
	stored := cloneCampaign(*c)
	r.s.campaigns[c.ID] = &stored
	return nil
}

func (r campaignRepo) GetByID(_ context.Context, id string) (*domain.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneCampaign(*c)
	return &out, nil
}

func (r campaignRepo) ListAll(ctx context.Context) ([]domain.Campaign, error) {
	return r.list(func(domain.Campaign) bool { return true }), nil
}

func (r campaignRepo) ListByOwner(_ context.Context, userID string) ([]domain.Campaign, error) {
	return r.list(func(c domain.Campaign) bool { return c.UserID == userID }), nil
}

func (r campaignRepo) list(keep func(domain.Campaign) bool) []domain.Campaign {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.campaigns))
	for id, c := range r.s.campaigns {
		if keep(*c) {
			ids = append(ids, id)
		}
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.campaigns[id].CreatedAt })
	items := make([]domain.Campaign, 0, len(ids))
	for _, id := range ids {
		items = append(items, cloneCampaign(*r.s.campaigns[id]))
	}
	return items
}

func (r campaignRepo) Update(_ context.Context, id string, upd domain.CampaignUpdate) (*domain.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.Name = upd.Name
	c.Description = upd.Description
	c.Images = append([]string{}, upd.Images...)
	c.Goal = upd.Goal
	c.Handle = upd.Handle
	c.UpdatedAt = r.s.now().UTC()
	out := cloneCampaign(*c)
	return &out, nil
}

type contributionRepo struct{ s *Store }

func (r contributionRepo) Create(_ context.Context, c *domain.Contribution) error {
	if !c.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.campaigns[c.CampaignID]; !ok {
		return fmt.Errorf("%w: campaign does not exist", domain.ErrValidation)
	}
	c.ID = uuid.NewString()
	c.Status = domain.ContributionPending
	c.CreatedAt = r.s.stamp(c.ID)
	c.UpdatedAt = c.CreatedAt
	stored := *c
	r.s.contributions[c.ID] = &stored
	return nil
}

func (r contributionRepo) GetByID(_ context.Context, id string) (*domain.Contribution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.contributions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r contributionRepo) TransitionStatus(_ context.Context, id string, from, to domain.ContributionStatus, transactionNSU *string) (*domain.Contribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contributions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if c.Status != from {
		return nil, fmt.Errorf("%w: contribution %s is no longer %s", domain.ErrInvalidTransition, id, from)
	}
	c.Status = to
	if transactionNSU != nil {
		ref := *transactionNSU
		c.TransactionNSU = &ref
	}
	c.UpdatedAt = r.s.now().UTC()
	out := *c
	return &out, nil
}

func (r contributionRepo) AttachOrderNSU(_ context.Context, id, orderNSU string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contributions[id]
	if !ok || c.Status != domain.ContributionPending {
		return domain.ErrNotFound
	}
	c.OrderNSU = &orderNSU
	c.UpdatedAt = r.s.now().UTC()
	return nil
}

func (r contributionRepo) ListCompletedByCampaigns(_ context.Context, campaignIDs []string) ([]domain.Contribution, error) {
	want := make(map[string]struct{}, len(campaignIDs))
	for _, id := range campaignIDs {
		want[id] = struct{}{}
	}
	return r.list(func(c domain.Contribution) bool {
		_, ok := want[c.CampaignID]
		return ok && c.Status == domain.ContributionCompleted
	}, true, 0), nil
}

func (r contributionRepo) ListStalePending(_ context.Context, olderThan time.Time, limit int) ([]domain.Contribution, error) {
	return r.list(func(c domain.Contribution) bool {
		return c.Status == domain.ContributionPending && c.CreatedAt.Before(olderThan)
	}, false, limit), nil
}

func (r contributionRepo) list(keep func(domain.Contribution) bool, newestFirst bool, limit int) []domain.Contribution {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0)
	for id, c := range r.s.contributions {
		if keep(*c) {
			ids = append(ids, id)
		}
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.contributions[id].CreatedAt })
	if !newestFirst {
		for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
			ids[i], ids[j] = ids[j], ids[i]
		}
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	items := make([]domain.Contribution, 0, len(ids))
	for _, id := range ids {
		items = append(items, *r.s.contributions[id])
	}
	return items
}

func cloneCampaign(c domain.Campaign) domain.Campaign {
	c.Images = append([]string{}, c.Images...)
	return c
}
