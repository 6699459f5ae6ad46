package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Purav2003/epimech-admin/internal/apperr"
	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/store"
)

// maxConcurrentRankUpdates bounds the reorder fan-out.
const maxConcurrentRankUpdates = 16

// Store defines the interface for product persistence. Every call is
// scoped to one category collection; unknown or malformed ids return
// store.ErrNotFound.
type Store interface {
	List(ctx context.Context, collection string, f models.ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, collection, id string) (*models.Product, error)
	Insert(ctx context.Context, collection string, p *models.Product) error
	Update(ctx context.Context, collection, id string, patch models.ProductPatch, at time.Time) (*models.Product, error)
	Delete(ctx context.Context, collection, id string) error
	SetRank(ctx context.Context, collection, id string, rank int) error
	MaxRank(ctx context.Context, collection string) (int, error)
}

// Service implements product management and manual ordering.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(s Store) *Service {
	return &Service{store: s, now: time.Now}
}

// List returns the category's products ordered by rank.
func (s *Service) List(ctx context.Context, cat Category, f models.ProductFilter) ([]models.Product, error) {
	f.Search = strings.TrimSpace(f.Search)
	products, err := s.store.List(ctx, cat.Info().Collection, f)
	if err != nil {
		return nil, apperr.Upstream("failed to fetch products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, cat Category, id string) (*models.Product, error) {
	p, err := s.store.Get(ctx, cat.Info().Collection, id)
	if err != nil {
		return nil, wrapStoreErr("failed to fetch product", err)
	}
	return p, nil
}

// Create appends a visible product at the end of the category.
func (s *Service) Create(ctx context.Context, cat Category, in models.ProductInput) (*models.Product, error) {
	col := cat.Info().Collection

	top, err := s.store.MaxRank(ctx, col)
	if err != nil {
		return nil, apperr.Upstream("failed to add product", err)
	}

	now := s.now().UTC()
	p := &models.Product{
		PartName:   strings.TrimSpace(in.PartName),
		Image:      in.Image,
		PartNumber: in.PartNumber,
		Subimages:  in.Subimages,
		Rank:       top + 1,
		IsHide:     false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if p.PartNumber == nil {
		p.PartNumber = map[string]string{}
	}
	if p.Subimages == nil {
		p.Subimages = []string{}
	}

	if err := s.store.Insert(ctx, col, p); err != nil {
		return nil, apperr.Upstream("failed to add product", err)
	}
	log.Info().Str("category", cat.String()).Str("id", p.ID.Hex()).Int("rank", p.Rank).Msg("product created")
	return p, nil
}

// Update applies the supplied fields of patch.
func (s *Service) Update(ctx context.Context, cat Category, id string, patch models.ProductPatch) (*models.Product, error) {
	if patch.Empty() {
		return nil, apperr.Validation("nothing to update")
	}
	if patch.PartName != nil {
		name := strings.TrimSpace(*patch.PartName)
		if name == "" {
			return nil, apperr.Validation("part_name is required")
		}
		patch.PartName = &name
	}
	p, err := s.store.Update(ctx, cat.Info().Collection, id, patch, s.now().UTC())
	if err != nil {
		return nil, wrapStoreErr("failed to update product", err)
	}
	return p, nil
}

// SetHidden changes only the visibility flag.
func (s *Service) SetHidden(ctx context.Context, cat Category, id string, hidden bool) (*models.Product, error) {
	return s.Update(ctx, cat, id, models.ProductPatch{IsHide: &hidden})
}

// Delete removes a product permanently.
func (s *Service) Delete(ctx context.Context, cat Category, id string) error {
	if err := s.store.Delete(ctx, cat.Info().Collection, id); err != nil {
		return wrapStoreErr("failed to delete product", err)
	}
	log.Info().Str("category", cat.String()).Str("id", id).Msg("product deleted")
	return nil
}

// Reorder assigns each listed product the rank of its 1-based position.
// The client-sent rank is ignored. Updates run concurrently and are not
// rolled back: every update is attempted, and the call fails if any did.
func (s *Service) Reorder(ctx context.Context, cat Category, items []models.RankItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			return apperr.Validation(fmt.Sprintf("duplicate id %q", it.ID))
		}
		seen[it.ID] = struct{}{}
	}

	col := cat.Info().Collection

	var (
		mu      sync.Mutex
		missing []string
		failed  []error
	)

	var g errgroup.Group
	g.SetLimit(maxConcurrentRankUpdates)
	for i, it := range items {
		g.Go(func() error {
			err := s.store.SetRank(ctx, col, it.ID, i+1)
			if err == nil {
				return nil
			}
			log.Error().Err(err).Str("category", cat.String()).Str("id", it.ID).Int("rank", i+1).Msg("rank update failed")
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, store.ErrNotFound) {
				missing = append(missing, it.ID)
			} else {
				failed = append(failed, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		return apperr.Upstream("failed to update ranks", errors.Join(failed...))
	}
	if len(missing) > 0 {
		return apperr.NotFound(fmt.Sprintf("products not found: %s", strings.Join(missing, ", ")))
	}
	log.Info().Str("category", cat.String()).Int("items", len(items)).Msg("products reordered")
	return nil
}

func wrapStoreErr(msg string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("product not found")
	}
	return apperr.Upstream(msg, err)
}
