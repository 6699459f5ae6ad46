// Package memory provides process-local stores for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/store"
)

// ProductStore keeps products per collection in maps.
type ProductStore struct {
	mu   sync.RWMutex
	cols map[string]map[primitive.ObjectID]models.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{cols: make(map[string]map[primitive.ObjectID]models.Product)}
}

func (s *ProductStore) List(_ context.Context, collection string, f models.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	out := []models.Product{}
	for _, p := range s.cols[collection] {
		if f.VisibleOnly && p.IsHide {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.PartName), search) {
			continue
		}
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (s *ProductStore) Get(_ context.Context, collection, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.cols[collection][oid]
	if !ok {
		return nil, store.ErrNotFound
	}
	p = clone(p)
	return &p, nil
}

func (s *ProductStore) Insert(_ context.Context, collection string, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.cols[collection]
	if !ok {
		col = make(map[primitive.ObjectID]models.Product)
		s.cols[collection] = col
	}
	col[p.ID] = clone(*p)
	return nil
}

func (s *ProductStore) Update(_ context.Context, collection, id string, patch models.ProductPatch, at time.Time) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.cols[collection][oid]
	if !ok {
		return nil, store.ErrNotFound
	}

	if patch.PartName != nil {
		p.PartName = *patch.PartName
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.PartNumber != nil {
		p.PartNumber = *patch.PartNumber
	}
	if patch.Subimages != nil {
		p.Subimages = *patch.Subimages
	}
	if patch.IsHide != nil {
		p.IsHide = *patch.IsHide
	}
	p.UpdatedAt = at

	s.cols[collection][oid] = clone(p)
	p = clone(p)
	return &p, nil
}

func (s *ProductStore) Delete(_ context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cols[collection][oid]; !ok {
		return store.ErrNotFound
	}
	delete(s.cols[collection], oid)
	return nil
}

func (s *ProductStore) SetRank(_ context.Context, collection, id string, rank int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.cols[collection][oid]
	if !ok {
		return store.ErrNotFound
	}
	p.Rank = rank
	s.cols[collection][oid] = p
	return nil
}

func (s *ProductStore) MaxRank(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	top := 0
	for _, p := range s.cols[collection] {
		top = max(top, p.Rank)
	}
	return top, nil
}

// clone copies the reference fields so callers cannot mutate stored state.
func clone(p models.Product) models.Product {
	if p.PartNumber != nil {
		pn := make(map[string]string, len(p.PartNumber))
		for k, v := range p.PartNumber {
			pn[k] = v
		}
		p.PartNumber = pn
	}
	if p.Subimages != nil {
		p.Subimages = append(make([]string, 0, len(p.Subimages)), p.Subimages...)
	}
	return p
}
