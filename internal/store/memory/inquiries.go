package memory

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/store"
)

type InquiryStore struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]models.Inquiry
}

func NewInquiryStore() *InquiryStore {
	return &InquiryStore{items: make(map[primitive.ObjectID]models.Inquiry)}
}

func (s *InquiryStore) List(_ context.Context, typ models.InquiryType) ([]models.Inquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Inquiry{}
	for _, inq := range s.items {
		if typ != "" && inq.Type != typ {
			continue
		}
		out = append(out, inq)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (s *InquiryStore) Insert(_ context.Context, inq *models.Inquiry) error {
	if inq.ID.IsZero() {
		inq.ID = primitive.NewObjectID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[inq.ID] = *inq
	return nil
}

func (s *InquiryStore) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[oid]; !ok {
		return store.ErrNotFound
	}
	delete(s.items, oid)
	return nil
}
