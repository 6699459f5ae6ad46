package inquiry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Purav2003/epimech-admin/internal/apperr"
	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/store"
)

const notifyTimeout = 15 * time.Second

// Store defines the interface for inquiry persistence.
type Store interface {
	List(ctx context.Context, typ models.InquiryType) ([]models.Inquiry, error)
	Insert(ctx context.Context, inq *models.Inquiry) error
	Delete(ctx context.Context, id string) error
}

// Mailer delivers plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, text string) error
}

// Service manages the inquiry inbox.
type Service struct {
	store    Store
	mailer   Mailer
	notifyTo string
	now      func() time.Time
	pending  sync.WaitGroup
}

// NewService builds the inbox. notifyTo may be empty to disable
// notifications.
func NewService(s Store, mailer Mailer, notifyTo string) *Service {
	return &Service{store: s, mailer: mailer, notifyTo: notifyTo, now: time.Now}
}

// ParseType accepts "", "CONTACT-US" or "PRODUCT" in any case.
func ParseType(raw string) (models.InquiryType, error) {
	switch t := models.InquiryType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case "", models.InquiryContactUs, models.InquiryProduct:
		return t, nil
	default:
		return "", apperr.Validation(fmt.Sprintf("unknown inquiry type %q", raw))
	}
}

// List returns inquiries newest first.
func (s *Service) List(ctx context.Context, typ models.InquiryType) ([]models.Inquiry, error) {
	items, err := s.store.List(ctx, typ)
	if err != nil {
		return nil, apperr.Upstream("failed to fetch inquiries", err)
	}
	if items == nil {
		items = []models.Inquiry{}
	}
	return items, nil
}

// Create stores a storefront inquiry and notifies the shop in the
// background. Notification failures are logged, never returned.
func (s *Service) Create(ctx context.Context, req models.InquiryRequest) (*models.Inquiry, error) {
	inq := &models.Inquiry{
		Type:        req.Type,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		ProductName: strings.TrimSpace(req.ProductName),
		PartNumber:  strings.TrimSpace(req.PartNumber),
		Quantity:    req.Quantity,
		Message:     strings.TrimSpace(req.Message),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Insert(ctx, inq); err != nil {
		return nil, apperr.Upstream("failed to save inquiry", err)
	}

	s.notify(ctx, inq)
	return inq, nil
}

// Delete removes an inquiry.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("inquiry not found")
	}
	if err != nil {
		return apperr.Upstream("failed to delete inquiry", err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, inq *models.Inquiry) {
	if s.notifyTo == "" || s.mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	msg := *inq

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()

		subject := fmt.Sprintf("New %s inquiry from %s", msg.Type, msg.Name)
		if err := s.mailer.Send(ctx, s.notifyTo, subject, formatInquiry(&msg)); err != nil {
			log.Warn().Err(err).Str("inquiry_id", msg.ID.Hex()).Msg("inquiry notification failed")
		}
	}()
}

// Wait blocks until every in-flight notification has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func formatInquiry(inq *models.Inquiry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Type: %s\n", inq.Type)
	fmt.Fprintf(&b, "Name: %s\n", inq.Name)
	fmt.Fprintf(&b, "Email: %s\n", inq.Email)
	if inq.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", inq.Phone)
	}
	if inq.Type == models.InquiryProduct {
		fmt.Fprintf(&b, "Product: %s\n", inq.ProductName)
		if inq.PartNumber != "" {
			fmt.Fprintf(&b, "Part number: %s\n", inq.PartNumber)
		}
		if inq.Quantity > 0 {
			fmt.Fprintf(&b, "Quantity: %d\n", inq.Quantity)
		}
	}
	fmt.Fprintf(&b, "\n%s\n", inq.Message)
	return b.String()
}
