package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"freshtrack/internal/dedup"
	"freshtrack/internal/domain"
	"freshtrack/internal/expiry"
	applog "freshtrack/internal/log"
	"freshtrack/internal/repos"
)

// Dispatcher forwards stored notifications to a delivery channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, n domain.Notification) error
}

// LogDispatcher only records the notification in the structured log.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(_ context.Context, n domain.Notification) error {
	applog.Job("notification.dispatch", nil, map[string]any{
		"owner_id": n.OwnerID, "id": n.ID, "type": n.Type, "priority": n.Priority,
	})
	return nil
}

type NotificationService struct {
	Notifs     *repos.NotificationRepo
	Items      *repos.ItemRepo
	Claimer    *dedup.Claimer // nil without redis
	Dispatcher Dispatcher
	Policy     expiry.Policy
	Clock      expiry.Clock
}

func NewNotificationService(notifs *repos.NotificationRepo, items *repos.ItemRepo, claimer *dedup.Claimer, d Dispatcher, policy expiry.Policy, clock expiry.Clock) *NotificationService {
	if d == nil {
		d = LogDispatcher{}
	}
	return &NotificationService{Notifs: notifs, Items: items, Claimer: claimer, Dispatcher: d, Policy: policy, Clock: clock}
}

// DedupKey identifies a draft for one owner, item, type and calendar day.
func DedupKey(d expiry.Draft, today time.Time) string {
	return strings.Join([]string{d.OwnerID, d.RelatedItemID, d.Type, today.Format(domain.DateLayout)}, "|")
}

// NotifyResult counts what a send produced.
type NotifyResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Persist stores drafts at most once per dedup key and dispatches the new ones.
func (s *NotificationService) Persist(ctx context.Context, drafts []expiry.Draft) (NotifyResult, error) {
	var res NotifyResult
	today := expiry.Today(s.Clock)
	now := s.Clock.Now()
	for _, d := range drafts {
		key := DedupKey(d, today)
		claimed, err := s.Claimer.Claim(ctx, key)
		if err != nil {
			// the unique key in the database still guards against duplicates
			applog.Job("notification.claim.fail", err, map[string]any{"key": key})
			claimed = true
		}
		if !claimed {
			res.Skipped++
			continue
		}

		n := s.fromDraft(d, now)
		n.DedupKey = &key
		inserted, err := s.Notifs.Insert(n)
		if err != nil {
			_ = s.Claimer.Release(ctx, key)
			return res, err
		}
		if !inserted {
			res.Skipped++
			continue
		}
		res.Created++
		if err := s.Dispatcher.Dispatch(ctx, n); err != nil {
			applog.Job("notification.dispatch.fail", err, map[string]any{"id": n.ID})
		}
	}
	return res, nil
}

func (s *NotificationService) fromDraft(d expiry.Draft, now time.Time) domain.Notification {
	n := domain.Notification{
		ID:        uuid.NewString(),
		OwnerID:   d.OwnerID,
		Type:      d.Type,
		Title:     d.Title,
		Message:   d.Message,
		Priority:  d.Priority,
		Metadata:  domain.JSONMap(d.Metadata),
		CreatedAt: repos.Timestamp(now),
	}
	if d.RelatedItemID != "" {
		id := d.RelatedItemID
		n.RelatedItemID = &id
	}
	exp := repos.Timestamp(now.AddDate(0, 0, s.Policy.RetentionDays))
	n.ExpiresAt = &exp
	return n
}

// NotifyOwner synthesizes expiry and low-stock drafts for one owner and persists them.
func (s *NotificationService) NotifyOwner(ctx context.Context, ownerID string) (NotifyResult, error) {
	items, err := s.Items.List(ownerID, repos.ItemFilter{})
	if err != nil {
		return NotifyResult{}, err
	}
	today := expiry.Today(s.Clock)
	drafts := s.Policy.Synthesize(items, today)
	drafts = append(drafts, s.Policy.SynthesizeLowStock(items)...)
	return s.Persist(ctx, drafts)
}

// NotifyAll runs NotifyOwner for every owner with items. It stops at the first
// storage error or when ctx is done.
func (s *NotificationService) NotifyAll(ctx context.Context) (NotifyResult, error) {
	owners, err := s.Items.Owners()
	if err != nil {
		return NotifyResult{}, err
	}
	var total NotifyResult
	for _, owner := range owners {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		r, err := s.NotifyOwner(ctx, owner)
		total.Created += r.Created
		total.Skipped += r.Skipped
		if err != nil {
			return total, fmt.Errorf("notifying %s: %w", owner, err)
		}
	}
	return total, nil
}

func (s *NotificationService) List(ownerID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Notifs.List(ownerID, unreadOnly, limit)
}

func (s *NotificationService) UnreadCount(ownerID string) (int, error) {
	return s.Notifs.UnreadCount(ownerID)
}

// NotificationInput is a user-authored notification.
type NotificationInput struct {
	Type          string
	Title         string
	Message       string
	Priority      string
	RelatedItemID string
	Metadata      map[string]any
}

// Create stores a notification without a dedup key and dispatches it.
func (s *NotificationService) Create(ctx context.Context, ownerID string, in NotificationInput) (domain.Notification, error) {
	if in.Type == "" {
		in.Type = domain.NotifSystem
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(in.Priority) {
		return domain.Notification{}, fmt.Errorf("priority %q: %w", in.Priority, ErrInvalidInput)
	}
	switch in.Type {
	case domain.NotifExpiryAlert, domain.NotifLowStock, domain.NotifSystem:
	default:
		return domain.Notification{}, fmt.Errorf("type %q: %w", in.Type, ErrInvalidInput)
	}
	if in.RelatedItemID != "" {
		if _, err := s.Items.Get(ownerID, in.RelatedItemID); err != nil {
			if repos.IsNotFound(err) {
				return domain.Notification{}, fmt.Errorf("related item %s: %w", in.RelatedItemID, ErrInvalidInput)
			}
			return domain.Notification{}, err
		}
	}

	n := s.fromDraft(expiry.Draft{
		OwnerID:       ownerID,
		Type:          in.Type,
		Title:         strings.TrimSpace(in.Title),
		Message:       strings.TrimSpace(in.Message),
		Priority:      in.Priority,
		RelatedItemID: in.RelatedItemID,
		Metadata:      in.Metadata,
	}, s.Clock.Now())
	if _, err := s.Notifs.Insert(n); err != nil {
		return domain.Notification{}, err
	}
	if err := s.Dispatcher.Dispatch(ctx, n); err != nil {
		applog.Job("notification.dispatch.fail", err, map[string]any{"id": n.ID})
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ownerID, id string) error {
	ok, err := s.Notifs.MarkRead(ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ownerID string) (int64, error) {
	return s.Notifs.MarkAllRead(ownerID)
}

func (s *NotificationService) Delete(ownerID, id string) error {
	ok, err := s.Notifs.Delete(ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *NotificationService) Clear(ownerID string) (int64, error) {
	return s.Notifs.Clear(ownerID)
}

// Prune removes notifications past their retention.
func (s *NotificationService) Prune() (int64, error) {
	return s.Notifs.Prune(repos.Timestamp(s.Clock.Now()))
}
