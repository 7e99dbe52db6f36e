package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grupy/internal/domain"
	"grupy/internal/domain/entities"
	"grupy/internal/ports/input"
	"grupy/internal/ports/output"
)

var _ input.InboxUseCase = (*InboxService)(nil)

// InboxService serves the notifications and profiles the sweep writes.
type InboxService struct {
	notifications output.NotificationRepository
	profiles      output.ProfileRepository
}

func NewInboxService(
	notifications output.NotificationRepository,
	profiles output.ProfileRepository,
) *InboxService {
	return &InboxService{
		notifications: notifications,
		profiles:      profiles,
	}
}

func (s *InboxService) ListNotifications(ctx context.Context, recipient string) ([]entities.Notification, error) {
	if strings.TrimSpace(recipient) == "" {
		return nil, domain.ErrProfileNotFound
	}
	items, err := s.notifications.ListNotifications(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if items == nil {
		items = []entities.Notification{}
	}
	return items, nil
}

func (s *InboxService) MarkRead(ctx context.Context, recipient, notificationID string) error {
	if strings.TrimSpace(notificationID) == "" {
		return domain.ErrNotificationNotFound
	}
	err := s.notifications.MarkNotificationRead(ctx, recipient, notificationID)
	if errors.Is(err, domain.ErrNotificationNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// GetProfile returns the profile with its status recomputed from the counters.
func (s *InboxService) GetProfile(ctx context.Context, username string) (*entities.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, username)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.Status = p.ComputeStatus()
	return p, nil
}
