package notifications

import (
	"context"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	EmailFrom   string
	EmailEnable bool
}

func New(store StoreAPI, mailer Mailer, from string, emailEnabled bool) *Service {
	return &Service{store: store, Mailer: mailer, EmailFrom: from, EmailEnable: emailEnabled}
}

// Notify stores a notification row and sends email best-effort. A mail
// failure never fails the triggering operation.
func (s *Service) Notify(ctx context.Context, recipientID, ntype, title, body string) error {
	if recipientID == "" {
		return nil
	}
	if err := s.store.CreateNotification(ctx, recipientID, ntype, title, body); err != nil {
		return err
	}

	if !s.EmailEnable || s.Mailer == nil {
		return nil
	}
	email, err := s.store.RecipientEmail(ctx, recipientID)
	if err != nil {
		slog.Warn("notification email lookup failed", "recipientId", recipientID, "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.EmailFrom, email, title, body); err != nil {
		slog.Warn("notification email send failed", "recipientId", recipientID, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, recipientID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, recipientID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, recipientID string) (int, error) {
	return s.store.CountUnread(ctx, recipientID)
}

func (s *Service) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	return s.store.MarkRead(ctx, recipientID, notificationID)
}
