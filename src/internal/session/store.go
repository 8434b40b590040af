package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-admin-svc/src/internal/models"

	"github.com/sirupsen/logrus"
)

// Store is the only component allowed to touch the session slot.
type Store interface {
	// IsValid reports whether the device is currently authorized. It never
	// fails: read faults, malformed and expired records are deleted and
	// reported as false.
	IsValid(ctx context.Context) bool
	// Grant overwrites the record with an authorized one issued now.
	Grant(ctx context.Context) error
	// Revoke deletes the record.
	Revoke(ctx context.Context) error
}

type store struct {
	slot  Slot
	codec Codec
	now   Clock
}

func NewStore(slot Slot, codec Codec, now Clock) Store {
	if codec == nil {
		codec = JSONCodec{}
	}
	if now == nil {
		now = time.Now
	}
	return &store{slot: slot, codec: codec, now: now}
}

func (s *store) IsValid(ctx context.Context) bool {
	data, err := s.slot.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			return false
		}
		logrus.WithError(err).Warn("Session slot unreadable, discarding record")
		s.discard(ctx)
		return false
	}

	record, err := s.codec.Decode(data)
	if err != nil {
		logrus.WithError(err).Warn("Malformed session record, discarding")
		s.discard(ctx)
		return false
	}

	if !record.Authorized {
		return false
	}

	if record.Expired(s.now()) {
		logrus.WithField("issued_at", record.IssuedAt).Debug("Session record expired, discarding")
		s.discard(ctx)
		return false
	}

	return true
}

func (s *store) Grant(ctx context.Context) error {
	data, err := s.codec.Encode(Record{Authorized: true, IssuedAt: s.now()})
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrSessionWrite, err)
	}

	if err := s.slot.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to grant session: %w", err)
	}

	logrus.Debug("Session granted")
	return nil
}

func (s *store) Revoke(ctx context.Context) error {
	if err := s.slot.Clear(ctx); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	logrus.Debug("Session revoked")
	return nil
}

// discard deletes the record during a validity check. Failures are logged
// only, the caller still sees false.
func (s *store) discard(ctx context.Context) {
	if err := s.slot.Clear(ctx); err != nil {
		logrus.WithError(err).Error("Failed to delete session record")
	}
}
