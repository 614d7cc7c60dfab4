package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"congregation-api/internal/adapters/persistence/models"
	"congregation-api/internal/adapters/persistence/repositories"
	"congregation-api/internal/core/domain"
)

var errStorageDown = errors.New("storage unavailable")

type sentMessage struct {
	Address string
	Subject string
	Body    string
}

// recordingNotifier captures messages; err, when set, fails every send
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, address, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{Address: address, Subject: subject, Body: body})
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// heldLocker reports every key as held by someone else
type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return nil, domain.ErrLockHeld
}

// passLocker grants every lock
type passLocker struct{}

func (passLocker) Acquire(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

type failingContentRepo struct {
	repositories.ContentRepository
}

func (failingContentRepo) AddVote(context.Context, models.ThreadedContent, string) error {
	return errStorageDown
}

func (failingContentRepo) MarkDeleted(context.Context, models.ThreadedContent) error {
	return errStorageDown
}

type failingPrayerRepo struct {
	repositories.PrayerRepository
}

func (failingPrayerRepo) MarkAnswered(context.Context, uint) error {
	return errStorageDown
}

type failingDonationRepo struct {
	repositories.DonationRepository
}

func (failingDonationRepo) MarkReceiptSent(context.Context, uint, string) error {
	return errStorageDown
}

func memberActor(m *models.Member) *domain.Actor {
	return &domain.Actor{Kind: domain.PrincipalMember, ID: m.ID, Role: domain.Role(m.Role)}
}

func adminActor(a *models.Admin) *domain.Actor {
	return &domain.Actor{Kind: domain.PrincipalAdmin, ID: a.ID}
}
