package service

import (
	"context"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
	"github.com/sirupsen/logrus"
)

// Repositories groups the stores the service reads and writes
type Repositories struct {
	Organizations repository.OrganizationRepository
	FamilyGroups  repository.FamilyGroupRepository
	Reservations  repository.ReservationRepository
	Payments      repository.PaymentRepository
	Checkins      repository.CheckinSessionRepository
}

// Options tunes timeouts and search limits
type Options struct {
	// StoreTimeout bounds every operation's store round trips.
	StoreTimeout time.Duration
	// AlternativeSearchDays is the default search radius for alternative dates.
	AlternativeSearchDays int
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = 15 * time.Second
	}
	if o.AlternativeSearchDays <= 0 {
		o.AlternativeSearchDays = DefaultAlternativeSearchDays
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service is the central business logic layer that holds all repositories
// and the booking components built on them.
type Service struct {
	logger     *logrus.Logger
	opts       Options
	dispatcher *Dispatcher

	Organizations repository.OrganizationRepository
	FamilyGroups  repository.FamilyGroupRepository
	Reservations  repository.ReservationRepository
	Payments      repository.PaymentRepository
	Checkins      repository.CheckinSessionRepository

	Conflicts *ConflictDetector
	Billing   *BillingSplitter
}

// New creates a new Service with all required dependencies.
func New(logger *logrus.Logger, repos Repositories, dispatcher *Dispatcher, opts Options) *Service {
	opts = opts.withDefaults()

	return &Service{
		logger:        logger,
		opts:          opts,
		dispatcher:    dispatcher,
		Organizations: repos.Organizations,
		FamilyGroups:  repos.FamilyGroups,
		Reservations:  repos.Reservations,
		Payments:      repos.Payments,
		Checkins:      repos.Checkins,
		Conflicts:     NewConflictDetector(repos.Reservations, logger, opts),
		Billing:       NewBillingSplitter(repos, dispatcher, logger, opts),
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}
