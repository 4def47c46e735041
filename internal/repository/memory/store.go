// Package memory implements the repository interfaces on in-process maps.
// It backs the service and API tests and mirrors the guarded updates of the
// postgres package.
package memory

import (
	"sync"
	"time"

	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/repository"
)

// Store holds every table. The repositories returned by its accessors share it.
type Store struct {
	mu sync.RWMutex

	organizations map[int64]*models.Organization
	settings      map[int64]*models.ReservationSettings
	familyGroups  map[int64]*models.FamilyGroup
	reservations  map[int64]*models.Reservation
	payments      map[int64]*models.Payment
	checkins      map[int64]*models.CheckinSession

	nextID   int64
	failures map[string]error
	calls    map[string]int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		organizations: map[int64]*models.Organization{},
		settings:      map[int64]*models.ReservationSettings{},
		familyGroups:  map[int64]*models.FamilyGroup{},
		reservations:  map[int64]*models.Reservation{},
		payments:      map[int64]*models.Payment{},
		checkins:      map[int64]*models.CheckinSession{},
		failures:      map[string]error{},
		calls:         map[string]int{},
	}
}

// Fail makes the named operation, e.g. "reservations.ListConfirmed", return
// err until Fail is called again with a nil error.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Calls returns how many times the named operation ran
func (s *Store) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// Repositories returns every repository backed by the store
func (s *Store) Repositories() (
	repository.OrganizationRepository,
	repository.FamilyGroupRepository,
	repository.ReservationRepository,
	repository.PaymentRepository,
	repository.CheckinSessionRepository,
) {
	return &organizationRepository{s}, &familyGroupRepository{s}, &reservationRepository{s},
		&paymentRepository{s}, &checkinSessionRepository{s}
}

// enter records a call and returns the injected failure, if any. Callers
// hold s.mu.
func (s *Store) enter(op string) error {
	s.calls[op]++
	return s.failures[op]
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddOrganization seeds an organization with its settings. settings may be nil.
func (s *Store) AddOrganization(org *models.Organization, settings *models.ReservationSettings) *models.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()

	if org.ID == 0 {
		org.ID = s.id()
	}
	now := time.Now()
	org.CreatedAt, org.UpdatedAt = now, now
	cp := *org
	s.organizations[org.ID] = &cp

	if settings != nil {
		settings.OrganizationID = org.ID
		scp := *settings
		s.settings[org.ID] = &scp
	}
	return org
}

// AddFamilyGroup seeds a family group
func (s *Store) AddFamilyGroup(organizationID int64, name string) *models.FamilyGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	group := &models.FamilyGroup{ID: s.id(), OrganizationID: organizationID, Name: name, CreatedAt: time.Now()}
	cp := *group
	s.familyGroups[group.ID] = &cp
	return group
}

// AddReservation seeds a reservation as stored, without validation
func (s *Store) AddReservation(r *models.Reservation) *models.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == 0 {
		r.ID = s.id()
	}
	if r.Status == "" {
		r.Status = models.ReservationStatusConfirmed
	}
	s.reservations[r.ID] = copyReservation(r)
	return r
}

// AddPayment seeds a payment row
func (s *Store) AddPayment(p *models.Payment) *models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.id()
	}
	if p.Status == "" {
		p.Status = models.PaymentStatusPending
	}
	if p.SplitRole == "" {
		p.SplitRole = models.SplitRoleFull
	}
	s.payments[p.ID] = copyPayment(p)
	return p
}

// AddCheckinSession seeds a check-in session
func (s *Store) AddCheckinSession(c *models.CheckinSession) *models.CheckinSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == 0 {
		c.ID = s.id()
	}
	s.checkins[c.ID] = copyCheckin(c)
	return c
}

// Payment returns the stored row, or nil
func (s *Store) Payment(id int64) *models.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.payments[id]; ok {
		return copyPayment(p)
	}
	return nil
}

// Reservation returns the stored row, or nil
func (s *Store) Reservation(id int64) *models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.reservations[id]; ok {
		return copyReservation(r)
	}
	return nil
}

// CheckinSession returns the stored row, or nil
func (s *Store) CheckinSession(id int64) *models.CheckinSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.checkins[id]; ok {
		return copyCheckin(c)
	}
	return nil
}

func copyReservation(r *models.Reservation) *models.Reservation {
	cp := *r
	return &cp
}

func copyPayment(p *models.Payment) *models.Payment {
	cp := *p
	cp.DailyOccupancy = append(models.DailyOccupancy(nil), p.DailyOccupancy...)
	return &cp
}

func copyCheckin(c *models.CheckinSession) *models.CheckinSession {
	cp := *c
	cp.ChecklistResponses = make(models.ChecklistResponses, len(c.ChecklistResponses))
	for k, v := range c.ChecklistResponses {
		cp.ChecklistResponses[k] = append([]byte(nil), v...)
	}
	return &cp
}
