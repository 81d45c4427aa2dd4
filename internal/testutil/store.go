// Package testutil provides in-memory implementations of the service store
// interfaces for tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/unidesk/uniadmin/internal/apperrors"
	"github.com/unidesk/uniadmin/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MedicalRequests is an in-memory medical request store.
type MedicalRequests struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]models.MedicalRequest
	Updates int
}

func NewMedicalRequests() *MedicalRequests {
	return &MedicalRequests{records: make(map[primitive.ObjectID]models.MedicalRequest)}
}

func (m *MedicalRequests) Create(_ context.Context, req *models.MedicalRequest) (*models.MedicalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	m.records[req.ID] = *req
	return req, nil
}

func (m *MedicalRequests) GetByID(_ context.Context, id primitive.ObjectID) (*models.MedicalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("medical request %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return &r, nil
}

func (m *MedicalRequests) List(_ context.Context, f models.MedicalRequestFilter) ([]models.MedicalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.MedicalRequest{}
	for _, r := range m.records {
		if f.StudentID != nil && r.StudentID != *f.StudentID {
			continue
		}
		if f.ForwardedTo != nil && (r.ForwardedTo == nil || *r.ForwardedTo != *f.ForwardedTo) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MedicalRequests) UpdateStatus(_ context.Context, id primitive.ObjectID, from models.MedicalStatus, upd models.StatusUpdate) (*models.MedicalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("medical request %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if r.Status != from {
		return nil, fmt.Errorf("medical request %s is no longer %s: %w", id.Hex(), from, apperrors.ErrConflict)
	}
	r.Status = upd.Status
	r.DecidedBy = &upd.DecidedBy
	r.UpdatedAt = upd.UpdatedAt
	if upd.OfficerComments != "" {
		r.OfficerComments = upd.OfficerComments
	}
	if upd.AdminComments != "" {
		r.AdminComments = upd.AdminComments
	}
	if upd.ForwardedTo != nil {
		fwd := *upd.ForwardedTo
		r.ForwardedTo = &fwd
	}
	m.records[id] = r
	m.Updates++
	return &r, nil
}

// Notifications is an in-memory notification store. Set FailWith to make
// CreateNotification fail.
type Notifications struct {
	mu       sync.Mutex
	items    []models.Notification
	FailWith error
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

func (n *Notifications) CreateNotification(_ context.Context, notif *models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailWith != nil {
		return n.FailWith
	}
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(24 * time.Hour)
	n.items = append(n.items, *notif)
	return nil
}

// All returns a copy of every stored notification.
func (n *Notifications) All() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Notification(nil), n.items...)
}

// Put stores notif as-is.
func (n *Notifications) Put(notif models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notif)
}

func (n *Notifications) GetUserNotifications(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []models.Notification{}
	for _, item := range n.items {
		if item.UserID == userID && item.ExpiresAt.After(time.Now()) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (n *Notifications) MarkAsRead(_ context.Context, id, userID primitive.ObjectID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.items {
		if n.items[i].ID == id && n.items[i].UserID == userID {
			n.items[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id.Hex(), apperrors.ErrNotFound)
}

func (n *Notifications) DeleteNotification(_ context.Context, id, userID primitive.ObjectID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.items {
		if n.items[i].ID == id && n.items[i].UserID == userID {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id.Hex(), apperrors.ErrNotFound)
}

func (n *Notifications) DeleteExpiredNotifications(_ context.Context) (int64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	kept := n.items[:0]
	var deleted int64
	for _, item := range n.items {
		if item.ExpiresAt.After(time.Now()) {
			kept = append(kept, item)
		} else {
			deleted++
		}
	}
	n.items = kept
	return deleted, nil
}

// Users is an in-memory user directory.
type Users struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{users: make(map[primitive.ObjectID]models.User)}
}

// Add stores a user with the given role and returns it.
func (u *Users) Add(name, role, adminType string) *models.User {
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     name + "@uni.test",
		Role:      role,
		AdminType: adminType,
	}
	u.mu.Lock()
	u.users[user.ID] = *user
	u.mu.Unlock()
	return user
}

func (u *Users) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.users {
		if existing.Email == user.Email {
			return nil, fmt.Errorf("email %s already in use: %w", user.Email, apperrors.ErrConflict)
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	u.users[user.ID] = *user
	return user, nil
}

func (u *Users) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
}

func (u *Users) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return &user, nil
}

func (u *Users) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if user, ok := u.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

// Modules is an in-memory module catalogue.
type Modules struct {
	mu  sync.Mutex
	ids map[primitive.ObjectID]bool
}

func NewModules(ids ...primitive.ObjectID) *Modules {
	m := &Modules{ids: make(map[primitive.ObjectID]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func (m *Modules) ExistingIDs(_ context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []primitive.ObjectID
	for _, id := range ids {
		if m.ids[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// Enrollments is an in-memory enrollment store that counts write calls.
type Enrollments struct {
	mu          sync.Mutex
	rows        map[primitive.ObjectID][]primitive.ObjectID
	DeleteCalls int
	InsertCalls int
	Deleted     []primitive.ObjectID
	Inserted    []primitive.ObjectID
}

func NewEnrollments() *Enrollments {
	return &Enrollments{rows: make(map[primitive.ObjectID][]primitive.ObjectID)}
}

// Seed sets a student's current modules without counting writes.
func (e *Enrollments) Seed(studentID primitive.ObjectID, modules ...primitive.ObjectID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows[studentID] = append([]primitive.ObjectID(nil), modules...)
}

func (e *Enrollments) ModuleIDs(_ context.Context, studentID primitive.ObjectID) ([]primitive.ObjectID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]primitive.ObjectID(nil), e.rows[studentID]...), nil
}

func (e *Enrollments) RemoveModules(_ context.Context, studentID primitive.ObjectID, moduleIDs []primitive.ObjectID) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.DeleteCalls++
	drop := make(map[primitive.ObjectID]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		drop[id] = true
	}
	var kept []primitive.ObjectID
	var n int64
	for _, id := range e.rows[studentID] {
		if drop[id] {
			e.Deleted = append(e.Deleted, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	e.rows[studentID] = kept
	return n, nil
}

func (e *Enrollments) AddModules(_ context.Context, studentID primitive.ObjectID, moduleIDs []primitive.ObjectID) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.InsertCalls++
	have := make(map[primitive.ObjectID]bool)
	for _, id := range e.rows[studentID] {
		have[id] = true
	}
	var n int64
	for _, id := range moduleIDs {
		if have[id] {
			continue
		}
		have[id] = true
		e.rows[studentID] = append(e.rows[studentID], id)
		e.Inserted = append(e.Inserted, id)
		n++
	}
	return n, nil
}
