// Package repotest provides in-memory repositories for tests of the layers
// above the database.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"veridia_hiring/internal/model"
	"veridia_hiring/internal/repository"
)

// Users is an in-memory repository.UserRepository.
type Users struct {
	mu    sync.Mutex
	byID  map[string]*model.User
	Err   error // returned by every call when set
	Calls int
}

// NewUsers returns an empty user store.
func NewUsers() *Users {
	return &Users{byID: map[string]*model.User{}}
}

func (r *Users) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return r.Err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *Users) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// Len reports the number of stored accounts.
func (r *Users) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Applications is an in-memory repository.ApplicationRepository. Submitter
// identities are joined from Users when set.
type Applications struct {
	mu    sync.Mutex
	byID  map[string]*model.Application
	Users *Users
	Err   error
}

// NewApplications returns an empty application store.
func NewApplications(users *Users) *Applications {
	return &Applications{byID: map[string]*model.Application{}, Users: users}
}

func (r *Applications) Create(_ context.Context, app *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.byID[app.ID]; ok {
		return repository.ErrDuplicate
	}
	cp := *app
	r.byID[app.ID] = &cp
	return nil
}

func (r *Applications) FindByID(_ context.Context, id string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *Applications) FindByUser(_ context.Context, userID string) ([]model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []model.Application
	for _, a := range r.sorted() {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *Applications) Search(_ context.Context, filters model.AdminApplicationFilters) ([]model.CandidateSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	matched := r.match(filters)
	start := filters.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filters.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]model.CandidateSummary, 0, end-start)
	for _, a := range matched[start:end] {
		s := model.CandidateSummary{
			ID:            a.ID,
			CandidateName: a.FirstName + " " + a.LastName,
			Email:         a.Email,
			Phone:         a.Phone,
			Position:      a.Position,
			Skills:        a.Skills,
			Experience:    a.Experience,
			Status:        a.Status,
			AppliedDate:   a.AppliedDate,
			ResumePath:    a.ResumePath,
		}
		if r.Users != nil {
			if u, _ := r.Users.FindByID(context.Background(), a.UserID); u != nil {
				s.SubmittedBy = &model.Submitter{FullName: u.FullName, Email: u.Email}
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Applications) Count(_ context.Context, filters model.AdminApplicationFilters) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.match(filters))), nil
}

func (r *Applications) UpdateStatus(_ context.Context, id string, status model.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	a, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	a.LastUpdated = at
	return nil
}

func (r *Applications) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Applications) CountByStatus(_ context.Context) (*model.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	counts := &model.StatusCounts{}
	for _, a := range r.byID {
		counts.TotalApplications++
		switch a.Status {
		case model.StatusSubmitted:
			counts.Submitted++
		case model.StatusUnderReview:
			counts.UnderReview++
		case model.StatusSelected:
			counts.Selected++
		case model.StatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}

// Put stores app as-is, bypassing service defaults.
func (r *Applications) Put(app model.Application) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[app.ID] = &app
}

// Len reports the number of stored applications.
func (r *Applications) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Applications) sorted() []*model.Application {
	out := make([]*model.Application, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppliedDate.Equal(out[j].AppliedDate) {
			return out[i].AppliedDate.After(out[j].AppliedDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *Applications) match(filters model.AdminApplicationFilters) []*model.Application {
	needle := strings.ToLower(filters.Search)
	var out []*model.Application
	for _, a := range r.sorted() {
		if filters.Status != nil && a.Status != *filters.Status {
			continue
		}
		if needle != "" && !containsAny(needle, a.FirstName, a.LastName, a.Email, a.Position) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

var (
	_ repository.UserRepository        = (*Users)(nil)
	_ repository.ApplicationRepository = (*Applications)(nil)
)
