package handlers_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lcs-staffing/admin-console/internal/domain"
	"github.com/lcs-staffing/admin-console/internal/identity"
	"github.com/lcs-staffing/admin-console/internal/repository"
)

type memJobs struct {
	mu     sync.Mutex
	nextID int
	clock  time.Time
	jobs   map[string]domain.JobPosting
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[string]domain.JobPosting{}, clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (m *memJobs) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memJobs) Create(_ context.Context, job *domain.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	job.ID = fmt.Sprintf("job-%d", m.nextID)
	job.CreatedAt = m.tick()
	m.jobs[job.ID] = cloneJob(*job)
	return nil
}

func (m *memJobs) Update(_ context.Context, job *domain.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	at := m.tick()
	job.UpdatedAt = &at
	next := cloneJob(*job)
	next.Status = stored.Status
	next.CreatedAt = stored.CreatedAt
	next.DeactivatedAt = stored.DeactivatedAt
	next.ReactivatedAt = stored.ReactivatedAt
	m.jobs[job.ID] = next
	return nil
}

func (m *memJobs) UpdateStatus(_ context.Context, job *domain.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.jobs[job.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Status = job.Status
	stored.DeactivatedAt = job.DeactivatedAt
	stored.ReactivatedAt = job.ReactivatedAt
	m.jobs[job.ID] = stored
	return nil
}

func (m *memJobs) GetByID(_ context.Context, id string) (*domain.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneJob(job)
	return &out, nil
}

func (m *memJobs) List(_ context.Context, filter repository.JobFilter) ([]domain.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.JobPosting{}
	for _, job := range m.jobs {
		if filter.Status != nil && job.Status != *filter.Status {
			continue
		}
		out = append(out, cloneJob(job))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memJobs) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.jobs, id)
	return nil
}

func cloneJob(j domain.JobPosting) domain.JobPosting {
	j.Responsibilities = append([]string(nil), j.Responsibilities...)
	j.Requirements = append([]string(nil), j.Requirements...)
	return j
}

type memAdmins struct {
	mu     sync.Mutex
	admins map[string]domain.AdminAccount
}

func (m *memAdmins) Create(_ context.Context, admin *domain.AdminAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin.CreatedAt = time.Now()
	m.admins[admin.ID] = *admin
	return nil
}

func (m *memAdmins) GetByID(_ context.Context, id string) (*domain.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &admin, nil
}

func (m *memAdmins) GetByEmail(_ context.Context, email string) (*domain.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, admin := range m.admins {
		if strings.EqualFold(admin.Email, email) {
			out := admin
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memAdmins) List(_ context.Context, filter repository.AdminFilter) ([]domain.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.AdminAccount{}
	for _, admin := range m.admins {
		if filter.Role != nil && admin.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && admin.IsActive != *filter.Active {
			continue
		}
		out = append(out, admin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memAdmins) UpdateEmail(_ context.Context, id, email string) error {
	return m.update(id, func(a *domain.AdminAccount) { a.Email = email })
}

func (m *memAdmins) SetActive(_ context.Context, id string, active bool) error {
	return m.update(id, func(a *domain.AdminAccount) { a.IsActive = active })
}

func (m *memAdmins) TouchLogin(_ context.Context, id string, at time.Time) error {
	return m.update(id, func(a *domain.AdminAccount) { a.LastLoginAt = &at })
}

func (m *memAdmins) update(id string, fn func(*domain.AdminAccount)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.admins[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&admin)
	m.admins[id] = admin
	return nil
}

type fakeCredential struct {
	uid      string
	password string
}

// fakeProvider issues "tok-<uid>" tokens and keeps everything in memory.
type fakeProvider struct {
	mu     sync.Mutex
	creds  map[string]fakeCredential
	tokens map[string]string
	resets []string
}

func (p *fakeProvider) SignIn(_ context.Context, email, password string) (*identity.IssuedToken, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cred, ok := p.creds[strings.ToLower(email)]
	if !ok {
		return nil, &identity.ProviderError{Code: identity.CodeUserNotFound}
	}
	if cred.password != password {
		return nil, &identity.ProviderError{Code: identity.CodeWrongPassword}
	}
	token := "tok-" + cred.uid
	p.tokens[token] = cred.uid
	return &identity.IssuedToken{Token: token, UID: cred.uid, Email: email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (p *fakeProvider) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, token)
	return nil
}

func (p *fakeProvider) VerifyToken(_ context.Context, token string) (*identity.Claims, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	uid, ok := p.tokens[token]
	if !ok {
		return nil, &identity.ProviderError{Code: identity.CodeInvalidCredential}
	}
	return &identity.Claims{UID: uid}, nil
}

func (p *fakeProvider) CreateUser(_ context.Context, email, password string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(password) < identity.MinPasswordLength {
		return "", &identity.ProviderError{Code: identity.CodeWeakPassword}
	}
	if _, ok := p.creds[strings.ToLower(email)]; ok {
		return "", &identity.ProviderError{Code: identity.CodeEmailInUse}
	}
	uid := fmt.Sprintf("u-%d", len(p.creds)+1)
	p.creds[strings.ToLower(email)] = fakeCredential{uid: uid, password: password}
	return uid, nil
}

func (p *fakeProvider) UpdateEmail(_ context.Context, uid, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, cred := range p.creds {
		if cred.uid == uid {
			delete(p.creds, key)
			p.creds[strings.ToLower(email)] = cred
			return nil
		}
	}
	return &identity.ProviderError{Code: identity.CodeUserNotFound}
}

func (p *fakeProvider) SendPasswordReset(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.creds[strings.ToLower(email)]; !ok {
		return &identity.ProviderError{Code: identity.CodeUserNotFound}
	}
	p.resets = append(p.resets, email)
	return nil
}

func (p *fakeProvider) ConfirmPasswordReset(_ context.Context, token, _ string) error {
	if token != "good-reset" {
		return &identity.ProviderError{Code: identity.CodeExpiredActionCode}
	}
	return nil
}

func (p *fakeProvider) hasToken(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.tokens[token]
	return ok
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }
