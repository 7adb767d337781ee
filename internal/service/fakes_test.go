package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lcs-staffing/admin-console/internal/auth"
	"github.com/lcs-staffing/admin-console/internal/domain"
	"github.com/lcs-staffing/admin-console/internal/identity"
	"github.com/lcs-staffing/admin-console/internal/repository"
	"github.com/lcs-staffing/admin-console/internal/storage"
)

var errStoreDown = errors.New("store unavailable")

// opLog records cross-fake call order.
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) add(op string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

func (l *opLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

type fakeJobRepo struct {
	mu      sync.Mutex
	jobs    map[string]*domain.JobPosting
	seq     int
	clock   time.Time
	writes  int
	failAll error
	log     *opLog
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs:  map[string]*domain.JobPosting{},
		clock: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (r *fakeJobRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func copyJob(j *domain.JobPosting) *domain.JobPosting {
	cp := *j
	cp.Responsibilities = append([]string(nil), j.Responsibilities...)
	cp.Requirements = append([]string(nil), j.Requirements...)
	return &cp
}

func (r *fakeJobRepo) Create(_ context.Context, job *domain.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	r.seq++
	r.writes++
	job.ID = fmt.Sprintf("job-%d", r.seq)
	job.CreatedAt = r.tick()
	r.jobs[job.ID] = copyJob(job)
	r.log.add("repo.create")
	return nil
}

func (r *fakeJobRepo) Update(_ context.Context, job *domain.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	stored, ok := r.jobs[job.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	r.writes++
	now := r.tick()
	next := copyJob(job)
	next.Status = stored.Status
	next.CreatedAt = stored.CreatedAt
	next.DeactivatedAt = stored.DeactivatedAt
	next.ReactivatedAt = stored.ReactivatedAt
	next.UpdatedAt = &now
	job.UpdatedAt = &now
	r.jobs[job.ID] = next
	r.log.add("repo.update")
	return nil
}

// UpdateStatus stores exactly what the service computed; it applies no transition rules.
func (r *fakeJobRepo) UpdateStatus(_ context.Context, job *domain.JobPosting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	stored, ok := r.jobs[job.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	r.writes++
	stored.Status = job.Status
	stored.DeactivatedAt = job.DeactivatedAt
	stored.ReactivatedAt = job.ReactivatedAt
	r.log.add("repo.update_status")
	return nil
}

// stepClock advances one second per reading.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (r *fakeJobRepo) GetByID(_ context.Context, id string) (*domain.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	stored, ok := r.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyJob(stored), nil
}

func (r *fakeJobRepo) List(_ context.Context, filter repository.JobFilter) ([]domain.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	out := []domain.JobPosting{}
	for _, j := range r.jobs {
		if filter.Status != nil && j.Status != *filter.Status {
			continue
		}
		out = append(out, *copyJob(j))
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeJobRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	if _, ok := r.jobs[id]; !ok {
		return pgx.ErrNoRows
	}
	r.writes++
	delete(r.jobs, id)
	r.log.add("repo.delete")
	return nil
}

type fakeAdminRepo struct {
	mu        sync.Mutex
	admins    map[string]*domain.AdminAccount
	createErr error
	log       *opLog
}

func newFakeAdminRepo(accounts ...domain.AdminAccount) *fakeAdminRepo {
	r := &fakeAdminRepo{admins: map[string]*domain.AdminAccount{}}
	for i := range accounts {
		acct := accounts[i]
		r.admins[acct.ID] = &acct
	}
	return r
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *domain.AdminAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	cp := *admin
	r.admins[admin.ID] = &cp
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.AdminAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *acct
	return &cp, nil
}

func (r *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.AdminAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acct := range r.admins {
		if strings.EqualFold(acct.Email, email) {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAdminRepo) List(_ context.Context, filter repository.AdminFilter) ([]domain.AdminAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.AdminAccount{}
	for _, acct := range r.admins {
		if filter.Role != nil && acct.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && acct.IsActive != *filter.Active {
			continue
		}
		out = append(out, *acct)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *fakeAdminRepo) UpdateEmail(_ context.Context, id, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.admins[id]
	if !ok {
		return pgx.ErrNoRows
	}
	acct.Email = email
	r.log.add("admins.update-email")
	return nil
}

func (r *fakeAdminRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.admins[id]
	if !ok {
		return pgx.ErrNoRows
	}
	acct.IsActive = active
	return nil
}

func (r *fakeAdminRepo) TouchLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.admins[id]
	if !ok {
		return pgx.ErrNoRows
	}
	acct.LastLoginAt = &at
	return nil
}

type fakeAssets struct {
	mu        sync.Mutex
	seq       int
	uploadErr error
	uploaded  []string
	deleted   []string
	log       *opLog
}

func (a *fakeAssets) Upload(_ context.Context, img *storage.Image) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.uploadErr != nil {
		return "", a.uploadErr
	}
	a.seq++
	ref := fmt.Sprintf("https://cdn.test/jobs/%d_image%s", a.seq, img.Extension)
	a.uploaded = append(a.uploaded, ref)
	a.log.add("assets.upload")
	return ref, nil
}

// Delete mirrors AssetManager: failures are swallowed, so only the call is recorded.
func (a *fakeAssets) Delete(_ context.Context, ref string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted = append(a.deleted, ref)
	a.log.add("assets.delete")
}

type fakeGeocoder struct {
	err    error
	calls  int
	coords domain.Coordinates
}

func (g *fakeGeocoder) Geocode(_ context.Context, _ string) (*domain.Coordinates, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	c := g.coords
	return &c, nil
}

type fakeAccountProvider struct {
	mu       sync.Mutex
	seq      int
	emails   map[string]string
	err      error
	resetFor []string
	log      *opLog
}

func newFakeAccountProvider() *fakeAccountProvider {
	return &fakeAccountProvider{emails: map[string]string{}}
}

func (p *fakeAccountProvider) CreateUser(_ context.Context, email, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.seq++
	uid := fmt.Sprintf("uid-%d", p.seq)
	p.emails[uid] = email
	return uid, nil
}

func (p *fakeAccountProvider) UpdateEmail(_ context.Context, uid, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.emails[uid] = email
	p.log.add("provider.update-email")
	return nil
}

func (p *fakeAccountProvider) SendPasswordReset(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.resetFor = append(p.resetFor, email)
	return nil
}

// fakeIdentity is a full identity.Provider for the auth service and gate tests.
type fakeIdentity struct {
	*fakeAccountProvider
	mu        sync.Mutex
	passwords map[string]string
	tokens    map[string]string
	signInErr error
	seq       int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		fakeAccountProvider: newFakeAccountProvider(),
		passwords:           map[string]string{},
		tokens:              map[string]string{},
	}
}

func (f *fakeIdentity) add(uid, email, password string) {
	f.fakeAccountProvider.emails[uid] = email
	f.passwords[email] = password
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*identity.IssuedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	want, ok := f.passwords[email]
	if !ok {
		return nil, &identity.ProviderError{Code: identity.CodeUserNotFound}
	}
	if want != password {
		return nil, &identity.ProviderError{Code: identity.CodeWrongPassword}
	}
	var uid string
	for id, e := range f.fakeAccountProvider.emails {
		if e == email {
			uid = id
		}
	}
	f.seq++
	token := fmt.Sprintf("token-%d", f.seq)
	f.tokens[token] = uid
	return &identity.IssuedToken{Token: token, UID: uid, Email: email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeIdentity) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token]; !ok {
		return &identity.ProviderError{Code: identity.CodeInvalidCredential}
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeIdentity) VerifyToken(_ context.Context, token string) (*identity.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.tokens[token]
	if !ok {
		return nil, &identity.ProviderError{Code: identity.CodeInvalidCredential}
	}
	return &identity.Claims{UID: uid}, nil
}

func (f *fakeIdentity) ConfirmPasswordReset(_ context.Context, token, _ string) error {
	if token != "good" {
		return &identity.ProviderError{Code: identity.CodeExpiredActionCode}
	}
	return nil
}

type fakeLoginRepo struct {
	mu      sync.Mutex
	records map[string]*domain.LoginRecord
	err     error
}

func (r *fakeLoginRepo) Record(_ context.Context, rec *domain.LoginRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.records == nil {
		r.records = map[string]*domain.LoginRecord{}
	}
	prev, ok := r.records[rec.UserID]
	rec.LoginCount = 1
	if ok {
		rec.LoginCount = prev.LoginCount + 1
	}
	cp := *rec
	r.records[rec.UserID] = &cp
	return nil
}

var (
	superSession = &auth.Session{UID: "root", Email: domain.SuperAdminEmail, IsSuperAdmin: true}
	opsSession   = &auth.Session{UID: "ops", Email: "ops@lcsstaffing.com"}
)

func seedAdmins() []domain.AdminAccount {
	return []domain.AdminAccount{
		{ID: "root", Email: domain.SuperAdminEmail, Role: domain.RoleAdmin, IsSuperAdmin: true, IsActive: true},
		{ID: "ops", Email: "ops@lcsstaffing.com", Role: domain.RoleAdmin, IsActive: true},
		{ID: "retired", Email: "retired@lcsstaffing.com", Role: domain.RoleAdmin, IsActive: false},
	}
}

func pngImage() *storage.Image {
	return &storage.Image{Data: []byte("\x89PNG\r\n\x1a\n"), ContentType: "image/png", Extension: ".png"}
}

func strPtr(s string) *string { return &s }
