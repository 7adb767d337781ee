package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lcs-staffing/admin-console/internal/domain"
)

type fakeCredentials struct {
	mu    sync.Mutex
	byUID map[string]*domain.Credential
	err   error
}

func newFakeCredentials() *fakeCredentials {
	return &fakeCredentials{byUID: map[string]*domain.Credential{}}
}

func (f *fakeCredentials) Create(_ context.Context, cred *domain.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cred.UID = uuid.NewString()
	cred.CreatedAt = time.Now()
	cred.UpdatedAt = cred.CreatedAt
	cp := *cred
	f.byUID[cred.UID] = &cp
	return nil
}

func (f *fakeCredentials) GetByUID(_ context.Context, uid string) (*domain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cred, ok := f.byUID[uid]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *cred
	return &cp, nil
}

func (f *fakeCredentials) GetByEmail(_ context.Context, email string) (*domain.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, cred := range f.byUID {
		if strings.EqualFold(cred.Email, email) {
			cp := *cred
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCredentials) UpdateEmail(_ context.Context, uid, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cred, ok := f.byUID[uid]
	if !ok {
		return pgx.ErrNoRows
	}
	cred.Email = email
	return nil
}

func (f *fakeCredentials) UpdatePassword(_ context.Context, uid, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cred, ok := f.byUID[uid]
	if !ok {
		return pgx.ErrNoRows
	}
	cred.PasswordHash = hash
	return nil
}

type fakeResets struct {
	mu     sync.Mutex
	tokens map[string]*domain.PasswordResetToken
}

func newFakeResets() *fakeResets {
	return &fakeResets{tokens: map[string]*domain.PasswordResetToken{}}
}

func (f *fakeResets) Create(_ context.Context, token *domain.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	cp := *token
	f.tokens[token.Token] = &cp
	return nil
}

func (f *fakeResets) GetByToken(_ context.Context, token string) (*domain.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeResets) MarkUsed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, t := range f.tokens {
		if t.ID == id {
			t.UsedAt = &now
		}
	}
	return nil
}

func (f *fakeResets) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.tokens {
		if t.ExpiresAt.Before(before) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  map[string]string
	fails error
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails != nil {
		return m.fails
	}
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[email] = link
	return nil
}
