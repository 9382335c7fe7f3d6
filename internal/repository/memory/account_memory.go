package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/repository"
)

// MemoryAccountRepository implements AccountRepository in memory (NOT FOR PRODUCTION).
type MemoryAccountRepository struct {
	accounts   map[string]models.Account // ID -> Account
	byEmail    map[string]string         // Email -> ID
	byUsername map[string]string         // Username -> ID
	mutex      sync.RWMutex
}

// NewMemoryAccountRepository creates a new in-memory account repository.
func NewMemoryAccountRepository() repository.AccountRepository {
	return &MemoryAccountRepository{
		accounts:   make(map[string]models.Account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (r *MemoryAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		return repository.ErrAccountExists
	}
	if _, exists := r.byEmail[account.Email]; exists {
		return repository.ErrEmailInUse
	}
	if _, exists := r.byUsername[account.Username]; exists {
		return repository.ErrUsernameInUse
	}

	r.accounts[account.ID] = *account
	r.byEmail[account.Email] = account.ID
	r.byUsername[account.Username] = account.ID
	return nil
}

func (r *MemoryAccountRepository) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.get(id)
}

func (r *MemoryAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.get(r.byEmail[email])
}

func (r *MemoryAccountRepository) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.get(r.byUsername[username])
}

// get returns a copy so callers cannot mutate stored state. Caller holds the lock.
func (r *MemoryAccountRepository) get(id string) (*models.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return &account, nil
}

func (r *MemoryAccountRepository) UpdateAccount(ctx context.Context, id string, update models.AccountUpdate) (*models.Account, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	if update.Email != nil && *update.Email != account.Email {
		if _, taken := r.byEmail[*update.Email]; taken {
			return nil, repository.ErrEmailInUse
		}
	}
	if update.Username != nil && *update.Username != account.Username {
		if _, taken := r.byUsername[*update.Username]; taken {
			return nil, repository.ErrUsernameInUse
		}
	}

	delete(r.byEmail, account.Email)
	delete(r.byUsername, account.Username)
	update.Apply(&account)
	account.UpdatedAt = time.Now().UTC()
	r.byEmail[account.Email] = id
	r.byUsername[account.Username] = id
	r.accounts[id] = account

	return &account, nil
}

func (r *MemoryAccountRepository) UpdateCredential(ctx context.Context, id string, cred models.Credential) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.SetCredential(cred)
	account.UpdatedAt = time.Now().UTC()
	r.accounts[id] = account
	return nil
}

func (r *MemoryAccountRepository) DeleteAccount(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	delete(r.accounts, id)
	delete(r.byEmail, account.Email)
	delete(r.byUsername, account.Username)
	return nil
}
