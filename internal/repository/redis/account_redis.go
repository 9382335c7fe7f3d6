package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/repository"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// maxTxRetries bounds optimistic retries of a WATCHed account write.
const maxTxRetries = 3

// RedisAccountRepository implements AccountRepository using Redis.
// Records live at account:{id}; email and username are unique indexes pointing back at the id.
type RedisAccountRepository struct {
	client *redis.Client
}

func makeAccountKey(id string) string {
	return fmt.Sprintf("account:%s", id)
}

func makeEmailIndexKey(email string) string {
	return fmt.Sprintf("account_email:%s", email)
}

func makeUsernameIndexKey(username string) string {
	return fmt.Sprintf("account_username:%s", username)
}

func NewRedisAccountRepository(client *redis.Client) repository.AccountRepository {
	return &RedisAccountRepository{
		client: client,
	}
}

// CreateAccount claims the email and username indexes, then stores the record.
// Claims are released again if either index is already taken.
func (r *RedisAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if account == nil || account.ID == "" {
		return errors.New("invalid account data: ID must be set")
	}

	jsonData, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	emailKey := makeEmailIndexKey(account.Email)
	usernameKey := makeUsernameIndexKey(account.Username)

	pipe := r.client.TxPipeline()
	emailClaim := pipe.SetNX(ctx, emailKey, account.ID, 0)
	usernameClaim := pipe.SetNX(ctx, usernameKey, account.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute account index pipeline: %w", err)
	}

	if !emailClaim.Val() || !usernameClaim.Val() {
		var release []string
		if emailClaim.Val() {
			release = append(release, emailKey)
		}
		if usernameClaim.Val() {
			release = append(release, usernameKey)
		}
		r.releaseClaims(ctx, account.ID, release)
		if !emailClaim.Val() {
			return repository.ErrEmailInUse
		}
		return repository.ErrUsernameInUse
	}

	created, err := r.client.SetNX(ctx, makeAccountKey(account.ID), jsonData, 0).Result()
	if err != nil || !created {
		r.releaseClaims(ctx, account.ID, []string{emailKey, usernameKey})
		if err != nil {
			return fmt.Errorf("redis SETNX failed: %w", err)
		}
		return repository.ErrAccountExists
	}
	return nil
}

func (r *RedisAccountRepository) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getAccount(ctx, r.client, id)
}

func (r *RedisAccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getAccountByIndex(ctx, makeEmailIndexKey(email))
}

func (r *RedisAccountRepository) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getAccountByIndex(ctx, makeUsernameIndexKey(username))
}

func (r *RedisAccountRepository) getAccountByIndex(ctx context.Context, indexKey string) (*models.Account, error) {
	id, err := r.client.Get(ctx, indexKey).Result()
	if err == redis.Nil {
		return nil, repository.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}
	return r.getAccount(ctx, r.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisAccountRepository) getAccount(ctx context.Context, c getter, id string) (*models.Account, error) {
	jsonData, err := c.Get(ctx, makeAccountKey(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}

	var account models.Account
	if err := json.Unmarshal(jsonData, &account); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	return &account, nil
}

// UpdateAccount rewrites the record under WATCH. New email and username indexes are
// claimed before the commit and released again if the commit does not happen.
func (r *RedisAccountRepository) UpdateAccount(ctx context.Context, id string, update models.AccountUpdate) (*models.Account, error) {
	var updated *models.Account

	err := r.mutate(ctx, id, func(account *models.Account) (indexChange, error) {
		var change indexChange
		oldEmail, oldUsername := account.Email, account.Username
		update.Apply(account)

		if account.Email != oldEmail {
			key := makeEmailIndexKey(account.Email)
			ok, err := r.client.SetNX(ctx, key, id, 0).Result()
			if err != nil {
				return change, fmt.Errorf("redis SETNX failed: %w", err)
			}
			if !ok {
				return change, repository.ErrEmailInUse
			}
			change.claimed = append(change.claimed, key)
			change.released = append(change.released, makeEmailIndexKey(oldEmail))
		}
		if account.Username != oldUsername {
			key := makeUsernameIndexKey(account.Username)
			ok, err := r.client.SetNX(ctx, key, id, 0).Result()
			if err != nil {
				return change, fmt.Errorf("redis SETNX failed: %w", err)
			}
			if !ok {
				return change, repository.ErrUsernameInUse
			}
			change.claimed = append(change.claimed, key)
			change.released = append(change.released, makeUsernameIndexKey(oldUsername))
		}

		updated = account
		return change, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RedisAccountRepository) UpdateCredential(ctx context.Context, id string, cred models.Credential) error {
	return r.mutate(ctx, id, func(account *models.Account) (indexChange, error) {
		account.SetCredential(cred)
		return indexChange{}, nil
	})
}

// indexChange lists the index keys an update claimed ahead of its commit and the
// keys it gives up once the commit succeeds.
type indexChange struct {
	claimed  []string
	released []string
}

// mutate loads the account under WATCH, lets fn change it, then writes it back
// together with deleting the index keys fn released. Claims of a failed attempt
// are always given back.
func (r *RedisAccountRepository) mutate(ctx context.Context, id string, fn func(account *models.Account) (indexChange, error)) error {
	accountKey := makeAccountKey(id)

	return r.watchAccount(ctx, id, func(tx *redis.Tx) error {
		account, err := r.getAccount(ctx, tx, id)
		if err != nil {
			return err
		}

		change, err := fn(account)
		if err == nil {
			err = r.commit(ctx, tx, accountKey, account, change.released)
		}
		if err != nil {
			r.releaseClaims(ctx, id, change.claimed)
			return err
		}
		return nil
	})
}

func (r *RedisAccountRepository) commit(ctx context.Context, tx *redis.Tx, accountKey string, account *models.Account, released []string) error {
	account.UpdatedAt = time.Now().UTC()

	jsonData, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, accountKey, jsonData, 0)
		if len(released) > 0 {
			pipe.Del(ctx, released...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to execute account update pipeline: %w", err)
	}
	return nil
}

// watchAccount runs fn under WATCH on the account record, retrying when another
// client changed the record between the read and the commit.
func (r *RedisAccountRepository) watchAccount(ctx context.Context, id string, fn func(tx *redis.Tx) error) error {
	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err := r.client.Watch(ctx, fn, makeAccountKey(id))
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		log.Debug().Str("accountId", id).Int("attempt", attempt).Msg("Account changed during transaction, retrying")
	}
	return fmt.Errorf("account %s changed concurrently: %w", id, redis.TxFailedErr)
}

// releaseIndexScript deletes an index key only while it still points at the given account id.
var releaseIndexScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (r *RedisAccountRepository) releaseClaims(ctx context.Context, id string, keys []string) {
	for _, key := range keys {
		if err := releaseIndexScript.Run(ctx, r.client, []string{key}, id).Err(); err != nil {
			log.Error().Err(err).Str("accountId", id).Str("key", key).Msg("Failed to release account index")
		}
	}
}

// DeleteAccount removes the record and both index entries under WATCH, so an
// index changed by a concurrent update is never left behind.
func (r *RedisAccountRepository) DeleteAccount(ctx context.Context, id string) error {
	accountKey := makeAccountKey(id)

	return r.watchAccount(ctx, id, func(tx *redis.Tx) error {
		account, err := r.getAccount(ctx, tx, id)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, accountKey)
			pipe.Del(ctx, makeEmailIndexKey(account.Email))
			pipe.Del(ctx, makeUsernameIndexKey(account.Username))
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to execute account delete pipeline: %w", err)
		}
		return nil
	})
}
