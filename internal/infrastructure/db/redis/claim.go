package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultClaimTTL = 10 * time.Second

// RegistrationClaims reserves usernames and emails while a registration is in
// flight. Keys: claim:username:<username> and claim:email:<email>.
// Claims expire after ttl so a crashed registration cannot block a name forever.
type RegistrationClaims struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRegistrationClaims(client *redis.Client, ttl time.Duration) *RegistrationClaims {
	if ttl <= 0 {
		ttl = defaultClaimTTL
	}
	return &RegistrationClaims{client: client, ttl: ttl}
}

// Claim takes both keys with SET NX. If the email key is already held the
// username claim taken a moment earlier is rolled back.
func (c *RegistrationClaims) Claim(ctx context.Context, username, email string) (bool, error) {
	ok, err := c.client.SetNX(ctx, usernameKey(username), "1", c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim username: %w", err)
	}
	if !ok {
		return false, nil
	}

	ok, err = c.client.SetNX(ctx, emailKey(email), "1", c.ttl).Result()
	if err != nil || !ok {
		_ = c.client.Del(ctx, usernameKey(username)).Err()
		if err != nil {
			return false, fmt.Errorf("claim email: %w", err)
		}
		return false, nil
	}
	return true, nil
}

// Release drops both claims.
func (c *RegistrationClaims) Release(ctx context.Context, username, email string) error {
	if err := c.client.Del(ctx, usernameKey(username), emailKey(email)).Err(); err != nil {
		return fmt.Errorf("release claim: %w", err)
	}
	return nil
}

func usernameKey(username string) string {
	return "claim:username:" + username
}

func emailKey(email string) string {
	return "claim:email:" + email
}
