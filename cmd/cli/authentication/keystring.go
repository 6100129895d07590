package authentication

// Credentials for the CLI live in the OS keyring, never on disk.
import (
	"encoding/json"
	"errors"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "commenthub-cli"
	tokenKey    = "auth_tokens"
)

// ErrNotLoggedIn is returned when no credentials are stored or they have expired.
var ErrNotLoggedIn = errors.New("not logged in, run `commenthub auth login` first")

type StoredCredentials struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	ExpiresAt   int64  `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at now.
func (c *StoredCredentials) Expired(now time.Time) bool {
	return c.ExpiresAt > 0 && now.Unix() >= c.ExpiresAt
}

func StoreTokens(creds *StoredCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, tokenKey, string(data))
}

func GetTokens() (*StoredCredentials, error) {
	value, err := keyring.Get(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}

	var creds StoredCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, err
	}
	if creds.Expired(time.Now()) {
		return nil, ErrNotLoggedIn
	}
	return &creds, nil
}

// DeleteTokens removes stored credentials; a missing entry is not an error.
func DeleteTokens() error {
	err := keyring.Delete(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
