package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/elskow/transcendence/internal/apperr"
	"github.com/elskow/transcendence/internal/config"
)

// FortyTwoProfile is the subset of the 42 intranet /v2/me payload we keep.
type FortyTwoProfile struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

type FortyTwoProvider struct {
	config *config.OAuthConfig
	oauth  *oauth2.Config
	log    *zap.Logger
}

func NewFortyTwoProvider(cfg *config.OAuthConfig, log *zap.Logger) *FortyTwoProvider {
	return &FortyTwoProvider{
		config: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		log: log,
	}
}

func (p *FortyTwoProvider) Enabled() bool {
	return p.config.Enabled()
}

func (p *FortyTwoProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func NewState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Profile exchanges the authorization code and fetches the caller's profile.
func (p *FortyTwoProvider) Profile(ctx context.Context, code string) (*FortyTwoProfile, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.BadCredential("failed to exchange authorization code")
	}
	return p.fetchProfile(ctx, p.oauth.Client(ctx, token))
}

// fetchProfile retries while the intranet answers 429, waiting for
// Retry-After when it is given and backing off exponentially otherwise.
func (p *FortyTwoProvider) fetchProfile(ctx context.Context, client *http.Client) (*FortyTwoProfile, error) {
	base := p.config.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	backoff := retry.WithMaxRetries(p.config.MaxRetries, retry.NewExponential(base))

	var profile FortyTwoProfile
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.ProfileURL, nil)
		if err != nil {
			return err
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp.Header)
			p.log.Warn("42 api rate limited",
				zap.Duration("retry_after", wait))
			if wait > 0 {
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return retry.RetryableError(errRateLimited)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("42 api returned status %d", resp.StatusCode)
		}

		return json.NewDecoder(resp.Body).Decode(&profile)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch 42 profile: %w", err)
	}

	if profile.Login == "" {
		return nil, errors.New("fetch 42 profile: empty login")
	}
	return &profile, nil
}

var errRateLimited = errors.New("rate limited")

func retryAfter(header http.Header) time.Duration {
	if value := header.Get("Retry-After"); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

// LoginWithFortyTwo finds or creates the local user behind a 42 profile.
func (s *Service) LoginWithFortyTwo(ctx context.Context, profile *FortyTwoProfile) (*User, error) {
	user, err := s.repository.GetUserByFortyTwoLogin(ctx, profile.Login)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	email := strings.ToLower(profile.Email)
	if email != "" {
		user, err = s.repository.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			// only passwordless, unlinked accounts are linked by email
			if user.PasswordHash != nil || user.FortyTwoLogin != nil {
				s.log.Warn("42 login collides with an existing account",
					zap.String("login", profile.Login),
					zap.String("user_id", user.ID.String()))
				return nil, apperr.Conflict("an account with that email already exists")
			}
			if err := s.repository.SetFortyTwoLogin(ctx, user.ID, profile.Login); err != nil {
				return nil, err
			}
			login := profile.Login
			user.FortyTwoLogin = &login
			return user, nil
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
	}

	login := profile.Login
	user = &User{
		Name:          profile.Login,
		Email:         email,
		FortyTwoLogin: &login,
	}
	if user.Email == "" {
		user.Email = profile.Login + "@student.42.fr"
	}

	err = s.repository.CreateUser(ctx, user)
	if errors.Is(err, apperr.ErrConflict) {
		// the login is already taken as a local name
		user.Name = fmt.Sprintf("%s_42", profile.Login)
		err = s.repository.CreateUser(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered through 42", zap.String("login", profile.Login))
	return user, nil
}
