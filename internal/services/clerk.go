package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cv-checker/internal/models"
	"cv-checker/internal/repositories"
)

var (
	ErrMissingUserData  = errors.New("missing required user data in webhook payload")
	ErrClerkUnavailable = errors.New("identity provider request failed")
)

type ClerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type ClerkUserData struct {
	ID                    string              `json:"id"`
	EmailAddresses        []ClerkEmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	ProfileImageURL       string              `json:"profile_image_url"`
}

type ClerkEvent struct {
	Type string        `json:"type"`
	Data ClerkUserData `json:"data"`
}

// PrimaryEmail resolves the primary email address, falling back to the
// first listed address.
func (d *ClerkUserData) PrimaryEmail() string {
	for _, email := range d.EmailAddresses {
		if email.ID == d.PrimaryEmailAddressID {
			return email.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

// ClerkService synchronizes user accounts from the identity provider:
// webhook events keep the local users table in step, and bearer tokens on
// the /api/users surface are verified against the provider's API.
type ClerkService struct {
	userRepo      repositories.UserRepository
	secretKey     string
	webhookSecret string
	apiBase       string
	httpClient    *http.Client
	logger        *zap.Logger
}

func NewClerkService(userRepo repositories.UserRepository, secretKey, webhookSecret, apiBase string, logger *zap.Logger) *ClerkService {
	return &ClerkService{
		userRepo:      userRepo,
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		apiBase:       strings.TrimRight(apiBase, "/"),
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		logger:        logger,
	}
}

// VerifyWebhook checks the HMAC-SHA256 signature over the raw payload. The
// provider sends the signature as "v1,<hex hash>". An unset webhook secret
// skips verification.
func (s *ClerkService) VerifyWebhook(payload []byte, signature string) bool {
	if s.webhookSecret == "" {
		s.logger.Warn("webhook secret not set, skipping signature verification")
		return true
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	signatureHash := signature
	if idx := strings.Index(signature, ","); idx != -1 {
		signatureHash = signature[idx+1:]
	}

	return hmac.Equal([]byte(expected), []byte(signatureHash))
}

// HandleUserCreated processes a user.created event. Creation is idempotent:
// an already-synced user is returned as-is.
func (s *ClerkService) HandleUserCreated(event *ClerkEvent) (*models.User, error) {
	data := event.Data
	email := data.PrimaryEmail()
	if data.ID == "" || email == "" {
		return nil, ErrMissingUserData
	}

	if existing, err := s.userRepo.FindByClerkID(data.ID); err == nil {
		s.logger.Info("user already exists", zap.String("clerk_user_id", data.ID))
		return existing, nil
	}

	clerkID := data.ID
	user := &models.User{
		ID:              uuid.New(),
		ClerkUserID:     &clerkID,
		Email:           email,
		FirstName:       data.FirstName,
		LastName:        data.LastName,
		ProfileImageURL: data.ProfileImageURL,
		IsActive:        true,
		CreatedAt:       time.Now(),
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.logger.Info("created user from webhook",
		zap.String("clerk_user_id", data.ID),
		zap.String("email", email))
	return user, nil
}

// HandleUserUpdated processes a user.updated event.
func (s *ClerkService) HandleUserUpdated(event *ClerkEvent) (*models.User, error) {
	data := event.Data
	if data.ID == "" {
		return nil, ErrMissingUserData
	}

	user, err := s.userRepo.FindByClerkID(data.ID)
	if err != nil {
		return nil, err
	}

	if email := data.PrimaryEmail(); email != "" {
		user.Email = email
	}
	user.FirstName = data.FirstName
	user.LastName = data.LastName
	user.ProfileImageURL = data.ProfileImageURL

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	s.logger.Info("updated user from webhook", zap.String("clerk_user_id", data.ID))
	return user, nil
}

// HandleUserDeleted processes a user.deleted event by soft-deactivating the
// account.
func (s *ClerkService) HandleUserDeleted(event *ClerkEvent) error {
	if event.Data.ID == "" {
		return ErrMissingUserData
	}

	user, err := s.userRepo.FindByClerkID(event.Data.ID)
	if err != nil {
		return err
	}

	if err := s.userRepo.Deactivate(user.ID); err != nil {
		return err
	}

	s.logger.Info("deactivated user from webhook", zap.String("clerk_user_id", event.Data.ID))
	return nil
}

// SyncUser upserts a user from a provider payload. Used when a verified
// token arrives for a user the webhooks have not delivered yet.
func (s *ClerkService) SyncUser(data *ClerkUserData) (*models.User, error) {
	if data.ID == "" {
		return nil, ErrMissingUserData
	}

	user, err := s.userRepo.FindByClerkID(data.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, err
		}
		return s.HandleUserCreated(&ClerkEvent{Type: "user.created", Data: *data})
	}

	if email := data.PrimaryEmail(); email != "" {
		user.Email = email
	}
	user.FirstName = data.FirstName
	user.LastName = data.LastName
	user.ProfileImageURL = data.ProfileImageURL

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyToken verifies a session token against the provider API and returns
// the provider's user id.
func (s *ClerkService) VerifyToken(ctx context.Context, token string) (string, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/tokens/verify", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrClerkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token verification failed with status %d", resp.StatusCode)
	}

	var tokenData struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenData); err != nil {
		return "", err
	}
	if tokenData.Sub == "" {
		return "", errors.New("token verification response missing subject")
	}

	return tokenData.Sub, nil
}

// FetchUser retrieves a user record from the provider API.
func (s *ClerkService) FetchUser(ctx context.Context, clerkUserID string) (*ClerkUserData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+"/users/"+clerkUserID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClerkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user fetch failed with status %d", resp.StatusCode)
	}

	var data ClerkUserData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	return &data, nil
}
