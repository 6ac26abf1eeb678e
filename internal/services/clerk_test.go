package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cv-checker/internal/repositories"
)

func newTestClerkService(repo repositories.UserRepository, webhookSecret, apiBase string) *ClerkService {
	return NewClerkService(repo, "sk_test_key", webhookSecret, apiBase, zap.NewNop())
}

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "v1," + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhook(t *testing.T) {
	payload := []byte(`{"type":"user.created"}`)

	t.Run("valid signature", func(t *testing.T) {
		svc := newTestClerkService(newMemoryUserRepo(), "whsec_test", "")
		assert.True(t, svc.VerifyWebhook(payload, signPayload("whsec_test", payload)))
	})

	t.Run("signature without version prefix", func(t *testing.T) {
		svc := newTestClerkService(newMemoryUserRepo(), "whsec_test", "")
		mac := hmac.New(sha256.New, []byte("whsec_test"))
		mac.Write(payload)
		assert.True(t, svc.VerifyWebhook(payload, hex.EncodeToString(mac.Sum(nil))))
	})

	t.Run("wrong secret", func(t *testing.T) {
		svc := newTestClerkService(newMemoryUserRepo(), "whsec_test", "")
		assert.False(t, svc.VerifyWebhook(payload, signPayload("whsec_other", payload)))
	})

	t.Run("tampered payload", func(t *testing.T) {
		svc := newTestClerkService(newMemoryUserRepo(), "whsec_test", "")
		signature := signPayload("whsec_test", payload)
		assert.False(t, svc.VerifyWebhook([]byte(`{"type":"user.deleted"}`), signature))
	})

	t.Run("empty secret skips verification", func(t *testing.T) {
		svc := newTestClerkService(newMemoryUserRepo(), "", "")
		assert.True(t, svc.VerifyWebhook(payload, "garbage"))
	})
}

func TestPrimaryEmailResolution(t *testing.T) {
	tests := []struct {
		name     string
		data     ClerkUserData
		expected string
	}{
		{
			name: "primary id match",
			data: ClerkUserData{
				PrimaryEmailAddressID: "em_2",
				EmailAddresses: []ClerkEmailAddress{
					{ID: "em_1", EmailAddress: "old@example.com"},
					{ID: "em_2", EmailAddress: "primary@example.com"},
				},
			},
			expected: "primary@example.com",
		},
		{
			name: "falls back to first address",
			data: ClerkUserData{
				PrimaryEmailAddressID: "em_missing",
				EmailAddresses: []ClerkEmailAddress{
					{ID: "em_1", EmailAddress: "first@example.com"},
				},
			},
			expected: "first@example.com",
		},
		{
			name:     "no addresses",
			data:     ClerkUserData{PrimaryEmailAddressID: "em_1"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.data.PrimaryEmail())
		})
	}
}

func testUserEvent(eventType, clerkID, email string) *ClerkEvent {
	return &ClerkEvent{
		Type: eventType,
		Data: ClerkUserData{
			ID:                    clerkID,
			PrimaryEmailAddressID: "em_1",
			EmailAddresses:        []ClerkEmailAddress{{ID: "em_1", EmailAddress: email}},
			FirstName:             "Jane",
			LastName:              "Doe",
		},
	}
}

func TestHandleUserCreated(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestClerkService(repo, "whsec_test", "")

	user, err := svc.HandleUserCreated(testUserEvent("user.created", "user_123", "jane@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.ClerkUserID)
	assert.Equal(t, "user_123", *user.ClerkUserID)

	// Replayed events must not create a second account.
	again, err := svc.HandleUserCreated(testUserEvent("user.created", "user_123", "jane@example.com"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Len(t, repo.users, 1)
}

func TestHandleUserCreatedRejectsIncompleteData(t *testing.T) {
	svc := newTestClerkService(newMemoryUserRepo(), "whsec_test", "")

	t.Run("missing id", func(t *testing.T) {
		_, err := svc.HandleUserCreated(testUserEvent("user.created", "", "jane@example.com"))
		assert.ErrorIs(t, err, ErrMissingUserData)
	})

	t.Run("missing email", func(t *testing.T) {
		event := &ClerkEvent{Type: "user.created", Data: ClerkUserData{ID: "user_123"}}
		_, err := svc.HandleUserCreated(event)
		assert.ErrorIs(t, err, ErrMissingUserData)
	})
}

func TestHandleUserUpdated(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestClerkService(repo, "whsec_test", "")

	_, err := svc.HandleUserCreated(testUserEvent("user.created", "user_123", "jane@example.com"))
	require.NoError(t, err)

	updated := testUserEvent("user.updated", "user_123", "jane.doe@example.com")
	updated.Data.LastName = "Smith"

	user, err := svc.HandleUserUpdated(updated)
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", user.Email)
	assert.Equal(t, "Smith", user.LastName)
}

func TestHandleUserUpdatedUnknownUser(t *testing.T) {
	svc := newTestClerkService(newMemoryUserRepo(), "whsec_test", "")

	_, err := svc.HandleUserUpdated(testUserEvent("user.updated", "user_unknown", "x@example.com"))
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestHandleUserDeletedDeactivates(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestClerkService(repo, "whsec_test", "")

	created, err := svc.HandleUserCreated(testUserEvent("user.created", "user_123", "jane@example.com"))
	require.NoError(t, err)

	require.NoError(t, svc.HandleUserDeleted(&ClerkEvent{Type: "user.deleted", Data: ClerkUserData{ID: "user_123"}}))

	user, err := repo.FindByID(created.ID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestSyncUserUpserts(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestClerkService(repo, "whsec_test", "")

	data := &ClerkUserData{
		ID:                    "user_999",
		PrimaryEmailAddressID: "em_1",
		EmailAddresses:        []ClerkEmailAddress{{ID: "em_1", EmailAddress: "sync@example.com"}},
		FirstName:             "Sam",
	}

	created, err := svc.SyncUser(data)
	require.NoError(t, err)
	assert.Equal(t, "sync@example.com", created.Email)

	data.FirstName = "Samuel"
	updated, err := svc.SyncUser(data)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Samuel", updated.FirstName)
	assert.Len(t, repo.users, 1)
}

func TestVerifyTokenAgainstProviderAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tokens/verify", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"user_123"}`))
	}))
	defer server.Close()

	svc := newTestClerkService(newMemoryUserRepo(), "", server.URL)

	sub, err := svc.VerifyToken(context.Background(), "session-token")
	require.NoError(t, err)
	assert.Equal(t, "user_123", sub)
}

func TestVerifyTokenRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := newTestClerkService(newMemoryUserRepo(), "", server.URL)

	_, err := svc.VerifyToken(context.Background(), "bad-token")
	assert.Error(t, err)
}

func TestFetchUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/user_123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "user_123",
			"primary_email_address_id": "em_1",
			"email_addresses": [{"id": "em_1", "email_address": "jane@example.com"}],
			"first_name": "Jane"
		}`))
	}))
	defer server.Close()

	svc := newTestClerkService(newMemoryUserRepo(), "", server.URL)

	data, err := svc.FetchUser(context.Background(), "user_123")
	require.NoError(t, err)
	assert.Equal(t, "user_123", data.ID)
	assert.Equal(t, "jane@example.com", data.PrimaryEmail())
	assert.Equal(t, "Jane", data.FirstName)
}
