package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"

	"rewear/internal/domain/entity"
	"rewear/pkg/logger"
)

const signInWithCustomTokenURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithCustomToken?key="

// FirebaseAuthClient mirrors store users into Firebase Authentication under the same UID.
type FirebaseAuthClient struct {
	client     *auth.Client
	apiKey     string
	httpClient *http.Client
}

// NewFirebaseAuthClient takes an optional web API key. With a key, IssueToken returns an ID token
// the server can verify; without one it returns a custom token the client must exchange itself.
func NewFirebaseAuthClient(client *auth.Client, apiKey string) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client:     client,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *FirebaseAuthClient) RegisterIdentity(ctx context.Context, user *entity.User, password string) error {
	params := (&auth.UserToCreate{}).
		UID(user.ID).
		Email(user.Email).
		Password(password).
		DisplayName(user.Name)

	if _, err := f.client.CreateUser(ctx, params); err != nil {
		if auth.IsEmailAlreadyExists(err) || auth.IsUIDAlreadyExists(err) {
			logger.Warn("firebase identity for %s already exists", user.ID)
			return nil
		}
		return err
	}
	return nil
}

func (f *FirebaseAuthClient) IssueToken(ctx context.Context, user *entity.User) (string, error) {
	customToken, err := f.client.CustomTokenWithClaims(ctx, user.ID, map[string]interface{}{"role": user.Role})
	if err != nil {
		return "", err
	}

	if f.apiKey == "" {
		return customToken, nil
	}
	return f.exchangeCustomTokenForIDToken(ctx, customToken)
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}
	return result.UID, nil
}

// DeleteIdentity removes the Firebase account. A missing account is not an error.
func (f *FirebaseAuthClient) DeleteIdentity(ctx context.Context, userID string) error {
	if err := f.client.DeleteUser(ctx, userID); err != nil && !auth.IsUserNotFound(err) {
		return err
	}
	return nil
}

func (f *FirebaseAuthClient) exchangeCustomTokenForIDToken(ctx context.Context, customToken string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"token":             customToken,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signInWithCustomTokenURL+f.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to exchange custom token: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("custom token exchange failed with status %d", resp.StatusCode)
	}

	var result struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode token exchange response: %v", err)
	}
	return result.IDToken, nil
}
