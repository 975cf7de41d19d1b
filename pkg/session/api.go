package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// User mirrors the public identity fields the server returns.
type User struct {
	ID                string  `json:"id"`
	Name              string  `json:"nombre"`
	Email             string  `json:"correo"`
	Role              string  `json:"rol"`
	OperationCenterID *string `json:"centroOperacionId"`
	Active            bool    `json:"activo"`
}

type loginResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// FetchCSRFToken primes the cookie jar with the double-submit cookie and
// returns its value. Call it once before the first mutating request.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/v1/auth/csrf"), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("csrf endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.CSRFToken, nil
}

// Login authenticates and persists the returned token pair. The login POST
// is CSRF-exempt on the server, so it works from a cold start.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	req, err := c.NewJSONRequest(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"correo":   email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("login rejected with status %d", resp.StatusCode)
	}

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	c.store.SetPair(payload.AccessToken, payload.RefreshToken)
	return &payload.User, nil
}

// Logout revokes the session server-side and drops local state. The server
// answers 200 regardless, so local state is always cleared.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.NewJSONRequest(ctx, http.MethodPost, "/v1/auth/logout", map[string]string{
		"refreshToken": c.store.RefreshToken(),
	})
	if err != nil {
		return err
	}
	c.decorate(req, c.store.AccessToken())

	resp, err := c.httpc.Do(req)
	if err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	c.store.Clear()
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/v1/auth/me"), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("me endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		Authenticated bool `json:"authenticated"`
		User          User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload.User, nil
}
