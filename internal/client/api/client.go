// Package api implements the HTTP client for the panel backend. It decodes
// the backend's error contract into sentinel errors so flow controllers can
// route failures with errors.Is instead of matching message strings.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dkarlovs/tacpanel/internal/common"
)

// ErrUnavailable marks transport-level failures (connection refused, DNS,
// timeouts) as opposed to HTTP-level rejections.
var ErrUnavailable = fmt.Errorf("server unavailable")

// APIError is a non-2xx response that does not map to a sentinel.
type APIError struct {
	Status int
	Detail string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Detail)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) CheckFirstRun(ctx context.Context) (bool, error) {
	var out struct {
		IsFirstRun bool `json:"is_first_run"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/check-first-run", "", nil, &out); err != nil {
		return false, err
	}
	return out.IsFirstRun, nil
}

func (c *Client) PasswordConfig(ctx context.Context) (*PasswordConfig, error) {
	out := &PasswordConfig{}
	if err := c.do(ctx, http.MethodGet, "/api/auth/password-config", "", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, username, password, totpCode string) (*TokenResponse, error) {
	body := map[string]string{"username": username, "password": password}
	if totpCode != "" {
		body["totp_code"] = totpCode
	}
	out := &TokenResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, out); err != nil {
		return nil, err
	}
	return out, nil
}

func registrationBody(username, password string, answers [4]string) map[string]any {
	return map[string]any{
		"username": username,
		"password": password,
		"security_questions": map[string]string{
			"question1": answers[0],
			"question2": answers[1],
			"question3": answers[2],
			"question4": answers[3],
		},
	}
}

func (c *Client) Register(ctx context.Context, username, password string, answers [4]string) (*TokenResponse, error) {
	out := &TokenResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", registrationBody(username, password, answers), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FirstTimeSetup(ctx context.Context, username, password string, answers [4]string) (*TokenResponse, error) {
	out := &TokenResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/auth/first-time-setup", "", registrationBody(username, password, answers), out); err != nil {
		return nil, err
	}
	return out, nil
}

// SecurityQuestionsExist confirms the user can proceed with recovery. The
// backend deliberately answers 404 for both unknown users and users without
// questions; that surfaces here as common.ErrorNotFound.
func (c *Client) SecurityQuestionsExist(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodGet, "/api/auth/security-questions/"+username, "", nil, nil)
}

func (c *Client) ResetPassword(ctx context.Context, username string, answers [4]string, newPassword string) error {
	body := map[string]string{
		"username":     username,
		"answer1":      answers[0],
		"answer2":      answers[1],
		"answer3":      answers[2],
		"answer4":      answers[3],
		"new_password": newPassword,
	}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", "", body, nil)
}

func (c *Client) TOTPSetup(ctx context.Context, token string) (*TOTPSetup, error) {
	out := &TOTPSetup{}
	if err := c.do(ctx, http.MethodPost, "/api/auth/totp/setup", token, map[string]string{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TOTPVerify(ctx context.Context, token, code string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/totp/verify", token, map[string]string{"totp_code": code}, nil)
}

func (c *Client) TOTPStatus(ctx context.Context, token string) (bool, error) {
	var out struct {
		Enabled bool `json:"totp_enabled"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/totp/status", token, nil, &out); err != nil {
		return false, err
	}
	return out.Enabled, nil
}

func (c *Client) Servers(ctx context.Context, token string) ([]Server, error) {
	var out []Server
	if err := c.do(ctx, http.MethodGet, "/api/servers", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateServer(ctx context.Context, token string, params CreateServerParams) (*Server, error) {
	out := &Server{}
	if err := c.do(ctx, http.MethodPost, "/api/servers", token, params, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateServer(ctx context.Context, token, id string, params UpdateServerParams) (*Server, error) {
	out := &Server{}
	if err := c.do(ctx, http.MethodPatch, "/api/servers/"+id, token, params, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SystemResources(ctx context.Context, token string) (*SystemResources, error) {
	out := &SystemResources{}
	if err := c.do(ctx, http.MethodGet, "/api/system/resources", token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteServer(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/servers/"+id, token, nil, nil)
}

// ServerAction runs a lifecycle action ("start", "stop", "restart") and
// returns the resulting state.
func (c *Client) ServerAction(ctx context.Context, token, id, action string) (*Server, error) {
	out := &Server{}
	if err := c.do(ctx, http.MethodPost, "/api/servers/"+id+"/"+action, token, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return err
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Detail string `json:"detail"`
		Code   string `json:"code"`
	}
	// A missing or malformed body still maps by status code.
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch body.Code {
	case "totp_required":
		return common.ErrSecondFactorRequired
	case "totp_invalid":
		return common.ErrInvalidTOTPCode
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if body.Detail == "" {
			body.Detail = "unauthorized"
		}
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, body.Detail)
	case http.StatusNotFound:
		if body.Detail == "" {
			body.Detail = "not found"
		}
		return fmt.Errorf("%w: %s", common.ErrorNotFound, body.Detail)
	default:
		if body.Detail == "" {
			body.Detail = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Detail: body.Detail, Code: body.Code}
	}
}
