package daikin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"home-climate/internal/infra"
)

// Client is a Daikin Skyport session: credentials, the current token pair,
// the controlled device and its last-synced snapshot. It is owned by the
// control loop and never shared across concurrent operations.
type Client struct {
	email      string
	password   string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	accessToken  string
	refreshToken string
	deviceID     string
	device       deviceData
}

func NewClient(email, password string, logger *slog.Logger) *Client {
	return NewClientWithURL(email, password, "https://api.daikinskyport.com", logger)
}

func NewClientWithURL(email, password, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		email:      email,
		password:   password,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type loginResult struct {
	AccessToken          string `json:"accessToken"`
	AccessTokenExpiresIn int64  `json:"accessTokenExpiresIn"`
	RefreshToken         string `json:"refreshToken"`
	TokenType            string `json:"tokenType"`
}

type deviceEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type deviceData struct {
	TempIndoor     float64 `json:"tempIndoor"`
	TempOutdoor    float64 `json:"tempOutdoor"`
	HspHome        float64 `json:"hspHome"`
	CspHome        float64 `json:"cspHome"`
	GeofencingAway bool    `json:"geofencingAway"`
}

// Login authenticates, discovers the thermostat and performs the initial
// sync. Callers treat any failure here as fatal.
func (c *Client) Login(ctx context.Context) error {
	body := map[string]string{"email": c.email, "password": c.password}
	resp, err := c.doRequest(ctx, http.MethodPost, "/users/auth/login", "", body)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	var result loginResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return &infra.ParseError{What: "login response", Err: err}
	}
	if result.RefreshToken == "" {
		return fmt.Errorf("login response carried no refresh token")
	}
	c.accessToken = result.AccessToken
	c.refreshToken = result.RefreshToken

	if err := c.discoverDevice(ctx); err != nil {
		return err
	}

	return c.Sync(ctx)
}

func (c *Client) discoverDevice(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/devices", c.accessToken, nil)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}

	var devices []deviceEntry
	if err := json.Unmarshal(resp, &devices); err != nil {
		return &infra.ParseError{What: "device list", Err: err}
	}
	if len(devices) == 0 {
		return fmt.Errorf("no thermostat found on this account")
	}

	for _, d := range devices {
		c.logger.Info("discovered thermostat", "id", d.ID, "name", d.Name)
	}
	c.logger.Info("controlling thermostat", "name", devices[0].Name)
	c.deviceID = devices[0].ID

	return nil
}

// Sync refreshes the cached device snapshot, transparently re-authenticating
// once if the access token has expired.
func (c *Client) Sync(ctx context.Context) error {
	return infra.WithAuthRetry(ctx, c.refreshAccess, c.fetchDeviceData)
}

func (c *Client) fetchDeviceData(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/deviceData/"+c.deviceID, c.accessToken, nil)
	if err != nil {
		return err
	}

	var data deviceData
	if err := json.Unmarshal(resp, &data); err != nil {
		return &infra.ParseError{What: "device data", Err: err}
	}
	c.device = data

	return nil
}

func (c *Client) refreshAccess(ctx context.Context) error {
	body := map[string]string{"email": c.email, "refreshToken": c.refreshToken}
	resp, err := c.doRequest(ctx, http.MethodPost, "/users/auth/token", "", body)
	if err != nil {
		return fmt.Errorf("refreshing token: %w", err)
	}

	var result loginResult
	if err := json.Unmarshal(resp, &result); err != nil {
		return &infra.ParseError{What: "token response", Err: err}
	}
	c.accessToken = result.AccessToken

	return nil
}

// SetSetpoints overrides the thermostat's own schedule with the given
// setpoints for holdMinutes, after which its schedule resumes.
func (c *Client) SetSetpoints(ctx context.Context, heat, cool float64, holdMinutes int) error {
	body := map[string]any{
		"hspHome":               heat,
		"cspHome":               cool,
		"schedOverride":         1,
		"schedOverrideDuration": holdMinutes,
	}
	return infra.WithAuthRetry(ctx, c.refreshAccess, func(ctx context.Context) error {
		_, err := c.doRequest(ctx, http.MethodPut, "/deviceData/"+c.deviceID, c.accessToken, body)
		return err
	})
}

func (c *Client) IndoorTemp() float64   { return c.device.TempIndoor }
func (c *Client) OutdoorTemp() float64  { return c.device.TempOutdoor }
func (c *Client) HeatSetpoint() float64 { return c.device.HspHome }
func (c *Client) CoolSetpoint() float64 { return c.device.CspHome }
func (c *Client) AwayMode() bool        { return c.device.GeofencingAway }

func (c *Client) doRequest(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &infra.TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &infra.TransportError{Op: "reading response for " + path, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &infra.UpstreamError{Status: resp.StatusCode, Message: apiMessage(respBody)}
	}

	return respBody, nil
}

// apiMessage pulls the error message the Skyport API wraps in JSON, falling
// back to the raw body.
func apiMessage(body []byte) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return strings.TrimSpace(string(body))
}
