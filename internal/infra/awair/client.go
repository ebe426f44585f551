package awair

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"home-climate/internal/domain"
	"home-climate/internal/infra"
)

// recordLimit is how many 15-minute-average records to fetch per reading; the
// reported temperature is their mean.
const recordLimit = 4

// Client reads ambient air data from the Awair developer API. The hobbyist
// tier has a hard daily quota, so requests go through a local rate limiter.
type Client struct {
	deviceType string
	deviceID   int64
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(deviceType string, deviceID int64, token string) *Client {
	return NewClientWithURL(deviceType, deviceID, token, "https://developer-apis.awair.is")
}

func NewClientWithURL(deviceType string, deviceID int64, token, baseURL string) *Client {
	return &Client{
		deviceType: deviceType,
		deviceID:   deviceID,
		token:      token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(30*time.Second), 1),
	}
}

type sensorData struct {
	Comp  string  `json:"comp"`
	Value float64 `json:"value"`
}

type airRecord struct {
	Timestamp string       `json:"timestamp"`
	Sensors   []sensorData `json:"sensors"`
}

type airData struct {
	Data []airRecord `json:"data"`
}

// GetTemperature fetches the most recent 15-minute-average records and
// returns their mean temperature. Readings whose newest observation is older
// than domain.MaxReadingAge are rejected as stale.
func (c *Client) GetTemperature(ctx context.Context) (domain.SensorReading, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.SensorReading{}, err
	}

	body, err := c.fetchAirData(ctx)
	if err != nil {
		return domain.SensorReading{}, err
	}

	var data airData
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.SensorReading{}, &infra.ParseError{What: "air data", Err: err}
	}
	if len(data.Data) == 0 {
		return domain.SensorReading{}, &infra.ParseError{What: "air data", Err: fmt.Errorf("no records returned")}
	}

	var sum float64
	var newest time.Time
	for _, rec := range data.Data {
		temp, ok := recordTemp(rec)
		if !ok {
			return domain.SensorReading{}, &infra.ParseError{What: "air data", Err: fmt.Errorf("record %s has no temp component", rec.Timestamp)}
		}
		sum += temp

		ts, err := time.Parse(time.RFC3339, rec.Timestamp)
		if err != nil {
			return domain.SensorReading{}, &infra.ParseError{What: "air data timestamp", Err: err}
		}
		if ts.After(newest) {
			newest = ts
		}
	}

	reading := domain.SensorReading{
		Temperature: sum / float64(len(data.Data)),
		ObservedAt:  newest,
	}
	if reading.Stale(time.Now()) {
		return domain.SensorReading{}, &infra.StaleDataError{ObservedAt: newest, MaxAge: domain.MaxReadingAge}
	}

	return reading, nil
}

func (c *Client) fetchAirData(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/users/self/devices/%s/%d/air-data/15-min-avg?limit=%d",
		c.baseURL, c.deviceType, c.deviceID, recordLimit)

	var respBody []byte
	var status int
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &infra.TransportError{Op: "fetching air data", Err: err}
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return &infra.TransportError{Op: "reading air data response", Err: err}
		}

		// Quota and server errors are worth another attempt; anything else
		// is surfaced to the caller as-is.
		if infra.IsRetryableHTTPStatus(resp.StatusCode) {
			return &infra.UpstreamError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		}

		status = resp.StatusCode
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	if status != http.StatusOK {
		return nil, &infra.UpstreamError{Status: status, Message: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}

func recordTemp(rec airRecord) (float64, bool) {
	for _, s := range rec.Sensors {
		if strings.EqualFold(s.Comp, "temp") {
			return s.Value, true
		}
	}
	return 0, false
}
