package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pothole-report/model"
)

const providerNominatim = "nominatim"

var (
	ErrFailed     = errors.New("reverse geocoding failed")
	ErrNoPostcode = errors.New("no postcode for location")
)

// Geocoder turns a coordinate into a postcode and address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*model.GeocodeResult, error)
}

type Options struct {
	URL        string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// Interval between requests; Nominatim's usage policy allows one per
	// second.
	Interval time.Duration
	Log      *zap.Logger
}

type Nominatim struct {
	baseURL   string
	userAgent string
	http      *retryablehttp.Client
	limiter   *rate.Limiter
	log       *zap.Logger
}

func NewNominatim(opts Options) *Nominatim {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.RetryMax = opts.MaxRetries
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = leveledLogger{opts.Log.Sugar()}

	return &Nominatim{
		baseURL:   opts.URL,
		userAgent: opts.UserAgent,
		http:      rc,
		limiter:   rate.NewLimiter(rate.Every(opts.Interval), 1),
		log:       opts.Log,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Postcode string `json:"postcode"`
	} `json:"address"`
	Error string `json:"error"`
}

func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (*model.GeocodeResult, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lon))
	u := n.baseURL + "?" + q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrFailed, err)
	}
	req.Header.Set("accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	start := time.Now()
	resp, err := n.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	defer resp.Body.Close()

	n.log.Debug("reverse geocode response",
		zap.String("provider", providerNominatim),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFailed, resp.StatusCode)
	}

	body, err := readAllLimit(resp.Body, 1<<20)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFailed, err)
	}

	var payload reverseResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", ErrFailed, err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrFailed, payload.Error)
	}

	postcode := strings.TrimSpace(payload.Address.Postcode)
	if postcode == "" {
		return nil, fmt.Errorf("%w: %w", ErrFailed, ErrNoPostcode)
	}
	return &model.GeocodeResult{
		Postcode: postcode,
		Address:  payload.DisplayName,
		Provider: providerNominatim,
	}, nil
}

func readAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}

// leveledLogger routes retryablehttp's logging through zap. Failed
// attempts log as warnings.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
