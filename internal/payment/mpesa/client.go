// Package mpesa is a Safaricom Daraja client for Lipa na M-Pesa Online
// (STK push). It implements services.PaymentGateway and parses the
// asynchronous result callbacks Daraja posts back to the service.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-vendor-backend/internal/services"
)

// SandboxURL is the Daraja sandbox host.
const SandboxURL = "https://sandbox.safaricom.co.ke"

const (
	tokenPath = "/oauth/v1/generate?grant_type=client_credentials"
	stkPath   = "/mpesa/stkpush/v1/processrequest"

	// Daraja rejects longer values for these fields.
	maxAccountRef  = 12
	maxDescription = 13
)

// Daraja timestamps are East Africa Time.
var eat = time.FixedZone("EAT", 3*60*60)

// Config holds Daraja credentials and endpoints.
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	PassKey        string
	CallbackURL    string
	Timeout        time.Duration
}

// Client calls the Daraja API. Access tokens are cached until shortly before
// they expire. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	Now  func() time.Time

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

var _ services.PaymentGateway = (*Client)(nil)

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	var missing []string
	for name, v := range map[string]string{
		"consumer key":    cfg.ConsumerKey,
		"consumer secret": cfg.ConsumerSecret,
		"short code":      cfg.ShortCode,
		"pass key":        cfg.PassKey,
		"callback url":    cfg.CallbackURL,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("mpesa: missing %s", strings.Join(missing, ", "))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = SandboxURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		Now:  time.Now,
	}, nil
}

// APIError is a non-success Daraja response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mpesa: http %d: %s %s", e.Status, e.Code, e.Message)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type errorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

type stkRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPush prompts req.Phone to pay req.Amount to the configured short code.
func (c *Client) STKPush(ctx context.Context, req services.STKPushRequest) (*services.STKPushResponse, error) {
	ctx, span := otel.Tracer("payment/mpesa").Start(ctx, "STKPush",
		trace.WithAttributes(attribute.Int64("payment.amount", req.Amount)),
	)
	defer span.End()

	token, err := c.accessToken(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	ts := c.Now().In(eat).Format("20060102150405")
	body := stkRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          Password(c.cfg.ShortCode, c.cfg.PassKey, ts),
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            req.Amount,
		PartyA:            req.Phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       req.Phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  clip(req.AccountRef, maxAccountRef),
		TransactionDesc:   clip(req.Description, maxDescription),
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+stkPath, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Authorization", "Bearer "+token)
	hreq.Header.Set("Content-Type", "application/json")

	var out stkResponse
	if err := c.do(hreq, &out); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if out.ResponseCode != "0" {
		err := &APIError{Status: http.StatusOK, Code: out.ResponseCode, Message: out.ResponseDescription}
		span.RecordError(err)
		return nil, err
	}
	if out.CheckoutRequestID == "" {
		return nil, errors.New("mpesa: response without CheckoutRequestID")
	}

	log.Debug().Str("checkout_request_id", out.CheckoutRequestID).Msg("stk push accepted")
	return &services.STKPushResponse{
		CheckoutRequestID: out.CheckoutRequestID,
		MerchantRequestID: out.MerchantRequestID,
		CustomerMessage:   out.CustomerMessage,
	}, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Now()
	if c.token != "" && now.Before(c.tokenExp) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	var tr tokenResponse
	if err := c.do(req, &tr); err != nil {
		return "", fmt.Errorf("mpesa: access token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("mpesa: empty access token")
	}

	ttl := time.Hour
	if secs, err := strconv.Atoi(strings.TrimSpace(tr.ExpiresIn)); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}
	// refresh a minute early
	if ttl > 2*time.Minute {
		ttl -= time.Minute
	}
	c.token = tr.AccessToken
	c.tokenExp = now.Add(ttl)
	return c.token, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var er errorResponse
		_ = json.Unmarshal(raw, &er)
		msg := er.ErrorMessage
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Code: er.ErrorCode, Message: msg}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mpesa: decode response: %w", err)
	}
	return nil
}

// Password returns the STK push password: base64(shortCode + passKey + timestamp).
func Password(shortCode, passKey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passKey + timestamp))
}

func clip(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
