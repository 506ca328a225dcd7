package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("paystack config invalid")
	ErrRequestFailed    = errors.New("paystack request failed")
	ErrResponseInvalid  = errors.New("paystack response invalid")
	ErrSignatureInvalid = errors.New("paystack signature invalid")
)

const (
	defaultAPIBaseURL = "https://api.paystack.co"
	defaultTimeout    = 12 * time.Second
	signatureHeader   = "X-Paystack-Signature"
)

// 交易状态
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
	StatusPending   = "pending"
)

// Config Paystack 配置。
type Config struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// InitializeInput 初始化交易输入。
type InitializeInput struct {
	Email       string
	Amount      string
	Currency    string
	Reference   string
	CallbackURL string
	Metadata    map[string]interface{}
}

// InitializeResult 初始化交易返回。
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
	Raw              map[string]interface{}
}

// VerifyResult 交易核验返回。
type VerifyResult struct {
	Reference string
	Status    string
	Amount    string
	Currency  string
	PaidAt    *time.Time
	Raw       map[string]interface{}
}

// Paid 交易是否成功
func (r *VerifyResult) Paid() bool {
	return r != nil && r.Status == StatusSuccess
}

// WebhookEvent Webhook 事件。
type WebhookEvent struct {
	Event  string
	Result VerifyResult
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type transactionData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
	Status           string `json:"status"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	PaidAt           string `json:"paid_at"`
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(cfg.baseURL()); err != nil {
		return fmt.Errorf("%w: base_url is invalid", ErrConfigInvalid)
	}
	if callback := strings.TrimSpace(cfg.CallbackURL); callback != "" {
		if _, err := url.ParseRequestURI(callback); err != nil {
			return fmt.Errorf("%w: callback_url is invalid", ErrConfigInvalid)
		}
	}
	return nil
}

// Initialize 创建交易，金额以 kobo 提交。
func Initialize(ctx context.Context, cfg *Config, input InitializeInput) (*InitializeResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrConfigInvalid)
	}
	minor, err := ToMinorAmount(input.Amount)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"email":  email,
		"amount": minor,
	}
	if currency := strings.ToUpper(strings.TrimSpace(input.Currency)); currency != "" {
		body["currency"] = currency
	}
	if reference := strings.TrimSpace(input.Reference); reference != "" {
		body["reference"] = reference
	}
	callback := strings.TrimSpace(input.CallbackURL)
	if callback == "" {
		callback = strings.TrimSpace(cfg.CallbackURL)
	}
	if callback != "" {
		body["callback_url"] = callback
	}
	if len(input.Metadata) > 0 {
		body["metadata"] = input.Metadata
	}

	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}
	data, raw, err := decodeTransaction(respBody, statusCode, "initialize")
	if err != nil {
		return nil, err
	}
	if data.AuthorizationURL == "" || data.Reference == "" {
		return nil, fmt.Errorf("%w: missing authorization_url or reference", ErrResponseInvalid)
	}
	return &InitializeResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
		Raw:              raw,
	}, nil
}

// Verify 按流水号核验交易。
func Verify(ctx context.Context, cfg *Config, reference string) (*VerifyResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrConfigInvalid)
	}
	respBody, statusCode, err := doJSONRequest(ctx, cfg, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	data, raw, err := decodeTransaction(respBody, statusCode, "verify")
	if err != nil {
		return nil, err
	}
	result := toVerifyResult(data, raw)
	if result.Reference == "" {
		result.Reference = reference
	}
	return result, nil
}

// VerifyAndParseWebhook 校验 HMAC-SHA512 签名并解析事件。
func VerifyAndParseWebhook(cfg *Config, headers http.Header, body []byte) (*WebhookEvent, error) {
	if cfg == nil || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	signature := strings.TrimSpace(headers.Get(signatureHeader))
	if signature == "" {
		return nil, fmt.Errorf("%w: missing signature", ErrSignatureInvalid)
	}
	expected := ComputeSignature(cfg.SecretKey, body)
	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected)) {
		return nil, ErrSignatureInvalid
	}

	var payload struct {
		Event string          `json:"event"`
		Data  transactionData `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode webhook failed", ErrResponseInvalid)
	}
	raw, err := decodeRawMap(body)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Data.Reference) == "" {
		return nil, fmt.Errorf("%w: webhook missing reference", ErrResponseInvalid)
	}
	return &WebhookEvent{
		Event:  strings.TrimSpace(payload.Event),
		Result: *toVerifyResult(payload.Data, raw),
	}, nil
}

// ComputeSignature 计算 Webhook 签名（十六进制小写）。
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ToMinorAmount 金额转换为 kobo。
func ToMinorAmount(amount string) (int64, error) {
	parsed, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, fmt.Errorf("%w: amount is invalid", ErrConfigInvalid)
	}
	if parsed.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrConfigInvalid)
	}
	minor := parsed.Shift(2)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: amount precision is invalid", ErrConfigInvalid)
	}
	return minor.IntPart(), nil
}

// FromMinorAmount kobo 转换为两位小数金额。
func FromMinorAmount(minor int64) string {
	return decimal.NewFromInt(minor).Shift(-2).StringFixed(2)
}

func toVerifyResult(data transactionData, raw map[string]interface{}) *VerifyResult {
	result := &VerifyResult{
		Reference: strings.TrimSpace(data.Reference),
		Status:    strings.ToLower(strings.TrimSpace(data.Status)),
		Amount:    FromMinorAmount(data.Amount),
		Currency:  strings.ToUpper(strings.TrimSpace(data.Currency)),
		Raw:       raw,
	}
	if paidAt := strings.TrimSpace(data.PaidAt); paidAt != "" {
		if parsed, err := time.Parse(time.RFC3339, paidAt); err == nil {
			result.PaidAt = &parsed
		}
	}
	return result
}

func decodeTransaction(body []byte, statusCode int, op string) (transactionData, map[string]interface{}, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return transactionData{}, nil, fmt.Errorf("%w: decode %s response failed", ErrResponseInvalid, op)
	}
	if statusCode < 200 || statusCode >= 300 || !env.Status {
		message := strings.TrimSpace(env.Message)
		if message == "" {
			message = http.StatusText(statusCode)
		}
		return transactionData{}, nil, fmt.Errorf("%w: %s status %d: %s", ErrResponseInvalid, op, statusCode, message)
	}
	var data transactionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return transactionData{}, nil, fmt.Errorf("%w: decode %s data failed", ErrResponseInvalid, op)
	}
	raw, err := decodeRawMap(env.Data)
	if err != nil {
		return transactionData{}, nil, err
	}
	return data, raw, nil
}

func doJSONRequest(ctx context.Context, cfg *Config, method, path string, payload interface{}) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
		}
		reader = strings.NewReader(string(encoded))
	}
	req, err := http.NewRequestWithContext(ctx, method, cfg.baseURL()+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(cfg.SecretKey))
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := cfg.httpClient().Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func (c *Config) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return defaultAPIBaseURL
	}
	return base
}

func (c *Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
