package platform

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyInitData    = errors.New("init data is empty")
	ErrMissingHash      = errors.New("init data has no hash")
	ErrInvalidSignature = errors.New("init data signature mismatch")
	ErrExpiredInitData  = errors.New("init data has expired")
	ErrMissingUser      = errors.New("init data has no user")
)

// InitData is the parsed launch parameter string signed by the platform
type InitData struct {
	QueryID    string
	User       *TelegramUser
	AuthDate   time.Time
	StartParam string
	Hash       string
}

// ParseInitData decodes init data without checking its signature
func ParseInitData(raw string) (*InitData, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInitData
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse init data: %w", err)
	}

	data := &InitData{
		QueryID:    values.Get("query_id"),
		StartParam: values.Get("start_param"),
		Hash:       values.Get("hash"),
	}

	if authDate := values.Get("auth_date"); authDate != "" {
		seconds, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid auth_date: %w", err)
		}
		data.AuthDate = time.Unix(seconds, 0).UTC()
	}

	if rawUser := values.Get("user"); rawUser != "" {
		var user TelegramUser
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			return nil, fmt.Errorf("invalid user: %w", err)
		}
		data.User = &user
	}

	return data, nil
}

// ValidateInitData checks the signature and age of init data and returns it parsed.
// A zero maxAge disables the age check.
func ValidateInitData(raw, botToken string, maxAge time.Duration) (*InitData, error) {
	return validateInitDataAt(raw, botToken, maxAge, time.Now())
}

func validateInitDataAt(raw, botToken string, maxAge time.Duration, now time.Time) (*InitData, error) {
	data, err := ParseInitData(raw)
	if err != nil {
		return nil, err
	}
	if data.Hash == "" {
		return nil, ErrMissingHash
	}

	values, _ := url.ParseQuery(raw)
	expected := signature(values, botToken)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(data.Hash))) {
		return nil, ErrInvalidSignature
	}

	if maxAge > 0 && (data.AuthDate.IsZero() || now.Sub(data.AuthDate) > maxAge) {
		return nil, ErrExpiredInitData
	}
	if data.User == nil || data.User.ID == 0 {
		return nil, ErrMissingUser
	}

	return data, nil
}

// SignInitData adds a valid hash to values and returns the encoded init data
func SignInitData(values url.Values, botToken string) string {
	signed := url.Values{}
	for key, vals := range values {
		if key != "hash" {
			signed[key] = vals
		}
	}
	signed.Set("hash", signature(signed, botToken))
	return signed.Encode()
}

// signature computes hex(HMAC_SHA256(HMAC_SHA256("WebAppData", token), check string))
func signature(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key != "hash" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+values.Get(key))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}
