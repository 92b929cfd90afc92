// Package platform adapts the chat platform mini-app shell to the storefront.
//
// The shell injects a WebApp object into the page; the storefront receives the
// same data as a launch payload and exposes it through Bridge. Code that only
// needs safe defaults (tests, a browser opened outside the shell) uses Noop.
package platform

import (
	"encoding/json"
	"net/url"
	"sync"

	"github.com/your-org/donate-storefront/internal/theme"
)

// TelegramUser is the user object carried in init data
type TelegramUser struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// Bridge exposes shell capabilities to the application
type Bridge interface {
	// Init signals the shell that the app is ready and asks it to expand
	Init()
	InitData() string
	User() *TelegramUser
	ColorScheme() theme.Mode
	ThemeParams() theme.Params
	IsSupported() bool
	Platform() string
	Version() string
}

// Noop is the bridge used when no shell is present
type Noop struct{}

func (Noop) Init()                     {}
func (Noop) InitData() string          { return "" }
func (Noop) User() *TelegramUser       { return nil }
func (Noop) ColorScheme() theme.Mode   { return theme.ModeLight }
func (Noop) ThemeParams() theme.Params { return theme.Params{} }
func (Noop) IsSupported() bool         { return false }
func (Noop) Platform() string          { return "" }
func (Noop) Version() string           { return "" }

// LaunchPayload is what the shell page posts when the mini-app opens
type LaunchPayload struct {
	InitData    string       `json:"init_data"`
	ColorScheme theme.Mode   `json:"color_scheme"`
	ThemeParams theme.Params `json:"theme_params"`
	Platform    string       `json:"platform"`
	Version     string       `json:"version"`
}

// WebApp is a bridge backed by a launch payload
type WebApp struct {
	payload LaunchPayload
	user    *TelegramUser

	mu       sync.Mutex
	ready    bool
	expanded bool
}

// NewWebApp builds a bridge from the launch payload. The user is read from
// the unverified init data, the upstream API verifies the signature.
func NewWebApp(payload LaunchPayload) *WebApp {
	return &WebApp{
		payload: payload,
		user:    unsafeUser(payload.InitData),
	}
}

// Init records the ready and expand lifecycle calls
func (w *WebApp) Init() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ready = true
	w.expanded = true
}

// IsReady reports whether Init has been called
func (w *WebApp) IsReady() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

// IsExpanded reports whether the app asked the shell to expand
func (w *WebApp) IsExpanded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expanded
}

func (w *WebApp) InitData() string    { return w.payload.InitData }
func (w *WebApp) User() *TelegramUser { return w.user }
func (w *WebApp) IsSupported() bool   { return true }
func (w *WebApp) Platform() string    { return w.payload.Platform }
func (w *WebApp) Version() string     { return w.payload.Version }

// ColorScheme returns the shell color scheme, light when unknown
func (w *WebApp) ColorScheme() theme.Mode {
	if w.payload.ColorScheme.Valid() {
		return w.payload.ColorScheme
	}
	return theme.ModeLight
}

func (w *WebApp) ThemeParams() theme.Params { return w.payload.ThemeParams }

func unsafeUser(initData string) *TelegramUser {
	if initData == "" {
		return nil
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil
	}
	raw := values.Get("user")
	if raw == "" {
		return nil
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == 0 {
		return nil
	}
	return &user
}
