package inventory

import (
	"errors"
	"strings"

	"github.com/shopbot/backend/internal/infrastructure/config"
)

const (
	// DefaultBaseURL is the production JSON API endpoint of the inventory service
	DefaultBaseURL = "https://api.moysklad.ru/api/remap/1.2"

	DefaultTimeoutSeconds    = 30
	DefaultPageSize          = 1000
	DefaultRequestsPerSecond = 15
	DefaultBurst             = 5
	DefaultStrengthAttribute = "крепость"

	maxPageSize = 1000
)

// Errors for inventory configuration
var (
	ErrConfigMissingLogin    = errors.New("inventory: login is required")
	ErrConfigMissingPassword = errors.New("inventory: password is required")
	ErrConfigInvalidBaseURL  = errors.New("inventory: base url must be http(s)")
)

// Location maps a pickup point key onto the upstream stores that supply it.
// A store belongs to the location when its name contains any StoreMatch entry.
type Location struct {
	Key        string
	StoreMatch []string
}

// Matches reports whether a store name belongs to the location
func (l Location) Matches(storeName string) bool {
	name := strings.ToLower(storeName)
	for _, m := range l.StoreMatch {
		if m != "" && strings.Contains(name, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// Config holds configuration for the inventory API client
type Config struct {
	BaseURL           string
	Login             string
	Password          string
	TimeoutSeconds    int
	PageSize          int
	RequestsPerSecond float64
	Burst             int
	StrengthAttribute string
	Locations         []Location
}

// Validate checks credentials and fills defaults for unset fields
func (c *Config) Validate() error {
	if c.Login == "" {
		return ErrConfigMissingLogin
	}
	if c.Password == "" {
		return ErrConfigMissingPassword
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(c.BaseURL, "https://") && !strings.HasPrefix(c.BaseURL, "http://") {
		return ErrConfigInvalidBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.PageSize <= 0 || c.PageSize > maxPageSize {
		c.PageSize = DefaultPageSize
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.StrengthAttribute == "" {
		c.StrengthAttribute = DefaultStrengthAttribute
	}
	return nil
}

// FromAppConfig converts the loaded application settings into a client config
func FromAppConfig(c config.InventoryConfig) *Config {
	locations := make([]Location, 0, len(c.Locations))
	for _, l := range c.Locations {
		locations = append(locations, Location{Key: l.Key, StoreMatch: l.StoreMatch})
	}
	return &Config{
		BaseURL:           c.BaseURL,
		Login:             c.Login,
		Password:          c.Password,
		TimeoutSeconds:    c.TimeoutSeconds,
		PageSize:          c.PageSize,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		StrengthAttribute: c.StrengthAttribute,
		Locations:         locations,
	}
}
