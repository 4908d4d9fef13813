package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/web3-jobs/internal/collector"
	"github.com/spigell/web3-jobs/internal/sources/cake"
	"github.com/spigell/web3-jobs/internal/sources/feed"
	"github.com/spigell/web3-jobs/internal/sources/remoteok"
	"github.com/spigell/web3-jobs/internal/transport"
)

const (
	RegionGlobal = "global"
	RegionCN     = "cn"
	RegionAll    = "all"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Output        string           `mapstructure:"output"`
	MaxJobs       int              `mapstructure:"max-jobs"`
	Region        string           `mapstructure:"region"`
	Concurrency   int              `mapstructure:"concurrency"`
	SourceTimeout time.Duration    `mapstructure:"source-timeout"`
	History       string           `mapstructure:"history"`
	HTTP          transport.Config `mapstructure:"http"`
	Sources       SourcesConfig    `mapstructure:"sources"`
	Filter        FilterConfig     `mapstructure:"filter"`
	AI            AIConfig         `mapstructure:"ai"`
}

type SourcesConfig struct {
	// Disabled lists source names that are skipped.
	Disabled       []string      `mapstructure:"disabled"`
	CryptoJobsList bool          `mapstructure:"cryptojobslist"`
	RemoteOKTags   []string      `mapstructure:"remoteok-tags"`
	CakeLocations  []string      `mapstructure:"cake-locations"`
	Feeds          []feed.Config `mapstructure:"feeds"`
}

type FilterConfig struct {
	DomainKeywords   []string `mapstructure:"domain-keywords"`
	RoleKeywords     []string `mapstructure:"role-keywords"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
}

type AIConfig struct {
	Provider          string        `mapstructure:"provider"`
	Profile           string        `mapstructure:"profile"`
	Input             string        `mapstructure:"input"`
	Output            string        `mapstructure:"output"`
	Offset            int           `mapstructure:"offset"`
	Limit             int           `mapstructure:"limit"`
	RequestsPerMinute float64       `mapstructure:"requests-per-minute"`
	MaxLogLength      int           `mapstructure:"max-log-length"`
	Gemini            *GeminiConfig `mapstructure:"gemini"`
	OpenAI            *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey          string  `mapstructure:"api-key"`
	APIKeyFile      string  `mapstructure:"api-key-file"`
	Model           string  `mapstructure:"model"`
	MaxRetries      int     `mapstructure:"max-retries"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int32   `mapstructure:"max-output-tokens"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api-key"`
	APIKeyFile  string        `mapstructure:"api-key-file"`
	BaseURL     string        `mapstructure:"base-url"`
	Model       string        `mapstructure:"model"`
	Temperature *float64      `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max-tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// defaults are registered with viper so that every key can be overridden
// from the environment.
func defaults() map[string]any {
	httpDefaults := transport.DefaultConfig()

	return map[string]any{
		"output":         "web3_jobs.csv",
		"max-jobs":       collector.DefaultBudget,
		"region":         RegionGlobal,
		"concurrency":    collector.DefaultConcurrency,
		"source-timeout": collector.DefaultSourceTimeout,
		"history":        "",

		"http.timeout":             httpDefaults.Timeout,
		"http.proxy":               "",
		"http.verify-ssl":          httpDefaults.VerifySSL,
		"http.user-agent":          httpDefaults.UserAgent,
		"http.max-retries":         httpDefaults.MaxRetries,
		"http.backoff":             httpDefaults.Backoff,
		"http.max-backoff":         httpDefaults.MaxBackoff,
		"http.requests-per-second": httpDefaults.RequestsPerSecond,
		"http.burst":               httpDefaults.Burst,

		"sources.disabled":       []string{},
		"sources.cryptojobslist": false,
		"sources.remoteok-tags":  remoteok.DefaultTags,
		"sources.cake-locations": cake.DefaultLocations,

		"filter.domain-keywords":   []string{},
		"filter.role-keywords":     []string{},
		"filter.exclude-companies": []string{},
		"filter.exclude-file":      "",

		"ai.provider":            ProviderOpenAI,
		"ai.profile":             "profile.yaml",
		"ai.input":               "web3_jobs.csv",
		"ai.output":              "web3_jobs_scored.csv",
		"ai.offset":              0,
		"ai.limit":               0,
		"ai.requests-per-minute": 0,
		"ai.max-log-length":      200,
		"ai.openai.model":        "",
		"ai.openai.api-key":      "",
		"ai.gemini.model":        "",
		"ai.gemini.api-key":      "",
	}
}

// legacyEnv maps configuration keys to the environment variable names
// accepted besides the WEB3JOBS_ prefixed ones.
var legacyEnv = map[string][]string{
	"output":                 {"OUTPUT_PATH"},
	"max-jobs":               {"MAX_JOBS_PER_SOURCE"},
	"filter.domain-keywords": {"FILTER_KEYWORDS_WEB3"},
	"filter.role-keywords":   {"FILTER_KEYWORDS_ROLE"},
	"sources.remoteok-tags":  {"REMOTEOK_TAGS"},
	"sources.cake-locations": {"CAKE_WEB3_LOCATIONS"},
	"http.proxy":             {"GLOBAL_PROXY", "HTTPS_PROXY", "HTTP_PROXY"},
	"http.verify-ssl":        {"VERIFY_SSL"},
	"ai.input":               {"INPUT_PATH"},
	"ai.limit":               {"MAX_JOBS_TO_SCORE"},
	"ai.offset":              {"JOBS_OFFSET"},
	"ai.openai.model":        {"OPENAI_MODEL"},
}

// decodeConfig builds a Config from flattened settings. Comma separated
// strings become lists and duration strings are parsed, so values coming from
// the environment decode the same way as YAML ones.
func decodeConfig(settings map[string]any) (*Config, error) {
	cfg := &Config{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

// Validate normalizes list values and reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	c.Region = strings.ToLower(strings.TrimSpace(c.Region))
	switch c.Region {
	case "":
		c.Region = RegionGlobal
	case RegionGlobal, RegionCN, RegionAll:
	default:
		errs = append(errs, fmt.Errorf("region must be one of %s, %s, %s: got %q", RegionGlobal, RegionCN, RegionAll, c.Region))
	}

	if c.MaxJobs <= 0 {
		errs = append(errs, fmt.Errorf("max-jobs must be positive: got %d", c.MaxJobs))
	}
	if strings.TrimSpace(c.Output) == "" {
		errs = append(errs, errors.New("output path is required"))
	}

	c.Sources.Disabled = normalizeList(c.Sources.Disabled)
	c.Sources.RemoteOKTags = normalizeList(c.Sources.RemoteOKTags)
	c.Sources.CakeLocations = normalizeList(c.Sources.CakeLocations)
	c.Filter.DomainKeywords = normalizeList(c.Filter.DomainKeywords)
	c.Filter.RoleKeywords = normalizeList(c.Filter.RoleKeywords)
	c.Filter.ExcludeCompanies = normalizeList(c.Filter.ExcludeCompanies)

	if len(c.Sources.RemoteOKTags) == 0 {
		c.Sources.RemoteOKTags = remoteok.DefaultTags
	}
	if len(c.Sources.CakeLocations) == 0 {
		c.Sources.CakeLocations = cake.DefaultLocations
	}

	for i, f := range c.Sources.Feeds {
		if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.URL) == "" {
			errs = append(errs, fmt.Errorf("sources.feeds[%d]: name and url are required", i))
		}
	}

	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	switch c.AI.Provider {
	case "":
		c.AI.Provider = ProviderOpenAI
	case ProviderOpenAI, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unsupported ai provider: %s", c.AI.Provider))
	}

	if c.AI.Offset < 0 {
		errs = append(errs, fmt.Errorf("ai.offset must not be negative: got %d", c.AI.Offset))
	}
	if c.AI.Limit < 0 {
		errs = append(errs, fmt.Errorf("ai.limit must not be negative: got %d", c.AI.Limit))
	}

	return errors.Join(errs...)
}

// normalizeList trims entries and drops empty ones.
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// sourceEnabled reports whether name is not listed in sources.disabled.
func (c *Config) sourceEnabled(name string) bool {
	for _, d := range c.Sources.Disabled {
		if strings.EqualFold(d, name) {
			return false
		}
	}
	return true
}
