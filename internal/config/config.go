package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohmanhakim/tariff-mirror/internal/naming"
	"gopkg.in/yaml.v3"
)

// ExistingPolicy decides what happens when a local file already exists
// for a document.
type ExistingPolicy string

const (
	// ExistingCheck probes the origin with a HEAD request and refetches
	// only when the remote size differs from the local one.
	ExistingCheck ExistingPolicy = "check"
	// ExistingSkip treats file presence as sufficient; no network probe.
	ExistingSkip ExistingPolicy = "skip"
	// ExistingForce always refetches.
	ExistingForce ExistingPolicy = "force"
)

const defaultBaseURL = "https://www.cbsa-asfc.gc.ca/trade-commerce/tariff-tarif"

type Config struct {
	//===============
	//  Mirror scope
	//===============
	// Root of the publisher's document-serving namespace
	baseURL url.URL
	// Yearly release of the corpus being mirrored
	edition naming.Edition
	// Templates of the fixed documents that must exist for every edition
	namedTemplates []string
	// Inclusive chapter range walked by the combinatorial grid
	chapterFrom int
	chapterTo   int

	//===============
	// Politeness
	//===============
	// Minimum, fixed waiting time enforced between two requests to the origin.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	// Intentional randomness applied to timing.
	delayVariation time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// base delay for linear backoff growth (attempt * base)
	backoffBaseDuration time.Duration
	// capped maximum delay for backoff to stop linear growth
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single request
	timeout time.Duration
	// Optional pin: when non-empty, every request uses this user agent
	// instead of drawing one from the rotating pool
	userAgent string
	// Whether to use the DOM-discovery-assisted fetch strategy
	headless bool

	//===============
	// Output
	//===============
	// Root directory in which to store the mirrored PDF files
	outputDir string
	// Whether the program simulates what it would do without
	// actually performing any irreversible or side-effecting actions
	dryRun bool
	// Whether to reconstruct a resume cursor from existing filenames
	resume bool
	// What to do when a local file already exists
	existingPolicy ExistingPolicy
}

type configDTO struct {
	BaseURL             string         `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Edition             int            `json:"edition" yaml:"edition"`
	NamedTemplates      []string       `json:"namedTemplates,omitempty" yaml:"namedTemplates,omitempty"`
	ChapterFrom         int            `json:"chapterFrom,omitempty" yaml:"chapterFrom,omitempty"`
	ChapterTo           int            `json:"chapterTo,omitempty" yaml:"chapterTo,omitempty"`
	// Pointers so an explicit zero in the file is distinguishable from
	// an absent key.
	BaseDelay           *time.Duration `json:"baseDelay,omitempty" yaml:"baseDelay,omitempty"`
	DelayVariation      *time.Duration `json:"delayVariation,omitempty" yaml:"delayVariation,omitempty"`
	RandomSeed          int64          `json:"randomSeed,omitempty" yaml:"randomSeed,omitempty"`
	MaxAttempt          int            `json:"maxAttempt,omitempty" yaml:"maxAttempt,omitempty"`
	BackoffBaseDuration time.Duration  `json:"backoffBaseDuration,omitempty" yaml:"backoffBaseDuration,omitempty"`
	BackoffMaxDuration  time.Duration  `json:"backoffMaxDuration,omitempty" yaml:"backoffMaxDuration,omitempty"`
	Timeout             time.Duration  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	UserAgent           string         `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	Headless            bool           `json:"headless,omitempty" yaml:"headless,omitempty"`
	OutputDir           string         `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	DryRun              bool           `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	Resume              bool           `json:"resume,omitempty" yaml:"resume,omitempty"`
	ExistingPolicy      ExistingPolicy `json:"existingPolicy,omitempty" yaml:"existingPolicy,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	// Start with default config
	builder := WithDefault(naming.Edition(dto.Edition))

	if dto.BaseURL != "" {
		parsed, err := url.Parse(dto.BaseURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: baseUrl: %v", ErrInvalidConfig, err)
		}
		builder = builder.WithBaseURL(*parsed)
	}
	if len(dto.NamedTemplates) > 0 {
		builder = builder.WithNamedTemplates(dto.NamedTemplates)
	}
	if dto.ChapterFrom != 0 || dto.ChapterTo != 0 {
		builder = builder.WithChapterRange(dto.ChapterFrom, dto.ChapterTo)
	}
	if dto.BaseDelay != nil {
		builder = builder.WithBaseDelay(*dto.BaseDelay)
	}
	if dto.DelayVariation != nil {
		builder = builder.WithDelayVariation(*dto.DelayVariation)
	}
	if dto.RandomSeed != 0 {
		builder = builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.MaxAttempt != 0 {
		builder = builder.WithMaxAttempt(dto.MaxAttempt)
	}
	if dto.BackoffBaseDuration != 0 {
		builder = builder.WithBackoffBaseDuration(dto.BackoffBaseDuration)
	}
	if dto.BackoffMaxDuration != 0 {
		builder = builder.WithBackoffMaxDuration(dto.BackoffMaxDuration)
	}
	if dto.Timeout != 0 {
		builder = builder.WithTimeout(dto.Timeout)
	}
	if dto.UserAgent != "" {
		builder = builder.WithUserAgent(dto.UserAgent)
	}
	if dto.Headless {
		builder = builder.WithHeadless(true)
	}
	if dto.OutputDir != "" {
		builder = builder.WithOutputDir(dto.OutputDir)
	}
	if dto.DryRun {
		builder = builder.WithDryRun(true)
	}
	if dto.Resume {
		builder = builder.WithResume(true)
	}
	if dto.ExistingPolicy != "" {
		builder = builder.WithExistingPolicy(dto.ExistingPolicy)
	}

	return builder.Build()
}

// WithConfigFile loads config from a JSON or YAML file. The format is
// chosen by extension: .yaml/.yml parse as YAML, everything else as JSON.
func WithConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, path)
		}
		return Config{}, fmt.Errorf("%w: %v", ErrReadConfigFail, err)
	}

	var dto configDTO
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &dto); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrConfigParsingFail, err)
		}
	default:
		if err := json.Unmarshal(raw, &dto); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrConfigParsingFail, err)
		}
	}

	return newConfigFromDTO(dto)
}

// Builder with method chaining, following the WithDefault(...).WithX(...).Build() shape.

type Builder struct {
	cfg Config
}

func WithDefault(edition naming.Edition) Builder {
	base, _ := url.Parse(defaultBaseURL)
	return Builder{
		cfg: Config{
			baseURL:             *base,
			edition:             edition,
			namedTemplates:      naming.DefaultNamedTemplates(),
			chapterFrom:         naming.ChapterMin,
			chapterTo:           naming.ChapterMax,
			baseDelay:           2 * time.Second,
			delayVariation:      1 * time.Second,
			randomSeed:          0,
			maxAttempt:          3,
			backoffBaseDuration: 2 * time.Second,
			backoffMaxDuration:  30 * time.Second,
			timeout:             30 * time.Second,
			outputDir:           "output",
			existingPolicy:      ExistingCheck,
		},
	}
}

func (b Builder) WithBaseURL(baseURL url.URL) Builder {
	b.cfg.baseURL = baseURL
	return b
}

func (b Builder) WithNamedTemplates(templates []string) Builder {
	b.cfg.namedTemplates = templates
	return b
}

func (b Builder) WithChapterRange(from, to int) Builder {
	b.cfg.chapterFrom = from
	b.cfg.chapterTo = to
	return b
}

func (b Builder) WithBaseDelay(delay time.Duration) Builder {
	b.cfg.baseDelay = delay
	return b
}

func (b Builder) WithDelayVariation(variation time.Duration) Builder {
	b.cfg.delayVariation = variation
	return b
}

func (b Builder) WithRandomSeed(seed int64) Builder {
	b.cfg.randomSeed = seed
	return b
}

func (b Builder) WithMaxAttempt(maxAttempt int) Builder {
	b.cfg.maxAttempt = maxAttempt
	return b
}

func (b Builder) WithBackoffBaseDuration(d time.Duration) Builder {
	b.cfg.backoffBaseDuration = d
	return b
}

func (b Builder) WithBackoffMaxDuration(d time.Duration) Builder {
	b.cfg.backoffMaxDuration = d
	return b
}

func (b Builder) WithTimeout(timeout time.Duration) Builder {
	b.cfg.timeout = timeout
	return b
}

func (b Builder) WithUserAgent(userAgent string) Builder {
	b.cfg.userAgent = userAgent
	return b
}

func (b Builder) WithHeadless(headless bool) Builder {
	b.cfg.headless = headless
	return b
}

func (b Builder) WithOutputDir(dir string) Builder {
	b.cfg.outputDir = dir
	return b
}

func (b Builder) WithDryRun(dryRun bool) Builder {
	b.cfg.dryRun = dryRun
	return b
}

func (b Builder) WithResume(resume bool) Builder {
	b.cfg.resume = resume
	return b
}

func (b Builder) WithExistingPolicy(policy ExistingPolicy) Builder {
	b.cfg.existingPolicy = policy
	return b
}

func (b Builder) Build() (Config, error) {
	cfg := b.cfg

	if cfg.edition <= 0 {
		return Config{}, fmt.Errorf("%w: edition must be a positive year", ErrInvalidConfig)
	}
	if cfg.chapterFrom < naming.ChapterMin || cfg.chapterTo > naming.ChapterMax || cfg.chapterFrom > cfg.chapterTo {
		return Config{}, fmt.Errorf(
			"%w: chapter range %d-%d outside %d..%d",
			ErrInvalidConfig, cfg.chapterFrom, cfg.chapterTo, naming.ChapterMin, naming.ChapterMax,
		)
	}
	if cfg.baseDelay < 0 || cfg.delayVariation < 0 {
		return Config{}, fmt.Errorf("%w: delays cannot be negative", ErrInvalidConfig)
	}
	if cfg.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1", ErrInvalidConfig)
	}
	if len(cfg.namedTemplates) == 0 {
		return Config{}, fmt.Errorf("%w: at least one named document template is required", ErrInvalidConfig)
	}
	switch cfg.existingPolicy {
	case ExistingCheck, ExistingSkip, ExistingForce:
	default:
		return Config{}, fmt.Errorf("%w: unknown existing-file policy %q", ErrInvalidConfig, cfg.existingPolicy)
	}

	return cfg, nil
}

func (c *Config) BaseURL() url.URL {
	return c.baseURL
}

func (c *Config) Edition() naming.Edition {
	return c.edition
}

func (c *Config) NamedTemplates() []string {
	return c.namedTemplates
}

func (c *Config) ChapterFrom() int {
	return c.chapterFrom
}

func (c *Config) ChapterTo() int {
	return c.chapterTo
}

func (c *Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c *Config) DelayVariation() time.Duration {
	return c.delayVariation
}

func (c *Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c *Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c *Config) BackoffBaseDuration() time.Duration {
	return c.backoffBaseDuration
}

func (c *Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c *Config) Timeout() time.Duration {
	return c.timeout
}

func (c *Config) UserAgent() string {
	return c.userAgent
}

func (c *Config) Headless() bool {
	return c.headless
}

func (c *Config) OutputDir() string {
	return c.outputDir
}

func (c *Config) DryRun() bool {
	return c.dryRun
}

func (c *Config) Resume() bool {
	return c.resume
}

func (c *Config) ExistingPolicy() ExistingPolicy {
	return c.existingPolicy
}
