package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rohmanhakim/tariff-mirror/internal/build"
	"github.com/rohmanhakim/tariff-mirror/internal/config"
	"github.com/rohmanhakim/tariff-mirror/internal/naming"
	"github.com/rohmanhakim/tariff-mirror/internal/scheduler"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	edition        int
	outputDir      string
	chapters       string
	baseURL        string
	delay          time.Duration
	delayVariation time.Duration
	retries        int
	resume         bool
	dryRun         bool
	checkExisting  bool
	skipExisting   bool
	forceRefetch   bool
	headless       bool
	timeout        time.Duration
	randomSeed     int64
	userAgent      string

	// Zero is a legitimate delay, so presence has to be tracked
	// separately from the value.
	delayChanged          bool
	delayVariationChanged bool
)

// parseChapterRange parses "N" or "N-M" into an inclusive range.
func parseChapterRange(s string) (int, int, error) {
	if s == "" {
		return naming.ChapterMin, naming.ChapterMax, nil
	}

	parts := strings.SplitN(s, "-", 2)
	from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid chapter range %q: %w", s, err)
	}
	to := from
	if len(parts) == 2 {
		to, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid chapter range %q: %w", s, err)
		}
	}
	return from, to, nil
}

// existingPolicyFromFlags resolves the three mutually exclusive
// existing-file flags into one policy.
func existingPolicyFromFlags() (config.ExistingPolicy, error) {
	set := 0
	for _, flag := range []bool{checkExisting, skipExisting, forceRefetch} {
		if flag {
			set++
		}
	}
	if set > 1 {
		return "", fmt.Errorf("--check-existing, --skip-existing and --force are mutually exclusive")
	}
	switch {
	case skipExisting:
		return config.ExistingSkip, nil
	case forceRefetch:
		return config.ExistingForce, nil
	default:
		return config.ExistingCheck, nil
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "tariff-mirror",
	Short:   "A polite mirroring tool for customs-nomenclature PDF editions.",
	Version: build.FullVersion(),
	Long: `tariff-mirror keeps a local mirror of one yearly edition of the
customs-nomenclature PDF corpus current: the fixed introductory documents
plus every populated chapter/heading PDF, fetched politely from the
publisher with pacing, session simulation, change detection and
resumable traversal.

Re-running against the same output directory is idempotent: unchanged
files are skipped, interrupted runs resume from the last mirrored
coordinate.`,
	SilenceUsage: true,
}

// runRoot is assigned to rootCmd.RunE in init() rather than in the
// rootCmd literal: it calls InitConfigWithError, which reads
// rootCmd.PersistentFlags(), and a direct reference in the initializer
// would form an initialization cycle.
func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}

	sched, err := scheduler.NewScheduler(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := sched.ExecuteRun(ctx)
	fmt.Print(report.Summary())

	if runErr != nil {
		// Aborted states (mandatory absence, blocking, cancellation)
		// exit non-zero; partial skips and absences do not.
		return runErr
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.RunE = runRoot
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path, JSON or YAML (e.g., /home/myuser/mirror.yaml)")
	rootCmd.PersistentFlags().IntVar(&edition, "edition", 0, "edition year of the corpus to mirror (required unless set in the config file)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output", "output", "root output directory for mirrored PDFs")
	rootCmd.PersistentFlags().StringVar(&chapters, "chapters", "", "chapter range to walk, like `1-97` or `31`")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "root of the publisher's document namespace")
	rootCmd.PersistentFlags().DurationVar(&delay, "delay", 0, "base politeness delay between requests")
	rootCmd.PersistentFlags().DurationVar(&delayVariation, "delay-variation", 0, "random jitter added to the base delay")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", 0, "maximum fetch attempts per document")
	rootCmd.PersistentFlags().BoolVar(&resume, "resume", false, "resume the grid walk after the highest mirrored coordinate")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "enumerate without issuing network requests or writing files")
	rootCmd.PersistentFlags().BoolVar(&checkExisting, "check-existing", false, "probe the origin and refetch existing files only when sizes differ (default)")
	rootCmd.PersistentFlags().BoolVar(&skipExisting, "skip-existing", false, "treat existing files as current without probing")
	rootCmd.PersistentFlags().BoolVar(&forceRefetch, "force", false, "refetch every document, existing or not")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "use the DOM-discovery-assisted fetch strategy")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for a single HTTP request")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "pin a single user agent instead of rotating the pool")
}

// InitConfigWithError reads the config file when given, otherwise
// assembles config from CLI flags via the builder.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	if edition == 0 {
		return config.Config{}, fmt.Errorf("%w: --edition is required", config.ErrInvalidConfig)
	}

	builder := config.WithDefault(naming.Edition(edition))

	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return config.Config{}, fmt.Errorf("error parsing base URL %s: %w", baseURL, err)
		}
		builder = builder.WithBaseURL(*parsed)
	}

	if chapters != "" {
		from, to, err := parseChapterRange(chapters)
		if err != nil {
			return config.Config{}, err
		}
		builder = builder.WithChapterRange(from, to)
	}

	if outputDir != "" && outputDir != "output" {
		builder = builder.WithOutputDir(outputDir)
	}

	if delayChanged || rootCmd.PersistentFlags().Changed("delay") {
		builder = builder.WithBaseDelay(delay)
	}

	if delayVariationChanged || rootCmd.PersistentFlags().Changed("delay-variation") {
		builder = builder.WithDelayVariation(delayVariation)
	}

	if retries > 0 {
		builder = builder.WithMaxAttempt(retries)
	}

	if resume {
		builder = builder.WithResume(true)
	}

	if dryRun {
		builder = builder.WithDryRun(true)
	}

	policy, err := existingPolicyFromFlags()
	if err != nil {
		return config.Config{}, err
	}
	builder = builder.WithExistingPolicy(policy)

	if headless {
		builder = builder.WithHeadless(true)
	}

	if timeout > 0 {
		builder = builder.WithTimeout(timeout)
	}

	if randomSeed != 0 {
		builder = builder.WithRandomSeed(randomSeed)
	}

	if userAgent != "" {
		builder = builder.WithUserAgent(userAgent)
	}

	return builder.Build()
}

func ResetFlags() {
	cfgFile = ""
	edition = 0
	outputDir = "output"
	chapters = ""
	baseURL = ""
	delay = 0
	delayChanged = false
	delayVariation = 0
	delayVariationChanged = false
	retries = 0
	resume = false
	dryRun = false
	checkExisting = false
	skipExisting = false
	forceRefetch = false
	headless = false
	timeout = 0
	randomSeed = 0
	userAgent = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetEditionForTest(year int) {
	edition = year
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}

func SetChaptersForTest(rangeSpec string) {
	chapters = rangeSpec
}

func SetBaseURLForTest(base string) {
	baseURL = base
}

func SetDelayForTest(d time.Duration) {
	delay = d
	delayChanged = true
}

func SetDelayVariationForTest(d time.Duration) {
	delayVariation = d
	delayVariationChanged = true
}

func SetRetriesForTest(n int) {
	retries = n
}

func SetResumeForTest(r bool) {
	resume = r
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}

func SetCheckExistingForTest(check bool) {
	checkExisting = check
}

func SetSkipExistingForTest(skip bool) {
	skipExisting = skip
}

func SetForceForTest(force bool) {
	forceRefetch = force
}

func SetHeadlessForTest(h bool) {
	headless = h
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}
