package cmd_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	cmd "github.com/rohmanhakim/tariff-mirror/internal/cli"
	"github.com/rohmanhakim/tariff-mirror/internal/config"
	"github.com/rohmanhakim/tariff-mirror/internal/naming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_EditionRequired(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	_, err := cmd.InitConfigWithError()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInitConfig_FlagsAssembleConfig(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	cmd.SetEditionForTest(2022)
	cmd.SetOutputDirForTest("/tmp/mirror")
	cmd.SetChaptersForTest("10-20")
	cmd.SetBaseURLForTest("https://mirror.example.org/tariff")
	cmd.SetDelayForTest(5 * time.Second)
	cmd.SetDelayVariationForTest(2 * time.Second)
	cmd.SetRetriesForTest(7)
	cmd.SetResumeForTest(true)
	cmd.SetDryRunForTest(true)
	cmd.SetHeadlessForTest(true)
	cmd.SetTimeoutForTest(time.Minute)
	cmd.SetRandomSeedForTest(42)
	cmd.SetUserAgentForTest("custom-agent/1.0")

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)

	assert.Equal(t, naming.Edition(2022), cfg.Edition())
	assert.Equal(t, "/tmp/mirror", cfg.OutputDir())
	assert.Equal(t, 10, cfg.ChapterFrom())
	assert.Equal(t, 20, cfg.ChapterTo())
	baseURL := cfg.BaseURL()
	assert.Equal(t, "https://mirror.example.org/tariff", baseURL.String())
	assert.Equal(t, 5*time.Second, cfg.BaseDelay())
	assert.Equal(t, 2*time.Second, cfg.DelayVariation())
	assert.Equal(t, 7, cfg.MaxAttempt())
	assert.True(t, cfg.Resume())
	assert.True(t, cfg.DryRun())
	assert.True(t, cfg.Headless())
	assert.Equal(t, time.Minute, cfg.Timeout())
	assert.Equal(t, int64(42), cfg.RandomSeed())
	assert.Equal(t, "custom-agent/1.0", cfg.UserAgent())
	assert.Equal(t, config.ExistingCheck, cfg.ExistingPolicy(), "check is the default policy")
}

func TestInitConfig_ZeroDelayIsNotTheDefault(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	cmd.SetEditionForTest(2022)
	cmd.SetDelayForTest(0)
	cmd.SetDelayVariationForTest(0)

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)

	// an explicitly requested zero delay must not fall back to the
	// 2s/1s politeness defaults
	assert.Equal(t, time.Duration(0), cfg.BaseDelay())
	assert.Equal(t, time.Duration(0), cfg.DelayVariation())
}

func TestInitConfig_UntouchedDelayKeepsDefault(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	cmd.SetEditionForTest(2022)

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.BaseDelay())
	assert.Equal(t, time.Second, cfg.DelayVariation())
}

func TestInitConfig_SingleChapter(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	cmd.SetEditionForTest(2022)
	cmd.SetChaptersForTest("31")

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	assert.Equal(t, 31, cfg.ChapterFrom())
	assert.Equal(t, 31, cfg.ChapterTo())
}

func TestInitConfig_DefaultChapterRange(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	cmd.SetEditionForTest(2022)

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	assert.Equal(t, naming.ChapterMin, cfg.ChapterFrom())
	assert.Equal(t, naming.ChapterMax, cfg.ChapterTo())
}

func TestInitConfig_MalformedChapterRange(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	cmd.SetEditionForTest(2022)
	cmd.SetChaptersForTest("one-two")

	_, err := cmd.InitConfigWithError()
	assert.Error(t, err)
}

func TestInitConfig_ExistingPolicyFlags(t *testing.T) {
	t.Run("skip", func(t *testing.T) {
		cmd.ResetFlags()
		defer cmd.ResetFlags()
		cmd.SetEditionForTest(2022)
		cmd.SetSkipExistingForTest(true)

		cfg, err := cmd.InitConfigWithError()
		require.NoError(t, err)
		assert.Equal(t, config.ExistingSkip, cfg.ExistingPolicy())
	})

	t.Run("force", func(t *testing.T) {
		cmd.ResetFlags()
		defer cmd.ResetFlags()
		cmd.SetEditionForTest(2022)
		cmd.SetForceForTest(true)

		cfg, err := cmd.InitConfigWithError()
		require.NoError(t, err)
		assert.Equal(t, config.ExistingForce, cfg.ExistingPolicy())
	})

	t.Run("mutually exclusive", func(t *testing.T) {
		cmd.ResetFlags()
		defer cmd.ResetFlags()
		cmd.SetEditionForTest(2022)
		cmd.SetCheckExistingForTest(true)
		cmd.SetSkipExistingForTest(true)

		_, err := cmd.InitConfigWithError()
		assert.Error(t, err)
	})
}

func TestInitConfig_ConfigFileWins(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	path := filepath.Join(t.TempDir(), "mirror.yaml")
	require.NoError(t, os.WriteFile(path, []byte("edition: 2019\noutputDir: from-file\n"), 0644))

	cmd.SetConfigFileForTest(path)
	cmd.SetEditionForTest(2022) // ignored when a config file is given

	cfg, err := cmd.InitConfigWithError()
	require.NoError(t, err)
	assert.Equal(t, naming.Edition(2019), cfg.Edition())
	assert.Equal(t, "from-file", cfg.OutputDir())
}

func TestInitConfig_MissingConfigFile(t *testing.T) {
	cmd.ResetFlags()
	defer cmd.ResetFlags()

	cmd.SetConfigFileForTest(filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := cmd.InitConfigWithError()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrFileDoesNotExist)
}
