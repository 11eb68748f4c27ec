package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/common"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/llm"
	"github.com/ternarybob/moneypulse/internal/services/rating"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Badger.Path = filepath.Join(t.TempDir(), "data")
	return cfg
}

func TestNew_WiresComponents(t *testing.T) {
	cfg := testConfig(t)
	application, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	assert.NotNil(t, application.APIHandler)
	assert.NotNil(t, application.AnalysisHandler)
	assert.NotNil(t, application.ProgressHandler)
	assert.NotNil(t, application.KVHandler)
	assert.NotNil(t, application.SchedulerHandler)
	assert.NotNil(t, application.MCPServer)
	assert.Equal(t, rating.VersionV1, application.Params.Version)
	assert.True(t, application.SchedulerService.IsRunning())

	jobs := application.SchedulerService.GetAllJobStatuses()
	require.Len(t, jobs, 1)
	assert.Equal(t, RolloverJobName, jobs[0].Name)

	// No provider configured: the whole flow stays local and is recorded
	ctx := context.Background()
	result, err := application.AnalysisService.Analyze(ctx, models.RawInputs{
		MonthlyIncome:   5000,
		MonthlySpending: 3000,
		TotalSavings:    12000,
		TotalDebt:       2000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceLocal, result.Source)

	history, err := application.AnalysisService.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.ID, history[0].ID)

	require.NoError(t, application.SchedulerService.TriggerJob(RolloverJobName))
}

func TestNew_RolloverDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Progress.RolloverEnabled = false

	application, err := New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	assert.Empty(t, application.SchedulerService.GetAllJobStatuses())
}

func TestNew_UnknownParameterVersion(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scoring.ParameterVersion = "v99"

	_, err := New(cfg, arbor.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v99")
}

func TestLoadParams(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.toml")
	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("version = ["), 0644))

	tests := []struct {
		name        string
		version     string
		file        string
		wantVersion string
		wantErr     bool
	}{
		{name: "empty uses default", wantVersion: rating.DefaultVersion},
		{name: "classic", version: rating.VersionClassic, wantVersion: rating.VersionClassic},
		{name: "unknown", version: "nope", wantErr: true},
		{name: "missing file", version: rating.VersionV1, file: missing, wantErr: true},
		{name: "broken file", file: broken, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := common.NewDefaultConfig()
			cfg.Scoring.ParameterVersion = tt.version
			cfg.Scoring.ParamsFile = tt.file

			params, err := LoadParams(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, params.Version)
		})
	}
}

func TestGenerator(t *testing.T) {
	logger := arbor.NewLogger()

	cfg := common.NewDefaultConfig()
	assert.Nil(t, Generator(llm.NewProviderFactory(cfg, nil, logger)))
	assert.Nil(t, Generator(nil))

	cfg.LLM.Provider = common.LLMProviderGemini
	assert.NotNil(t, Generator(llm.NewProviderFactory(cfg, nil, logger)))
}
