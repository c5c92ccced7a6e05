package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		yaml        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8501, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "metadata.csv", cfg.Paths.InputFile)
				assert.Equal(t, "outputs", cfg.Paths.OutputDir)
				assert.Equal(t, "publish_time", cfg.Dataset.PublishTimeColumn)
				assert.Equal(t, 2020, cfg.Dashboard.DefaultYearFrom)
				assert.Equal(t, 2021, cfg.Dashboard.DefaultYearTo)
				assert.Equal(t, 5, cfg.Dashboard.SampleRows)
				assert.Equal(t, 800, cfg.Charts.WordCloudWidth)
				assert.Equal(t, 400, cfg.Charts.WordCloudHeight)
			},
		},
		{
			name: "yaml file overrides defaults",
			yaml: "server:\n  port: 9000\npaths:\n  input_file: data/meta.csv\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, "data/meta.csv", cfg.Paths.InputFile)
				assert.Equal(t, "outputs", cfg.Paths.OutputDir)
			},
		},
		{
			name: "environment overrides yaml",
			yaml: "server:\n  port: 9000\n",
			env: map[string]string{
				"CORD_SERVER_PORT":   "9100",
				"CORD_LOGGING_LEVEL": "DEBUG",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid port rejected",
			env:     map[string]string{"CORD_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "inverted default range rejected",
			env:     map[string]string{"CORD_DASHBOARD_DEFAULT_YEAR_FROM": "2022"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [port\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.yaml != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8501", cfg.Server.Address())
}

func TestValidate_LoggingOutput(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "file"
	assert.Error(t, cfg.Validate())
}
