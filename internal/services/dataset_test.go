package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cordexplorer/internal/config"
	apperrors "cordexplorer/internal/errors"
	"cordexplorer/internal/shared/testutil"
)

func TestDatasetLoader_Load(t *testing.T) {
	ds := loadSample(t)

	assert.Len(t, ds.Frame.Rows, 7)
	assert.Equal(t, 7, ds.Summary.Rows)
	assert.Equal(t, 6, ds.Summary.Cols)
	require.NotNil(t, ds.Clean)
	assert.Len(t, ds.Clean.Papers, 5)
	assert.Equal(t, 2, ds.Clean.Dropped())
}

func TestDatasetLoader_Read_DoesNotClean(t *testing.T) {
	path := testutil.WriteFile(t, "metadata.csv", "journal\nNature\n")
	loader := NewDatasetLoader(config.Default().Dataset, nil, nil)

	ds, err := loader.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Nil(t, ds.Clean)

	err = loader.Clean(context.Background(), ds)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestDatasetLoader_MissingFile(t *testing.T) {
	_, err := NewDatasetLoader(config.Default().Dataset, nil, nil).
		Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLoad))
}

func TestCleanerConfigFrom(t *testing.T) {
	cfg := config.Default().Dataset
	cfg.TitleColumn = "paper_title"

	got := CleanerConfigFrom(cfg)
	assert.Equal(t, "paper_title", got.TitleColumn)
	assert.Equal(t, "publish_time", got.PublishTimeColumn)
	assert.Equal(t, "source_x", got.SourceColumn)
}
