package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cordexplorer/internal/config"
	"cordexplorer/internal/shared/testutil"
	"cordexplorer/pkg/contracts/domain"
)

func testRenderer(t *testing.T) *ChartRenderer {
	t.Helper()
	r, err := NewChartRenderer(config.Default().Charts, nil, nil)
	require.NoError(t, err)
	return r
}

func loadSample(t *testing.T) *Dataset {
	t.Helper()
	path := testutil.WriteMetadataCSV(t, testutil.SamplePapers()...)
	ds, err := NewDatasetLoader(config.Default().Dataset, nil, nil).Load(context.Background(), path)
	require.NoError(t, err)
	return ds
}

func sampleExplorer(t *testing.T) *ExplorerService {
	t.Helper()
	svc, err := NewExplorerService(loadSample(t).Clean.Papers, config.Default().Dashboard, testRenderer(t), nil, nil)
	require.NoError(t, err)
	return svc
}

func yearPaper(title string, year int) domain.Paper {
	return domain.Paper{Title: title, Year: &year}
}
