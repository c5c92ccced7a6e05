// Package shared holds helpers used across the CORD-19 explorer packages
// that belong to no single layer.
//
// The testutil subpackage provides a log-capturing slog handler and
// metadata.csv fixture builders:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteMetadataCSV(t, testutil.SamplePapers()...)
//	    ...
//	}
package shared
