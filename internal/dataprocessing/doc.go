// Package dataprocessing turns a CORD-19 metadata file into the cleaned
// paper table and the summaries rendered from it.
//
// # Architecture
//
// The package is organized into four components:
//
//  1. Loader: reads the CSV into a Frame of nullable text cells
//  2. Summarizer: reports shape, column types, missing counts and describe statistics
//  3. Cleaner: parses publish dates, derives year and abstract word count, drops incomplete rows
//  4. Analytics: year histogram, top-N counts and the title corpus
//
// # Usage
//
//	frame, err := dataprocessing.NewLoader(logger).Load(ctx, "metadata.csv")
//	if err != nil {
//	    return err
//	}
//	result, err := dataprocessing.NewCleaner(logger, dataprocessing.DefaultCleanerConfig()).Clean(ctx, frame)
//	if err != nil {
//	    return err
//	}
//	agg := dataprocessing.Aggregate(result.Papers, dataprocessing.DefaultTopN)
//
// # Data Flow
//
//	CSV → Loader → Frame → Cleaner → []domain.Paper → Analytics → charts and reports
//
// # Error Handling
//
// Load failures are LOAD errors, malformed content is a PARSING error and a
// frame without the title or publish time column is a VALIDATION error, all
// from the internal/errors package.
package dataprocessing
