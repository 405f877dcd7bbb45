// Package dataprocessing implements the ratings preparation stages.
//
// # Architecture
//
// The package is organized into these components:
//
//  1. Loader: reads delimited text or an Excel workbook into a table.Table
//  2. Cleaner: drops incomplete and out-of-range rows, imputes numeric gaps, removes duplicates
//  3. Selector: projects onto userId, movieId, rating[, timestamp]
//  4. Transformer: adds rating_normalized and converts timestamp to UTC date-times
//  5. Summarizer: descriptive statistics, group counts and histogram data
//
// Every stage takes a Table and returns a new one; no stage modifies its input.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger, dataprocessing.DefaultLoaderOptions())
//	tbl, _, err := loader.Load(ctx, "ratings.csv")
//	if err != nil {
//	    return err
//	}
//	res, err := dataprocessing.NewProcessor(logger, domain.DefaultRatingScale()).Process(ctx, tbl)
//
// # Data Flow
//
//	File → Loader → Table → Cleaner → Selector → Transformer → Summarizer → RatingsSummary
//
// # Error Handling
//
// Fatal conditions are returned as *errors.AppError of type SOURCE_NOT_FOUND,
// SOURCE_PARSE or SCHEMA. Non-fatal conditions (IMPUTATION_UNDEFINED, TEMPORAL)
// are returned as warnings inside the stage reports and never stop a stage.
package dataprocessing
