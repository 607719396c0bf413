package backtest

import "fmt"

// InvalidConfigError is raised synchronously before any fetch when
// the run configuration is unusable. Fatal to the run, never retried.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid backtest config: " + e.Reason
}

// DataFetchError marks a failed historical fetch. Any symbol failing
// aborts the whole run; the caller may retry the entire run.
type DataFetchError struct {
	Symbol string
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("failed to fetch historical data for %s: %v", e.Symbol, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}
