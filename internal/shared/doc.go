// Package shared groups helpers used by more than one package.
//
// The testutil subpackage provides sales record fixtures and a log-capturing
// slog handler for assertions on structured log output:
//
//	func TestSomething(t *testing.T) {
//	    records := testutil.SampleRecords(t)
//	    logger, logs := testutil.NewTestLogger(t)
//	    // ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "dataset loaded")
//	}
package shared
