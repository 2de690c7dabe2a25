// Package mock holds hand-rolled doubles for the ai interfaces, so unit
// tests run without a live model behind them.
//
// Every double works out of the box: MockEmbedder hashes each text into
// a stable unit vector, MockCompleter answers a placeholder completion,
// and MockChat replies with fixed text while recording the exchange.
// Tests that need specific behavior assign the matching function field:
//
//	completer := mock.NewMockCompleter()
//	completer.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
//	    return `{"intent":"search_findings"}`, nil
//	}
//
// The doubles record their inputs as they go. After the code under test
// ran, assertions can reach completer.Prompts, CallCount on any double,
// or the conversations collected by MockProvider.
package mock
