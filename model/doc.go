// Package model defines the provider-neutral generation interface and a
// deterministic mock for tests. A response is either terminal text or a
// batch of tool calls; the engine decides what to do with it. Provider
// adapters live in the anthropic and openai subpackages.
package model
