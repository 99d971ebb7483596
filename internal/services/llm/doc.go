// Package llm provides an OpenRouter-compatible chat client used to translate
// transcript segments.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive a JSON payload.
// Client.Translate: translate one segment of text between two languages.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default). Retry-After headers are honoured up to the maximum
// delay. Context cancellation aborts retries immediately.
//
// Errors are tagged with services.ErrTransient when retries were exhausted on
// a retryable failure, and services.ErrExternalTool otherwise.
package llm
