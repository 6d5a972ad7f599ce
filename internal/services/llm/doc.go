// Package llm provides an OpenRouter-compatible chat client used by the
// model-backed inspection collaborators.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: system/user prompts in, JSON text out.
// Client.CompleteWithAttachments: the same with images or documents attached
// as data-URL content parts (floor plans, room frames, lease scans).
// Client.HealthCheck: verify API key and model availability.
// DecodeReply: tolerant decoding of fenced or chatty JSON replies.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default), honouring Retry-After. Context cancellation aborts retries
// immediately.
//
// Failures are tagged with services.ErrUnavailable (transport and model
// errors) or services.ErrConfiguration (missing API key) so callers can fall
// back or report "unavailable".
package llm
