// Package providers implements the Generator interface for each supported
// LLM provider.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT), Google (Gemini), and
// Ollama / LMStudio for local models.
//
// A request may ask for structured JSON output; OpenAI-compatible providers
// use response_format and Gemini uses responseMimeType, while Anthropic
// relies on the prompt alone.
//
// All providers share a common retry helper with exponential back-off for
// rate limits and transient 5xx responses. Tests redirect calls to local
// httptest servers via a URL-rewriting transport so no live API requests are
// made.
//
// Use [New] to obtain a Generator by provider name and model string.
package providers
