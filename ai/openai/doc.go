// Package openai implements the ai interfaces against OpenAI-compatible
// chat APIs (Ollama, LocalAI, vLLM, OpenAI itself) through langchaingo.
//
// The extractor requests JSON mode at temperature 0, strips markdown code
// fences from the response and falls back to a lightweight JSON repair pass
// before giving up on a malformed reply.
package openai
