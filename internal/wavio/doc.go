// Package wavio reads and writes RIFF/WAVE containers for uncompressed PCM
// audio. It exposes a header-only probe that never touches sample payload, a
// streaming writer that patches the declared sizes on close, and direct header
// synthesis for payloads assembled outside the container.
package wavio
