// Package merge assembles ordered same-format WAV segments into a single
// audiobook file. The engine validates format compatibility, probes external
// codec tools per request, and tries an ordered chain of strategies: an
// in-process streaming merger for small collections, SoX or FFmpeg for large
// ones, a raw-payload merger that synthesizes the container header manually
// when no tool is installed, and a capped-prefix fallback as the last resort.
package merge
