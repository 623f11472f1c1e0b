// Package services holds the shared error taxonomy for external codec tool
// clients and the merge engine that drives them. Tool-specific clients live in
// subpackages (sox, ffmpeg).
package services
