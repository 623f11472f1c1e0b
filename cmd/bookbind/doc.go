// Command bookbind merges ordered WAV audiobook segments into single files.
package main
