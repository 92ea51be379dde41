// Package logs reads the mediapull log file for the `mediapull logs`
// command: the last N lines, then optional polling for appended lines.
package logs
