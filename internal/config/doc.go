// Package config loads, normalizes, and validates mediapull configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MEDIAPULL_COOKIES_BROWSER. The Config type centralizes every knob the
// pipeline and CLI need: tool locations, the fetch retry schedule, the encoder
// chain and its bitrate policy, and SponsorBlock settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
