package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.MaxAttempts < 1 {
		return errors.New("download.max_attempts must be at least 1")
	}
	prev := 0
	for i, delay := range c.Download.RetryDelays {
		if delay < 0 {
			return fmt.Errorf("download.retry_delays[%d] must not be negative", i)
		}
		if delay < prev {
			return errors.New("download.retry_delays must be non-decreasing")
		}
		prev = delay
	}
	if strings.ContainsAny(c.Download.CookiesBrowser, ": ") {
		return errors.New("download.cookies_browser must be a browser name without profile; use download.cookies_profile")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	switch c.Encoding.BitrateMode {
	case BitrateModeAuto:
	case BitrateModeCustom:
		if c.Encoding.CustomBitrate < 0 {
			return errors.New("encoding.custom_bitrate must not be negative")
		}
	case BitrateModePerResolution:
	default:
		return fmt.Errorf("encoding.bitrate_mode must be one of auto, custom, per_resolution (got %q)", c.Encoding.BitrateMode)
	}
	for key, mbps := range c.Encoding.PerResolution {
		height, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(key), "p"))
		if err != nil || height <= 0 {
			return fmt.Errorf("encoding.per_resolution key %q must be a pixel height", key)
		}
		if mbps <= 0 {
			return fmt.Errorf("encoding.per_resolution[%s] must be positive", key)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}
