package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateSubtract(); err != nil {
		return err
	}
	if err := c.validateDetect(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateSubtract() error {
	switch c.Subtract.MatchMode {
	case "by_key", "by_index":
	default:
		return fmt.Errorf("subtract.match_mode must be by_key or by_index, got %q", c.Subtract.MatchMode)
	}
	switch c.Subtract.MissingChannelPolicy {
	case "skip", "error":
	default:
		return fmt.Errorf("subtract.missing_channel_policy must be skip or error, got %q", c.Subtract.MissingChannelPolicy)
	}
	switch c.Subtract.TimeAlign {
	case "require_equal", "interp_bg_to_exp":
	default:
		return fmt.Errorf("subtract.time_align must be require_equal or interp_bg_to_exp, got %q", c.Subtract.TimeAlign)
	}
	return nil
}

func (c *Config) validateDetect() error {
	switch c.Detect.Polarity {
	case "preserve", "invert", "auto", "normalized":
	default:
		return fmt.Errorf("detect.polarity must be preserve, invert, auto, or normalized, got %q", c.Detect.Polarity)
	}
	switch c.Detect.NoiseMethod {
	case "mad", "rms", "std_pretrigger":
	default:
		return fmt.Errorf("detect.noise_method must be mad, rms, or std_pretrigger, got %q", c.Detect.NoiseMethod)
	}
	if c.Detect.ThresholdSigma <= 0 {
		return errors.New("detect.threshold_sigma must be positive")
	}
	if c.Detect.MinDistanceSamples < 0 {
		return errors.New("detect.min_distance_samples must not be negative")
	}
	if c.Detect.MinWidthSamples < 0 {
		return errors.New("detect.min_width_samples must not be negative")
	}
	return nil
}
