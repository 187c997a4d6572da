package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Workspace.Dir, err = expandPath(c.Workspace.Dir); err != nil {
		return fmt.Errorf("workspace.dir: %w", err)
	}
	if c.Workspace.Dir == "" {
		if c.Workspace.Dir, err = expandPath(defaultWorkspaceDir); err != nil {
			return fmt.Errorf("workspace.dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Workspace.LogDir) != "" {
		if c.Workspace.LogDir, err = expandPath(c.Workspace.LogDir); err != nil {
			return fmt.Errorf("workspace.log_dir: %w", err)
		}
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Subtract.MatchMode = strings.TrimSpace(c.Subtract.MatchMode)
	c.Subtract.MissingChannelPolicy = strings.TrimSpace(c.Subtract.MissingChannelPolicy)
	c.Subtract.TimeAlign = strings.TrimSpace(c.Subtract.TimeAlign)
	c.Detect.Polarity = strings.TrimSpace(c.Detect.Polarity)
	c.Detect.NoiseMethod = strings.TrimSpace(c.Detect.NoiseMethod)
	return nil
}
