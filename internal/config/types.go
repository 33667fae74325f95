package config

import "github.com/alertbridge/alertbridge/internal/alert"

// File is the optional YAML configuration file. Every value it carries can
// also come from (and is overridden by) the environment, which is how the
// bridges are usually deployed.
type File struct {
	Listen   Listen        `yaml:"listen"`
	LogLevel string        `yaml:"log_level"`
	Gotify   GotifyConfig  `yaml:"gotify"`
	Ntfy     NtfyConfig    `yaml:"ntfy"`
	Discord  DiscordConfig `yaml:"discord"`
	Apprise  AppriseConfig `yaml:"apprise"`
}

// Listen is the inbound webhook listener settings.
type Listen struct {
	Port int `yaml:"port"`
}

// DefaultPort is where the monitoring platform expects to reach a bridge.
const DefaultPort = 7000

// GotifyConfig configures the push-notification gateway backend.
type GotifyConfig struct {
	URL        string              `yaml:"url"`
	AppToken   string              `yaml:"app_token"`
	Priorities map[alert.Level]int `yaml:"priorities"`
}

// NtfyConfig configures the topic-based pub/sub backend. User+password and
// token auth are mutually exclusive; user+password wins when both are set.
type NtfyConfig struct {
	URL        string              `yaml:"url"`
	Topic      string              `yaml:"topic"`
	User       string              `yaml:"user"`
	Password   string              `yaml:"password"`
	Token      string              `yaml:"token"`
	Priorities map[alert.Level]int `yaml:"priorities"`
}

// DiscordConfig configures the chat webhook backend.
type DiscordConfig struct {
	Webhook string `yaml:"webhook"`
}

// AppriseConfig configures the multi-channel relay backend.
type AppriseConfig struct {
	Host           string   `yaml:"host"`
	StatelessURLs  []string `yaml:"stateless_urls"`
	PersistentKeys []string `yaml:"persistent_keys"`
	Tag            string   `yaml:"tag"`
}
