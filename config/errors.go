package config

import "errors"

// ErrConfigParseError is wrapped around a config file that exists but
// fails to parse as JSON. LoadConfig logs it and falls back to
// DefaultConfig rather than propagating it, since no caller treats
// config loading as fallible.
var ErrConfigParseError = errors.New("configuration parse error")
