/*
The package config loads the TOML configuration of the decoder.

	[log]
	level = "info"
	file = "/var/log/tetradec.log"

	[input]
	file = "capture.txt"
	serial = "auto"
	layer = "mm-dl"

	[netinfo]
	mcc = 262
	mnc = 1

	[decode]
	record = "records.cbor"
*/
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ftl/tetra-air/tetra"
)

// AutoSerial selects the first serial port that looks like a trace port.
const AutoSerial = "auto"

type Config struct {
	Log     Log
	Input   Input
	NetInfo NetInfo
	Decode  Decode
}

type Log struct {
	// Level is one of trace, debug, info, warn, error, disabled.
	Level string
	// File enables a rotating log file in addition to the console output.
	File       string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

type Input struct {
	// File to read the frames from, "-" or empty is stdin.
	File string
	// Serial port to read the frames from, or "auto".
	Serial   string
	BaudRate uint
	// Layer is assigned to all lines without layer prefix.
	Layer string
	// Trace writes every received line to the debug log.
	Trace bool
}

// NetInfo describes the home network. Decoded addresses of other networks are flagged as foreign.
type NetInfo struct {
	MCC uint16
	MNC uint16
}

// Defined indicates if the home network is configured.
func (n NetInfo) Defined() bool {
	return n.MCC != 0 || n.MNC != 0
}

func (n NetInfo) MNI() tetra.MNI {
	return tetra.MNI{MCC: n.MCC, MNC: n.MNC}
}

type Decode struct {
	// Record is the path of the CBOR record file, empty to disable.
	Record string
	// Verify is the path of a conformance vector file.
	Verify string
}

func Default() Config {
	return Config{
		Log: Log{
			Level:      "info",
			MaxSizeMB:  25,
			MaxAgeDays: 7,
			MaxBackups: 5,
		},
		Input: Input{
			BaudRate: 38400,
			Layer:    "mm-dl",
		},
	}
}

type fileConfig struct {
	Log struct {
		Level      string `toml:"level"`
		File       string `toml:"file"`
		MaxSizeMB  int    `toml:"max_size_mb"`
		MaxAgeDays int    `toml:"max_age_days"`
		MaxBackups int    `toml:"max_backups"`
		Compress   bool   `toml:"compress"`
	} `toml:"log"`
	Input struct {
		File     string `toml:"file"`
		Serial   string `toml:"serial"`
		BaudRate uint   `toml:"baud_rate"`
		Layer    string `toml:"layer"`
		Trace    bool   `toml:"trace"`
	} `toml:"input"`
	NetInfo struct {
		MCC uint16 `toml:"mcc"`
		MNC uint16 `toml:"mnc"`
	} `toml:"netinfo"`
	Decode struct {
		Record string `toml:"record"`
		Verify string `toml:"verify"`
	} `toml:"decode"`
}

// Load reads the configuration file at the given path. Keys that are not defined in the file keep their default value.
// The returned warnings list all keys of the file that are unknown.
func Load(path string) (Config, []string, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	return apply(raw, meta)
}

// Parse reads the configuration from the given TOML text, see Load.
func Parse(text string) (Config, []string, error) {
	var raw fileConfig
	meta, err := toml.Decode(text, &raw)
	if err != nil {
		return Config{}, nil, fmt.Errorf("parse config: %w", err)
	}
	return apply(raw, meta)
}

func apply(raw fileConfig, meta toml.MetaData) (Config, []string, error) {
	cfg := Default()

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(raw.Log.Level))
	}
	if meta.IsDefined("log", "file") {
		cfg.Log.File = strings.TrimSpace(raw.Log.File)
	}
	if meta.IsDefined("log", "max_size_mb") {
		cfg.Log.MaxSizeMB = raw.Log.MaxSizeMB
	}
	if meta.IsDefined("log", "max_age_days") {
		cfg.Log.MaxAgeDays = raw.Log.MaxAgeDays
	}
	if meta.IsDefined("log", "max_backups") {
		cfg.Log.MaxBackups = raw.Log.MaxBackups
	}
	if meta.IsDefined("log", "compress") {
		cfg.Log.Compress = raw.Log.Compress
	}

	if meta.IsDefined("input", "file") {
		cfg.Input.File = strings.TrimSpace(raw.Input.File)
	}
	if meta.IsDefined("input", "serial") {
		cfg.Input.Serial = strings.TrimSpace(raw.Input.Serial)
	}
	if meta.IsDefined("input", "baud_rate") {
		cfg.Input.BaudRate = raw.Input.BaudRate
	}
	if meta.IsDefined("input", "layer") {
		cfg.Input.Layer = strings.TrimSpace(raw.Input.Layer)
	}
	if meta.IsDefined("input", "trace") {
		cfg.Input.Trace = raw.Input.Trace
	}

	if meta.IsDefined("netinfo", "mcc") {
		cfg.NetInfo.MCC = raw.NetInfo.MCC
	}
	if meta.IsDefined("netinfo", "mnc") {
		cfg.NetInfo.MNC = raw.NetInfo.MNC
	}

	if meta.IsDefined("decode", "record") {
		cfg.Decode.Record = strings.TrimSpace(raw.Decode.Record)
	}
	if meta.IsDefined("decode", "verify") {
		cfg.Decode.Verify = strings.TrimSpace(raw.Decode.Verify)
	}

	var warnings []string
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown configuration key %s", key.String()))
	}

	return cfg, warnings, cfg.Validate()
}

var logLevels = map[string]bool{
	"trace":    true,
	"debug":    true,
	"info":     true,
	"warn":     true,
	"error":    true,
	"disabled": true,
}

// Validate checks the configuration for values that cannot be used.
func (c Config) Validate() error {
	if !logLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Log.File != "" && (c.Log.MaxSizeMB <= 0 || c.Log.MaxAgeDays < 0 || c.Log.MaxBackups < 0) {
		return fmt.Errorf("invalid log rotation: max_size_mb %d, max_age_days %d, max_backups %d", c.Log.MaxSizeMB, c.Log.MaxAgeDays, c.Log.MaxBackups)
	}
	if c.NetInfo.Defined() && !c.NetInfo.MNI().Valid() {
		return fmt.Errorf("invalid network %d-%d: MCC must fit into %d bits, MNC into %d bits", c.NetInfo.MCC, c.NetInfo.MNC, tetra.MCCWidth, tetra.MNCWidth)
	}
	if c.Input.File != "" && c.Input.Serial != "" {
		return fmt.Errorf("input file %q and serial port %q are mutually exclusive", c.Input.File, c.Input.Serial)
	}
	return nil
}
