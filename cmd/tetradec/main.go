// tetradec decodes TETRA air interface PDUs (MM and CMCE) from a capture file, stdin, or the trace output
// of a radio on a serial port.
//
// Each input line contains one PDU, optionally prefixed with its layer:
//
//	mm-ul 0001110011001100000101001110010
//	cmce-dl hex:7A25A1F0/93
//
// Every decoded PDU is logged. With --record, the decoding results are also written as CBOR sequence.
// With --verify, a YAML file of conformance vectors is checked instead of decoding the input.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/ftl/tetra-air/capture"
	"github.com/ftl/tetra-air/codec"
	"github.com/ftl/tetra-air/config"
	"github.com/ftl/tetra-air/logging"
	"github.com/ftl/tetra-air/serial"
	"github.com/ftl/tetra-air/vectors"
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := run(os.Args[1:]); err != nil {
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

func run(args []string) error {
	var (
		configFile string
		input      string
		serialPort string
		baudRate   uint
		layer      string
		record     string
		verify     string
		logLevel   string
		trace      bool
	)

	flagSet := pflag.NewFlagSet("tetradec", pflag.ContinueOnError)
	flagSet.StringVar(&configFile, "config", "", "path to the TOML configuration file")
	flagSet.StringVarP(&input, "input", "i", "", "read the frames from this file, - for stdin")
	flagSet.StringVarP(&serialPort, "serial", "s", "", "read the frames from this serial port, auto to detect the port")
	flagSet.UintVar(&baudRate, "baud", 0, "baud rate of the serial port")
	flagSet.StringVarP(&layer, "layer", "l", "", fmt.Sprintf("layer of lines without prefix (%s)", strings.Join(codec.Names(), ", ")))
	flagSet.StringVarP(&record, "record", "r", "", "write the decoding results as CBOR sequence to this file")
	flagSet.StringVar(&verify, "verify", "", "check the conformance vectors in this YAML file")
	flagSet.StringVar(&logLevel, "log-level", "", "trace, debug, info, warn, error, or disabled")
	flagSet.BoolVar(&trace, "trace", false, "log every received line")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	cfg := config.Default()
	var warnings []string
	if configFile != "" {
		var err error
		cfg, warnings, err = config.Load(configFile)
		if err != nil {
			return err
		}
	}
	if flagSet.Changed("input") {
		cfg.Input.File = input
		cfg.Input.Serial = ""
	}
	if flagSet.Changed("serial") {
		cfg.Input.Serial = serialPort
		cfg.Input.File = ""
	}
	if flagSet.Changed("baud") {
		cfg.Input.BaudRate = baudRate
	}
	if flagSet.Changed("layer") {
		cfg.Input.Layer = layer
	}
	if flagSet.Changed("trace") {
		cfg.Input.Trace = trace
	}
	if flagSet.Changed("record") {
		cfg.Decode.Record = record
	}
	if flagSet.Changed("verify") {
		cfg.Decode.Verify = verify
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = strings.ToLower(logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, logCloser, err := logging.Init(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	for _, warning := range warnings {
		logger.Warn().Str("config", configFile).Msg(warning)
	}

	if cfg.Decode.Verify != "" {
		return runVectors(logger, cfg.Decode.Verify)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runDecoder(ctx, logger, cfg)
}

func runVectors(logger zerolog.Logger, filename string) error {
	testVectors, err := vectors.Load(filename)
	if err != nil {
		return err
	}

	results, failed := vectors.RunAll(testVectors)
	for _, result := range results {
		if result.Passed() {
			logger.Debug().Str("vector", result.Vector.Name).Str("pdu", result.Record.PDU).Msg("passed")
			continue
		}
		logger.Error().Str("vector", result.Vector.Name).Str("bits", result.Vector.Bits).Err(result.Err).Msg("failed")
	}
	logger.Info().Int("vectors", len(results)).Int("failed", failed).Msg("verification done")

	if failed > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d of %d vectors failed", failed, len(results))}
	}
	return nil
}

func runDecoder(ctx context.Context, logger zerolog.Logger, cfg config.Config) error {
	device, err := openInput(logger, cfg.Input)
	if err != nil {
		return err
	}
	defer device.Close()

	var reader *capture.Reader
	if cfg.Input.Trace {
		reader = capture.NewWithTrace(device, cfg.Input.Layer, logger.With().Str("trace", "rx").Logger())
	} else {
		reader = capture.New(device, cfg.Input.Layer)
	}

	dec := newDecoder(logger)
	if cfg.NetInfo.Defined() {
		dec.SetHomeNetwork(cfg.NetInfo.MNI())
	}
	if cfg.Decode.Record != "" {
		recordFile, err := os.Create(cfg.Decode.Record)
		if err != nil {
			return fmt.Errorf("create record file: %w", err)
		}
		defer recordFile.Close()
		dec.SetRecordWriter(codec.NewRecordWriter(recordFile))
	}

	for frame := range reader.Frames(ctx) {
		dec.Handle(frame)
	}
	stats := dec.Stats()
	logger.Info().Int("decoded", stats.Decoded).Int("failed", stats.Failed).Int("invalid", stats.Invalid).Msg("input done")
	return nil
}

func openInput(logger zerolog.Logger, input config.Input) (io.ReadCloser, error) {
	if input.Serial == "" {
		if input.File == "" || input.File == "-" {
			return io.NopCloser(os.Stdin), nil
		}
		return os.Open(input.File)
	}

	portName := input.Serial
	if portName == config.AutoSerial {
		var err error
		portName, err = serial.FindPortName(serial.DefaultDescription)
		if err != nil {
			return nil, err
		}
	}
	options := serial.DefaultOptions(portName)
	if input.BaudRate != 0 {
		options.BaudRate = input.BaudRate
	}
	logger.Info().Str("port", options.PortName).Uint("baud", options.BaudRate).Msg("opening serial port")
	return serial.Open(options)
}
