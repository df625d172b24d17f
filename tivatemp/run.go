package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/itohio/tivatemp/pkg/adc"
	"github.com/itohio/tivatemp/pkg/board"
	"github.com/itohio/tivatemp/pkg/config"
	"github.com/itohio/tivatemp/pkg/heartbeat"
	"github.com/itohio/tivatemp/pkg/loop"
	"github.com/itohio/tivatemp/pkg/publish"
	"github.com/itohio/tivatemp/pkg/report"
	"github.com/itohio/tivatemp/pkg/strobe"
	"github.com/itohio/tivatemp/pkg/timer"
)

func newRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Starts the acquisition loop",
		RunE:  handleRunCmd,
	}

	runCmd.Flags().StringP("port", "p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0); empty writes to stdout")
	runCmd.Flags().Int("report-sequence", -1, "Sequence to report (0..2, overrides config)")
	runCmd.Flags().Duration("timeout", -1, "Per-sequence completion timeout (0 waits forever, overrides config)")
	runCmd.Flags().Int("stall", -2, "Simulate a sequence that never completes (-1 = none, overrides config)")
	runCmd.Flags().String("mqtt", "", "MQTT broker override (e.g., tcp://localhost:1883)")

	return runCmd
}

func handleRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Serial.Port = port
	}
	if seq, _ := cmd.Flags().GetInt("report-sequence"); seq >= 0 {
		cfg.Acquisition.ReportSequence = seq
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout >= 0 {
		cfg.Acquisition.Timeout = timeout
	}
	if stall, _ := cmd.Flags().GetInt("stall"); stall >= -1 {
		cfg.Mock.StallSequence = stall
	}
	if broker, _ := cmd.Flags().GetString("mqtt"); broker != "" {
		cfg.MQTT.Broker = broker
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, cmd.OutOrStdout())
}

// run brings up the board, wires the loop and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	brd := board.Default()
	if err := brd.Validate(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	for _, p := range brd.AnalogChannels() {
		log.Printf("Analog input enabled: %s", p)
	}

	out := stdout
	if cfg.Serial.Port != "" {
		port, err := report.OpenSerial(cfg.Serial.Port, cfg.Serial.BaudRate)
		if err != nil {
			return err
		}
		defer port.Close()
		out = port
		log.Printf("Reporting on %s at %d baud", cfg.Serial.Port, cfg.Serial.BaudRate)
	}

	pin, err := openHeartbeatPin(cfg.Heartbeat)
	if err != nil {
		return err
	}
	hb := heartbeat.New(pin)
	defer func() {
		if err := hb.Close(); err != nil {
			log.Printf("Error closing heartbeat: %v", err)
		}
	}()

	var pub publish.Publisher = publish.Nop{}
	if cfg.MQTT.Broker != "" {
		mq, err := publish.NewReal(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		pub = mq
		log.Printf("Publishing to %s topic %s", cfg.MQTT.Broker, cfg.MQTT.Topic)
	}
	defer pub.Close()

	hbFlag, smpFlag := &strobe.Strobe{}, &strobe.Strobe{}

	timers := timer.New(timer.NewController(), hbFlag, smpFlag)
	if err := timers.Configure(cfg.Clock.Hz, cfg.Timers.HeartbeatHz, cfg.Timers.SampleHz); err != nil {
		return err
	}

	engine := adc.NewEngine(adc.NewMock(&cfg.Mock), cfg.Acquisition.Timeout)
	l, err := loop.New(hbFlag, smpFlag, loop.Options{
		Heartbeat:      hb,
		Acquirer:       engine,
		Reporter:       report.New(out),
		Publisher:      pub,
		ReportSequence: cfg.Acquisition.ReportSequence,
		Idle:           cfg.Acquisition.Idle,
	})
	if err != nil {
		return err
	}

	timersDone, err := timers.Start(ctx)
	if err != nil {
		return err
	}

	log.Printf("Started: heartbeat=%v sample=%v timeout=%v report_sequence=%d",
		timers.Timer(timer.Heartbeat).Period, timers.Timer(timer.Sample).Period,
		engine.Timeout(), cfg.Acquisition.ReportSequence)

	err = l.Run(ctx)
	<-timersDone

	stats := l.Stats()
	log.Printf("Stopped: iterations=%d toggles=%d reports=%d timeouts=%d",
		stats.Iterations, stats.Toggles, stats.Reports, stats.Timeouts)
	return err
}

func openHeartbeatPin(cfg config.HeartbeatConfig) (heartbeat.Pin, error) {
	if cfg.Chip == "" {
		return heartbeat.NopPin{}, nil
	}
	pin, err := heartbeat.NewLinePin(cfg.Chip, cfg.Line)
	if err != nil {
		return nil, fmt.Errorf("init heartbeat: %w", err)
	}
	log.Printf("Heartbeat on %s line %d", cfg.Chip, cfg.Line)
	return pin, nil
}
