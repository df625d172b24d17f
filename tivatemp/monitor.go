package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/itohio/tivatemp/pkg/report"
	"github.com/itohio/tivatemp/pkg/trend"
)

func newMonitorCommand() *cobra.Command {
	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Reads temperature reports from a serial port",
		RunE:  handleMonitorCmd,
	}

	monitorCmd.Flags().StringP("port", "p", "", "Serial port to read (overrides config)")

	return monitorCmd
}

func handleMonitorCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Serial.Port = port
	}
	if cfg.Serial.Port == "" {
		return fmt.Errorf("no serial port configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := report.NewMonitor(cfg.Serial.Port, cfg.Serial.BaudRate, 0)
	if err := m.Connect(); err != nil {
		return err
	}
	log.Printf("Monitoring %s", cfg.Serial.Port)

	go func() {
		<-ctx.Done()
		m.Close()
	}()

	out := cmd.OutOrStdout()
	tr := trend.New(&cfg.Monitor)
	tr.OnUpdate(func(points []trend.Point, rates []float64, excursions []trend.Excursion) {
		printTrend(out, points, rates, excursions)
	})
	tr.ProcessReadings(m.Readings())

	s := tr.Summary()
	log.Printf("Monitor stopped: %d readings in window, min=%d max=%d mean=%.1f",
		s.Count, s.Min, s.Max, s.Mean)
	if ctx.Err() == nil {
		return fmt.Errorf("serial port %s disconnected", cfg.Serial.Port)
	}
	return nil
}

// printTrend writes the latest reading with its rate and any active excursion.
func printTrend(w io.Writer, points []trend.Point, rates []float64, excursions []trend.Excursion) {
	if len(points) == 0 {
		return
	}
	last := points[len(points)-1]

	rate := 0.0
	if len(rates) > 0 {
		rate = rates[len(rates)-1]
	}

	line := fmt.Sprintf("%s %4d °C %4d °F %+6.2f °C/s",
		last.Timestamp.Format("15:04:05.000"), last.Reading.Celsius, last.Reading.Fahrenheit, rate)
	if n := len(excursions); n > 0 && excursions[n-1].EndIndex == len(points)-1 {
		e := excursions[n-1]
		dir := "falling"
		if e.Rising {
			dir = "rising"
		}
		line += fmt.Sprintf(" [%s %v]", dir, e.Duration().Round(time.Millisecond))
	}
	fmt.Fprintln(w, line)
}

func newPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "Lists available serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := report.Ports()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ports) == 0 {
				fmt.Fprintln(out, "No serial ports found")
				return nil
			}
			for _, p := range ports {
				fmt.Fprintln(out, p.Name)
			}
			return nil
		},
	}
}
