package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bioclock/internal/attendance/publisher"
	"bioclock/internal/platform/config"
	"bioclock/internal/platform/kafka"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Attendance event stream commands",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print attendance events from the start of the topic",
	Long: `Consume KAFKA_ATTENDANCE_TOPIC from the earliest offset and print one
line per recorded event until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runEventsTail,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)

	eventsTailCmd.Flags().String("subject", "", "Only show events for this subject id")
	eventsTailCmd.Flags().Bool("raw", false, "Print message values verbatim")
}

func runEventsTail(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	subject := mustGetString(cmd, "subject")
	raw := mustGetBool(cmd, "raw")
	out := cmd.OutOrStdout()

	err = kafka.Tail(cmd.Context(), cfg.Kafka.Brokers, cfg.Kafka.AttendanceTopic, func(key, value []byte) error {
		if subject != "" && string(key) != subject {
			return nil
		}
		if raw {
			_, err := fmt.Fprintln(out, string(value))
			return err
		}
		line, err := formatEnvelope(value)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping undecodable message: %v\n", err)
			return nil
		}
		_, err = fmt.Fprintln(out, line)
		return err
	})
	if errors.Is(err, cmd.Context().Err()) {
		return nil
	}
	return err
}

func formatEnvelope(value []byte) (string, error) {
	var env publisher.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return "", err
	}
	if env.Event == nil {
		return "", errors.New("envelope has no event")
	}
	e := env.Event
	return fmt.Sprintf("%s %s %s %s status=%s method=%s",
		e.Timestamp.Format(time.RFC3339), e.Subject, e.Day, e.Type, e.Status, e.Method), nil
}
