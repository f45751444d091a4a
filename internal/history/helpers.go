package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clerk/internal/organize"
)

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		state       string
		dryRun      int
		move        int
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&state,
		&dryRun,
		&move,
		&run.Total,
		&run.Stats.Filename,
		&run.Stats.Content,
		&run.Stats.NoMatch,
		&run.Stats.Errors,
		&run.Stats.Cancelled,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.State = organize.ParseState(state)
	run.DryRun = dryRun != 0
	run.Move = move != 0
	if started, err := parseTimeString(startedRaw); err == nil {
		run.Started = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.Finished = finished
		}
	}
	return run, nil
}

func scanOutcome(scanner interface{ Scan(dest ...any) error }) (Outcome, error) {
	var (
		o           Outcome
		client      sql.NullString
		folder      sql.NullString
		destination sql.NullString
		errText     sql.NullString
		recordedRaw string
	)
	if err := scanner.Scan(
		&o.ID,
		&o.RunID,
		&o.Source,
		&o.Kind,
		&client,
		&folder,
		&destination,
		&errText,
		&recordedRaw,
	); err != nil {
		return Outcome{}, fmt.Errorf("scan outcome: %w", err)
	}
	o.Client = client.String
	o.Folder = folder.String
	o.Destination = destination.String
	o.Error = errText.String
	if recorded, err := parseTimeString(recordedRaw); err == nil {
		o.RecordedAt = recorded
	}
	return o, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// timeLayout has a fixed-width fraction so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
