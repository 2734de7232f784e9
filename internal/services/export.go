package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"teamdraw/internal/models"
)

// WriteGroupsCSV writes one "Team Name,Member Name" row per group member.
// Fields containing a delimiter are quoted.
func WriteGroupsCSV(w io.Writer, groups []models.Group) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Team Name", "Member Name"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, g := range groups {
		for _, m := range g.Members {
			if err := cw.Write([]string{g.Name, m.Name}); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHistoryCSV writes the draw history, most recent first.
func WriteHistoryCSV(w io.Writer, history []models.DrawResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Time", "Winner", "Prize"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range history {
		row := []string{r.Timestamp.Format(time.RFC3339), r.Winner.Name, r.PrizeLabel}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
