package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdraw/internal/models"
)

func TestWriteGroupsCSV(t *testing.T) {
	groups := []models.Group{
		{Name: "Rockets", Members: people("Ann", "Doe, John")},
		{Name: "Owls, Night", Members: people("Cid")},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGroupsCSV(&buf, groups))

	want := "Team Name,Member Name\n" +
		"Rockets,Ann\n" +
		"Rockets,\"Doe, John\"\n" +
		"\"Owls, Night\",Cid\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteGroupsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGroupsCSV(&buf, nil))
	assert.Equal(t, "Team Name,Member Name\n", buf.String())
}

func TestWriteHistoryCSV(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	history := []models.DrawResult{
		{Timestamp: at, Winner: models.Participant{Name: "Ben"}, PrizeLabel: "Mug"},
		{Timestamp: at, Winner: models.Participant{Name: "Ann"}, PrizeLabel: "Big Prize"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistoryCSV(&buf, history))
	assert.Equal(t,
		"Time,Winner,Prize\n2024-05-01T09:00:00Z,Ben,Mug\n2024-05-01T09:00:00Z,Ann,Big Prize\n",
		buf.String())
}
