package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLine(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	ev := MatchEvent{
		Type:           MatchCreated,
		MatchID:        1715000000000,
		Name:           "Pelada de quinta",
		Date:           "10/05/2025",
		Time:           "18:00",
		PostalCode:     "01310100",
		VenueName:      "Quadra 1",
		OrganizerEmail: "org@x.com",
		Roster:         []string{"a@x.com", "b@x.com"},
		ActorEmail:     "org@x.com",
		RentCost:       "90.00",
		PerPersonCost:  "30.00",
		OccurredAt:     "2025-05-01T12:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, HandleMessage(dir, body))
	require.NoError(t, HandleMessage(dir, body))

	data, err := os.ReadFile(filepath.Join(dir, "match.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "match.created | match_id=1715000000000")
	assert.Contains(t, lines[0], "per_person=30.00")
	assert.Contains(t, lines[0], "players=[a@x.com,b@x.com]")
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, HandleMessage(dir, []byte("not json")))
	assert.Error(t, HandleMessage(dir, []byte(`{"type":""}`)))
}

func TestFormatLineSweeper(t *testing.T) {
	line := FormatLine(MatchEvent{Type: MatchExpired, MatchID: 7})
	assert.Contains(t, line, "by=sweeper")
	assert.Contains(t, line, "players=[]")
}
