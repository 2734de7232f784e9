package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"teamdraw/internal/models"
)

var mockNames = []string{
	"Alice Chen", "Bob Wang", "Charlie Lin", "Diana Lee", "Edward Ho",
	"Fiona Wong", "George Chang", "Hannah Hsu", "Ivan Lu", "Jenny Kao",
	"Kevin Tsai", "Laura Yeh", "Mike Sung", "Nancy Cheng", "Oscar Pan",
}

// Roster is the authoritative participant list of one session.
// Consumers only ever see copies returned by Snapshot.
type Roster struct {
	participants []models.Participant
}

// Snapshot returns a point-in-time copy of the roster.
func (r *Roster) Snapshot() []models.Participant {
	out := make([]models.Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// Replace swaps the whole roster for list.
func (r *Roster) Replace(list []models.Participant) {
	r.participants = make([]models.Participant, len(list))
	copy(r.participants, list)
}

func (r *Roster) Len() int { return len(r.participants) }

// Text renders the roster one name per line, the format the editor shows.
func (r *Roster) Text() string {
	names := make([]string, len(r.participants))
	for i, p := range r.participants {
		names[i] = p.Name
	}
	return strings.Join(names, "\n")
}

// ParseRoster splits raw text on newlines and commas, trims every token,
// drops empty ones and assigns each remaining name a fresh ID.
func ParseRoster(text string) []models.Participant {
	tokens := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ',' })
	out := make([]models.Participant, 0, len(tokens))
	for _, tok := range tokens {
		name := strings.TrimSpace(tok)
		if name == "" {
			continue
		}
		out = append(out, newParticipant(name))
	}
	return out
}

// ReadRoster parses an uploaded roster file.
func ReadRoster(r io.Reader) ([]models.Participant, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(string(raw)), nil
}

// MockRoster returns the demo roster.
func MockRoster() []models.Participant {
	out := make([]models.Participant, len(mockNames))
	for i, name := range mockNames {
		out[i] = newParticipant(name)
	}
	return out
}

func newParticipant(name string) models.Participant {
	return models.Participant{ID: uuid.NewString(), Name: name}
}

// NormalizeName is the key used for duplicate detection.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// DuplicateCounts counts participants per normalized name.
func DuplicateCounts(list []models.Participant) map[string]int {
	counts := make(map[string]int, len(list))
	for _, p := range list {
		counts[NormalizeName(p.Name)]++
	}
	return counts
}

// HasDuplicates reports whether any normalized name occurs more than once.
func HasDuplicates(list []models.Participant) bool {
	for _, n := range DuplicateCounts(list) {
		if n > 1 {
			return true
		}
	}
	return false
}

// RemoveDuplicates keeps the first participant for every normalized name.
func RemoveDuplicates(list []models.Participant) []models.Participant {
	seen := make(map[string]struct{}, len(list))
	out := make([]models.Participant, 0, len(list))
	for _, p := range list {
		key := NormalizeName(p.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
