package leaderboard

import (
	"fmt"
	"strconv"

	"github.com/enescakir/emoji"
)

var medals = [...]string{"🥇", "🥈", "🥉"}

// Row is an entry prepared for display.
type Row struct {
	Rank    int    `json:"rank"`
	Badge   string `json:"badge"`
	Podium  bool   `json:"podium"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Display string `json:"display"`
}

// Rank numbers entries and gives the podium a medal. Scores are shown out of total.
func Rank(entries []Entry, total int) []Row {
	rows := make([]Row, 0, len(entries))
	for i, e := range entries {
		r := Row{
			Rank:    i + 1,
			Badge:   strconv.Itoa(i + 1),
			Name:    e.Name,
			Score:   e.Score,
			Display: fmt.Sprintf("%d/%d", e.Score, total),
		}
		if i < len(medals) {
			r.Badge = medals[i]
			r.Podium = true
		}
		rows = append(rows, r)
	}
	return rows
}

// Title is the heading shown above the leaderboard.
func Title() string {
	return emoji.Trophy.String() + " Leaderboard"
}

// EmptyMessage is shown when no scores are saved.
const EmptyMessage = "No scores yet. Be the first!"
