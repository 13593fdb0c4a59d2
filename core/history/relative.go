package history

import (
	"fmt"
	"time"

	"img2latex-console/core/models"
)

// RelativeTime renders how long ago t was, relative to now
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	}
	return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
}

// Item is a history entry with its age rendered for display
type Item struct {
	models.HistoryEntry
	Age string `json:"age"`
}

// Annotate renders the age of each entry relative to now
func Annotate(entries []models.HistoryEntry, now time.Time) []Item {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		item := Item{HistoryEntry: e}
		if e.CreatedAt != nil && !e.CreatedAt.IsZero() {
			item.Age = RelativeTime(e.CreatedAt.Time, now)
		}
		items = append(items, item)
	}
	return items
}
