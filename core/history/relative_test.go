package history

import (
	"testing"
	"time"

	"img2latex-console/core/models"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "Just now"},
		{time.Minute, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{time.Hour, "1h ago"},
		{23*time.Hour + 59*time.Minute, "23h ago"},
		{24 * time.Hour, "1d ago"},
		{9 * 24 * time.Hour, "9d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := RelativeTime(now.Add(-tt.ago), now); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAnnotate(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	created := models.NewTimestamp(now.Add(-3 * time.Hour))

	items := Annotate([]models.HistoryEntry{
		{ID: 1, Latex: "x", CreatedAt: &created},
		{ID: 2, Latex: "y"},
	}, now)

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Age != "3h ago" {
		t.Fatalf("unexpected age %q", items[0].Age)
	}
	if items[1].Age != "" {
		t.Fatalf("expected no age without created_at, got %q", items[1].Age)
	}
}
