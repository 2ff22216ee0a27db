package tasklist

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/s1natex/taskboard/internal/tasks"
)

// Direction is the visual cue on a row's move button.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

type Row struct {
	ID         string
	Label      string
	Priority   string
	Difficulty string
	Direction  Direction
}

// Model is everything a renderer needs to draw one view.
type Model struct {
	Category   tasks.Category
	Title      string
	ShowAlert  bool
	AlertText  string
	Error      string
	Empty      bool
	Rows       []Row
	TotalHours float64
	Footer     string
}

// Model derives the render model for list. The total is recomputed from
// list on every call.
func (v *View) Model(list []tasks.Task) Model {
	v.mu.Lock()
	showAlert, errText := v.showAlert, v.errText
	v.mu.Unlock()

	dir := DirectionRight
	if v.BadList() {
		dir = DirectionLeft
	}

	rows := make([]Row, 0, len(list))
	for _, t := range list {
		rows = append(rows, Row{
			ID:         t.ID,
			Label:      fmt.Sprintf("%s (%s hours)", t.Name, FormatHours(t.Hours)),
			Priority:   t.Priority,
			Difficulty: t.Difficulty,
			Direction:  dir,
		})
	}

	total := TotalHours(list)
	return Model{
		Category:   v.category,
		Title:      v.category.Title(),
		ShowAlert:  showAlert,
		AlertText:  AlertText,
		Error:      errText,
		Empty:      len(list) == 0,
		Rows:       rows,
		TotalHours: total,
		Footer:     Footer(total),
	}
}

// hourPrecision is the number of decimals hours are shown with.
const hourPrecision = 1e6

// roundHours drops float noise below the displayed precision so the printed
// value and any comparison on it agree.
func roundHours(h float64) float64 {
	return math.Round(h*hourPrecision) / hourPrecision
}

// TotalHours sums list at display precision.
func TotalHours(list []tasks.Task) float64 {
	var sum float64
	for _, t := range list {
		sum += t.Hours
	}
	return roundHours(sum)
}

// Footer formats the total line. Anything below 2 is singular, so 0, 1 and
// 1.5 all read "hour". The unit is chosen from the printed value.
func Footer(sum float64) string {
	sum = roundHours(sum)
	unit := "hours"
	if sum < 2 {
		unit = "hour"
	}
	return fmt.Sprintf("Total time to complete: %s %s", FormatHours(sum), unit)
}

// FormatHours prints h rounded to six decimals without trailing zeros.
func FormatHours(h float64) string {
	return humanize.Ftoa(roundHours(h))
}
