package timeslot

import (
	"time"

	"parkventure/models"
	"parkventure/utils"
)

// rule is the comparable shape of a recurring availability window.
type rule struct {
	validFrom  string
	validUntil string // empty means open-ended
	startMin   int
	endMin     int
	days       []int
	pricingIDs []string
}

func ruleFromTemplate(tpl models.TimeSlotTemplate) rule {
	start, _ := utils.ParseClockMinutes(tpl.StartTime)
	end, _ := utils.ParseClockMinutes(tpl.EndTime)
	return rule{
		validFrom:  tpl.ValidFrom,
		validUntil: tpl.ValidUntil,
		startMin:   start,
		endMin:     end,
		days:       tpl.DaysOfWeek,
		pricingIDs: tpl.PricingIDs,
	}
}

// rulesOverlap reports whether two recurring rules can ever put the
// same physical slot on sale twice: they share a weekday, their date
// windows intersect, their time ranges intersect, and they sell at
// least one common pricing tier (an empty tier list matches anything).
func rulesOverlap(a, b rule) bool {
	if !daysIntersect(a.days, b.days) {
		return false
	}
	if !dateWindowsIntersect(a.validFrom, a.validUntil, b.validFrom, b.validUntil) {
		return false
	}
	if a.startMin >= b.endMin || b.startMin >= a.endMin {
		return false
	}
	return pricingIntersect(a.pricingIDs, b.pricingIDs)
}

func daysIntersect(a, b []int) bool {
	set := make(map[int]bool, len(a))
	for _, d := range a {
		set[d] = true
	}
	for _, d := range b {
		if set[d] {
			return true
		}
	}
	return false
}

// dateWindowsIntersect compares "YYYY-MM-DD" strings directly; the
// layout makes lexicographic and chronological order agree. An empty
// until is open-ended.
func dateWindowsIntersect(aFrom, aUntil, bFrom, bUntil string) bool {
	if aUntil != "" && bFrom > aUntil {
		return false
	}
	if bUntil != "" && aFrom > bUntil {
		return false
	}
	return true
}

func pricingIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if set[id] {
			return true
		}
	}
	return false
}

// materializeDates lists every date in [from, to] whose weekday is in
// the template's day set.
func materializeDates(tpl *models.TimeSlotTemplate, from, to time.Time) []string {
	days := make(map[int]bool, len(tpl.DaysOfWeek))
	for _, d := range tpl.DaysOfWeek {
		days[d] = true
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if days[int(d.Weekday())] {
			dates = append(dates, d.Format(utils.DateLayout))
		}
	}
	return dates
}
