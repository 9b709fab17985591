package rewards

import (
	"math"
	"sort"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// challengeDefinitions is the canonical list of monthly challenges.
// Keep IDs stable because clients may store them.
func challengeDefinitions() []ChallengeDefinition {
	return []ChallengeDefinition{
		{
			ID:          "challenge-1",
			Title:       "Back-to-Back",
			Description: "Travel 5 weekdays in a row",
			Type:        ChallengeBackToBack,
			Target:      5,
		},
		{
			ID:          "challenge-2",
			Title:       "Off-Peak Hero",
			Description: "Take 3 off-peak trips this month",
			Type:        ChallengeOffPeak,
			Target:      3,
		},
		{
			ID:          "challenge-3",
			Title:       "Monthly Goal Master",
			Description: "Take 25 trips & travel 500+ miles this month",
			Type:        ChallengeMonthlyGoal,
			Target:      25,
			TargetMiles: 500,
		},
	}
}

// ChallengeDefinitions returns a copy of the monthly challenge templates.
func ChallengeDefinitions() []ChallengeDefinition {
	return challengeDefinitions()
}

// EvaluateChallenges computes every challenge from the journeys dated in the calendar
// month of now, using now's location. Journeys from other months are ignored, as are
// journeys whose date cannot be parsed.
func EvaluateChallenges(journeys []Journey, now time.Time) Evaluation {
	month := MonthJourneys(journeys, now)

	dates := distinctDates(month)
	streak := longestWeekdayStreak(dates)
	offPeak := countOffPeak(month)
	miles := 0.0
	for _, j := range month {
		miles += j.Distance
	}

	eval := Evaluation{
		Year:       now.Year(),
		Month:      now.Month(),
		MonthTrips: len(month),
		MonthMiles: miles,
	}

	defs := challengeDefinitions()
	eval.Challenges = make([]ChallengeStatus, 0, len(defs))
	for _, def := range defs {
		var status ChallengeStatus
		switch def.Type {
		case ChallengeBackToBack:
			status = countStatus(def, streak)
		case ChallengeOffPeak:
			status = countStatus(def, offPeak)
		case ChallengeMonthlyGoal:
			status = countStatus(def, len(month))
			// The bar tracks trips only; completion also needs the mileage.
			status.Completed = len(month) >= def.Target && miles >= def.TargetMiles
			status.CurrentMiles = miles
			status.TargetMiles = def.TargetMiles
		default:
			continue
		}
		eval.Challenges = append(eval.Challenges, status)
	}

	eval.AllCompleted = len(eval.Challenges) > 0
	for _, c := range eval.Challenges {
		if !c.Completed {
			eval.AllCompleted = false
			break
		}
	}

	return eval
}

// MonthJourneys returns the journeys dated in the calendar month of now.
func MonthJourneys(journeys []Journey, now time.Time) []Journey {
	out := make([]Journey, 0, len(journeys))
	for _, j := range journeys {
		d, err := time.Parse(dateLayout, j.Date)
		if err != nil {
			continue
		}
		if d.Year() == now.Year() && d.Month() == now.Month() {
			out = append(out, j)
		}
	}
	return out
}

// IsOffPeak reports whether a HH:MM start time falls in [10:00,15:00) or at/after 19:00.
func IsOffPeak(startTime string) bool {
	t, err := time.Parse(clockLayout, startTime)
	if err != nil {
		return false
	}
	hour := t.Hour()
	return (hour >= 10 && hour < 15) || hour >= 19
}

func countStatus(def ChallengeDefinition, value int) ChallengeStatus {
	progress := value
	if progress > def.Target {
		progress = def.Target
	}
	percent := 0
	if def.Target > 0 {
		percent = clampPercent((progress * 100) / def.Target)
	}
	return ChallengeStatus{
		Challenge:       def,
		Progress:        progress,
		Target:          def.Target,
		Completed:       value >= def.Target,
		ProgressPercent: percent,
	}
}

// distinctDates parses and de-duplicates journey dates, ascending. Dates are
// calendar days, so they are kept at UTC midnight to make day arithmetic exact.
func distinctDates(journeys []Journey) []time.Time {
	seen := make(map[string]struct{}, len(journeys))
	dates := make([]time.Time, 0, len(journeys))
	for _, j := range journeys {
		if _, ok := seen[j.Date]; ok {
			continue
		}
		d, err := time.Parse(dateLayout, j.Date)
		if err != nil {
			continue
		}
		seen[j.Date] = struct{}{}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, k int) bool { return dates[i].Before(dates[k]) })
	return dates
}

func longestWeekdayStreak(dates []time.Time) int {
	longest, run := 0, 0
	var prev time.Time
	for _, d := range dates {
		if !isWeekday(d) {
			run = 0
			prev = d
			continue
		}
		if run > 0 && daysBetween(prev, d) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = d
	}
	return longest
}

func countOffPeak(journeys []Journey) int {
	n := 0
	for _, j := range journeys {
		if IsOffPeak(j.StartTime) {
			n++
		}
	}
	return n
}

func isWeekday(d time.Time) bool {
	wd := d.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
