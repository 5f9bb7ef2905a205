package dashboard

import (
	"strings"
	"time"

	"SecuroHub/internal/models"
)

const CategoryOther = "Other"

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Baseline incident counts shown before any alert is reported.
var Baseline = []CategoryCount{
	{Category: "Theft", Count: 15},
	{Category: "Assault", Count: 10},
	{Category: "Burglary", Count: 5},
	{Category: "Robbery", Count: 8},
}

// checked in order; robbery and burglary before the broader theft terms
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"Robbery", []string{"robbery", "robbed", "mugging", "mugged", "holdup", "hold-up", "carjack"}},
	{"Burglary", []string{"burglary", "burglar", "break-in", "broke into", "broken into", "breaking in"}},
	{"Assault", []string{"assault", "attack", "beaten", "beating", "stabbing", "stabbed", "shooting", "shot", "fight", "punched"}},
	{"Theft", []string{"theft", "stolen", "stole", "steal", "shoplift", "pickpocket", "snatch", "thief"}},
}

// Classify maps free text onto one of the baseline categories, or Other.
func Classify(text string) string {
	lower := strings.ToLower(text)
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(lower, w) {
				return ck.category
			}
		}
	}
	return CategoryOther
}

type Stats struct {
	Categories  []CategoryCount  `json:"categories"`
	Alerts      map[string]int64 `json:"alerts"`
	Users       int64            `json:"users"`
	Messages    int64            `json:"messages"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// categorize adds the alerts to the baseline counts. Other is listed only
// when at least one alert fell into it.
func categorize(alerts []models.Alert) []CategoryCount {
	counts := make([]CategoryCount, len(Baseline))
	copy(counts, Baseline)
	var other int64
	for _, a := range alerts {
		category := Classify(a.Description + " " + a.OriginReport)
		if category == CategoryOther {
			other++
			continue
		}
		for i := range counts {
			if counts[i].Category == category {
				counts[i].Count++
				break
			}
		}
	}
	if other > 0 {
		counts = append(counts, CategoryCount{Category: CategoryOther, Count: other})
	}
	return counts
}
