package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatisticPoint has a nil Value when the portal reports no reading for that date.
type StatisticPoint struct {
	Time  time.Time `json:"time"`
	Value *float64  `json:"value"`
}

// Statistic is one historical series. The five energy categories share this
// type and are told apart by Category.
type Statistic struct {
	Category    StatisticType    `json:"category"`
	Granularity GraphType        `json:"granularity"`
	HasData     bool             `json:"hasData"`
	MaxDate     time.Time        `json:"maxDate"`
	MinDate     time.Time        `json:"minDate"`
	Unit        string           `json:"unit"`
	Points      []StatisticPoint `json:"points"`
}

type wireStatisticPoint struct {
	Date  *string   `json:"Date"`
	Value *float64 `json:"Value"`
}

type wireStatistic struct {
	HasData *bool                 `json:"HasData"`
	MaxDate *string               `json:"MaxDate"`
	MinDate *string               `json:"MinDate"`
	Unit    string                `json:"Unit"`
	Data    *[]wireStatisticPoint `json:"Data"`
}

var statisticDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05.999999999",
}

// ParseStatistic parses a GetStatistics response for the requested category and granularity.
func ParseStatistic(raw json.RawMessage, category StatisticType, granularity GraphType) (*Statistic, error) {
	what := category.String() + " statistic"
	w := wireStatistic{}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, malformed(what, err)
	}
	switch {
	case w.HasData == nil:
		return nil, missing(what, "HasData")
	case w.MaxDate == nil:
		return nil, missing(what, "MaxDate")
	case w.MinDate == nil:
		return nil, missing(what, "MinDate")
	case w.Data == nil:
		return nil, missing(what, "Data")
	}

	maxDate, err := parseStatisticDate(*w.MaxDate)
	if err != nil {
		return nil, malformed(what, err)
	}
	minDate, err := parseStatisticDate(*w.MinDate)
	if err != nil {
		return nil, malformed(what, err)
	}

	s := &Statistic{
		Category:    category,
		Granularity: granularity,
		HasData:     *w.HasData,
		MaxDate:     maxDate,
		MinDate:     minDate,
		Unit:        w.Unit,
		Points:      make([]StatisticPoint, 0, len(*w.Data)),
	}
	for _, p := range *w.Data {
		if p.Date == nil {
			return nil, missing(what, "Data.Date")
		}
		t, err := parseStatisticDate(*p.Date)
		if err != nil {
			return nil, malformed(what, err)
		}
		s.Points = append(s.Points, StatisticPoint{Time: t, Value: p.Value})
	}
	return s, nil
}

func parseStatisticDate(s string) (time.Time, error) {
	for _, layout := range statisticDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q", s)
}
