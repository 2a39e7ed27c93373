package repository

import (
	"math"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
)

const dateLayout = "2006-01-02"

type dayAccumulator struct {
	day          model.DayForecast
	humiditySum  float64
	samples      int
	descriptions map[string]int
	icons        map[string]string
	firstSeen    []string
}

func newDayAccumulator(date string) *dayAccumulator {
	return &dayAccumulator{
		day:          model.DayForecast{Date: date, TempMin: math.Inf(1), TempMax: math.Inf(-1)},
		descriptions: make(map[string]int),
		icons:        make(map[string]string),
	}
}

func (a *dayAccumulator) add(e model.OpenWeatherMapEntry) {
	a.day.TempMin = math.Min(a.day.TempMin, e.Main.TempMin)
	a.day.TempMax = math.Max(a.day.TempMax, e.Main.TempMax)
	a.day.PrecipitationProbability = math.Max(a.day.PrecipitationProbability, e.Pop)
	a.day.WindSpeed = math.Max(a.day.WindSpeed, e.Wind.Speed)
	a.humiditySum += float64(e.Main.Humidity)
	a.samples++

	if len(e.Weather) == 0 {
		return
	}
	desc := e.Weather[0].Description
	if _, seen := a.descriptions[desc]; !seen {
		a.firstSeen = append(a.firstSeen, desc)
		a.icons[desc] = e.Weather[0].Icon
	}
	a.descriptions[desc]++
}

func (a *dayAccumulator) result() model.DayForecast {
	day := a.day
	if a.samples > 0 {
		day.Humidity = math.Round(a.humiditySum/float64(a.samples)*10) / 10
	}
	// most frequent description, ties go to the earliest one
	best := 0
	for _, desc := range a.firstSeen {
		if a.descriptions[desc] > best {
			best = a.descriptions[desc]
			day.Description = desc
			day.Icon = a.icons[desc]
		}
	}
	return day
}

// aggregateDaily folds 3-hour entries into at most maxDays calendar days,
// using the location's UTC offset. Entries are assumed to be in time order.
func aggregateDaily(entries []model.OpenWeatherMapEntry, utcOffset int, maxDays int) []model.DayForecast {
	zone := time.FixedZone("", utcOffset)
	days := make([]model.DayForecast, 0, maxDays)

	var current *dayAccumulator
	for _, e := range entries {
		date := time.Unix(e.Dt, 0).In(zone).Format(dateLayout)
		if current == nil || current.day.Date != date {
			if current != nil {
				days = append(days, current.result())
			}
			if len(days) == maxDays {
				return days
			}
			current = newDayAccumulator(date)
		}
		current.add(e)
	}
	if current != nil && len(days) < maxDays {
		days = append(days, current.result())
	}
	return days
}
