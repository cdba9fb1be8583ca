// Package catalog holds the fixed table of known cities: a canned reading for
// demo mode and, where one exists, a live-camera embed.
package catalog

import (
	"sort"
	"strings"

	"github.com/fakhrymubarak/weather-lookup/internal/model"
)

// DefaultCity is served whenever demo mode has no matching city.
const DefaultCity = "Montreal"

// Entry is one catalog row.
type Entry struct {
	Reading model.WeatherReading
	Webcam  *model.Webcam
}

// Shared by every canned reading.
const (
	fixedSunrise    int64 = 1736683200
	fixedSunset     int64 = 1736716800
	fixedVisibility       = 8000
	fixedWindSpeed        = 4.5
	fixedCloudiness       = 90
)

func reading(name, country string, lat, lon float64, cond model.Condition, desc string, temp, feels float64, pressure, humidity int) model.WeatherReading {
	vis := fixedVisibility
	return model.WeatherReading{
		CityName:      name,
		CountryCode:   country,
		Coordinates:   model.Coordinates{Lat: lat, Lon: lon},
		Condition:     cond,
		Description:   desc,
		TemperatureC:  temp,
		FeelsLikeC:    feels,
		HumidityPct:   humidity,
		PressureHpa:   pressure,
		WindSpeedMs:   fixedWindSpeed,
		CloudinessPct: fixedCloudiness,
		VisibilityM:   &vis,
		SunriseEpochS: fixedSunrise,
		SunsetEpochS:  fixedSunset,
	}
}

func youtube(name, id string) *model.Webcam {
	return &model.Webcam{
		DisplayName: name,
		EmbedURL:    "https://www.youtube.com/embed/" + id,
		SourceLabel: "YouTube Live",
	}
}

var defaultReading = reading("Montreal", "CA", 45.5017, -73.5673, model.ConditionSnow, "snow", -5.2, -10.8, 1015, 78)

var notreDameDuLaus = reading("Notre-Dame-du-Laus", "CA", 46.0833, -75.6333, model.ConditionSnow, "moderate snow", -12.5, -18.2, 1018, 82)

// keys are canonical names; lookups compare case-insensitively.
var entries = map[string]Entry{
	"Montreal": {
		Reading: reading("Montreal", "CA", 45.5017, -73.5673, model.ConditionSnow, "light snow", -5.2, -10.8, 1015, 78),
		Webcam:  youtube("Montreal", "kslJX3zDU4U"),
	},
	"Toronto": {
		Reading: reading("Toronto", "CA", 43.7001, -79.4163, model.ConditionClear, "clear sky", -2.5, -7.2, 1020, 65),
		Webcam:  youtube("Toronto", "mPXPHLjOqFY"),
	},
	"Vancouver": {
		Reading: reading("Vancouver", "CA", 49.2827, -123.1207, model.ConditionRain, "light rain", 8.5, 6.2, 1012, 85),
		Webcam:  youtube("Vancouver", "Z0M8jwM3ysI"),
	},
	"London": {
		Reading: reading("London", "GB", 51.5085, -0.1257, model.ConditionClouds, "broken clouds", 7.0, 4.5, 1018, 72),
		Webcam:  youtube("London", "Oi58RQO8oNk"),
	},
	"Paris": {
		Reading: reading("Paris", "FR", 48.8534, 2.3488, model.ConditionClouds, "scattered clouds", 9.5, 7.8, 1016, 68),
		Webcam:  youtube("Paris", "8RCMxdZY5zU"),
	},
	"Tokyo": {
		Reading: reading("Tokyo", "JP", 35.6895, 139.6917, model.ConditionClear, "clear sky", 12.0, 10.5, 1022, 55),
		Webcam:  youtube("Tokyo", "DjdUEyjx8GM"),
	},
	"New York": {
		Reading: reading("New York", "US", 40.7143, -74.006, model.ConditionClouds, "few clouds", 3.5, -1.2, 1019, 60),
		Webcam:  youtube("New York", "AdUw5RdyZxI"),
	},
	"Sydney": {
		Reading: reading("Sydney", "AU", -33.8679, 151.2073, model.ConditionClear, "clear sky", 28.0, 29.5, 1014, 65),
		Webcam:  youtube("Sydney", "G02bpIFg7Ww"),
	},
	"Notre-Dame-du-Laus": {Reading: notreDameDuLaus},
	"Notre Dame du Laus": {Reading: notreDameDuLaus},
}

// canonical resolves name to its catalog key.
func canonical(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for key := range entries {
		if strings.EqualFold(key, name) {
			return key, true
		}
	}
	return "", false
}

// Lookup returns a copy of the entry whose canonical name equals name, ignoring case.
func Lookup(name string) (Entry, bool) {
	key, ok := canonical(name)
	if !ok {
		return Entry{}, false
	}
	e := entries[key]
	out := Entry{Reading: e.Reading.Clone()}
	if e.Webcam != nil {
		w := *e.Webcam
		out.Webcam = &w
	}
	return out, true
}

// Webcam returns the live-camera reference for name, if the catalog has one.
func Webcam(name string) (model.Webcam, bool) {
	e, ok := Lookup(name)
	if !ok || e.Webcam == nil {
		return model.Webcam{}, false
	}
	return *e.Webcam, true
}

// DefaultReading is the reading served when no city is requested or matched.
func DefaultReading() model.WeatherReading {
	return defaultReading.Clone()
}

// Names lists the canonical city names in sorted order.
func Names() []string {
	names := make([]string, 0, len(entries))
	for key := range entries {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}
