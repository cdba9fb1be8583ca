// Package embed builds third-party iframe URLs for a reading.
package embed

import (
	"net/url"
	"strconv"
	"strings"
)

const radarBaseURL = "https://embed.windy.com/embed2.html"

// RadarURL returns the Windy radar embed centred on lat/lon.
func RadarURL(lat, lon float64) string {
	la := strconv.FormatFloat(lat, 'f', -1, 64)
	lo := strconv.FormatFloat(lon, 'f', -1, 64)

	params := []struct{ key, value string }{
		{"lat", la},
		{"lon", lo},
		{"detailLat", la},
		{"detailLon", lo},
		{"width", "650"},
		{"height", "450"},
		{"zoom", "8"},
		{"level", "surface"},
		{"overlay", "radar"},
		{"product", "radar"},
		{"menu", ""},
		{"message", ""},
		{"marker", ""},
		{"calendar", "now"},
		{"pressure", ""},
		{"type", "map"},
		{"location", "coordinates"},
		{"detail", ""},
		{"metricWind", "default"},
		{"metricTemp", "default"},
		{"radarRange", "-1"},
	}
	var b strings.Builder
	b.WriteString(radarBaseURL)
	for i, p := range params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(p.key + "=" + url.QueryEscape(p.value))
	}
	return b.String()
}
