package repository

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/fakhrymubarak/weather-lookup/internal/model"
)

func decode(t *testing.T, body string) *model.OpenWeatherMapResponse {
	t.Helper()
	var data model.OpenWeatherMapResponse
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		t.Fatal(err)
	}
	return &data
}

func TestNormalize_Precipitation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *model.Precipitation
	}{
		{"none", `{"name":"X"}`, nil},
		{"rain 1h", `{"rain":{"1h":0.3}}`, &model.Precipitation{Kind: model.PrecipitationRain, AmountMm: 0.3, WindowHours: 1}},
		{"rain 3h", `{"rain":{"3h":2.1}}`, &model.Precipitation{Kind: model.PrecipitationRain, AmountMm: 2.1, WindowHours: 3}},
		{"1h preferred", `{"rain":{"3h":2.1,"1h":0.7}}`, &model.Precipitation{Kind: model.PrecipitationRain, AmountMm: 0.7, WindowHours: 1}},
		{"snow over rain", `{"rain":{"1h":0.2},"snow":{"3h":1.5}}`, &model.Precipitation{Kind: model.PrecipitationSnow, AmountMm: 1.5, WindowHours: 3}},
		{"empty object", `{"snow":{}}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(decode(t, tt.body)).Precipitation
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Expected no precipitation, got %+v", got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNormalize_OptionalFields(t *testing.T) {
	r := Normalize(decode(t, `{"name":"Nowhere","weather":[]}`))
	if r.VisibilityM != nil {
		t.Errorf("Expected no visibility, got %d", *r.VisibilityM)
	}
	if r.Condition != "" || r.Description != "" {
		t.Errorf("Expected empty condition without weather entries, got %q/%q", r.Condition, r.Description)
	}

	r = Normalize(decode(t, `{"visibility":0,"weather":[{"main":"Squall","description":"squalls"}]}`))
	if r.VisibilityM == nil || *r.VisibilityM != 0 {
		t.Errorf("Expected explicit zero visibility to be kept, got %v", r.VisibilityM)
	}
	if r.Condition != "Squall" {
		t.Errorf("Expected unknown condition to pass through, got %s", r.Condition)
	}
}
