package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/fakhrymubarak/weather-lookup/internal/background"
	"github.com/fakhrymubarak/weather-lookup/internal/catalog"
	"github.com/fakhrymubarak/weather-lookup/internal/config"
	"github.com/fakhrymubarak/weather-lookup/internal/embed"
	"github.com/fakhrymubarak/weather-lookup/internal/history"
	"github.com/fakhrymubarak/weather-lookup/internal/model"
	"github.com/fakhrymubarak/weather-lookup/internal/service"
	"github.com/fakhrymubarak/weather-lookup/internal/session"
)

var validate = validator.New()

type cityQuery struct {
	City string `validate:"required,max=100"`
}

type coordinatesQuery struct {
	Lat float64 `validate:"latitude"`
	Lon float64 `validate:"longitude"`
}

// ModeInfo is the payload of the mode endpoints.
type ModeInfo struct {
	DemoMode      bool     `json:"demoMode"`
	LiveAvailable bool     `json:"liveAvailable"`
	Mode          string   `json:"mode"`
	Cities        []string `json:"cities"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type WeatherHandler struct {
	Session *session.Session
	Picker  *background.Picker
	History *history.Store
}

// NewWeatherHandler wires the handler. A nil picker falls back to static
// backgrounds only.
func NewWeatherHandler(sess *session.Session, store *history.Store, picker ...*background.Picker) *WeatherHandler {
	p := background.NewPicker("")
	if len(picker) > 0 && picker[0] != nil {
		p = picker[0]
	}
	if store == nil {
		store = history.NewStore(nil)
	}
	return &WeatherHandler{Session: sess, Picker: p, History: store}
}

// Register mounts every route on mux. weatherMiddleware wraps /weather only;
// suggestions and mode reads stay unthrottled.
func (h *WeatherHandler) Register(mux *http.ServeMux, weatherMiddleware ...func(http.Handler) http.Handler) {
	var weather http.Handler = http.HandlerFunc(h.HandleWeather)
	for i := len(weatherMiddleware) - 1; i >= 0; i-- {
		weather = weatherMiddleware[i](weather)
	}
	mux.Handle("/weather", weather)
	mux.HandleFunc("/history/suggestions", h.HandleSuggestions)
	mux.HandleFunc("/mode", h.HandleMode)
	mux.HandleFunc("/mode/toggle", h.HandleToggleMode)
}

func (h *WeatherHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

func (h *WeatherHandler) writeError(w http.ResponseWriter, statusCode int, errMsg string) {
	h.writeJSONResponse(w, statusCode, model.Response{
		Error:   &errMsg,
		Message: "Error",
	})
}

func (h *WeatherHandler) allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// HandleWeather serves GET /weather?city= and GET /weather?lat=&lon=. With
// neither, it behaves as a location request without a position; geo=denied
// reports that the user refused to share one.
func (h *WeatherHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	_, hasCity := q["city"]
	hasCoords := q.Has("lat") || q.Has("lon")

	var result session.Result
	switch {
	case q.Get("geo") == "denied" && !hasCity:
		result = h.Session.LocateDenied(r.Context())
	case hasCity && hasCoords:
		h.writeError(w, http.StatusBadRequest, "Use either 'city' or 'lat'/'lon', not both")
		return
	case hasCity:
		req := cityQuery{City: strings.TrimSpace(q.Get("city"))}
		if err := validate.Struct(req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Missing or invalid 'city' query parameter")
			return
		}
		result = h.Session.SearchCity(r.Context(), req.City)
	case hasCoords:
		coords, err := parseCoordinates(q.Get("lat"), q.Get("lon"))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Missing or invalid 'lat'/'lon' query parameters")
			return
		}
		result = h.Session.Locate(r.Context(), coords)
	default:
		result = h.Session.Locate(r.Context(), nil)
	}

	if result.State != session.StateSuccess {
		h.writeResultError(w, result)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    h.view(r.Context(), result),
		Message: "Success",
	})
}

// parseCoordinates fails when either value is absent, unparsable or out of range.
func parseCoordinates(lat, lon string) (*model.Coordinates, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, err
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(coordinatesQuery{Lat: la, Lon: lo}); err != nil {
		return nil, err
	}
	return &model.Coordinates{Lat: la, Lon: lo}, nil
}

func (h *WeatherHandler) writeResultError(w http.ResponseWriter, result session.Result) {
	logger := config.GetLogger()
	switch result.Kind {
	case session.KindCityNotFound:
		logger.Infow("City lookup failed", "request_id", result.RequestID, "error", result.Err)
		var notFound *service.CityNotFoundError
		msg := "city not found"
		if errors.As(result.Err, &notFound) {
			msg = notFound.Error()
		}
		h.writeError(w, http.StatusNotFound, msg)
	case session.KindLocationUnavailable:
		logger.Infow("Location lookup failed", "request_id", result.RequestID, "error", result.Err)
		var unavailable *service.LocationUnavailableError
		msg := service.ReasonLookupFailed
		if errors.As(result.Err, &unavailable) {
			msg = unavailable.Reason
		}
		h.writeError(w, http.StatusServiceUnavailable, msg)
	default:
		logger.Errorw("Weather lookup failed", "request_id", result.RequestID, "error", result.Err)
		if errors.Is(result.Err, service.ErrWeatherService) {
			h.writeError(w, http.StatusBadGateway, "Weather service returned no data")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch weather data")
	}
}

func (h *WeatherHandler) view(ctx context.Context, result session.Result) model.WeatherView {
	reading := *result.Reading
	cond := background.DisplayCondition(reading)
	v := model.WeatherView{
		Reading:    reading,
		Location:   reading.Location(),
		DemoMode:   h.Session.Service().DemoMode(),
		Condition:  cond,
		Background: h.Picker.Pick(ctx, cond, reading.CityName),
		RadarURL:   embed.RadarURL(reading.Coordinates.Lat, reading.Coordinates.Lon),
		RequestID:  result.RequestID,
	}
	if cam, ok := catalog.Webcam(reading.CityName); ok {
		v.Webcam = &cam
	}
	return v
}

// HandleSuggestions serves GET /history/suggestions?q=.
func (h *WeatherHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	suggestions := h.History.Suggestions(r.Context(), r.URL.Query().Get("q"))
	h.writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    SuggestionsResponse{Suggestions: suggestions},
		Message: "Success",
	})
}

func (h *WeatherHandler) modeInfo() ModeInfo {
	svc := h.Session.Service()
	return ModeInfo{
		DemoMode:      svc.DemoMode(),
		LiveAvailable: svc.IsLiveModeAvailable(),
		Mode:          svc.Mode().String(),
		Cities:        catalog.Names(),
	}
}

// HandleMode serves GET /mode.
func (h *WeatherHandler) HandleMode(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	h.writeJSONResponse(w, http.StatusOK, model.Response{Data: h.modeInfo(), Message: "Success"})
}

// HandleToggleMode serves POST /mode/toggle.
func (h *WeatherHandler) HandleToggleMode(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}
	if err := h.Session.ToggleDemoMode(); err != nil {
		if errors.Is(err, service.ErrDemoModeLocked) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to toggle demo mode")
		return
	}
	info := h.modeInfo()
	config.GetLogger().Infow("Demo mode toggled", "demo_mode", info.DemoMode)
	h.writeJSONResponse(w, http.StatusOK, model.Response{Data: info, Message: "Success"})
}
