package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/autobreezebeats/breeze-hub-go/internal/config"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	defaultGeoURL  = "http://api.openweathermap.org/geo/1.0/direct"
)

// Client fetches weather from OpenWeatherMap.
type Client struct {
	apiKey     string
	lat, lon   float64
	baseURL    string
	geoURL     string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient builds a client for the configured location. When a city is
// configured it is geocoded once here; on geocoding failure the configured
// coordinates are kept.
func NewClient(cfg config.Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	client := &Client{
		apiKey:     cfg.WeatherAPIKey,
		lat:        cfg.WeatherLat,
		lon:        cfg.WeatherLon,
		baseURL:    defaultBaseURL,
		geoURL:     defaultGeoURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}

	if cfg.WeatherCity != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.geocode(ctx, cfg.WeatherCity, cfg.WeatherCountry); err != nil {
			logger.Printf("Geocoding %q failed, using configured coordinates: %v", cfg.WeatherCity, err)
		}
	}

	logger.Printf("Weather client initialised at (%.4f, %.4f)", client.lat, client.lon)
	return client
}

type currentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// Current implements Provider.
func (c *Client) Current(ctx context.Context) (Snapshot, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", c.lat))
	query.Set("lon", fmt.Sprintf("%f", c.lon))
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	var payload currentResponse
	if err := c.getJSON(ctx, c.baseURL+"?"+query.Encode(), &payload); err != nil {
		return Snapshot{}, err
	}
	if len(payload.Weather) == 0 {
		return Snapshot{}, fmt.Errorf("weather response missing conditions")
	}

	return Snapshot{
		Condition:    ParseCondition(payload.Weather[0].Main),
		Description:  payload.Weather[0].Description,
		TemperatureC: payload.Main.Temp,
		Sunrise:      time.Unix(payload.Sys.Sunrise, 0),
		Sunset:       time.Unix(payload.Sys.Sunset, 0),
		CapturedAt:   time.Now(),
	}, nil
}

func (c *Client) geocode(ctx context.Context, city, country string) error {
	query := url.Values{}
	query.Set("q", city+","+country)
	query.Set("limit", "1")
	query.Set("appid", c.apiKey)

	var locations []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := c.getJSON(ctx, c.geoURL+"?"+query.Encode(), &locations); err != nil {
		return err
	}
	if len(locations) == 0 {
		return fmt.Errorf("no geocoding match for %q", city)
	}

	c.lat = locations[0].Lat
	c.lon = locations[0].Lon
	return nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
