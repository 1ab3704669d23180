// Package awqat provides the client and repository for the remote
// prayer-data provider.
package awqat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/yanosDev/awqat/internal/httpclient"
	"github.com/yanosDev/awqat/internal/models"
)

// Client is an HTTP client for the remote prayer-data provider. Dates in
// responses are dd.MM.yyyy, times are HH:mm local to the city.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new provider API client.
func NewClient(baseURL, email, password string) *Client {
	return &Client{
		baseURL:    baseURL,
		email:      email,
		password:   password,
		httpClient: httpclient.New(httpclient.Options{}),
	}
}

// tokenTTL is how long an access token is reused before re-login.
const tokenTTL = 45 * time.Minute

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Data struct {
		AccessToken string `json:"accessToken"`
	} `json:"data"`
}

// ensureToken logs in if no valid access token is cached.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var resp loginResponse
	if err := c.post(ctx, "/Auth/Login", loginRequest{Email: c.email, Password: c.password}, &resp); err != nil {
		return "", fmt.Errorf("provider login: %w", err)
	}
	if resp.Data.AccessToken == "" {
		return "", fmt.Errorf("provider login: empty access token")
	}

	c.accessToken = resp.Data.AccessToken
	c.tokenExpiry = time.Now().Add(tokenTTL)
	return c.accessToken, nil
}

type locationsResponse struct {
	Data []struct {
		ID   int    `json:"id"`
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"data"`
}

// FetchLocations retrieves the full location directory.
func (c *Client) FetchLocations(ctx context.Context) ([]models.Location, error) {
	var resp locationsResponse
	if err := c.getAuthed(ctx, "/api/Place/Cities", &resp); err != nil {
		return nil, fmt.Errorf("fetch locations: %w", err)
	}

	locations := make([]models.Location, 0, len(resp.Data))
	for _, l := range resp.Data {
		locations = append(locations, models.Location{ID: l.ID, Code: l.Code, Name: l.Name})
	}
	return locations, nil
}

type cityDetailResponse struct {
	Data struct {
		ID                   int    `json:"id"`
		Name                 string `json:"name"`
		Code                 string `json:"code"`
		GeographicQiblaAngle string `json:"geographicQiblaAngle"`
		DistanceToKaaba      string `json:"distanceToKaaba"`
		QiblaAngle           string `json:"qiblaAngle"`
		City                 string `json:"city"`
		CityEn               string `json:"cityEn"`
		Country              string `json:"country"`
		CountryEn            string `json:"countryEn"`
	} `json:"data"`
}

// FetchCityDetail retrieves the resolved record for a city id.
func (c *Client) FetchCityDetail(ctx context.Context, cityID int) (models.CityDetail, error) {
	var resp cityDetailResponse
	if err := c.getAuthed(ctx, fmt.Sprintf("/api/Place/CityDetail/%d", cityID), &resp); err != nil {
		return models.CityDetail{}, fmt.Errorf("fetch city detail %d: %w", cityID, err)
	}

	d := resp.Data
	return models.CityDetail{
		ID:                   d.ID,
		Name:                 d.Name,
		Code:                 d.Code,
		GeographicQiblaAngle: d.GeographicQiblaAngle,
		DistanceToKaaba:      d.DistanceToKaaba,
		QiblaAngle:           d.QiblaAngle,
		City:                 d.City,
		CityEn:               d.CityEn,
		Country:              d.Country,
		CountryEn:            d.CountryEn,
		CachedAt:             time.Now(),
	}, nil
}

type prayerTimesResponse struct {
	Data []struct {
		GregorianDateShort string `json:"gregorianDateShort"`
		Fajr               string `json:"fajr"`
		Sunrise            string `json:"sunrise"`
		Dhuhr              string `json:"dhuhr"`
		Asr                string `json:"asr"`
		Maghrib            string `json:"maghrib"`
		Isha               string `json:"isha"`
	} `json:"data"`
}

// FetchDailyTimes retrieves the provider's full table of daily prayer times
// for a city.
func (c *Client) FetchDailyTimes(ctx context.Context, cityID int) ([]models.PrayerTime, error) {
	var resp prayerTimesResponse
	if err := c.getAuthed(ctx, fmt.Sprintf("/api/PrayerTime/Daily/%d", cityID), &resp); err != nil {
		return nil, fmt.Errorf("fetch daily times %d: %w", cityID, err)
	}

	times := make([]models.PrayerTime, 0, len(resp.Data))
	for _, row := range resp.Data {
		times = append(times, models.PrayerTime{
			CityID:    cityID,
			DateShort: row.GregorianDateShort,
			Fajr:      row.Fajr,
			Sunrise:   row.Sunrise,
			Dhuhr:     row.Dhuhr,
			Asr:       row.Asr,
			Maghrib:   row.Maghrib,
			Isha:      row.Isha,
		})
	}
	return times, nil
}

type cityEidResponse struct {
	Data struct {
		EidAlAdhaHijri string `json:"eidAlAdhaHijri"`
		EidAlAdhaDate  string `json:"eidAlAdhaDate"`
		EidAlAdhaTime  string `json:"eidAlAdhaTime"`
		EidAlFitrHijri string `json:"eidAlFitrHijri"`
		EidAlFitrDate  string `json:"eidAlFitrDate"`
		EidAlFitrTime  string `json:"eidAlFitrTime"`
	} `json:"data"`
}

// FetchCityEid retrieves a city's eid prayer times.
func (c *Client) FetchCityEid(ctx context.Context, cityID int) (models.CityEid, error) {
	var resp cityEidResponse
	if err := c.getAuthed(ctx, fmt.Sprintf("/api/PrayerTime/Eid/%d", cityID), &resp); err != nil {
		return models.CityEid{}, fmt.Errorf("fetch city eid %d: %w", cityID, err)
	}

	d := resp.Data
	return models.CityEid{
		CityID:         cityID,
		EidAlAdhaHijri: d.EidAlAdhaHijri,
		EidAlAdhaDate:  d.EidAlAdhaDate,
		EidAlAdhaTime:  d.EidAlAdhaTime,
		EidAlFitrHijri: d.EidAlFitrHijri,
		EidAlFitrDate:  d.EidAlFitrDate,
		EidAlFitrTime:  d.EidAlFitrTime,
	}, nil
}

type dailyContentResponse struct {
	Data struct {
		ID           int    `json:"id"`
		DayOfYear    int    `json:"dayOfYear"`
		Verse        string `json:"verse"`
		VerseSource  string `json:"verseSource"`
		Hadith       string `json:"hadith"`
		HadithSource string `json:"hadithSource"`
		Prayer       string `json:"prayer"`
		PrayerSource string `json:"prayerSource"`
	} `json:"data"`
}

// FetchDailyContent retrieves the location-independent daily reading.
func (c *Client) FetchDailyContent(ctx context.Context) (models.DailyContent, error) {
	var resp dailyContentResponse
	if err := c.getAuthed(ctx, "/api/DailyContent", &resp); err != nil {
		return models.DailyContent{}, fmt.Errorf("fetch daily content: %w", err)
	}

	d := resp.Data
	return models.DailyContent{
		ID:           d.ID,
		DayOfYear:    d.DayOfYear,
		Verse:        d.Verse,
		VerseSource:  d.VerseSource,
		Hadith:       d.Hadith,
		HadithSource: d.HadithSource,
		Prayer:       d.Prayer,
		PrayerSource: d.PrayerSource,
	}, nil
}

type quranResponse struct {
	Data []struct {
		ID    int    `json:"id"`
		Surah int    `json:"surah"`
		Ayah  int    `json:"ayah"`
		Text  string `json:"text"`
	} `json:"data"`
}

// FetchQuran retrieves the reference text corpus.
func (c *Client) FetchQuran(ctx context.Context) ([]models.QuranVerse, error) {
	var resp quranResponse
	if err := c.getAuthed(ctx, "/api/Quran", &resp); err != nil {
		return nil, fmt.Errorf("fetch quran: %w", err)
	}

	verses := make([]models.QuranVerse, 0, len(resp.Data))
	for _, v := range resp.Data {
		verses = append(verses, models.QuranVerse{ID: v.ID, Surah: v.Surah, Ayah: v.Ayah, Text: v.Text})
	}
	return verses, nil
}

// getAuthed performs a GET with a bearer token, logging in first if needed.
func (c *Client) getAuthed(ctx context.Context, path string, result any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}
	return c.get(ctx, path, token, result)
}

func (c *Client) get(ctx context.Context, path, token string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, result)
}

func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(body))
	}

	if result != nil {
		return json.Unmarshal(body, result)
	}
	return nil
}
