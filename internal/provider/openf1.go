package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
	"github.com/sirupsen/logrus"
)

// OpenF1 reads lap timing from an OpenF1-compatible HTTP API.
type OpenF1 struct {
	baseURL string
	client  *http.Client
}

var _ contract.SessionProvider = &OpenF1{} // Compile-time check

// NewOpenF1 creates an OpenF1 provider. Empty values fall back to the public API and default timeout.
func NewOpenF1(baseURL string, timeout time.Duration) *OpenF1 {
	if baseURL == "" {
		baseURL = contract.DefaultOpenF1URL
	}
	if timeout <= 0 {
		timeout = contract.DefaultHTTPTimeout
	}
	return &OpenF1{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type openF1Meeting struct {
	MeetingKey       int    `json:"meeting_key"`
	MeetingName      string `json:"meeting_name"`
	Location         string `json:"location"`
	CountryName      string `json:"country_name"`
	CircuitShortName string `json:"circuit_short_name"`
}

type openF1Session struct {
	SessionKey  int    `json:"session_key"`
	SessionName string `json:"session_name"`
}

type openF1Driver struct {
	DriverNumber int    `json:"driver_number"`
	NameAcronym  string `json:"name_acronym"`
}

// Sector and lap durations are null for laps without complete timing.
type openF1Lap struct {
	DriverNumber    int      `json:"driver_number"`
	LapNumber       int      `json:"lap_number"`
	LapDuration     *float64 `json:"lap_duration"`
	DurationSector1 *float64 `json:"duration_sector_1"`
	DurationSector2 *float64 `json:"duration_sector_2"`
	DurationSector3 *float64 `json:"duration_sector_3"`
	IsPitOutLap     bool     `json:"is_pit_out_lap"`
}

type openF1Pit struct {
	DriverNumber int `json:"driver_number"`
	LapNumber    int `json:"lap_number"`
}

// Laps resolves ref to a session and returns every lap driven in it, sorted by driver and lap.
func (p *OpenF1) Laps(ctx context.Context, ref schema.SessionRef) ([]schema.LapRecord, error) {
	sessionKey, err := p.resolveSession(ctx, ref)
	if err != nil {
		return nil, fail(ref, err)
	}
	key := strconv.Itoa(sessionKey)
	contract.LogDebug("Resolved OpenF1 session", logrus.Fields{"session_key": sessionKey, "event": ref.Event})

	var drivers []openF1Driver
	if err := p.get(ctx, "drivers", url.Values{"session_key": {key}}, &drivers); err != nil {
		return nil, fail(ref, err)
	}
	codes := make(map[int]string, len(drivers))
	for _, d := range drivers {
		codes[d.DriverNumber] = d.NameAcronym
	}

	var laps []openF1Lap
	if err := p.get(ctx, "laps", url.Values{"session_key": {key}}, &laps); err != nil {
		return nil, fail(ref, err)
	}
	if len(laps) == 0 {
		return nil, fail(ref, errors.New("session has no laps"))
	}

	var pits []openF1Pit
	if err := p.get(ctx, "pit", url.Values{"session_key": {key}}, &pits); err != nil {
		return nil, fail(ref, err)
	}
	pitIn := make(map[[2]int]struct{}, len(pits))
	for _, pit := range pits {
		pitIn[[2]int{pit.DriverNumber, pit.LapNumber}] = struct{}{}
	}

	records := make([]schema.LapRecord, 0, len(laps))
	for _, lap := range laps {
		code, ok := codes[lap.DriverNumber]
		if !ok || code == "" {
			code = strconv.Itoa(lap.DriverNumber)
		}
		_, inLap := pitIn[[2]int{lap.DriverNumber, lap.LapNumber}]
		records = append(records, schema.LapRecord{
			Driver:    code,
			LapNumber: lap.LapNumber,
			LapTime:   valueOf(lap.LapDuration),
			Sector1:   valueOf(lap.DurationSector1),
			Sector2:   valueOf(lap.DurationSector2),
			Sector3:   valueOf(lap.DurationSector3),
			Valid:     lap.LapDuration != nil && !lap.IsPitOutLap && !inLap,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Driver != records[j].Driver {
			return records[i].Driver < records[j].Driver
		}
		return records[i].LapNumber < records[j].LapNumber
	})
	return records, nil
}

// resolveSession finds the session key for ref's season, event and session name.
func (p *OpenF1) resolveSession(ctx context.Context, ref schema.SessionRef) (int, error) {
	var meetings []openF1Meeting
	if err := p.get(ctx, "meetings", url.Values{"year": {strconv.Itoa(ref.Season)}}, &meetings); err != nil {
		return 0, err
	}
	meeting, ok := matchMeeting(meetings, ref.Event)
	if !ok {
		return 0, fmt.Errorf("no meeting matching %q in %d", ref.Event, ref.Season)
	}

	var sessions []openF1Session
	query := url.Values{"meeting_key": {strconv.Itoa(meeting.MeetingKey)}, "session_name": {ref.Session}}
	if err := p.get(ctx, "sessions", query, &sessions); err != nil {
		return 0, err
	}
	for _, s := range sessions {
		if strings.EqualFold(s.SessionName, ref.Session) {
			return s.SessionKey, nil
		}
	}
	return 0, fmt.Errorf("no %q session in meeting %q", ref.Session, meeting.MeetingName)
}

// matchMeeting returns the first meeting whose name, location, country or circuit contains event.
func matchMeeting(meetings []openF1Meeting, event string) (openF1Meeting, bool) {
	needle := strings.ToLower(strings.TrimSpace(event))
	if needle == "" {
		return openF1Meeting{}, false
	}
	for _, m := range meetings {
		for _, field := range []string{m.MeetingName, m.Location, m.CountryName, m.CircuitShortName} {
			if field != "" && strings.Contains(strings.ToLower(field), needle) {
				return m, true
			}
		}
	}
	return openF1Meeting{}, false
}

// get fetches one endpoint and decodes its JSON array into out.
func (p *OpenF1) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	target := fmt.Sprintf("%s/v1/%s?%s", p.baseURL, endpoint, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func valueOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
