package nbastats

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nbadata-backend/lib/table"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const rosterBody = `{
	"resultSets": [{
		"name": "CommonAllPlayers",
		"headers": ["PERSON_ID", "DISPLAY_FIRST_LAST", "ROSTERSTATUS", "TEAM_ABBREVIATION"],
		"rowSet": [
			[201935, "James Harden", 1, "LAC"],
			[2544, "LeBron James", 1, "LAL"],
			[1713, "Vince Carter", 0, ""]
		]
	}]
}`

const careerBody = `{
	"resultSets": [{
		"name": "SeasonTotalsRegularSeason",
		"headers": ["PLAYER_ID", "SEASON_ID", "TEAM_ABBREVIATION", "GP", "PTS"],
		"rowSet": [
			[201935, "2021-22", "BKN", 44, 986],
			[201935, "2021-22", "PHI", 21, 441]
		]
	}]
}`

const headlineBody = `{
	"resultSets": [
		{
			"name": "CommonPlayerInfo",
			"headers": ["PERSON_ID"],
			"rowSet": [[201935]]
		},
		{
			"name": "PlayerHeadlineStats",
			"headers": ["PLAYER_ID", "PLAYER_NAME", "TimeFrame", "PTS", "AST", "REB", "PIE"],
			"rowSet": [[201935, "James Harden", "2023-24", 16.6, 8.5, 5.1, 0.132]]
		}
	]
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientOptions{
		BaseUrl: server.URL,
		Season:  "2023-24",
	})
}

func TestFetchActivePlayers(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/commonallplayers", r.URL.Path)
		require.Equal(t, "2023-24", r.URL.Query().Get("Season"))
		require.Equal(t, "1", r.URL.Query().Get("IsOnlyCurrentSeason"))
		fmt.Fprint(w, rosterBody)
	}))

	players, err := client.FetchActivePlayers(context.Background())
	require.NoError(t, err)
	// inactive players never make the roster
	require.Equal(t, []Player{
		{ID: 201935, FullName: "James Harden"},
		{ID: 2544, FullName: "LeBron James"},
	}, players)
}

func TestFetchCareerStats(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/playercareerstats", r.URL.Path)
		require.Equal(t, "201935", r.URL.Query().Get("PlayerID"))
		fmt.Fprint(w, careerBody)
	}))

	stats, err := client.FetchCareerStats(context.Background(), 201935)
	require.NoError(t, err)

	expected := table.Table{
		Columns: []string{"PLAYER_ID", "SEASON_ID", "TEAM_ABBREVIATION", "GP", "PTS"},
		Rows: [][]string{
			{"201935", "2021-22", "BKN", "44", "986"},
			{"201935", "2021-22", "PHI", "21", "441"},
		},
	}
	diff := cmp.Diff(expected, stats)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestFetchCareerStatsEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"resultSets": [{
				"name": "SeasonTotalsRegularSeason",
				"headers": ["PLAYER_ID", "SEASON_ID"],
				"rowSet": []
			}]
		}`)
	}))

	stats, err := client.FetchCareerStats(context.Background(), 12345)
	require.NoError(t, err)
	require.True(t, stats.IsEmpty())
	require.Equal(t, []string{"PLAYER_ID", "SEASON_ID"}, stats.Columns)
}

func TestFetchHeadlineStats(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/commonplayerinfo", r.URL.Path)
		fmt.Fprint(w, headlineBody)
	}))

	awards, err := client.FetchHeadlineStats(context.Background(), 201935)
	require.NoError(t, err)
	require.Equal(t, []string{"PLAYER_ID", "PLAYER_NAME", "TimeFrame", "PTS", "AST", "REB", "PIE"}, awards.Columns)
	require.Len(t, awards.Rows, 1)
	// fractional cells keep their textual form
	require.Equal(t, "16.6", awards.Rows[0][3])
}

func TestFetchErrorStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.FetchActivePlayers(context.Background())
	require.Error(t, err)
}

func TestCurrentSeason(t *testing.T) {
	testCases := []struct {
		now      time.Time
		expected string
	}{
		{time.Date(2025, time.November, 12, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC), "2026-27"},
		{time.Date(2099, time.December, 1, 0, 0, 0, 0, time.UTC), "2099-00"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, CurrentSeason(test.now))
	}
}
