// Package nbastats is a client for the NBA stats API. Every endpoint
// answers with the same envelope: a list of named result sets, each a
// header row plus a row set of loosely typed cells.
package nbastats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"nbadata-backend/lib/restyutil"
	"nbadata-backend/lib/table"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/nbastats")

type Player struct {
	ID       int
	FullName string
}

type ClientOptions struct {
	BaseUrl string
	// season addressed by roster lookups, e.g. "2025-26"
	Season string
}

type Client struct {
	http   *resty.Client
	season string
}

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

func NewClient(opts ClientOptions) *Client {
	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(time.Second * 30)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetHeader("referer", "https://stats.nba.com/")

	restyutil.InstrumentClient(client, "scrapers/nbastats/http", restyInstrumentOutput)

	return &Client{
		http:   client,
		season: opts.Season,
	}
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

type envelope struct {
	ResultSets []resultSet `json:"resultSets"`
}

func (c *Client) fetch(ctx context.Context, endpoint string, params map[string]string) (envelope, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		return envelope{}, err
	}
	if res.IsError() {
		return envelope{}, fmt.Errorf("%s: status %d", endpoint, res.StatusCode())
	}

	// UseNumber keeps integer ids from turning into float strings
	dec := json.NewDecoder(bytes.NewReader(res.Body()))
	dec.UseNumber()

	var body envelope
	err = dec.Decode(&body)
	if err != nil {
		return envelope{}, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return body, nil
}

func (e envelope) find(name string) (resultSet, error) {
	for _, rs := range e.ResultSets {
		if rs.Name == name {
			return rs, nil
		}
	}
	return resultSet{}, fmt.Errorf("result set %q not present in response", name)
}

func formatCell(v any) string {
	switch cell := v.(type) {
	case nil:
		return ""
	case string:
		return cell
	case json.Number:
		return cell.String()
	case bool:
		return strconv.FormatBool(cell)
	default:
		return fmt.Sprint(cell)
	}
}

func toTable(rs resultSet) table.Table {
	out := table.New(rs.Headers...)
	for _, row := range rs.RowSet {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		out.Append(cells...)
	}
	return out
}

// FetchActivePlayers returns the current active roster across the league.
func (c *Client) FetchActivePlayers(ctx context.Context) ([]Player, error) {
	ctx, span := tracer.Start(ctx, "client:FetchActivePlayers")
	defer span.End()

	body, err := c.fetch(ctx, "/commonallplayers", map[string]string{
		"LeagueID":            "00",
		"Season":              c.season,
		"IsOnlyCurrentSeason": "1",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch roster")
		return nil, err
	}

	rs, err := body.find("CommonAllPlayers")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	roster := toTable(rs)

	idIdx := roster.ColumnIndex("PERSON_ID")
	nameIdx := roster.ColumnIndex("DISPLAY_FIRST_LAST")
	statusIdx := roster.ColumnIndex("ROSTERSTATUS")
	if idIdx < 0 || nameIdx < 0 {
		err := fmt.Errorf("roster response is missing identity columns")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var players []Player
	for _, row := range roster.Rows {
		if statusIdx >= 0 && row[statusIdx] != "1" {
			continue
		}
		id, err := strconv.Atoi(row[idIdx])
		if err != nil {
			return nil, fmt.Errorf("parse player id %q: %w", row[idIdx], err)
		}
		players = append(players, Player{
			ID:       id,
			FullName: row[nameIdx],
		})
	}
	return players, nil
}

// FetchCareerStats returns one row per season/team stint for the player.
// A player with no recorded seasons yields a typed table with no rows.
func (c *Client) FetchCareerStats(ctx context.Context, playerID int) (table.Table, error) {
	ctx, span := tracer.Start(ctx, "client:FetchCareerStats")
	defer span.End()

	body, err := c.fetch(ctx, "/playercareerstats", map[string]string{
		"PlayerID": strconv.Itoa(playerID),
		"PerMode":  "Totals",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch career stats")
		return table.Table{}, err
	}

	rs, err := body.find("SeasonTotalsRegularSeason")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return table.Table{}, err
	}
	return toTable(rs), nil
}

// FetchHeadlineStats returns the provider's summary record of the
// player's notable statistics.
func (c *Client) FetchHeadlineStats(ctx context.Context, playerID int) (table.Table, error) {
	ctx, span := tracer.Start(ctx, "client:FetchHeadlineStats")
	defer span.End()

	body, err := c.fetch(ctx, "/commonplayerinfo", map[string]string{
		"PlayerID": strconv.Itoa(playerID),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch headline stats")
		return table.Table{}, err
	}

	rs, err := body.find("PlayerHeadlineStats")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return table.Table{}, err
	}
	return toTable(rs), nil
}
