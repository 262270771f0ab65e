// Package hoopshype scrapes per-player salary history pages. The site
// has no stable numeric player id, so pages are addressed by a slug
// derived from the player's display name.
package hoopshype

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nbadata-backend/lib/htmlutil"
	"nbadata-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/hoopshype")

// one season of salary history, both fields kept as raw strings
// (no numeric coercion happens at this stage)
type Salary struct {
	Season string
	Amount string
}

type ClientOptions struct {
	BaseUrl string
	// overridable so tests don't wait out the backoff
	RetryWaitTime time.Duration
}

type Client struct {
	http *resty.Client
}

var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

var retryStatuses = map[int]bool{
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

func NewClient(opts ClientOptions) *Client {
	retryWait := opts.RetryWaitTime
	if retryWait == 0 {
		retryWait = time.Second
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)

	client.SetRetryCount(5)
	client.SetRetryWaitTime(retryWait)
	client.SetRetryMaxWaitTime(retryWait * 32)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return false
		}
		return retryStatuses[res.StatusCode()]
	})

	restyutil.InstrumentClient(client, "scrapers/hoopshype/http", restyInstrumentOutput)

	return &Client{http: client}
}

// Slug derives the url-safe form of a player's display name:
// " Jr." dropped, lowercased, spaces replaced with hyphens.
func Slug(fullName string) string {
	name := strings.ReplaceAll(fullName, " Jr.", "")
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}

// FetchPlayerSalaries fetches and parses the player's salary page.
// A page without a "Past Salaries" table yields an empty result, not
// an error.
func (c *Client) FetchPlayerSalaries(ctx context.Context, fullName string) ([]Salary, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPlayerSalaries")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/player/%s/salary/", Slug(fullName)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch salary page")
		return nil, err
	}
	if res.StatusCode() >= 500 {
		err := fmt.Errorf("salary page for %q: status %d", fullName, res.StatusCode())
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse salary page html")
		return nil, err
	}

	pastTable := findPastSalariesTable(doc)
	if pastTable == nil {
		slog.WarnContext(ctx, "past salaries table not found", "player", fullName)
		return nil, nil
	}

	var salaries []Salary
	pastTable.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		season := htmlutil.Text(row.Find("td.table-key"))
		if season == "" {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		salaries = append(salaries, Salary{
			Season: season,
			Amount: cleanAmount(htmlutil.Text(cells.Eq(2))),
		})
	})

	return salaries, nil
}

// the target table is the first one following (in document order) a
// span whose text reads "Past Salaries"
func findPastSalariesTable(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	labelSeen := false
	doc.Find("span, table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if goquery.NodeName(sel) == "span" {
			if htmlutil.Text(sel) == "Past Salaries" {
				labelSeen = true
			}
			return true
		}
		if labelSeen {
			found = sel
			return false
		}
		return true
	})
	return found
}

// strips the currency symbol, thousands separators and any trailing
// annotation after the first space, e.g. "$1,234,567 (total)" -> "1234567"
func cleanAmount(amount string) string {
	if i := strings.IndexByte(amount, ' '); i >= 0 {
		amount = amount[:i]
	}
	amount = strings.ReplaceAll(amount, "$", "")
	return strings.ReplaceAll(amount, ",", "")
}
