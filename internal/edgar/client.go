// Package edgar wraps the SEC EDGAR endpoints for company lookup and 10-K
// filing downloads.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/domain"
)

const (
	defaultTickersURL     = "https://www.sec.gov/files/company_tickers.json"
	defaultSubmissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	defaultArchivesURL    = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"

	// Form10K is the annual report form type this service indexes.
	Form10K = "10-K"
)

// Company is one entry from the SEC ticker registry.
type Company struct {
	CIK  string
	Name string
}

// FilingRef points at one filing in a company's history.
type FilingRef struct {
	Form       string
	FilingDate string
	Accession  string
	PrimaryDoc string
}

// Year extracts the filing year from the YYYY-MM-DD filing date.
func (f FilingRef) Year() int {
	parts := strings.SplitN(f.FilingDate, "-", 2)
	if len(parts) == 0 {
		return 0
	}
	var year int
	fmt.Sscanf(parts[0], "%d", &year)
	return year
}

// Client talks to SEC EDGAR. The SEC rejects requests without a descriptive
// User-Agent carrying a contact address, so one is mandatory here.
type Client struct {
	httpClient *http.Client
	userAgent  string

	tickersURL     string
	submissionsURL string
	archivesURL    string
}

func NewClient(userAgent string) *Client {
	return NewClientWithHTTPClient(userAgent, &http.Client{Timeout: 30 * time.Second})
}

func NewClientWithHTTPClient(userAgent string, httpClient *http.Client) *Client {
	return &Client{
		httpClient:     httpClient,
		userAgent:      userAgent,
		tickersURL:     defaultTickersURL,
		submissionsURL: defaultSubmissionsURL,
		archivesURL:    defaultArchivesURL,
	}
}

// NewClientWithBaseURL routes all EDGAR endpoints through one base URL,
// used to point the client at a mirror or a test server.
func NewClientWithBaseURL(userAgent string, httpClient *http.Client, baseURL string) *Client {
	c := NewClientWithHTTPClient(userAgent, httpClient)
	base := strings.TrimRight(baseURL, "/")
	c.tickersURL = base + "/files/company_tickers.json"
	c.submissionsURL = base + "/submissions/CIK%s.json"
	c.archivesURL = base + "/Archives/edgar/data/%s/%s/%s"
	return c
}

// LookupCompany resolves a ticker to its CIK (zero-padded to 10 digits) and
// registered company name.
func (c *Client) LookupCompany(ctx context.Context, ticker string) (*Company, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, domain.ErrInvalidTicker
	}

	body, err := c.get(ctx, c.tickersURL, "www.sec.gov")
	if err != nil {
		return nil, err
	}

	var entries map[string]struct {
		CIK    json.Number `json:"cik_str"`
		Ticker string      `json:"ticker"`
		Title  string      `json:"title"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "invalid ticker registry response", err)
	}

	for _, entry := range entries {
		if entry.Ticker == ticker {
			return &Company{
				CIK:  fmt.Sprintf("%010s", entry.CIK.String()),
				Name: entry.Title,
			}, nil
		}
	}

	return nil, domain.ErrTickerNotFound
}

// FilingHistory fetches the recent filing history for a CIK.
func (c *Client) FilingHistory(ctx context.Context, cik string) ([]FilingRef, error) {
	body, err := c.get(ctx, fmt.Sprintf(c.submissionsURL, cik), "data.sec.gov")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Filings struct {
			Recent struct {
				Form            []string `json:"form"`
				FilingDate      []string `json:"filingDate"`
				AccessionNumber []string `json:"accessionNumber"`
				PrimaryDocument []string `json:"primaryDocument"`
			} `json:"recent"`
		} `json:"filings"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "invalid submissions response", err)
	}

	recent := payload.Filings.Recent
	refs := make([]FilingRef, 0, len(recent.Form))
	for i, form := range recent.Form {
		if i >= len(recent.FilingDate) || i >= len(recent.AccessionNumber) || i >= len(recent.PrimaryDocument) {
			break
		}
		refs = append(refs, FilingRef{
			Form:       form,
			FilingDate: recent.FilingDate[i],
			Accession:  recent.AccessionNumber[i],
			PrimaryDoc: recent.PrimaryDocument[i],
		})
	}

	return refs, nil
}

// DownloadFiling fetches the primary document of one filing.
func (c *Client) DownloadFiling(ctx context.Context, cik string, ref FilingRef) ([]byte, error) {
	url := fmt.Sprintf(c.archivesURL,
		strings.TrimLeft(cik, "0"),
		strings.ReplaceAll(ref.Accession, "-", ""),
		ref.PrimaryDoc,
	)
	return c.get(ctx, url, "www.sec.gov")
}

func (c *Client) get(ctx context.Context, url, host string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if host != "" {
		req.Host = host
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, "SEC EDGAR request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewDomainError(domain.ErrCodeUpstream, fmt.Sprintf("SEC EDGAR returned status %d", resp.StatusCode))
	}

	return io.ReadAll(resp.Body)
}
