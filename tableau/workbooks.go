package tableau

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	workbooksPageSize   = "100"
	workbooksPageNumber = "1"
)

// Workbook is one record from the REST workbooks listing.
type Workbook struct {
	ID          string
	Name        string
	ProjectID   string
	ProjectName string
	CreatedAt   string
	UpdatedAt   string
}

type workbooksResponse struct {
	Workbooks *struct {
		Workbook []struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			CreatedAt string `json:"createdAt"`
			UpdatedAt string `json:"updatedAt"`
			Project   struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"project"`
		} `json:"workbook"`
	} `json:"workbooks"`
}

// projectFilter renders the REST filter expression, e.g.
// "projectName:in:[Sales,Ops]". The names pass through verbatim; the server
// does the filtering.
func projectFilter(projects []string) string {
	return fmt.Sprintf("projectName:in:[%s]", strings.Join(projects, ","))
}

// Workbooks lists the workbooks on the site the credentials are scoped to,
// optionally restricted to the named projects.
func (c *Client) Workbooks(ctx context.Context, creds *Credentials, projects ...string) ([]Workbook, error) {
	endpoint := c.restURL(fmt.Sprintf("sites/%s/workbooks", creds.SiteID))

	query := url.Values{}
	query.Set("pageSize", workbooksPageSize)
	query.Set("pageNumber", workbooksPageNumber)
	if len(projects) > 0 {
		query.Set("filter", projectFilter(projects))
	}

	start := time.Now()
	status, body, err := c.getJSON(ctx, endpoint, creds.Token, query)
	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Dur("elapsed", time.Since(start)).Msg("workbook listing request failed")
		return nil, err
	}
	if status != http.StatusOK {
		reqErr := &RequestError{Endpoint: endpoint, StatusCode: status, Body: excerpt(body)}
		log.Error().Str("endpoint", endpoint).Int("status", status).Str("body", reqErr.Body).
			Dur("elapsed", time.Since(start)).Msg("workbook listing rejected")
		return nil, reqErr
	}

	var decoded workbooksResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Str("body", excerpt(body)).Msg("workbook listing undecodable")
		return nil, &ResponseParseError{Endpoint: endpoint, Err: err}
	}
	if decoded.Workbooks == nil {
		log.Error().Str("endpoint", endpoint).Str("body", excerpt(body)).Msg("workbook listing missing workbooks member")
		return nil, &ResponseParseError{Endpoint: endpoint, Err: fmt.Errorf("missing workbooks")}
	}

	workbooks := make([]Workbook, 0, len(decoded.Workbooks.Workbook))
	for _, w := range decoded.Workbooks.Workbook {
		workbooks = append(workbooks, Workbook{
			ID:          w.ID,
			Name:        w.Name,
			ProjectID:   w.Project.ID,
			ProjectName: w.Project.Name,
			CreatedAt:   w.CreatedAt,
			UpdatedAt:   w.UpdatedAt,
		})
	}

	log.Info().Str("endpoint", endpoint).Int("count", len(workbooks)).
		Dur("elapsed", time.Since(start)).Msg("workbooks retrieved")
	return workbooks, nil
}
