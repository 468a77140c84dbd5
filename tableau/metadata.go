package tableau

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// metadataURL returns the Metadata API endpoint. Unlike the REST resources it
// is not versioned.
func (c *Client) metadataURL() string {
	return c.baseURL + "/api/metadata/graphql"
}

// Metadata executes a GraphQL query against the Metadata API and returns the
// raw data payload. A 200 response carrying a non-empty errors array is
// reported as a *GraphQLError, not a success.
func (c *Client) Metadata(ctx context.Context, creds *Credentials, query string, variables map[string]any) (json.RawMessage, error) {
	endpoint := c.metadataURL()

	start := time.Now()
	status, body, err := c.postJSON(ctx, endpoint, creds.Token, graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Dur("elapsed", time.Since(start)).Msg("metadata request failed")
		return nil, err
	}
	if status != http.StatusOK {
		reqErr := &RequestError{Endpoint: endpoint, StatusCode: status, Body: excerpt(body)}
		log.Error().Str("endpoint", endpoint).Int("status", status).Str("body", reqErr.Body).
			Dur("elapsed", time.Since(start)).Msg("metadata request rejected")
		return nil, reqErr
	}

	var decoded graphqlResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Str("body", excerpt(body)).Msg("metadata response undecodable")
		return nil, &ResponseParseError{Endpoint: endpoint, Err: err}
	}
	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		gqlErr := &GraphQLError{Messages: messages}
		log.Error().Str("endpoint", endpoint).Strs("errors", messages).
			Dur("elapsed", time.Since(start)).Msg("graphql query failed")
		return nil, gqlErr
	}
	if len(decoded.Data) == 0 || string(decoded.Data) == "null" {
		log.Error().Str("endpoint", endpoint).Str("body", excerpt(body)).Msg("metadata response missing data")
		return nil, &ResponseParseError{Endpoint: endpoint, Err: fmt.Errorf("missing data")}
	}

	log.Info().Str("endpoint", endpoint).Dur("elapsed", time.Since(start)).Msg("metadata retrieved")
	return decoded.Data, nil
}

// View is a sheet or dashboard inside a workbook.
type View struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	LUID      string `json:"luid"`
	CreatedAt string `json:"createdAt"`
	TypeName  string `json:"__typename"`
}

// MetadataWorkbook is a workbook as reported by the Metadata API.
type MetadataWorkbook struct {
	Name        string `json:"name"`
	LUID        string `json:"luid"`
	CreatedAt   string `json:"createdAt"`
	ProjectName string `json:"projectName"`
	Views       []View `json:"views"`
}

// Datasource is a published data source.
type Datasource struct {
	Name           string `json:"name"`
	LUID           string `json:"luid"`
	ProjectName    string `json:"projectName"`
	IsCertified    bool   `json:"isCertified"`
	VizportalURLID string `json:"vizportalUrlId"`
}

// Site is one entry of the tableauSites result.
type Site struct {
	Name        string             `json:"name"`
	LUID        string             `json:"luid"`
	Datasources []Datasource       `json:"publishedDatasources"`
	Workbooks   []MetadataWorkbook `json:"workbooks"`
}

// siteContentQuery fetches a site's published data sources and workbooks,
// restricted to the given projects.
const siteContentQuery = `
query siteContent($site: String, $projects: [String]) {
    tableauSites(filter: { name: $site }) {
        name
        luid
        publishedDatasources(filter: { projectNameWithin: $projects }) {
            name
            luid
            projectName
            isCertified
            vizportalUrlId
        }
        workbooks(filter: { projectNameWithin: $projects }) {
            name
            luid
            createdAt
            projectName
            views {
                name
                path
                luid
                createdAt
                __typename
            }
        }
    }
}`

// siteContentQueryUnfiltered is the same query without project restrictions.
const siteContentQueryUnfiltered = `
query siteContent($site: String) {
    tableauSites(filter: { name: $site }) {
        name
        luid
        publishedDatasources {
            name
            luid
            projectName
            isCertified
            vizportalUrlId
        }
        workbooks {
            name
            luid
            createdAt
            projectName
            views {
                name
                path
                luid
                createdAt
                __typename
            }
        }
    }
}`

type siteContentResult struct {
	TableauSites []Site `json:"tableauSites"`
}

// SiteContent runs the canonical site-content query and decodes the result.
// The site name and project filters travel as GraphQL variables; the server
// does all filtering.
func (c *Client) SiteContent(ctx context.Context, creds *Credentials, site string, projects []string) ([]Site, error) {
	query := siteContentQueryUnfiltered
	variables := map[string]any{"site": site}
	if len(projects) > 0 {
		query = siteContentQuery
		variables["projects"] = projects
	}

	data, err := c.Metadata(ctx, creds, query, variables)
	if err != nil {
		return nil, err
	}

	var result siteContentResult
	if err := json.Unmarshal(data, &result); err != nil {
		log.Error().Err(err).Str("endpoint", c.metadataURL()).Msg("site content payload undecodable")
		return nil, &ResponseParseError{Endpoint: c.metadataURL(), Err: err}
	}
	if result.TableauSites == nil {
		return nil, &ResponseParseError{Endpoint: c.metadataURL(), Err: fmt.Errorf("missing tableauSites")}
	}
	return result.TableauSites, nil
}
