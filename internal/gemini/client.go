// Package gemini is a minimal client for the Google generative language API.
// It exposes exactly what the classifier and card extractor need: one prompt
// in, text and optional web-grounding URLs out.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultBaseURL  = "https://generativelanguage.googleapis.com"
	defaultModel    = "gemini-2.5-flash"
	maxEvidenceURLs = 8
)

// Client calls the generateContent endpoint for a single configured model.
type Client struct {
	apiKey string
	model  string
	base   string
	http   *http.Client
}

// New builds a client. An empty model falls back to the default flash model.
func New(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{apiKey: apiKey, model: model, base: defaultBaseURL, http: &http.Client{}}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(base string) {
	c.base = strings.TrimSuffix(base, "/")
}

type request struct {
	Contents []content `json:"contents"`
	Tools    []tool    `json:"tools,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		GroundingMetadata struct {
			GroundingChunks []struct {
				Web struct {
					URI string `json:"uri"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

// Generate sends one prompt and returns the concatenated reply text plus any
// web-grounding URLs. withSearch enables the google_search tool so the model
// can cite sources.
func (c *Client) Generate(ctx context.Context, prompt string, withSearch bool) (string, []string, error) {
	if c.apiKey == "" {
		return "", nil, errors.New("gemini api key not configured")
	}

	body := request{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	if withSearch {
		body.Tools = []tool{{}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", nil, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.base, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("gemini http %d: %s", resp.StatusCode, truncate(string(raw), 256))
	}

	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return "", nil, errors.New("gemini returned no candidates")
	}

	candidate := decoded.Candidates[0]
	texts := make([]string, 0, len(candidate.Content.Parts))
	for _, p := range candidate.Content.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}

	var urls []string
	seen := make(map[string]struct{})
	for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
		uri := chunk.Web.URI
		if uri == "" {
			continue
		}
		if _, dup := seen[uri]; dup {
			continue
		}
		seen[uri] = struct{}{}
		urls = append(urls, uri)
		if len(urls) == maxEvidenceURLs {
			break
		}
	}

	return strings.TrimSpace(strings.Join(texts, "\n")), urls, nil
}

// ExtractJSON pulls the first JSON object out of a reply that may be wrapped
// in prose or code fences.
func ExtractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
