// Package agi is the client for the external text-generation service.
package agi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// EventProjection is the minimal event view sent to the generator.
type EventProjection struct {
	EventID       string    `json:"id"`
	AttendeeCount int       `json:"attendeeCount"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Insights is the fixed-shape generator answer for the dashboard.
type Insights struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// Generator abstracts the text service so callers can be tested
// without network access.
type Generator interface {
	GenerateAnalysis(title, description string, location, tags []string) (string, error)
	GenerateInsights(events []EventProjection) (Insights, error)
}

type Client struct{}

func NewClient() *Client {
	return &Client{}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(prompt string) (string, error) {
	// Read per call: main loads .env after this package initializes.
	apiURL := os.Getenv("AGI_API_URL")
	if apiURL == "" {
		return "", fmt.Errorf("AGI_API_URL not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: "sofa-insight-1",
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+os.Getenv("AGI_API_KEY"))

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generator returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("malformed generator response: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("generator returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// GenerateAnalysis produces the short free-text event summary stored
// on the event document. Target length is ~450-460 characters.
func (c *Client) GenerateAnalysis(title, description string, location, tags []string) (string, error) {
	prompt := fmt.Sprintf(
		"Write an engaging analysis of about 450 characters for this event.\nTitle: %s\nDescription: %s\nLocation: %s\nTags: %s",
		title, description, strings.Join(location, ", "), strings.Join(tags, ", "),
	)
	return c.complete(prompt)
}

// GenerateInsights asks for exactly three pros and three cons about a
// user's event portfolio. Malformed or short answers are rejected so
// the caller can degrade to an empty result.
func (c *Client) GenerateInsights(events []EventProjection) (Insights, error) {
	payload, err := json.Marshal(events)
	if err != nil {
		return Insights{}, err
	}

	prompt := fmt.Sprintf(
		"Given these events as JSON: %s\nRespond with only a JSON object of the form {\"pros\": [3 strings], \"cons\": [3 strings]} about the portfolio's performance.",
		payload,
	)

	text, err := c.complete(prompt)
	if err != nil {
		return Insights{}, err
	}

	// Some models wrap JSON in prose or code fences; take the outermost object.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return Insights{}, fmt.Errorf("no JSON object in generator answer")
	}

	var insights Insights
	if err := json.Unmarshal([]byte(text[start:end+1]), &insights); err != nil {
		return Insights{}, fmt.Errorf("malformed insights JSON: %v", err)
	}
	if len(insights.Pros) != 3 || len(insights.Cons) != 3 {
		return Insights{}, fmt.Errorf("expected 3 pros and 3 cons, got %d/%d", len(insights.Pros), len(insights.Cons))
	}

	return insights, nil
}
