package worldbank

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
)

// World Bank API response types.

// PageInfo is the first element of every paged response.
type PageInfo struct {
	Page        flexInt  `json:"page"`
	Pages       flexInt  `json:"pages"`
	PerPage     flexInt  `json:"per_page"`
	Total       flexInt  `json:"total"`
	SourceID    string   `json:"sourceid,omitempty"`
	LastUpdated string   `json:"lastupdated,omitempty"`
	Message     messages `json:"message,omitempty"`
}

type apiMessage struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type messages []apiMessage

func (m messages) String() string {
	parts := make([]string, 0, len(m))
	for _, msg := range m {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", msg.Key, msg.ID, msg.Value))
	}
	return strings.Join(parts, "; ")
}

type countryRecord struct {
	ID       string          `json:"id"`
	ISO2Code string          `json:"iso2Code"`
	Name     string          `json:"name"`
	Region   domain.RefValue `json:"region"`
}

func (c countryRecord) isAggregate() bool {
	return strings.EqualFold(strings.TrimSpace(c.Region.Value), "Aggregates")
}

// flexInt accepts both 5 and "5"; the API is inconsistent about page fields.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("page field %q: %w", s, err)
	}
	*n = flexInt(v)
	return nil
}

// decodePage splits a [pageInfo, items] envelope. A one-element envelope
// carrying a message is an upstream error; without a message, or with a null
// item list, it yields no items.
func decodePage[T any](body []byte) (PageInfo, []T, error) {
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return PageInfo{}, nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if len(envelope) == 0 {
		return PageInfo{}, nil, nil
	}

	var info PageInfo
	if err := json.Unmarshal(envelope[0], &info); err != nil {
		return PageInfo{}, nil, fmt.Errorf("%w: page info: %v", domain.ErrMalformedResponse, err)
	}
	if len(info.Message) > 0 {
		return info, nil, fmt.Errorf("%w: %s", domain.ErrUpstream, info.Message)
	}
	if len(envelope) < 2 {
		return info, nil, nil
	}

	var items []T
	if err := json.Unmarshal(envelope[1], &items); err != nil {
		return info, nil, fmt.Errorf("%w: records: %v", domain.ErrMalformedResponse, err)
	}
	return info, items, nil
}

// EncodePage renders items as a single-page [pageInfo, items] envelope,
// keeping info's metadata. Used to record test fixtures.
func EncodePage[T any](info PageInfo, items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	info.Page, info.Pages = 1, 1
	info.PerPage = flexInt(max(len(items), 1))
	info.Total = flexInt(len(items))
	info.Message = nil
	return json.MarshalIndent([]any{info, items}, "", "  ")
}
