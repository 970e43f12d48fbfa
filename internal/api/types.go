package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexibleID decodes an ID sent either as a JSON number or as a numeric
// string. json-server returns string IDs for some collections.
type FlexibleID int

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("id %q is not an integer", s)
		}
		*id = FlexibleID(n)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	n, err := strconv.Atoi(num.String())
	if err != nil {
		f, ferr := num.Float64()
		if ferr != nil || f != float64(int(f)) {
			return fmt.Errorf("id %s is not an integer", num)
		}
		n = int(f)
	}
	*id = FlexibleID(n)
	return nil
}

// Category mirrors a category as returned by /categories and embedded in
// product payloads.
type Category struct {
	ID          FlexibleID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon,omitempty"`
}

// User mirrors a review author.
type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// Review mirrors a review with its embedded author.
type Review struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Rating    int    `json:"rating"`
	CreatedAt string `json:"createdAt"`
	ProductID int    `json:"productId,omitempty"`
	Author    User   `json:"author"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (r Review) ParsedCreatedAt() time.Time {
	return parseTime(r.CreatedAt)
}

// Product mirrors the product payload with its embedded category and
// reviews.
type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Reviews     []Review `json:"reviews"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	InStock     bool     `json:"inStock"`
}

// CreateReviewResponse mirrors POST /products/{id}/reviews.
type CreateReviewResponse struct {
	Review Review `json:"review"`
}

// errorBody is the server's error envelope.
type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

type createReviewBody struct {
	Text     string `json:"text"`
	Rating   int    `json:"rating"`
	AuthorID int    `json:"authorId"`
}

const serverTimestampLayout = "2006-01-02 15:04:05"

// parseTime accepts RFC 3339 and the plain server layout; results are UTC.
func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	if t, err := time.ParseInLocation(serverTimestampLayout, value, time.UTC); err == nil {
		return t
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
