package scraping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNotApplicable means the data shape a strategy looks for is not on the page
var ErrNotApplicable = errors.New("expected data not found")

var nextDataMarker = regexp.MustCompile(`<script[^>]*id="__NEXT_DATA__"[^>]*>`)

// decodeAfter decodes the first JSON value that follows marker in body.
// Trailing markup after the value is ignored.
func decodeAfter(body []byte, marker *regexp.Regexp) (interface{}, error) {
	loc := marker.FindIndex(body)
	if loc == nil {
		return nil, ErrNotApplicable
	}

	dec := json.NewDecoder(bytes.NewReader(body[loc[1]:]))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode embedded JSON: %w", err)
	}
	return v, nil
}

// decodeJSON decodes a complete JSON document, keeping numbers as json.Number
func decodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// dig walks nested objects along path and returns nil when any step is missing
func dig(v interface{}, path ...string) interface{} {
	for _, key := range path {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

// records returns the objects of a JSON array, skipping anything else
func records(v interface{}) []map[string]interface{} {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// firstRecords tries each path in order and returns the first non-empty list
func firstRecords(root interface{}, paths ...[]string) []map[string]interface{} {
	for _, path := range paths {
		if found := records(dig(root, path...)); len(found) > 0 {
			return found
		}
	}
	return nil
}

// text renders scalars as strings; objects and arrays become ""
func text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// firstText returns the first non-empty rendering among values
func firstText(values ...interface{}) string {
	for _, v := range values {
		if s := text(v); s != "" {
			return s
		}
	}
	return ""
}

// firstValue returns the first value that is present and not an empty string
func firstValue(values ...interface{}) interface{} {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// coordinates reads a latitude/longitude pair, returning nil when either is missing
func coordinates(lat, lng interface{}) *LatLng {
	la, ok1 := toFloat(lat)
	lo, ok2 := toFloat(lng)
	if !ok1 || !ok2 {
		return nil
	}
	return &LatLng{Lat: la, Lng: lo}
}

var addressParts = regexp.MustCompile(`^(.+?),\s*(.+?),\s*([A-Z]{2})\s*(\d{5})?`)

// splitAddress splits "street, city, ST 12345" into its parts.
// Text that does not match is returned whole as the street.
func splitAddress(s string) (street, city, state, postal string) {
	s = strings.TrimSpace(s)
	m := addressParts.FindStringSubmatch(s)
	if m == nil {
		return s, "", "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), m[3], m[4]
}

// absoluteURL resolves a site-relative link against base
func absoluteURL(base, link string) string {
	link = strings.TrimSpace(link)
	switch {
	case link == "":
		return ""
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case strings.HasPrefix(link, "//"):
		return "https:" + link
	case strings.HasPrefix(link, "/"):
		return strings.TrimRight(base, "/") + link
	default:
		return strings.TrimRight(base, "/") + "/" + link
	}
}
