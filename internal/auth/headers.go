package auth

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ytmb/internal/shared"
)

// Browser captures arrive in several encodings of the same information: a JSON
// header object, a DevTools "Copy as cURL" command, a "Copy as fetch" snippet
// with an embedded headers object, or plain "Name: value" lines. NormalizeHeaders
// accepts any of them and produces one canonical header map.

// canonicalCasing maps lower-cased header names to the casing the YouTube
// Music API expects. Headers outside this table are dropped.
var canonicalCasing = map[string]string{
	"user-agent":               "User-Agent",
	"accept":                   "Accept",
	"accept-language":          "Accept-Language",
	"content-type":             "Content-Type",
	"x-goog-authuser":          "X-Goog-AuthUser",
	"x-origin":                 "x-origin",
	"origin":                   "x-origin",
	"cookie":                   "Cookie",
	"authorization":            "Authorization",
	"x-goog-visitor-id":        "X-Goog-Visitor-Id",
	"x-youtube-client-name":    "X-Youtube-Client-Name",
	"x-youtube-client-version": "X-Youtube-Client-Version",
}

// headerDefaults fill auxiliary headers the API requires when the capture
// omits them.
var headerDefaults = map[string]string{
	"User-Agent":      "Mozilla/5.0",
	"Accept":          "*/*",
	"Accept-Language": "en-US,en;q=0.9",
	"Content-Type":    "application/json",
	"X-Goog-AuthUser": "0",
	"x-origin":        "https://music.youtube.com",
}

var (
	curlHeaderRegex = regexp.MustCompile(`(?:-H|--header)\s+'([^']+)'|(?:-H|--header)\s+"([^"]+)"`)
	curlCookieRegex = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
)

// NormalizeHeaders parses a raw authentication capture into the canonical
// header map. Parse strategies are attempted in order, first success wins:
// whole-input JSON, embedded headers object, cURL command, raw header lines.
//
// The result always contains the auxiliary defaults and fails with
// [shared.ErrInvalidCredentialInput] when no cookie or authorization value
// is present.
func NormalizeHeaders(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty input", shared.ErrInvalidCredentialInput)
	}

	var parsed map[string]string
	for _, parse := range []func(string) (map[string]string, bool){
		parseJSONObject,
		parseEmbeddedHeaders,
		parseCurlCommand,
		parseHeaderLines,
	} {
		if m, ok := parse(raw); ok {
			parsed = m
			break
		}
	}

	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: no headers recognized in input", shared.ErrInvalidCredentialInput)
	}

	return canonicalize(parsed)
}

// canonicalize lower-cases keys for lookup, re-emits known headers with their
// canonical casing, fills defaults, and validates the session token.
//
// Raw keys are visited in sorted order and an exact header name always beats
// an alias for the same canonical name, so collisions like origin/x-origin
// resolve the same way on every call.
func canonicalize(in map[string]string) (map[string]string, error) {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(headerDefaults)+2)
	fromExact := make(map[string]bool, len(in))

	for _, key := range keys {
		lower := strings.ToLower(strings.TrimSpace(key))
		canonical, known := canonicalCasing[lower]
		if !known {
			continue
		}
		value := strings.TrimSpace(in[key])
		if value == "" {
			continue
		}
		exact := lower == strings.ToLower(canonical)
		if _, taken := out[canonical]; taken && (fromExact[canonical] || !exact) {
			continue
		}
		out[canonical] = value
		if exact {
			fromExact[canonical] = true
		}
	}

	for key, value := range headerDefaults {
		if out[key] == "" {
			out[key] = value
		}
	}

	if out["Cookie"] == "" && out["Authorization"] == "" {
		return nil, fmt.Errorf("%w: no cookie or authorization header found", shared.ErrInvalidCredentialInput)
	}

	return out, nil
}

// parseJSONObject handles input that is itself a JSON object of headers.
func parseJSONObject(raw string) (map[string]string, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, false
	}

	headers := make(map[string]string, len(obj))
	for key, value := range obj {
		if s, ok := value.(string); ok {
			headers[key] = s
		}
	}

	return headers, len(headers) > 0
}

// parseEmbeddedHeaders locates a headers object inside source text, e.g. the
// `"headers": { ... }` block of a "Copy as fetch" snippet, via brace matching.
func parseEmbeddedHeaders(raw string) (map[string]string, bool) {
	idx := strings.Index(raw, `"headers"`)
	if idx < 0 {
		idx = strings.Index(raw, "headers:")
		if idx < 0 {
			idx = strings.Index(raw, "headers :")
		}
	}
	if idx < 0 {
		return nil, false
	}

	open := strings.Index(raw[idx:], "{")
	if open < 0 {
		return nil, false
	}
	open += idx

	depth := 0
	for i := open; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return parseJSONObject(raw[open : i+1])
			}
		}
	}

	return nil, false
}

// parseCurlCommand extracts repeated -H/--header flags and the -b cookie flag
// from a shell invocation.
func parseCurlCommand(raw string) (map[string]string, bool) {
	first := strings.Fields(raw)
	if len(first) == 0 {
		return nil, false
	}
	if cmd := strings.TrimSpace(first[0]); cmd != "curl" && cmd != "http" && cmd != "wget" {
		return nil, false
	}

	// Join escaped line continuations before matching flags.
	cmdText := strings.ReplaceAll(raw, "\\\n", " ")
	cmdText = strings.ReplaceAll(cmdText, "\\", "")

	headers := make(map[string]string)

	for _, match := range curlHeaderRegex.FindAllStringSubmatch(cmdText, -1) {
		headerLine := match[1]
		if headerLine == "" {
			headerLine = match[2]
		}

		key, value, ok := strings.Cut(headerLine, ":")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	// An explicit cookie header wins over the -b flag.
	hasCookieHeader := false
	for key := range headers {
		if strings.EqualFold(key, "cookie") {
			hasCookieHeader = true
			break
		}
	}
	if cookieMatch := curlCookieRegex.FindStringSubmatch(cmdText); len(cookieMatch) > 1 && !hasCookieHeader {
		cookie := cookieMatch[1]
		if cookie == "" {
			cookie = cookieMatch[2]
		}
		headers["cookie"] = strings.TrimSpace(cookie)
	}

	return headers, len(headers) > 0
}

// parseHeaderLines is the line-oriented fallback: one "Name: value" pair per
// line, tolerating trailing commas and quotes from sloppy copies.
func parseHeaderLines(raw string) (map[string]string, bool) {
	headers := make(map[string]string)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimRight(line, ",")
		line = strings.Trim(line, `"'`)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		headers[key] = value
	}

	return headers, len(headers) > 0
}
