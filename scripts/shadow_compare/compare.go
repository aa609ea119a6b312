package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

// defaultTargets covers every read endpoint both APIs serve.
var defaultTargets = []target{
	{Method: http.MethodGet, Path: "/api/", Critical: true},
	{Method: http.MethodGet, Path: "/api/units", Critical: true},
	{Method: http.MethodGet, Path: "/api/courses", Critical: true},
	{Method: http.MethodGet, Path: "/api/classes", Critical: true},
	{Method: http.MethodGet, Path: "/api/students", Critical: true},
	{Method: http.MethodGet, Path: "/api/attendance", Critical: true},
	{Method: http.MethodGet, Path: "/api/users", Critical: true},
	{Method: http.MethodGet, Path: "/api/users/pending"},
	{Method: http.MethodGet, Path: "/api/dashboard/stats"},
	{Method: http.MethodGet, Path: "/api/classes/unknown-class/students"},
}

// volatileKeys differ between two independent stores and are ignored.
var volatileKeys = map[string]struct{}{
	"id": {}, "_id": {}, "timestamp": {}, "token": {}, "tempPassword": {},
	"created_at": {}, "updated_at": {}, "approved_at": {},
	"createdAt": {}, "updatedAt": {}, "approvedAt": {},
}

type comparison struct {
	Target         target
	LegacyStatus   int
	GoStatus       int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationGo     time.Duration
	DurationLegacy time.Duration
}

func (c comparison) ok() bool {
	return c.Error == nil && c.StatusMatch && c.BodyMatch
}

type comparer struct {
	client     *http.Client
	goBase     string
	legacyBase string
	token      string
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Targets []target `json:"targets"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func (c *comparer) compare(tgt target) comparison {
	res := comparison{Target: tgt}

	goStatus, goBody, goDur, err := c.fetch(c.goBase, tgt)
	if err != nil {
		res.Error = fmt.Errorf("go request failed: %w", err)
		return res
	}
	legacyStatus, legacyBody, legacyDur, err := c.fetch(c.legacyBase, tgt)
	if err != nil {
		res.Error = fmt.Errorf("legacy request failed: %w", err)
		return res
	}

	res.GoStatus, res.LegacyStatus = goStatus, legacyStatus
	res.DurationGo, res.DurationLegacy = goDur, legacyDur
	res.StatusMatch = goStatus == legacyStatus
	res.BodyMatch = bodiesEqual(goBody, legacyBody)
	return res
}

func (c *comparer) fetch(base string, tgt target) (int, []byte, time.Duration, error) {
	if c.client == nil {
		return 0, nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// bodiesEqual compares JSON documents ignoring volatile keys, number
// representation and the order of list elements.
func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return reflect.DeepEqual(normalize(aj), normalize(bj))
}

func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			if _, skip := volatileKeys[k]; skip {
				continue
			}
			out[k] = normalize(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, child := range val {
			out[i] = normalize(child)
		}
		sort.Slice(out, func(i, j int) bool {
			return canonical(out[i]) < canonical(out[j])
		})
		return out
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
	}
	return v
}

func canonical(v interface{}) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

func printReport(w io.Writer, results []comparison) {
	fmt.Fprintln(w, "Shadow Compare Report")
	fmt.Fprintln(w, "======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.ok() {
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Error != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Error)
			continue
		}
		fmt.Fprintf(w, "  Go: %d (%s) | Legacy: %d (%s)\n", res.GoStatus, res.DurationGo, res.LegacyStatus, res.DurationLegacy)
		fmt.Fprintf(w, "  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
	}
}
