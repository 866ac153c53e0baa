// cmd/client/main.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// apiClient is a minimal JSON client for walking through the API by hand.
type apiClient struct {
	baseURL string
	http    *http.Client
	token   string
}

type response struct {
	status int
	body   map[string]any
	raw    string
}

func (c *apiClient) call(ctx context.Context, method, path string, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	out := &response{status: res.StatusCode, raw: strings.TrimSpace(string(raw))}
	if len(raw) > 0 && raw[0] == '{' {
		_ = json.Unmarshal(raw, &out.body)
	}

	return out, nil
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API base URL")
	username := flag.String("username", "johndoe", "user to register or log in as")
	password := flag.String("password", "SecurePass123!", "password for the user")
	flag.Parse()

	fmt.Println("🚀 Task Tracker API Test Client")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client := &apiClient{baseURL: strings.TrimRight(*baseURL, "/"), http: &http.Client{Timeout: 10 * time.Second}}

	fmt.Println("\n📝 TEST 1: Registration/Login")
	res := must(client.call(ctx, http.MethodPost, "/auth/register", map[string]string{
		"username": *username,
		"password": *password,
		"email":    *username + "@example.com",
	}))
	switch res.status {
	case http.StatusCreated:
		fmt.Printf("  ✅ Registered %s\n", *username)
	case http.StatusBadRequest:
		fmt.Printf("  ℹ️  Registration refused (%s), trying to login...\n", res.raw)
	default:
		log.Fatalf("unexpected registration status %d: %s", res.status, res.raw)
	}

	res = expect(client.call(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": *username,
		"password": *password,
	}))(http.StatusOK)
	client.token, _ = res.body["access"].(string)
	refresh, _ := res.body["refresh"].(string)
	fmt.Println("  ✅ Logged in")

	fmt.Println("\n📋 TEST 2: Task lifecycle")
	res = expect(client.call(ctx, http.MethodPost, "/tasks", map[string]any{
		"title":       "Try the API",
		"description": "Created by the test client",
		"priority":    "high",
	}))(http.StatusCreated)
	taskPath := fmt.Sprintf("/tasks/%v", res.body["id"])
	fmt.Printf("  ✅ Created %s\n", taskPath)

	expect(client.call(ctx, http.MethodPatch, taskPath, map[string]any{"priority": "critical"}))(http.StatusOK)
	fmt.Println("  ✅ Raised priority")

	expect(client.call(ctx, http.MethodPatch, taskPath, map[string]any{"is_completed": true}))(http.StatusOK)
	fmt.Println("  ✅ Completed task")

	res = expect(client.call(ctx, http.MethodPatch, taskPath, map[string]any{"title": "Edited"}))(http.StatusForbidden)
	fmt.Printf("  ✅ Edit of completed task refused: %v\n", res.body["detail"])

	expect(client.call(ctx, http.MethodDelete, taskPath, nil))(http.StatusForbidden)
	fmt.Println("  ✅ Delete of completed task refused")

	expect(client.call(ctx, http.MethodGet, "/tasks?ordering=-priority", nil))(http.StatusOK)
	fmt.Println("  ✅ Listed tasks")

	fmt.Println("\n🔒 TEST 3: Logout")
	expect(client.call(ctx, http.MethodPost, "/auth/logout", map[string]string{"refresh": refresh}))(http.StatusResetContent)
	fmt.Println("  ✅ Refresh token blacklisted")

	expect(client.call(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refresh": refresh}))(http.StatusUnauthorized)
	fmt.Println("  ✅ Blacklisted token can no longer refresh")

	fmt.Println("\n✅ All checks passed")
}

func must(res *response, err error) *response {
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	return res
}

// expect fails the run unless the response has the wanted status.
func expect(res *response, err error) func(want int) *response {
	return func(want int) *response {
		res := must(res, err)
		if res.status != want {
			log.Fatalf("expected status %d, got %d: %s", want, res.status, res.raw)
		}
		return res
	}
}
