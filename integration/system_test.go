//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	baseURL = getenv("E2E_BASE_URL", "http://localhost:3000")
	apiKey  = getenv("E2E_API_KEY", "supersecretapikey")
)

type product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

type page struct {
	Page          int       `json:"page"`
	Limit         int       `json:"limit"`
	TotalPages    int       `json:"totalPages"`
	TotalProducts int       `json:"totalProducts"`
	Products      []product `json:"products"`
}

func TestSystem_E2E_ProductLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var before page
	doJSON(t, http.MethodGet, baseURL+"/api/products?limit=1000", "", nil, &before, 200)

	name := fmt.Sprintf("e2e-%d-%d", time.Now().Unix(), rand.Intn(100000))

	doJSON(t, http.MethodPost, baseURL+"/api/products", "", map[string]any{
		"name": name, "price": 12.5, "category": "E2E",
	}, nil, 400)

	var created product
	doJSON(t, http.MethodPost, baseURL+"/api/products", apiKey, map[string]any{
		"name": name, "price": 12.5, "category": "E2E",
	}, &created, 201)
	if created.ID == "" || !created.InStock {
		t.Fatalf("unexpected created product: %#v", created)
	}

	var found []product
	doJSON(t, http.MethodGet, baseURL+"/api/products/search?q="+name, "", nil, &found, 200)
	if len(found) != 1 || found[0].ID != created.ID {
		t.Fatalf("search did not find %s: %#v", name, found)
	}

	var updated product
	doJSON(t, http.MethodPut, baseURL+"/api/products/"+created.ID, apiKey, map[string]any{
		"id": "ignored", "inStock": false,
	}, &updated, 200)
	if updated.ID != created.ID || updated.InStock || updated.Name != name {
		t.Fatalf("unexpected updated product: %#v", updated)
	}

	var stats map[string]int
	doJSON(t, http.MethodGet, baseURL+"/api/products/stats", "", nil, &stats, 200)
	if stats["E2E"] < 1 {
		t.Fatalf("stats missing E2E category: %#v", stats)
	}

	doJSON(t, http.MethodDelete, baseURL+"/api/products/"+created.ID, apiKey, nil, nil, 204)
	doJSON(t, http.MethodGet, baseURL+"/api/products/"+created.ID, "", nil, nil, 404)

	var after page
	doJSON(t, http.MethodGet, baseURL+"/api/products?limit=1000", "", nil, &after, 200)
	if after.TotalProducts != before.TotalProducts {
		t.Fatalf("totalProducts=%d want=%d", after.TotalProducts, before.TotalProducts)
	}

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		doJSON(t, http.MethodPost, baseURL+"/api/products", apiKey, map[string]any{
			"name": name, "price": 1, "category": "E2E",
		}, &created, 201)

		restartCatalogContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")

		doJSON(t, http.MethodGet, baseURL+"/api/products/"+created.ID, "", nil, nil, 404)

		var seeded page
		doJSON(t, http.MethodGet, baseURL+"/api/products", "", nil, &seeded, 200)
		if seeded.TotalProducts != 6 {
			t.Fatalf("after restart totalProducts=%d want=6", seeded.TotalProducts)
		}
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url, key string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
