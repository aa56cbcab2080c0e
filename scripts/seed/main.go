// Package main implements a standalone seed script that populates the
// wholesale platform with a realistic catalog and a handful of wholesale
// customers. Everything goes through the public API: the catalog import
// endpoint creates categories on demand, so no direct SQL is needed.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

func httpPost(url, apiKey string, body any) (map[string]any, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return result, nil
}

// --------------------------------------------------------------------------
// Seed data definitions
// --------------------------------------------------------------------------

type importItem struct {
	SKU        string `json:"sku"`
	Title      string `json:"title"`
	ShortTitle string `json:"short_title,omitempty"`
	Category   string `json:"category"`
}

type customerDef struct {
	email        string
	businessName string
	contactName  string
	phone        string
	tier         string
}

// --------------------------------------------------------------------------
// main
// --------------------------------------------------------------------------

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[seed] ")

	apiURL := getEnv("WHOLESALE_URL", "http://localhost:8080")
	apiKey := getEnv("ADMIN_API_KEY", "dev-admin-key")

	// ---------------------------------------------------------------
	// 1. Import the catalog. Categories are created on demand and
	//    retail prices are derived from category and size.
	// ---------------------------------------------------------------
	items := []importItem{
		// Sun catchers, sized. Prices derive from the size in the title.
		{SKU: "SC-HUM-15", Title: `Hummingbird Sun Catcher 15"`, ShortTitle: "Hummingbird 15", Category: "Sun Catchers"},
		{SKU: "SC-HUM-12", Title: `Hummingbird Sun Catcher 12"`, ShortTitle: "Hummingbird 12", Category: "Sun Catchers"},
		{SKU: "SC-HUM-10", Title: `Hummingbird Sun Catcher 10"`, ShortTitle: "Hummingbird 10", Category: "Sun Catchers"},
		{SKU: "SC-HUM-6", Title: `Hummingbird Sun Catcher 6"`, ShortTitle: "Hummingbird 6", Category: "Sun Catchers"},
		{SKU: "SC-DRG-15", Title: `Dragonfly Sun Catcher 15"`, ShortTitle: "Dragonfly 15", Category: "Sun Catchers"},
		{SKU: "SC-DRG-12", Title: `Dragonfly Sun Catcher 12"`, ShortTitle: "Dragonfly 12", Category: "Sun Catchers"},
		{SKU: "SC-CAR-15", Title: `Cardinal Sun Catcher 15"`, ShortTitle: "Cardinal 15", Category: "Sun Catchers"},
		{SKU: "SC-CAR-10", Title: `Cardinal Sun Catcher 10"`, ShortTitle: "Cardinal 10", Category: "Sun Catchers"},
		{SKU: "SC-BFL-12", Title: `Butterfly Sun Catcher 12"`, ShortTitle: "Butterfly 12", Category: "Sun Catchers"},
		{SKU: "SC-BFL-6", Title: `Butterfly Sun Catcher 6"`, ShortTitle: "Butterfly 6", Category: "Sun Catchers"},
		// Glass ornaments.
		{SKU: "GO-SNOW", Title: "Glass Snowflake Ornament", ShortTitle: "Snowflake", Category: "Glass Ornaments"},
		{SKU: "GO-TREE", Title: "Glass Tree Ornament", ShortTitle: "Tree", Category: "Glass Ornaments"},
		{SKU: "GO-STAR", Title: "Glass Star Ornament", ShortTitle: "Star", Category: "Glass Ornaments"},
		{SKU: "GO-BIRD", Title: "Glass Songbird Ornament", ShortTitle: "Songbird", Category: "Glass Ornaments"},
		// Paper cut cards.
		{SKU: "PC-FOX", Title: "Paper Cut Fox Card", ShortTitle: "Fox Card", Category: "Paper Cut"},
		{SKU: "PC-OWL", Title: "Paper Cut Owl Card", ShortTitle: "Owl Card", Category: "Paper Cut"},
		{SKU: "PC-FERN", Title: "Paper Cut Fern Card", ShortTitle: "Fern Card", Category: "Paper Cut"},
		// Wooden pieces.
		{SKU: "WD-LOON", Title: "Wooden Loon Figure", ShortTitle: "Loon", Category: "Wooden"},
		{SKU: "WD-BEAR", Title: "Wooden Bear Figure", ShortTitle: "Bear", Category: "Wooden"},
	}

	log.Printf("Importing %d catalog items via %s ...", len(items), apiURL)
	resp, err := httpPost(apiURL+"/api/v1/products/import", apiKey, map[string]any{
		"items": items,
	})
	if err != nil {
		log.Fatalf("catalog import: %v", err)
	}
	if data, ok := resp["data"].(map[string]any); ok {
		log.Printf("  Import: %v created, %v skipped, %v categories",
			data["created"], data["skipped"], data["categories"])
		if errs, ok := data["errors"].([]any); ok && len(errs) > 0 {
			for _, e := range errs {
				log.Printf("  WARNING: %v", e)
			}
		}
	}

	// ---------------------------------------------------------------
	// 2. Seed wholesale customers.
	// ---------------------------------------------------------------
	customers := []customerDef{
		{
			email:        "orders@lakesidegifts.test",
			businessName: "Lakeside Gifts",
			contactName:  "Morgan Reed",
			phone:        "555-0101",
		},
		{
			email:        "buyer@northwoodsmercantile.test",
			businessName: "Northwoods Mercantile",
			contactName:  "Sam Okafor",
			phone:        "555-0102",
			tier:         "tier2",
		},
		{
			email:        "purchasing@harborlane.test",
			businessName: "Harbor Lane Boutique",
			contactName:  "Jess Alvarez",
			phone:        "555-0103",
		},
	}

	log.Println("Seeding wholesale customers...")
	for _, c := range customers {
		body := map[string]any{
			"email":         c.email,
			"business_name": c.businessName,
			"contact_name":  c.contactName,
			"phone":         c.phone,
		}
		if c.tier != "" {
			body["discount_tier"] = c.tier
		}

		resp, err := httpPost(apiURL+"/api/v1/customers", apiKey, body)
		if err != nil {
			log.Printf("  WARNING: customer %q: %v (may already exist, continuing)", c.businessName, err)
			continue
		}
		id := ""
		if data, ok := resp["data"].(map[string]any); ok {
			id, _ = data["id"].(string)
		}
		log.Printf("  Customer: %s (id=%s)", c.businessName, id)
	}

	// ---------------------------------------------------------------
	// Done
	// ---------------------------------------------------------------
	log.Printf("Seed complete! Imported %d catalog items and %d customers.", len(items), len(customers))
}
