package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// This utility verifies that Google Maps is reachable from this machine
// and reports whether requests get redirected to the consent interstitial.

func main() {
	_ = godotenv.Load()

	fmt.Println("=== Google Maps Connectivity Check ===")
	fmt.Println()

	lang := os.Getenv("LANG_CODE")
	if lang == "" {
		lang = "en"
	}

	target := "https://www.google.com/maps/search/" + url.PathEscape("coffee shop") + "?hl=" + url.QueryEscape(lang)

	fmt.Printf("1. Requesting %s\n", target)

	client := &http.Client{
		Timeout: 15 * time.Second,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return nil
		},
	}

	resp, err := client.Get(target)
	if err != nil {
		fmt.Printf("Error reaching Google Maps: %v\n", err)
		fmt.Println("\nFAILED - check your network configuration!")
		os.Exit(1)
	}
	defer resp.Body.Close()

	fmt.Printf("   Status: %s\n", resp.Status)
	fmt.Printf("   Final URL: %s\n\n", resp.Request.URL)

	if resp.Request.URL.Host == "consent.google.com" {
		fmt.Println("2. Consent interstitial detected")
		fmt.Println("   The scraper handles this automatically, nothing to do.")
	} else {
		fmt.Println("2. No consent redirect for this region")
	}

	if resp.StatusCode >= 400 {
		fmt.Printf("\nWARNING: Google answered with %s - scraping from this IP may be blocked.\n", resp.Status)
		os.Exit(1)
	}

	fmt.Println("\nSUCCESS: Google Maps is reachable, the scraper should work.")
}
