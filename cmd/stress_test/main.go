package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/rl1809/rental-booking/internal/auth"
	"github.com/rl1809/rental-booking/internal/core/domain"
)

func main() {
	baseURL := flag.String("url", getEnv("BASE_URL", "http://localhost:8080"), "server base URL")
	secret := flag.String("secret", getEnv("JWT_SECRET", "dev-secret-change-me"), "JWT signing secret")
	stock := flag.Int("stock", 20, "total stock of the test item")
	totalRequests := flag.Int("requests", 100, "concurrent booking attempts")
	quantity := flag.Int("quantity", 1, "units per booking")
	flag.Parse()

	client := resty.New().
		SetBaseURL(*baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(0)

	adminToken, err := auth.Issue(*secret, "stress-admin", auth.RoleAdmin, time.Hour)
	if err != nil {
		log.WithError(err).Fatal("failed to issue admin token")
	}

	// Register a fresh item so repeated runs never share stock
	var item domain.Item
	resp, err := client.R().
		SetAuthToken(adminToken).
		SetBody(map[string]interface{}{
			"name":       fmt.Sprintf("stress-item-%d", time.Now().UnixNano()),
			"totalStock": *stock,
			"pricingTiers": []map[string]string{
				{"unit": "hour", "rate": "10"},
				{"unit": "day", "rate": "100"},
			},
		}).
		SetResult(&item).
		Post("/items")
	if err != nil {
		log.WithError(err).Fatal("failed to register item")
	}
	if resp.StatusCode() != http.StatusCreated {
		log.WithFields(log.Fields{"status": resp.StatusCode(), "body": resp.String()}).Fatal("failed to register item")
	}

	windowStart := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	windowEnd := windowStart.Add(4 * time.Hour)

	var created, conflicts, retryable, other atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			tok, err := auth.Issue(*secret, fmt.Sprintf("stress-customer-%d", n), auth.RoleCustomer, time.Hour)
			if err != nil {
				other.Add(1)
				return
			}
			resp, err := client.R().
				SetAuthToken(tok).
				SetBody(map[string]interface{}{
					"itemId":   item.ID,
					"start":    windowStart.Format(time.RFC3339),
					"end":      windowEnd.Format(time.RFC3339),
					"quantity": *quantity,
				}).
				Post("/bookings")
			if err != nil {
				other.Add(1)
				return
			}

			switch resp.StatusCode() {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			case http.StatusServiceUnavailable:
				retryable.Add(1)
			default:
				other.Add(1)
				log.WithFields(log.Fields{"status": resp.StatusCode(), "body": resp.String()}).Warn("unexpected response")
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Read back what the server committed
	var bookings []domain.Booking
	resp, err = client.R().SetAuthToken(adminToken).SetResult(&bookings).Get("/items/" + item.ID + "/bookings")
	if err != nil {
		log.WithError(err).Fatal("failed to list bookings")
	}
	if resp.StatusCode() != http.StatusOK {
		log.WithField("status", resp.StatusCode()).Fatal("failed to list bookings")
	}
	committed := 0
	for _, b := range bookings {
		if b.Status.HoldsStock() {
			committed += b.Quantity
		}
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Stock:      %d\n", *stock)
	fmt.Printf("Total Requests:   %d (quantity %d)\n", *totalRequests, *quantity)
	fmt.Printf("Created:          %d\n", created.Load())
	fmt.Printf("Conflicts:        %d\n", conflicts.Load())
	fmt.Printf("Retryable:        %d\n", retryable.Load())
	fmt.Printf("Other:            %d\n", other.Load())
	fmt.Printf("Committed Units:  %d\n", committed)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	failed := false
	if committed > *stock {
		fmt.Printf("FAIL: %d units committed against stock %d\n", committed, *stock)
		failed = true
	} else {
		fmt.Println("PASS: committed units never exceed stock")
	}
	if int(created.Load())*(*quantity) != committed {
		fmt.Printf("FAIL: %d accepted bookings but %d committed units\n", created.Load(), committed)
		failed = true
	}
	if failed {
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
