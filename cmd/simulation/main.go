package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api/chat/v1"

type sendMessageRequest struct {
	Message string `json:"message"`
}

type sendMessageResponse struct {
	Data struct {
		Response      string `json:"response"`
		SessionID     string `json:"session_id"`
		Language      string `json:"language"`
		LeadPending   bool   `json:"lead_pending"`
		LeadCollected bool   `json:"lead_collected"`
		FromCache     bool   `json:"from_cache"`
	} `json:"data"`
}

func main() {
	color.Cyan("=== Chat Conversation Simulation ===")

	// The session rides on a cookie, so the whole script shares one jar.
	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Fatalf("Failed to create cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	conversation := []string{
		"היי",
		"כמה עולה השירות?",
		"יש לי מסעדה ואני צריך עזרה עם הזמנות",
		"נשמע מעולה",
		"דני כהן, 052-1234567, dani@example.com",
		"תודה רבה!",
	}

	for _, text := range conversation {
		color.Yellow("\nUSER: %s", text)

		start := time.Now()
		res, err := sendMessage(client, text)
		elapsed := time.Since(start)

		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		color.Green("BOT (%v): %s", elapsed.Round(time.Millisecond), res.Data.Response)
		fmt.Printf("  language=%s lead_pending=%v lead_collected=%v from_cache=%v\n",
			res.Data.Language, res.Data.LeadPending, res.Data.LeadCollected, res.Data.FromCache)

		time.Sleep(500 * time.Millisecond)
	}

	color.Cyan("\nResetting conversation")
	if err := reset(client); err != nil {
		color.Red("Reset failed: %v", err)
	}
}

func sendMessage(client *http.Client, text string) (*sendMessageResponse, error) {
	payload, _ := json.Marshal(sendMessageRequest{Message: text})

	resp, err := client.Post(baseURL+"/message", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}

	var res sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func reset(client *http.Client) error {
	resp, err := client.Post(baseURL+"/reset", "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
