package mq

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/quic-go/quic-go/http3"
	"github.com/sirupsen/logrus"
)

var indexURL = os.Getenv("SOFA_INDEX_URL")

// Index describes an entity change shipped to the search indexer.
type Index struct {
	EntityType string `json:"entity_type"`
	Action     string `json:"action"`
	EntityId   string `json:"entity_id"`
	ItemId     string `json:"item_id"`
	ItemType   string `json:"item_type"`
}

// Emit ships an index message to the QUIC side service. Callers fire
// it in a goroutine; failures are logged, never surfaced to clients.
func Emit(eventName string, content Index) error {
	jsonData, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("error marshalling JSON: %v", err)
	}

	if indexURL == "" {
		logrus.Debugf("%s emitted (no index url configured)", eventName)
		return nil
	}

	if err := quicPost(indexURL, jsonData); err != nil {
		logrus.Errorf("emit %s failed: %v", eventName, err)
		return err
	}

	logrus.Infof("%s emitted", eventName)
	return nil
}

func quicPost(url string, jsonData []byte) error {
	client := &http.Client{
		Transport: &http3.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // self-signed cert on the indexer
		},
	}

	// 3 attempts with exponential backoff
	maxRetries := 3
	baseDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("error creating request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			logrus.Warnf("attempt %d: request failed: %v", attempt, err)

			if attempt < maxRetries {
				waitTime := baseDelay * (1 << (attempt - 1))
				time.Sleep(waitTime)
				continue
			}
			return fmt.Errorf("request failed after %d attempts: %v", maxRetries, err)
		}

		_, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("error reading response: %v", err)
		}

		return nil
	}

	return fmt.Errorf("request failed after %d attempts", maxRetries)
}

// Notify is the fire-and-forget variant for events nothing consumes yet.
func Notify(eventName string, content Index) error {
	logrus.Debugf("%s notified", eventName)
	return nil
}
