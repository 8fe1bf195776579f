package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/novaterra/npc-engine/pkg/chat"
	"github.com/novaterra/npc-engine/pkg/npc"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// CharacterListing matches the GET /config/characters response.
type CharacterListing struct {
	Files   []string `json:"files"`
	Current string   `json:"current,omitempty"`
}

func listCharacters(client *http.Client, baseURL string) (*CharacterListing, error) {
	resp, err := client.Get(baseURL + "/config/characters")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to list characters: %s", errorResp.Error)
	}

	var listing CharacterListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse character listing: %w", err)
	}
	return &listing, nil
}

// LoadCharacterResult matches the POST /config/character/load response.
type LoadCharacterResult struct {
	OK        bool                  `json:"ok"`
	Current   string                `json:"current,omitempty"`
	Character *npc.CharacterProfile `json:"character"`
}

func loadCharacter(client *http.Client, baseURL string, filename string) (*npc.CharacterProfile, error) {
	reqBody := map[string]string{"filename": filename}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/config/character/load",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to load character: %s", errorResp.Error)
	}

	var result LoadCharacterResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse load response: %w", err)
	}
	if result.Character == nil {
		return nil, fmt.Errorf("load response did not include a character")
	}
	return result.Character, nil
}

func sendChat(client *http.Client, baseURL string, message string, history [][]string) (*chat.ChatResponse, error) {
	chatReq := chat.ChatRequest{
		Message: message,
		History: history,
	}

	jsonData, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/chat",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("chat request failed: %s", errorResp.Error)
	}

	var chatResp chat.ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}
	if chatResp.Error != "" {
		return nil, fmt.Errorf("chat request failed: %s", chatResp.Error)
	}
	return &chatResp, nil
}

func clearHistory(client *http.Client, baseURL string) (*chat.ClearHistoryResponse, error) {
	resp, err := client.Post(baseURL+"/clear-history", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to clear history: %s", errorResp.Error)
	}

	var clearResp chat.ClearHistoryResponse
	if err := json.Unmarshal(body, &clearResp); err != nil {
		return nil, fmt.Errorf("failed to parse clear-history response: %w", err)
	}
	return &clearResp, nil
}
