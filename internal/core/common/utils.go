package common

import (
	"encoding/json"
	"fmt"
)

// ExtractJSON slices the first '{' through the last '}' out of an LLM
// response, dropping surrounding markdown fences or prose.
func ExtractJSON(response string) (string, error) {
	start := -1
	end := -1

	for i, c := range response {
		if c == '{' {
			start = i
			break
		}
	}
	for i := len(response) - 1; i >= 0; i-- {
		if response[i] == '}' {
			end = i + 1
			break
		}
	}

	if start == -1 {
		return "", fmt.Errorf("no JSON object found in response (missing '{')")
	}
	if end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response (missing '}')")
	}
	return response[start:end], nil
}

// ParseJSON cleans and unmarshals a JSON string into a type T.
// It handles common LLM quirks like surrounding markdown or extra text.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}
