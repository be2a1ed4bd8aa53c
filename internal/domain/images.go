package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeImages serializes an ordered image list for the images text column.
func EncodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}
	return string(b), nil
}

// DecodeImages is the inverse of EncodeImages. Empty or null text yields an empty list.
func DecodeImages(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []string{}, nil
	}
	var images []string
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if images == nil {
		images = []string{}
	}
	return images, nil
}
