package floorplan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"condish/internal/inspection"
)

// ParseRoomFile decodes a room list written as YAML or JSON. Both a bare list
// of rooms and a {rooms, route} document are accepted.
func ParseRoomFile(data []byte, format string) ([]inspection.Room, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("floorplan: room file is empty")
	}
	var plan RawPlan
	switch strings.ToLower(format) {
	case "json":
		trimmed := bytes.TrimSpace(data)
		if trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &plan.Rooms); err != nil {
				return nil, fmt.Errorf("floorplan: decode json: %w", err)
			}
		} else if err := json.Unmarshal(trimmed, &plan); err != nil {
			return nil, fmt.Errorf("floorplan: decode json: %w", err)
		}
	default:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("floorplan: decode yaml: %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			if err := node.Content[0].Decode(&plan.Rooms); err != nil {
				return nil, fmt.Errorf("floorplan: decode yaml: %w", err)
			}
		} else if err := node.Decode(&plan); err != nil {
			return nil, fmt.Errorf("floorplan: decode yaml: %w", err)
		}
	}
	return Normalize(plan)
}

// LoadRoomFile reads a room file from disk, picking the format by extension.
func LoadRoomFile(path string) ([]inspection.Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("floorplan: read %s: %w", path, err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	rooms, err := ParseRoomFile(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rooms, nil
}
