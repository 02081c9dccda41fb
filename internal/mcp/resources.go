// ABOUTME: MCP resource implementations for the catalog and training log.
// ABOUTME: Provides lift://catalog, lift://recent, and lift://today resources.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/adamsatar/lift/internal/models"
	"github.com/adamsatar/lift/internal/storage"
	"github.com/adamsatar/lift/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	catalogURI = "lift://catalog"
	recentURI  = "lift://recent"
	todayURI   = "lift://today"
)

func (s *Server) registerResources() {
	// lift://catalog - every exercise with equipment and muscle groups
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         catalogURI,
		Name:        "Exercise Catalog",
		Description: "All catalog exercises with equipment, measurement mode and muscle groups",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)

	// lift://recent - last workouts and sets
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Training",
		Description: "Last 5 workouts and the 20 most recent sets",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// lift://today - today's workout, if any
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Workout",
		Description: "Sets logged today in exercise order",
		MIMEType:    "application/json",
	}, s.handleTodayResource)
}

// Resource handlers

func (s *Server) handleCatalogResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	entries, err := s.svc.Catalog().ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	equipment, err := s.svc.Catalog().ListEquipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}

	result := map[string]interface{}{
		"equipment": equipment,
		"exercises": entries,
		"counts": map[string]int{
			"equipment": len(equipment),
			"exercises": len(entries),
		},
	}

	return jsonResource(catalogURI, result)
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.svc.Workouts(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	sets, err := s.svc.History(ctx, tracker.HistoryQuery{Limit: 20})
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}

	result := map[string]interface{}{
		"workouts": workouts,
		"sets":     sets,
	}

	return jsonResource(recentURI, result)
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := models.Today()

	result := map[string]interface{}{
		"date": today,
	}

	w, err := s.svc.Workout(ctx, today)
	switch {
	case err == nil:
		result["workout"] = w
	case errors.Is(err, storage.ErrNotFound):
		result["message"] = "No workout logged today."
	default:
		return nil, fmt.Errorf("failed to get today's workout: %w", err)
	}

	return jsonResource(todayURI, result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func containsFold(list []string, want string) bool {
	for _, item := range list {
		if equalFold(item, want) {
			return true
		}
	}
	return false
}
