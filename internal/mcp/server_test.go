// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers over temp-dir stores.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamsatar/lift/internal/models"
	"github.com/adamsatar/lift/internal/seed"
	"github.com/adamsatar/lift/internal/storage"
	"github.com/adamsatar/lift/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus/hooks/test"
)

// setupTestServer creates seeded stores in a temp directory and a server over them.
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	tmpDir := t.TempDir()
	stores, err := storage.OpenStores(
		filepath.Join(tmpDir, storage.CatalogFileName),
		filepath.Join(tmpDir, storage.LogFileName),
	)
	if err != nil {
		t.Fatalf("Failed to open stores: %v", err)
	}
	t.Cleanup(func() { _ = stores.Close() })

	src, err := seed.DefaultCatalogSource()
	if err != nil {
		t.Fatalf("Failed to load default catalog: %v", err)
	}
	if _, err := seed.NewSeeder(logger).SeedCatalog(ctx, stores.Catalog, src); err != nil {
		t.Fatalf("Failed to seed catalog: %v", err)
	}

	server, err := NewServer(tracker.New(stores.Catalog, stores.Log, logger), logger)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// logSquat logs two squat sets on date and returns their ids.
func logSquat(t *testing.T, server *Server, date string) []int64 {
	t.Helper()

	_, out, err := server.handleLogSets(context.Background(), &mcp.CallToolRequest{}, logSetsInput{
		Exercise: "Barbell Back Squat",
		Date:     date,
		Sets: []setInput{
			{Weight: floatPtr(135), Reps: intPtr(5)},
			{Weight: floatPtr(155), Reps: intPtr(3)},
		},
	})
	if err != nil {
		t.Fatalf("handleLogSets failed: %v", err)
	}
	return out.SetIDs
}

func TestNewServer(t *testing.T) {
	server := setupTestServer(t)

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.svc == nil {
		t.Error("Expected non-nil svc")
	}
}

func TestHandleListCatalog(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     listCatalogInput
		wantCount int
	}{
		{"all", listCatalogInput{}, 19},
		{"by equipment", listCatalogInput{Equipment: "bodyweight"}, 3},
		{"by muscle group", listCatalogInput{MuscleGroup: "Obliques"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleListCatalog(ctx, &mcp.CallToolRequest{}, tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			result := output.(map[string]interface{})
			if got := result["count"]; got != tt.wantCount {
				t.Errorf("count = %v, want %d", got, tt.wantCount)
			}
		})
	}

	_, output, err := server.handleListCatalog(ctx, &mcp.CallToolRequest{}, listCatalogInput{Equipment: "Kettlebell"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := output.(map[string]interface{})["message"]; !ok {
		t.Error("Expected message for empty result")
	}
}

func TestHandleGetCatalogEntry(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, output, err := server.handleGetCatalogEntry(ctx, &mcp.CallToolRequest{}, getCatalogEntryInput{Name: "plank"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	entry := output.(*models.CatalogEntry)
	if entry.Name != "Plank" || entry.MeasuredBy != models.MeasuredByDuration {
		t.Errorf("Got %s measured by %s", entry.Name, entry.MeasuredBy)
	}

	_, _, err = server.handleGetCatalogEntry(ctx, &mcp.CallToolRequest{}, getCatalogEntryInput{Name: "Zercher Squat"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown exercise, got %v", err)
	}

	_, _, err = server.handleGetCatalogEntry(ctx, &mcp.CallToolRequest{}, getCatalogEntryInput{Name: " "})
	if !errors.Is(err, storage.ErrMalformedInput) {
		t.Errorf("Expected ErrMalformedInput for a blank name, got %v", err)
	}
}

// TestLookupToolsSurfaceStoreFailures checks that a broken store is reported
// as such rather than as a missing record.
func TestLookupToolsSurfaceStoreFailures(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	logSquat(t, server, "2024-06-07")

	if err := server.svc.Catalog().(*storage.CatalogStore).Close(); err != nil {
		t.Fatalf("Close catalog failed: %v", err)
	}
	_, _, err := server.handleGetCatalogEntry(ctx, &mcp.CallToolRequest{}, getCatalogEntryInput{Name: "Plank"})
	if err == nil || errors.Is(err, storage.ErrNotFound) || strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected a store failure for get_catalog_entry, got %v", err)
	}

	if err := server.svc.Log().(*storage.LogStore).Close(); err != nil {
		t.Fatalf("Close log failed: %v", err)
	}
	_, _, err = server.handleGetWorkout(ctx, &mcp.CallToolRequest{}, getWorkoutInput{Ref: "2024-06-07"})
	if err == nil || errors.Is(err, storage.ErrNotFound) || strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected a store failure for get_workout, got %v", err)
	}
}

func TestHandleAddCatalogEntry(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   addCatalogEntryInput
		wantErr bool
	}{
		{
			name:  "new exercise",
			input: addCatalogEntryInput{Name: "Barbell Front Squat", Equipment: "Barbell", MuscleGroups: []string{"Quads"}},
		},
		{
			name:    "duplicate",
			input:   addCatalogEntryInput{Name: "Barbell Row", Equipment: "Barbell"},
			wantErr: true,
		},
		{
			name:    "unknown equipment",
			input:   addCatalogEntryInput{Name: "Sled Push", Equipment: "Sled"},
			wantErr: true,
		},
		{
			name:    "bad measured_by",
			input:   addCatalogEntryInput{Name: "Wall Sit", Equipment: "Bodyweight", MeasuredBy: "Calories"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleAddCatalogEntry(ctx, &mcp.CallToolRequest{}, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.ID == 0 {
				t.Error("Expected non-zero ID")
			}
			if !strings.Contains(output.Message, tt.input.Name) {
				t.Errorf("Message %q should mention %q", output.Message, tt.input.Name)
			}
		})
	}

	entry, err := server.svc.Catalog().GetEntry(ctx, "Barbell Front Squat")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if entry.Weight != 45 {
		t.Errorf("Weight = %v, want equipment default 45", entry.Weight)
	}
}

func TestHandleLogSets(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	ids := logSquat(t, server, "2024-06-01")
	if len(ids) != 2 {
		t.Fatalf("Expected 2 set IDs, got %d", len(ids))
	}

	_, out, err := server.handleLogSets(ctx, &mcp.CallToolRequest{}, logSetsInput{
		Exercise: "Plank",
		Date:     "2024-06-01",
		Sets:     []setInput{{Duration: intPtr(60)}},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.SequenceNumber != 2 {
		t.Errorf("SequenceNumber = %d, want 2", out.SequenceNumber)
	}
	if out.WorkoutID != models.WorkoutIDForDate("2024-06-01").String()[:8] {
		t.Errorf("WorkoutID = %s", out.WorkoutID)
	}

	_, _, err = server.handleLogSets(ctx, &mcp.CallToolRequest{}, logSetsInput{
		Exercise: "Plank",
		Date:     "2024-06-01",
		Sets:     []setInput{{Reps: intPtr(10)}},
	})
	if err == nil {
		t.Error("Expected error for reps on a duration exercise")
	}
}

func TestHandleLogSetsDefaultsToToday(t *testing.T) {
	server := setupTestServer(t)

	_, out, err := server.handleLogSets(context.Background(), &mcp.CallToolRequest{}, logSetsInput{
		Exercise: "Pull Up",
		Sets:     []setInput{{Reps: intPtr(8)}},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Date != models.Today() {
		t.Errorf("Date = %s, want %s", out.Date, models.Today())
	}
}

func TestHandleListSets(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, output, err := server.handleListSets(ctx, &mcp.CallToolRequest{}, listSetsInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := output.(map[string]interface{})["message"]; !ok {
		t.Error("Expected message for empty log")
	}

	logSquat(t, server, "2024-06-02")
	logSquat(t, server, "2024-06-03")

	_, output, err = server.handleListSets(ctx, &mcp.CallToolRequest{}, listSetsInput{Date: "2024-06-03"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sets := output.(map[string]interface{})["sets"].([]tracker.SetView)
	if len(sets) != 2 {
		t.Fatalf("Expected 2 sets, got %d", len(sets))
	}
	if sets[0].Exercise != "Barbell Back Squat" {
		t.Errorf("Exercise = %s", sets[0].Exercise)
	}

	_, output, err = server.handleListSets(ctx, &mcp.CallToolRequest{}, listSetsInput{Limit: 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := output.(map[string]interface{})["count"]; got != 3 {
		t.Errorf("count = %v, want 3", got)
	}
}

func TestHandleUpdateAndDeleteSet(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	ids := logSquat(t, server, "2024-06-04")

	_, output, err := server.handleUpdateSet(ctx, &mcp.CallToolRequest{}, updateSetInput{ID: ids[0], Weight: floatPtr(140)})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output.Message, "Updated") {
		t.Errorf("Message = %q", output.Message)
	}

	set, err := server.svc.Log().GetSet(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetSet failed: %v", err)
	}
	if *set.Weight != 140 {
		t.Errorf("Weight = %v, want 140", *set.Weight)
	}

	if _, _, err := server.handleDeleteSet(ctx, &mcp.CallToolRequest{}, deleteSetInput{ID: ids[1]}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, _, err := server.handleDeleteSet(ctx, &mcp.CallToolRequest{}, deleteSetInput{ID: ids[1]}); err == nil {
		t.Error("Expected error deleting a missing set")
	}
	if _, _, err := server.handleUpdateSet(ctx, &mcp.CallToolRequest{}, updateSetInput{ID: 9999, Reps: intPtr(1)}); err == nil {
		t.Error("Expected error updating a missing set")
	}

	plank := "Plank"
	if _, _, err := server.handleUpdateSet(ctx, &mcp.CallToolRequest{}, updateSetInput{ID: ids[0], Exercise: &plank}); !errors.Is(err, storage.ErrMalformedInput) {
		t.Errorf("Expected ErrMalformedInput moving a reps set to Plank without a duration, got %v", err)
	}
	if _, _, err := server.handleUpdateSet(ctx, &mcp.CallToolRequest{}, updateSetInput{ID: ids[0], Exercise: &plank, Duration: intPtr(30)}); err != nil {
		t.Errorf("Unexpected error moving set to Plank: %v", err)
	}
}

func TestHandleWorkouts(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, output, err := server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listWorkoutsInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := output.(map[string]interface{})["message"]; !ok {
		t.Error("Expected message for no workouts")
	}

	logSquat(t, server, "2024-06-05")
	logSquat(t, server, "2024-06-06")

	_, output, err = server.handleListWorkouts(ctx, &mcp.CallToolRequest{}, listWorkoutsInput{Limit: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	workouts := output.(map[string]interface{})["workouts"].([]tracker.WorkoutSummary)
	if len(workouts) != 1 || workouts[0].Date != "2024-06-06" {
		t.Errorf("Expected newest workout only, got %+v", workouts)
	}

	_, output, err = server.handleGetWorkout(ctx, &mcp.CallToolRequest{}, getWorkoutInput{Ref: "2024-06-05"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	detail := output.(*tracker.WorkoutDetail)
	if len(detail.Sets) != 2 {
		t.Errorf("Expected 2 sets, got %d", len(detail.Sets))
	}

	if _, _, err := server.handleGetWorkout(ctx, &mcp.CallToolRequest{}, getWorkoutInput{Ref: "2020-01-01"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing workout, got %v", err)
	}
}

func TestHandleGetVolume(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	logSquat(t, server, "2024-06-03")
	logSquat(t, server, "2024-06-05")

	_, output, err := server.handleGetVolume(ctx, &mcp.CallToolRequest{}, getVolumeInput{Bucket: "week"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	points := output.(map[string]interface{})["points"].([]tracker.VolumeView)
	if len(points) != 1 {
		t.Fatalf("Expected 1 weekly point, got %d", len(points))
	}
	// 2 x (135*5 + 155*3)
	if points[0].Volume != 2280 {
		t.Errorf("Volume = %v, want 2280", points[0].Volume)
	}

	if _, _, err := server.handleGetVolume(ctx, &mcp.CallToolRequest{}, getVolumeInput{Bucket: "year"}); err == nil {
		t.Error("Expected error for unknown bucket")
	}
}

func readResource(t *testing.T, result *mcp.ReadResourceResult, uri string) map[string]interface{} {
	t.Helper()

	if result == nil || len(result.Contents) == 0 {
		t.Fatal("Expected non-empty contents")
	}
	if result.Contents[0].URI != uri {
		t.Errorf("URI = %s, want %s", result.Contents[0].URI, uri)
	}
	if result.Contents[0].MIMEType != "application/json" {
		t.Errorf("MIMEType = %s, want application/json", result.Contents[0].MIMEType)
	}

	var body map[string]interface{}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatalf("Resource text is not JSON: %v", err)
	}
	return body
}

func TestHandleCatalogResource(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleCatalogResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	body := readResource(t, result, "lift://catalog")
	counts := body["counts"].(map[string]interface{})
	if counts["exercises"] != float64(19) {
		t.Errorf("exercises = %v, want 19", counts["exercises"])
	}
}

func TestHandleRecentResource(t *testing.T) {
	server := setupTestServer(t)
	logSquat(t, server, "2024-06-07")

	result, err := server.handleRecentResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	body := readResource(t, result, "lift://recent")
	if len(body["workouts"].([]interface{})) != 1 {
		t.Errorf("Expected 1 workout, got %v", body["workouts"])
	}
	if len(body["sets"].([]interface{})) != 2 {
		t.Errorf("Expected 2 sets, got %v", body["sets"])
	}
}

func TestHandleTodayResource(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	result, err := server.handleTodayResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	body := readResource(t, result, "lift://today")
	if _, ok := body["message"]; !ok {
		t.Error("Expected message when nothing is logged today")
	}

	logSquat(t, server, models.Today())

	result, err = server.handleTodayResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	body = readResource(t, result, "lift://today")
	if _, ok := body["workout"]; !ok {
		t.Error("Expected today's workout")
	}
}
