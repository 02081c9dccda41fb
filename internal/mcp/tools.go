// ABOUTME: MCP tool implementations for the exercise catalog and set log.
// ABOUTME: Provides catalog lookup, set logging and editing, workouts and volume.
package mcp

import (
	"context"
	"fmt"

	"github.com/adamsatar/lift/internal/models"
	"github.com/adamsatar/lift/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// list_catalog
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_catalog",
		Description: "List exercises in the catalog, optionally filtered by equipment or muscle group",
	}, s.handleListCatalog)

	// get_catalog_entry
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_catalog_entry",
		Description: "Get one catalog exercise by name",
	}, s.handleGetCatalogEntry)

	// add_catalog_entry
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_catalog_entry",
		Description: "Add an exercise to the catalog",
	}, s.handleAddCatalogEntry)

	// log_sets
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_sets",
		Description: "Log one or more sets of an exercise on a date",
	}, s.handleLogSets)

	// list_sets
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_sets",
		Description: "List logged sets newest first, optionally filtered by date or exercise",
	}, s.handleListSets)

	// update_set
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_set",
		Description: "Change fields of a logged set",
	}, s.handleUpdateSet)

	// delete_set
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_set",
		Description: "Delete a logged set by ID",
	}, s.handleDeleteSet)

	// list_workouts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List recent workouts with their exercises in order",
	}, s.handleListWorkouts)

	// get_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout",
		Description: "Get a workout with all its sets, by date or ID prefix",
	}, s.handleGetWorkout)

	// get_volume
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_volume",
		Description: "Get training volume (weight x reps) per day, week or month",
	}, s.handleGetVolume)
}

// Tool input/output types

type listCatalogInput struct {
	Equipment   string `json:"equipment,omitempty" jsonschema:"Filter by equipment name"`
	MuscleGroup string `json:"muscle_group,omitempty" jsonschema:"Filter by muscle group"`
}

type getCatalogEntryInput struct {
	Name string `json:"name" jsonschema:"Exercise name (case-insensitive)"`
}

type addCatalogEntryInput struct {
	Name         string   `json:"name" jsonschema:"Exercise name"`
	Equipment    string   `json:"equipment" jsonschema:"Equipment name, must already exist"`
	Weight       float64  `json:"weight,omitempty" jsonschema:"Base weight, defaults to the equipment default"`
	MeasuredBy   string   `json:"measured_by,omitempty" jsonschema:"Reps (default) or Duration"`
	Sides        string   `json:"sides,omitempty" jsonschema:"Bilateral (default) or Unilateral"`
	MuscleGroups []string `json:"muscle_groups,omitempty" jsonschema:"Muscle groups worked"`
}

type entryOutput struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type setInput struct {
	Weight   *float64 `json:"weight,omitempty" jsonschema:"Weight used, defaults to the exercise base weight"`
	Reps     *int     `json:"reps,omitempty" jsonschema:"Reps, for rep-measured exercises"`
	Duration *int     `json:"duration,omitempty" jsonschema:"Seconds, for duration-measured exercises"`
	Rest     *int     `json:"rest,omitempty" jsonschema:"Rest after the set in seconds"`
	Note     string   `json:"note,omitempty" jsonschema:"Optional note"`
	Side     string   `json:"side,omitempty" jsonschema:"Left or Right, for unilateral exercises"`
}

type logSetsInput struct {
	Exercise string     `json:"exercise" jsonschema:"Catalog exercise name"`
	Date     string     `json:"date,omitempty" jsonschema:"Workout date (YYYY-MM-DD), defaults to today"`
	Sets     []setInput `json:"sets" jsonschema:"Sets to log in order"`
}

type logSetsOutput struct {
	WorkoutID      string  `json:"workout_id"`
	Date           string  `json:"date"`
	Exercise       string  `json:"exercise"`
	SequenceNumber int     `json:"sequence_number"`
	SetIDs         []int64 `json:"set_ids"`
	Message        string  `json:"message"`
}

type listSetsInput struct {
	Date     string `json:"date,omitempty" jsonschema:"Only sets on this date (YYYY-MM-DD)"`
	Exercise string `json:"exercise,omitempty" jsonschema:"Only sets of this exercise"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type updateSetInput struct {
	ID        int64    `json:"id" jsonschema:"Set ID"`
	Exercise  *string  `json:"exercise,omitempty" jsonschema:"Move the set to this catalog exercise"`
	SetNumber *int     `json:"set_number,omitempty" jsonschema:"New set number"`
	Weight    *float64 `json:"weight,omitempty" jsonschema:"New weight"`
	Reps      *int     `json:"reps,omitempty" jsonschema:"New reps, clears duration"`
	Duration  *int     `json:"duration,omitempty" jsonschema:"New duration in seconds, clears reps"`
	Rest      *int     `json:"rest,omitempty" jsonschema:"New rest in seconds"`
	Note      *string  `json:"note,omitempty" jsonschema:"New note, empty clears it"`
	Side      *string  `json:"side,omitempty" jsonschema:"Left, Right, or empty to clear"`
}

type deleteSetInput struct {
	ID int64 `json:"id" jsonschema:"Set ID"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type listWorkoutsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type getWorkoutInput struct {
	Ref string `json:"ref" jsonschema:"Workout date, ID, or ID prefix"`
}

type getVolumeInput struct {
	Bucket    string   `json:"bucket,omitempty" jsonschema:"day (default), week or month"`
	From      string   `json:"from,omitempty" jsonschema:"First date included (YYYY-MM-DD)"`
	To        string   `json:"to,omitempty" jsonschema:"Last date included (YYYY-MM-DD)"`
	Exercises []string `json:"exercises,omitempty" jsonschema:"Group by these exercises"`
}

// Tool handlers

func (s *Server) handleListCatalog(ctx context.Context, req *mcp.CallToolRequest, input listCatalogInput) (*mcp.CallToolResult, any, error) {
	entries, err := s.svc.Catalog().ListEntries(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	filtered := make([]*models.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if input.Equipment != "" && !equalFold(e.EquipmentName, input.Equipment) {
			continue
		}
		if input.MuscleGroup != "" && !containsFold(e.MuscleGroups, input.MuscleGroup) {
			continue
		}
		filtered = append(filtered, e)
	}

	if len(filtered) == 0 {
		return nil, map[string]interface{}{"message": "No exercises found."}, nil
	}

	return nil, map[string]interface{}{"entries": filtered, "count": len(filtered)}, nil
}

func (s *Server) handleGetCatalogEntry(ctx context.Context, req *mcp.CallToolRequest, input getCatalogEntryInput) (*mcp.CallToolResult, any, error) {
	entry, err := s.svc.ResolveEntry(ctx, input.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get exercise %q: %w", input.Name, err)
	}

	return nil, entry, nil
}

func (s *Server) handleAddCatalogEntry(ctx context.Context, req *mcp.CallToolRequest, input addCatalogEntryInput) (*mcp.CallToolResult, entryOutput, error) {
	params := models.CatalogEntryParams{
		Name:         input.Name,
		Equipment:    input.Equipment,
		Weight:       input.Weight,
		MeasuredBy:   models.MeasuredBy(input.MeasuredBy),
		Laterality:   models.Laterality(input.Sides),
		MuscleGroups: input.MuscleGroups,
	}
	if input.Weight == 0 {
		if e, err := s.svc.Catalog().GetEquipment(ctx, input.Equipment); err == nil {
			params.Weight = e.DefaultWeight
		}
	}

	entry, err := s.svc.Catalog().AddEntry(ctx, params)
	if err != nil {
		return nil, entryOutput{}, fmt.Errorf("failed to add exercise: %w", err)
	}

	return nil, entryOutput{
		ID:      entry.ID,
		Name:    entry.Name,
		Message: fmt.Sprintf("Added %s (%s, %s)", entry.Name, entry.EquipmentName, entry.MeasuredBy),
	}, nil
}

func (s *Server) handleLogSets(ctx context.Context, req *mcp.CallToolRequest, input logSetsInput) (*mcp.CallToolResult, logSetsOutput, error) {
	date := input.Date
	if date == "" {
		date = models.Today()
	}

	sets := make([]tracker.SetInput, 0, len(input.Sets))
	for _, in := range input.Sets {
		sets = append(sets, tracker.SetInput{
			Weight:   in.Weight,
			Reps:     in.Reps,
			Duration: in.Duration,
			Rest:     in.Rest,
			Note:     in.Note,
			Side:     in.Side,
		})
	}

	res, err := s.svc.LogSets(ctx, tracker.LogRequest{Date: date, Exercise: input.Exercise, Sets: sets})
	if err != nil {
		return nil, logSetsOutput{}, fmt.Errorf("failed to log sets: %w", err)
	}

	ids := make([]int64, 0, len(res.Sets))
	for _, set := range res.Sets {
		ids = append(ids, set.ID)
	}

	return nil, logSetsOutput{
		WorkoutID:      res.Workout.ShortID(),
		Date:           res.Workout.Date,
		Exercise:       res.Entry.Name,
		SequenceNumber: res.SequenceNumber,
		SetIDs:         ids,
		Message:        fmt.Sprintf("Logged %d set(s) of %s on %s", len(ids), res.Entry.Name, res.Workout.Label()),
	}, nil
}

func (s *Server) handleListSets(ctx context.Context, req *mcp.CallToolRequest, input listSetsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	q := tracker.HistoryQuery{Limit: input.Limit}
	if input.Date != "" {
		q.Dates = []string{input.Date}
	}
	if input.Exercise != "" {
		q.Exercises = []string{input.Exercise}
	}

	sets, err := s.svc.History(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sets: %w", err)
	}

	if len(sets) == 0 {
		return nil, map[string]interface{}{"message": "No sets found."}, nil
	}

	return nil, map[string]interface{}{"sets": sets, "count": len(sets)}, nil
}

func (s *Server) handleUpdateSet(ctx context.Context, req *mcp.CallToolRequest, input updateSetInput) (*mcp.CallToolResult, simpleOutput, error) {
	_, err := s.svc.EditSet(ctx, input.ID, tracker.SetPatch{
		Exercise:  input.Exercise,
		SetNumber: input.SetNumber,
		Weight:    input.Weight,
		Reps:      input.Reps,
		Duration:  input.Duration,
		Rest:      input.Rest,
		Note:      input.Note,
		Side:      input.Side,
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to update set: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Updated set: %d", input.ID),
	}, nil
}

func (s *Server) handleDeleteSet(ctx context.Context, req *mcp.CallToolRequest, input deleteSetInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.svc.DeleteSet(ctx, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete set: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted set: %d", input.ID),
	}, nil
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	workouts, err := s.svc.Workouts(ctx, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	if len(workouts) == 0 {
		return nil, map[string]interface{}{"message": "No workouts found."}, nil
	}

	return nil, map[string]interface{}{"workouts": workouts, "count": len(workouts)}, nil
}

func (s *Server) handleGetWorkout(ctx context.Context, req *mcp.CallToolRequest, input getWorkoutInput) (*mcp.CallToolResult, any, error) {
	w, err := s.svc.Workout(ctx, input.Ref)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get workout %q: %w", input.Ref, err)
	}

	return nil, w, nil
}

func (s *Server) handleGetVolume(ctx context.Context, req *mcp.CallToolRequest, input getVolumeInput) (*mcp.CallToolResult, any, error) {
	bucket, err := models.ParseVolumeBucket(input.Bucket)
	if err != nil {
		return nil, nil, err
	}

	points, err := s.svc.Volume(ctx, tracker.VolumeQuery{
		Bucket:    bucket,
		From:      input.From,
		To:        input.To,
		Exercises: input.Exercises,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get volume: %w", err)
	}

	if len(points) == 0 {
		return nil, map[string]interface{}{"message": "No volume recorded."}, nil
	}

	return nil, map[string]interface{}{"bucket": bucket, "points": points}, nil
}
