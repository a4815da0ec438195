package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"garmin-fitness-assistant/internal/advisor"
	"garmin-fitness-assistant/internal/store"
)

func intPtr(v int) *int { return &v }

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func seedUser(t *testing.T, st *store.Store, userID string) {
	t.Helper()

	now := time.Now()
	rs := &store.RecordSet{}
	for i := 10; i >= 1; i-- {
		day := now.AddDate(0, 0, -i)
		rs.Predictions = append(rs.Predictions, store.RacePrediction{
			Date:   day,
			Time5K: intPtr(1500 - (10-i)*10),
		})
		rs.Statuses = append(rs.Statuses, store.StatusRecord{
			Date:   day,
			Status: store.StatusProductive,
		})
	}
	if _, err := st.Ingest(context.Background(), userID, rs); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
}

func TestHandleUpload(t *testing.T) {
	st := openStore(t)
	handler := NewUploadHandler(st)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("user_id", "alice")

	fw, err := form.CreateFormFile("files", "RunRacePredictions_20260110_20260117_1.json")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	fw.Write([]byte(`[{"calendarDate":"2026-01-10","raceTime5K":1500},{"calendarDate":"bad","raceTime5K":1}]`))

	fw, err = form.CreateFormFile("files", "HeartRateZones_1.json")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	fw.Write([]byte(`[]`))

	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.HandleUpload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Files) != 2 {
		t.Fatalf("Expected 2 file results, got %d", len(resp.Files))
	}

	valid := resp.Files[0]
	if valid.Error != "" {
		t.Errorf("Expected no error for valid file, got %q", valid.Error)
	}
	if valid.Inserted != 1 || valid.Skipped != 1 {
		t.Errorf("Expected 1 inserted and 1 skipped, got %d/%d", valid.Inserted, valid.Skipped)
	}
	if valid.BatchID == "" {
		t.Error("Expected batch id for successful ingestion")
	}

	if resp.Files[1].Error == "" {
		t.Error("Expected error for unrecognized filename")
	}

	// The failed file must not block the valid one
	predictions, err := st.QueryPredictions(context.Background(), "alice", store.Window{})
	if err != nil {
		t.Fatalf("Failed to query predictions: %v", err)
	}
	if len(predictions) != 1 {
		t.Errorf("Expected 1 stored prediction, got %d", len(predictions))
	}
}

func TestHandleUploadValidation(t *testing.T) {
	handler := NewUploadHandler(openStore(t))

	t.Run("MethodNotAllowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleUpload(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rec.Code)
		}
	})

	t.Run("MissingUserID", func(t *testing.T) {
		var buf bytes.Buffer
		form := multipart.NewWriter(&buf)
		fw, _ := form.CreateFormFile("files", "TrainingHistory_1.json")
		fw.Write([]byte(`[]`))
		form.Close()

		req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
		req.Header.Set("Content-Type", form.FormDataContentType())
		rec := httptest.NewRecorder()

		handler.HandleUpload(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})
}

func TestHandleRaceTimes(t *testing.T) {
	st := openStore(t)
	seedUser(t, st, "alice")
	handler := NewAnalyzeHandler(st)

	rec := httptest.NewRecorder()
	handler.HandleRaceTimes(rec, httptest.NewRequest(http.MethodGet, "/analyze/race-times?user_id=alice", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp raceTimesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Trend.Dates) != 10 {
		t.Errorf("Expected 10 trend points, got %d", len(resp.Trend.Dates))
	}
	if resp.Improvement == nil || !resp.Improvement.Improved {
		t.Errorf("Expected improving trend, got %+v", resp.Improvement)
	}
	if resp.InsufficientData {
		t.Error("Expected sufficient data")
	}
	if resp.LatestPredictions[store.Distance5K] == "" {
		t.Error("Expected a latest 5K prediction")
	}
}

func TestHandleRaceTimesEdgeCases(t *testing.T) {
	st := openStore(t)
	handler := NewAnalyzeHandler(st)

	t.Run("NoData", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleRaceTimes(rec, httptest.NewRequest(http.MethodGet, "/analyze/race-times?user_id=nobody", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})

	t.Run("MissingUserID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleRaceTimes(rec, httptest.NewRequest(http.MethodGet, "/analyze/race-times", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("InvalidDistance", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleRaceTimes(rec, httptest.NewRequest(http.MethodGet, "/analyze/race-times?user_id=alice&distance=50K", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("SingleSnapshotInsufficientData", func(t *testing.T) {
		rs := &store.RecordSet{Predictions: []store.RacePrediction{
			{Date: time.Now().AddDate(0, 0, -1), Time5K: intPtr(1500)},
		}}
		if _, err := st.Ingest(context.Background(), "solo", rs); err != nil {
			t.Fatalf("Failed to seed: %v", err)
		}

		rec := httptest.NewRecorder()
		handler.HandleRaceTimes(rec, httptest.NewRequest(http.MethodGet, "/analyze/race-times?user_id=solo", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}

		var resp raceTimesResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !resp.InsufficientData {
			t.Error("Expected insufficient_data for a single snapshot")
		}
		if resp.Improvement != nil {
			t.Error("Expected no improvement result")
		}
	})
}

func TestHandleTrainingStatus(t *testing.T) {
	st := openStore(t)
	seedUser(t, st, "alice")
	handler := NewAnalyzeHandler(st)

	rec := httptest.NewRecorder()
	handler.HandleTrainingStatus(rec, httptest.NewRequest(http.MethodGet, "/analyze/training-status?user_id=alice", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp trainingStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.CurrentStatus != store.StatusProductive {
		t.Errorf("Expected Productive, got %s", resp.CurrentStatus)
	}
	if resp.StatusCounts[store.StatusProductive] != 10 {
		t.Errorf("Expected 10 productive days, got %d", resp.StatusCounts[store.StatusProductive])
	}
	if resp.StatusColor != "green" {
		t.Errorf("Expected green display color for Productive, got %s", resp.StatusColor)
	}
	if len(resp.DailyStatus) != 10 {
		t.Errorf("Expected 10 daily entries, got %d", len(resp.DailyStatus))
	}

	t.Run("NoData", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleTrainingStatus(rec, httptest.NewRequest(http.MethodGet, "/analyze/training-status?user_id=nobody", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})
}

func TestHandleRecommendations(t *testing.T) {
	st := openStore(t)
	seedUser(t, st, "alice")
	handler := NewRecommendHandler(advisor.New(st, nil))

	rec := httptest.NewRecorder()
	handler.HandleRecommendations(rec, httptest.NewRequest(http.MethodGet, "/recommendations?user_id=alice", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp recommendationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.WorkoutSuggestions) == 0 {
		t.Fatal("Expected workout suggestions")
	}
	if resp.Recovery != nil || resp.Progress != nil {
		t.Error("Expected no recovery or progress without augment")
	}

	t.Run("Augmented", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleRecommendations(rec, httptest.NewRequest(http.MethodGet, "/recommendations?user_id=alice&augment=true", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}

		var resp recommendationsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Recovery == nil {
			t.Error("Expected recovery advice with augment")
		}
		if resp.Progress == nil {
			t.Error("Expected progress report with augment")
		}
	})
}

func TestHandleTrainingPlan(t *testing.T) {
	handler := NewRecommendHandler(advisor.New(openStore(t), nil))

	body := `{"goal_distance":"10K","target_time":"50:00","weeks":8,"sessions_per_week":4}`
	rec := httptest.NewRecorder()
	handler.HandleTrainingPlan(rec, httptest.NewRequest(http.MethodPost, "/training-plan", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var plan advisor.TrainingPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("Failed to decode plan: %v", err)
	}
	if len(plan.Sessions) != 32 {
		t.Errorf("Expected 32 sessions, got %d", len(plan.Sessions))
	}
	if plan.TargetTimeSeconds != 3000 {
		t.Errorf("Expected target 3000s, got %d", plan.TargetTimeSeconds)
	}

	badRequests := map[string]string{
		"UnknownDistance": `{"goal_distance":"50K","target_time":"50:00","weeks":8,"sessions_per_week":4}`,
		"BadTargetTime":   `{"goal_distance":"10K","target_time":"fast","weeks":8,"sessions_per_week":4}`,
		"ZeroWeeks":       `{"goal_distance":"10K","target_time":"50:00","weeks":0,"sessions_per_week":4}`,
		"NotJSON":         `not json`,
	}
	for name, body := range badRequests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.HandleTrainingPlan(rec, httptest.NewRequest(http.MethodPost, "/training-plan", strings.NewReader(body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestHandleDataList(t *testing.T) {
	st := openStore(t)
	seedUser(t, st, "alice")
	handler := NewDataHandler(st)

	rec := httptest.NewRecorder()
	handler.HandleDataList(rec, httptest.NewRequest(http.MethodGet, "/data/list?user_id=alice", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var avail store.Availability
	if err := json.Unmarshal(rec.Body.Bytes(), &avail); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !avail[store.KindRacePredictions].Available {
		t.Error("Expected race predictions available")
	}
	if avail[store.KindActivities].Available {
		t.Error("Expected activities unavailable")
	}

	t.Run("EmptyUser", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleDataList(rec, httptest.NewRequest(http.MethodGet, "/data/list?user_id=nobody", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200 for empty user, got %d", rec.Code)
		}
	})
}
