package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/insight"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/tests"
)

func Test_aiApi_taskBreakdown(t *testing.T) {
	st, app := setup(t)
	f := createTaskFixtures(t, st)
	path := "/api/ai/task-breakdown"

	studentToken := getToken(t, st, f.student)

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: path, body: []byte(`{"taskId":"` + f.open.ID + `"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errUnauthorized),
		},
		{
			name: "missing task id", method: http.MethodPost, path: path, token: studentToken, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, ErrorResponse{
				Error:   "Validation error",
				Details: []FieldDetail{{Field: "taskId", Message: "this field is required"}},
			}),
		},
		{
			name: "invisible task", method: http.MethodPost, path: path, token: studentToken,
			body:     []byte(`{"taskId":"` + f.other.ID + `"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errTaskNotFound),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("success", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, studentToken, []byte(`{"taskId":"`+f.open.ID+`"}`))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var breakdown insight.Breakdown
		unmarshalData(t, rec, &breakdown)
		require.Len(t, breakdown.Subtasks, 3)
		assert.Equal(t, 15, breakdown.Subtasks[0].EstimatedTime)
		assert.Equal(t, 30, breakdown.Subtasks[1].EstimatedTime)
		assert.Equal(t, 15, breakdown.Subtasks[2].EstimatedTime)
		assert.Equal(t, 60, breakdown.TotalEstimatedTime)
		assert.Contains(t, breakdown.Subtasks[0].Description, f.open.Title)

		insights, err := st.InsightRepo.QueryInsights(context.Background(), f.student.ID, insight.QueryFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, insights, 1)
		assert.Equal(t, insight.TypeTaskBreakdown, insights[0].Type)
		assert.Equal(t, "Task Breakdown: "+f.open.Title, insights[0].Title)
		require.NotNil(t, insights[0].TaskID)
		assert.Equal(t, f.open.ID, *insights[0].TaskID)
		require.NotNil(t, insights[0].ConfidenceScore)
		assert.Equal(t, 0.85, *insights[0].ConfidenceScore)
		assert.Equal(t, "fallback", insights[0].Metadata.Model)
		assert.Equal(t, "1.0", insights[0].Metadata.PromptVersion)
	})
}

func Test_aiApi_progressSummary(t *testing.T) {
	st, app := setup(t)
	f := createTaskFixtures(t, st)

	studentToken := getToken(t, st, f.student)
	for _, pct := range []int{40, 100} {
		_, err := st.TaskSvc.SubmitProgress(context.Background(), task.PrincipalOf(f.student), f.assigned.ID, task.NewProgress{ProgressPercentage: &pct})
		require.NoError(t, err)
	}

	req, rec := newAuthRequest(http.MethodPost, "/api/ai/progress-summary", studentToken)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary insight.Summary
	resp := Response{Data: &summary, Metadata: new(insight.SummaryStats)}
	unmarshalInto(t, rec, &resp)

	// 1 of 2 tasks done (50%), average progress 70%
	assert.Equal(t, 60, summary.OverallScore)
	assert.Equal(t, "stable", summary.ProgressTrend)
	assert.Equal(t, "Good effort! Keep pushing forward and you'll see great results.", summary.MotivationalMessage)
	assert.Len(t, summary.Recommendations, 2)
	assert.Len(t, summary.NextSteps, 3)
	assert.Equal(t, &insight.SummaryStats{TasksAnalyzed: 2, ProgressLogsAnalyzed: 2, PeriodDays: 30}, resp.Metadata)

	insights, err := st.InsightRepo.QueryInsights(context.Background(), f.student.ID, insight.QueryFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, "Weekly Progress Summary", insights[0].Title)
	require.NotNil(t, insights[0].Metadata.DataPoints)
	assert.Equal(t, 2, *insights[0].Metadata.DataPoints)
	assert.Equal(t, 0.90, *insights[0].ConfidenceScore)
}

func Test_aiApi_studySuggestions(t *testing.T) {
	st, app := setup(t)
	f := createTaskFixtures(t, st)

	req, rec := newAuthRequest(http.MethodPost, "/api/ai/study-suggestions", getToken(t, st, f.student))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var suggestions insight.Suggestions
	unmarshalData(t, rec, &suggestions)
	assert.Equal(t, 1.5, suggestions.StudySchedule.RecommendedDailyHours)
	assert.Equal(t, 25, suggestions.StudySchedule.BreakIntervals)
	assert.Len(t, suggestions.Techniques, 3)
	assert.Len(t, suggestions.TimeManagementTips, 7)
}

func Test_aiApi_rateLimit(t *testing.T) {
	conf := core.NewTestConfig()
	conf.AI.RateLimitMax = 2
	st, app := setup(t, conf)

	usr := testutil.CreateUser(t, st.UserRepo, "Stu", "stu@test.cd", "", user.RoleStudent)
	token := getToken(t, st, usr)
	limited := marchallObj(t, ErrorResponse{Error: "Rate limit exceeded. Try again later."})

	for i := 0; i < 2; i++ {
		req, rec := newAuthRequest(http.MethodPost, "/api/ai/study-suggestions", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	tests := []httpTest{
		{
			name: "limit reached", method: http.MethodPost, path: "/api/ai/study-suggestions", token: token,
			wantCode: http.StatusTooManyRequests, wantData: limited,
		},
		{
			name: "still limited", method: http.MethodPost, path: "/api/ai/study-suggestions", token: token,
			wantCode: http.StatusTooManyRequests, wantData: limited,
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("endpoints are counted separately", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/ai/progress-summary", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("listing is not limited", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/ai/insights", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_aiApi_queryInsights(t *testing.T) {
	st, app := setup(t)
	f := createTaskFixtures(t, st)

	studentToken := getToken(t, st, f.student)
	p := task.PrincipalOf(f.student)
	_, err := st.InsightSvc.TaskBreakdown(context.Background(), p, f.assigned.ID)
	require.NoError(t, err)
	_, err = st.InsightSvc.StudySuggestions(context.Background(), p)
	require.NoError(t, err)
	_, err = st.InsightSvc.StudySuggestions(context.Background(), task.PrincipalOf(f.student2))
	require.NoError(t, err)

	tests := []httpTest{
		{
			name: "bad type", path: "/api/ai/insights?type=LOL", token: studentToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, ErrorResponse{
				Error: "Validation error",
				Details: []FieldDetail{{
					Field:   "type",
					Message: "type must be one of TASK_BREAKDOWN, PROGRESS_SUMMARY, STUDY_SUGGESTION or PERFORMANCE_ANALYSIS",
				}},
			}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("own insights, newest first", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/ai/insights", studentToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var insights []insight.Insight
		unmarshalData(t, rec, &insights)
		require.Len(t, insights, 2)
		assert.Equal(t, insight.TypeStudySuggestion, insights[0].Type)
		assert.Equal(t, insight.TypeTaskBreakdown, insights[1].Type)
		for _, ins := range insights {
			assert.Equal(t, f.student.ID, ins.UserID)
		}
	})

	t.Run("type filter", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/ai/insights?type=TASK_BREAKDOWN&limit=5", studentToken)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var insights []insight.Insight
		unmarshalData(t, rec, &insights)
		require.Len(t, insights, 1)
		assert.Equal(t, insight.TypeTaskBreakdown, insights[0].Type)
	})
}
