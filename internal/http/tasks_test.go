package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/synthage/internal/tasks"
)

type fakeTaskQueue struct {
	enqueued   []backlite.Task
	status     backlite.TaskStatus
	enqueueErr error
}

func (f *fakeTaskQueue) Enqueue(ctx context.Context, ts ...backlite.Task) ([]string, error) {
	if f.enqueueErr != nil {
		return nil, f.enqueueErr
	}
	f.enqueued = append(f.enqueued, ts...)
	ids := make([]string, len(ts))
	for i := range ts {
		ids[i] = "task-" + string(rune('a'+i))
	}
	return ids, nil
}

func (f *fakeTaskQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return f.status, nil
}

func setupTasksRouter(queue TaskQueue) *gin.Engine {
	router := gin.New()
	tc := NewTasksController(queue, 14)
	router.GET("/api/tasks/types", tc.ListTaskTypes)
	router.GET("/api/tasks/:id", tc.GetTaskStatus)
	router.POST("/api/tasks/:type/run", tc.RunTask)
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestListTaskTypes(t *testing.T) {
	rr := serve(setupTasksRouter(&fakeTaskQueue{}), http.MethodGet, "/api/tasks/types")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), tasks.TaskCleanupArtifacts)
	assert.Contains(t, rr.Body.String(), tasks.TaskCleanupAuditEvents)
}

func TestRunTask(t *testing.T) {
	queue := &fakeTaskQueue{}
	router := setupTasksRouter(queue)

	rr := serve(router, http.MethodPost, "/api/tasks/"+tasks.TaskCleanupAuditEvents+"/run")
	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "task-a", resp["task_id"])

	require.Len(t, queue.enqueued, 1)
	task, ok := queue.enqueued[0].(tasks.CleanupAuditEventsTask)
	require.True(t, ok)
	assert.Equal(t, 14, task.RetentionDays)

	rr = serve(router, http.MethodPost, "/api/tasks/"+tasks.TaskCleanupArtifacts+"/run")
	assert.Equal(t, http.StatusAccepted, rr.Code)

	rr = serve(router, http.MethodPost, "/api/tasks/rebuild_index/run")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRunTask_EnqueueError(t *testing.T) {
	router := setupTasksRouter(&fakeTaskQueue{enqueueErr: errors.New("queue closed")})

	rr := serve(router, http.MethodPost, "/api/tasks/"+tasks.TaskCleanupArtifacts+"/run")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetTaskStatus(t *testing.T) {
	router := setupTasksRouter(&fakeTaskQueue{status: backlite.TaskStatusSuccess})

	rr := serve(router, http.MethodGet, "/api/tasks/abc")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"abc","status":"success"}`, rr.Body.String())
}

func TestGetTaskStatus_UnknownTask(t *testing.T) {
	router := setupTasksRouter(&fakeTaskQueue{status: backlite.TaskStatusNotFound})

	rr := serve(router, http.MethodGet, "/api/tasks/missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"task not found"}`, rr.Body.String())
}

func TestTaskStatusToString(t *testing.T) {
	assert.Equal(t, "pending", taskStatusToString(backlite.TaskStatusPending))
	assert.Equal(t, "running", taskStatusToString(backlite.TaskStatusRunning))
	assert.Equal(t, "failure", taskStatusToString(backlite.TaskStatusFailure))
	assert.Equal(t, "not_found", taskStatusToString(backlite.TaskStatusNotFound))
}
