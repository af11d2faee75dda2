package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAssignmentHandlerDrawInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAssignmentHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classes/class-1/projects/proj-1/draw", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "classId", Value: "class-1"}, {Key: "projectId", Value: "proj-1"}}

	handler.Draw(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerCapacityRejectsNonIntegerSize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAssignmentHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/classes/class-1/draw-capacity?groupSize=three", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "classId", Value: "class-1"}}

	handler.Capacity(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreHandlerRecordInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScoreHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/scores", bytes.NewReader([]byte(`{"student_id":"stu-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Record(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
