package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Djamyahia/pharmarecon/api/model"
	"github.com/Djamyahia/pharmarecon/internal/apierror"
)

// CreateSession classifies an uploaded batch of rows and opens a
// reconciliation session.
func (a Api) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for i, row := range req.Rows {
		if err := row.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "row_index": i})
			return
		}
	}

	session, err := a.engine.StartReconciliation(c.Request.Context(), req.ToImportRows())
	if err != nil {
		logrus.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start reconciliation"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.SessionID,
		"outcomes":   session.Outcomes(),
		"pending":    session.PendingIndices(),
	})
}

// GetSession returns the current outcomes of a session.
func (a Api) GetSession(c *gin.Context) {
	session, ok := a.engine.GetSession(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": session.SessionID,
		"outcomes":   session.Outcomes(),
		"pending":    session.PendingIndices(),
		"complete":   session.IsComplete(),
	})
}

// GetPendingRows returns only the rows still awaiting a decision, with their
// ranked suggestions.
func (a Api) GetPendingRows(c *gin.Context) {
	session, ok := a.engine.GetSession(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	outcomes := session.Outcomes()
	pending := session.PendingIndices()
	result := make([]gin.H, 0, len(pending))
	for _, i := range pending {
		result = append(result, gin.H{
			"row_index":  i,
			"row":        outcomes[i].Row,
			"candidates": outcomes[i].Candidates,
		})
	}

	c.JSON(http.StatusOK, gin.H{"session_id": session.SessionID, "pending": result})
}

// ResolveRow converts one ambiguous row into a matched row bound to the
// chosen catalog entry.
func (a Api) ResolveRow(c *gin.Context) {
	var req model.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := a.engine.ResolveRow(c.Request.Context(), c.Param("id"), *req.RowIndex, req.EntryID)
	if err != nil {
		apiErr := apierror.FromEngineError(err)
		c.JSON(apierror.MapErrorToHTTPStatus(apiErr), gin.H{"error": apiErr.Message, "code": apiErr.Code})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Row resolved"})
}

// ExportMatched persists the currently-matched rows to the inventory store.
// Safe to call repeatedly; each call exports only rows matched since the
// previous export.
func (a Api) ExportMatched(c *gin.Context) {
	rows, err := a.engine.ExportMatched(c.Request.Context(), c.Param("id"))
	if err != nil {
		logrus.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export matched rows"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exported": len(rows), "rows": rows})
}

// AbandonSession discards a session without resolving the remaining rows.
func (a Api) AbandonSession(c *gin.Context) {
	if err := a.engine.AbandonSession(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session abandoned"})
}
