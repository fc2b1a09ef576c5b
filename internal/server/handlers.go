package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mveldman/jobmatch/internal/export"
	"github.com/mveldman/jobmatch/internal/pipeline"
	"github.com/mveldman/jobmatch/internal/posting"
)

// Runner executes one matching pass for a search signal.
type Runner interface {
	Run(ctx context.Context, signal *pipeline.Signal) (*posting.Postings, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// ExportRequest is the body accepted by the CSV export endpoint.
type ExportRequest struct {
	Jobs []*posting.Posting `json:"jobs"`
}

// Search runs the matching pipeline for the posted search signal and
// returns the final postings in arrival order.
//
// Total provider failure is not an error: the client gets an empty list
// with HTTP 200, matching the degraded-run semantics of the pipeline.
func (s *Server) Search(c *gin.Context) {
	var signal pipeline.Signal
	if err := c.ShouldBindJSON(&signal); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	results, err := s.pipeline.Run(c.Request.Context(), &signal)
	if err != nil {
		s.logger.Error("pipeline run failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "search failed"})
		return
	}

	items := results.Items
	if items == nil {
		items = []*posting.Posting{}
	}

	c.JSON(http.StatusOK, items)
}

// ExportCSV renders a posted result list as a CSV attachment. Pure data
// formatting; the pipeline is not involved.
func (s *Server) ExportCSV(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if len(req.Jobs) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "no jobs to export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="found_jobs.csv"`)
	c.Header("Content-Type", "text/csv")

	if err := export.WriteCSV(c.Writer, &posting.Postings{Items: req.Jobs}); err != nil {
		s.logger.Error("csv export failed", zap.Error(err))
	}
}
