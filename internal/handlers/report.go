package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/internal/services"
	"github.com/alimgiray/contribrank/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Contributors returns the current ranked contributors of a period
func (h *ReportHandler) Contributors(c *gin.Context) {
	period, ok := periodParam(c)
	if !ok {
		return
	}

	records, source, err := h.reports.Contributors(period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":       period,
		"source":       source,
		"count":        len(records),
		"contributors": records,
	})
}

// Explain returns the score breakdown of one contributor in a period
func (h *ReportHandler) Explain(c *gin.Context) {
	period, ok := periodParam(c)
	if !ok {
		return
	}

	explanation, err := h.reports.Explain(period, c.Param("login"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, explanation)
}

// Runs lists recent pipeline runs of a period
func (h *ReportHandler) Runs(c *gin.Context) {
	period, ok := periodParam(c)
	if !ok {
		return
	}

	runs, err := h.reports.Runs(period, limitParam(c, 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "runs": runs})
}

// History returns the recorded scores of a contributor
func (h *ReportHandler) History(c *gin.Context) {
	login := c.Param("login")

	scores, err := h.reports.History(login, limitParam(c, 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributor": login, "history": scores})
}

func periodParam(c *gin.Context) (models.Period, bool) {
	period, err := models.ParsePeriod(c.Param("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return period, true
}

func limitParam(c *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	logger.Component("api").WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
