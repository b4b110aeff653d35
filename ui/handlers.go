package ui

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"trialdash/adapters/tabular"
	"trialdash/domain/chart"
	"trialdash/domain/core"
	"trialdash/domain/dataset"
	domain "trialdash/domain/stats"
	"trialdash/internal/analysis"
	procdata "trialdash/internal/dataset"
	"trialdash/internal/errors"
	"trialdash/internal/metrics"
	"trialdash/internal/report"
	"trialdash/internal/validation"
	"trialdash/internal/visualization"
	"trialdash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// writeError maps an error to its HTTP status and the JSON error envelope
func (s *Server) writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	message := errors.Message(err)

	switch {
	case code == errors.CodeNoDataset:
		status = http.StatusNotFound
	case code == errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.IsInputError(err), errors.IsAnalysisError(err):
		status = http.StatusUnprocessableEntity
	default:
		s.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		code = errors.CodeInternalError
		message = "internal error"
	}

	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// readUpload parses the multipart "file" field into a dataset
func (s *Server) readUpload(c *gin.Context) (*dataset.Dataset, error) {
	limit := s.config.Upload.MaxBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.InvalidInput(fmt.Sprintf("upload exceeds %d bytes", limit))
		}
		return nil, errors.InvalidInput("multipart field \"file\" is required")
	}

	data, err := readPart(header)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to read upload: %v", err))
	}

	opts := tabular.DefaultReadOptions()
	opts.Name = header.Filename
	opts.DateColumns = tabular.ParseDateColumns(c.PostForm("date_columns"))
	if sheet := c.PostForm("sheet"); sheet != "" {
		opts.Sheet = sheet
	}

	if tabular.IsSpreadsheet(header.Filename) {
		return tabular.ReadXLSX(bytes.NewReader(data), opts)
	}
	return tabular.ReadCSV(bytes.NewReader(data), opts)
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleValidate(c *gin.Context) {
	ds, err := s.readUpload(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	ok, message := validation.Validate(ds)
	c.JSON(http.StatusOK, gin.H{
		"ok":      ok,
		"message": message,
		"rows":    ds.Rows(),
		"columns": ds.Schema(),
	})
}

func (s *Server) handleLoad(c *gin.Context) {
	ds, err := s.readUpload(c)
	if err != nil {
		metrics.ObserveLoad(errors.GetCode(err))
		s.writeError(c, err)
		return
	}

	// the first successful load stores the session and issues its cookie
	sess := middleware.Session(c)
	id := core.NewSessionID()
	if sess != nil {
		id = sess.ID
	}
	loaded, err := s.store.Load(id, ds)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if sess == nil {
		middleware.SetSessionCookie(c, loaded.ID, s.config.Session.TTL)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  validation.SuccessMessage,
		"overview": procdata.Overview(loaded.Dataset, loaded.Summary, s.config.Upload.PreviewRows),
	})
}

func (s *Server) handleOverview(c *gin.Context) {
	sess := middleware.Session(c)
	if !sess.HasDataset() {
		s.writeError(c, errors.NoDataset())
		return
	}
	c.JSON(http.StatusOK, procdata.Overview(sess.Dataset, sess.Summary, s.config.Upload.PreviewRows))
}

func (s *Server) handleClear(c *gin.Context) {
	sess := middleware.Session(c)
	if sess == nil {
		c.JSON(http.StatusOK, gin.H{"cleared": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": s.store.Clear(sess.ID)})
}

func (s *Server) handleSummary(c *gin.Context) {
	sess := middleware.Session(c)
	if !sess.HasDataset() {
		s.writeError(c, errors.NoDataset())
		return
	}
	c.JSON(http.StatusOK, sess.Summary)
}

func (s *Server) handleAnalysisKinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": domain.Kinds})
}

func (s *Server) handleAnalysis(c *gin.Context) {
	sess := middleware.Session(c)
	var req domain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.InvalidInput(fmt.Sprintf("malformed analysis request: %v", err)))
		return
	}
	if !sess.HasDataset() {
		s.writeError(c, errors.NoDataset())
		return
	}

	start := time.Now()
	result, err := analysis.Run(sess.Dataset, req)
	outcome := "ok"
	if err != nil {
		outcome = errors.GetCode(err)
	}
	metrics.ObserveAnalysis(string(req.Kind), outcome, time.Since(start))
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Debug("session %s ran %s in %s", sess.ID, req.Kind, time.Since(start))
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleChartKinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": chart.Kinds})
}

// buildChart decodes a chart request and builds its spec against the session dataset
func (s *Server) buildChart(c *gin.Context) (*chart.Spec, bool) {
	sess := middleware.Session(c)
	var req chart.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.InvalidInput(fmt.Sprintf("malformed chart request: %v", err)))
		return nil, false
	}
	if !sess.HasDataset() {
		s.writeError(c, errors.NoDataset())
		return nil, false
	}
	spec, err := visualization.Build(sess.Dataset, req)
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return spec, true
}

func (s *Server) handleChart(c *gin.Context) {
	spec, ok := s.buildChart(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, spec)
}

func (s *Server) handleChartPNG(c *gin.Context) {
	width, err := dimension(c, "width", visualization.DefaultWidth)
	if err != nil {
		s.writeError(c, err)
		return
	}
	height, err := dimension(c, "height", visualization.DefaultHeight)
	if err != nil {
		s.writeError(c, err)
		return
	}
	spec, ok := s.buildChart(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := visualization.RenderPNG(spec, width, height, &buf); err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// dimension reads a positive pixel size from the query string
func dimension(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > 4096 {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be an integer between 1 and 4096", name))
	}
	return v, nil
}

func (s *Server) handleReport(c *gin.Context) {
	sess := middleware.Session(c)
	if !sess.HasDataset() {
		s.writeError(c, errors.NoDataset())
		return
	}
	ov := procdata.Overview(sess.Dataset, sess.Summary, s.config.Upload.PreviewRows)

	switch format := c.DefaultQuery("format", "md"); format {
	case "md", "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(sess.Summary, ov)))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(sess.Summary, ov))
	default:
		s.writeError(c, errors.InvalidInput(fmt.Sprintf("unknown report format %q", format)))
	}
}
