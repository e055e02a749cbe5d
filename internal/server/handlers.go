package server

import (
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lapu-lapu-poc/server/internal/model"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
	"github.com/spf13/cast"
)

func (s *Server) health(c *gin.Context) {
	products := 0
	if s.deps.Catalog != nil {
		products = s.deps.Catalog.Len()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
		"version":   Version,
		"phase":     Phase,
		"products":  products,
	})
}

// receiveWebhook always acknowledges so the platform never retries.
func (s *Server) receiveWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		logx.Warn().Err(err).Msg("failed to read webhook body")
	}
	out := s.deps.Webhooks.Handle(c.Request.Context(), raw)
	if !out.Parsed {
		c.JSON(http.StatusOK, gin.H{"success": true, "note": "Event received but validation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "received": out.Classification})
}

func (s *Server) invokeTool(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		logx.Warn().Err(err).Msg("failed to read tool call body")
	}
	result := s.deps.Dispatcher.HandleRaw(c.Request.Context(), raw)
	c.JSON(http.StatusOK, model.ToolResponse{Result: result})
}

func (s *Server) listTools(c *gin.Context) {
	defs, err := s.deps.Dispatcher.Definitions(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tools": defs})
}

// queryLimit reads ?limit=; anything non-positive or unparsable means default.
func queryLimit(c *gin.Context) int {
	return cast.ToInt(c.Query("limit"))
}

func (s *Server) listCallLogs(c *gin.Context) {
	total, logs := s.deps.Calls.Recent(queryLimit(c))
	c.JSON(http.StatusOK, gin.H{"total": total, "showing": len(logs), "logs": logs})
}

func (s *Server) listOrders(c *gin.Context) {
	total, orders := s.deps.Ledger.Orders(queryLimit(c))
	c.JSON(http.StatusOK, gin.H{"total": total, "showing": len(orders), "orders": orders})
}

func (s *Server) listComplaints(c *gin.Context) {
	total, complaints := s.deps.Ledger.Complaints(queryLimit(c))
	c.JSON(http.StatusOK, gin.H{"total": total, "showing": len(complaints), "complaints": complaints})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

// static serves files from StaticDir for unmatched GET requests. Anything the
// file server would not answer with content gets the JSON 404.
func (s *Server) static(c *gin.Context) {
	if s.files == nil || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		notFound(c)
		return
	}
	if !s.servable(path.Clean("/" + c.Request.URL.Path)) {
		notFound(c)
		return
	}
	s.fileServer.ServeHTTP(c.Writer, c.Request)
}

// servable reports whether name is a file, or a directory with an index.html.
func (s *Server) servable(name string) bool {
	f, err := s.files.Open(name)
	if err != nil {
		return false
	}
	info, err := f.Stat()
	f.Close()
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	index, err := s.files.Open(path.Join(name, "index.html"))
	if err != nil {
		return false
	}
	index.Close()
	return true
}
