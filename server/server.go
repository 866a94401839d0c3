// Package server exposes the action codecs and validator over HTTP so
// external tooling can check and convert actions without linking the core.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voltgrid/gridenv/grid"
	"github.com/voltgrid/gridenv/types"
)

type ActionServer struct {
	Addr   string
	space  *grid.Space
	server *http.Server
}

func NewActionServer(addr string, space *grid.Space) *ActionServer {
	s := &ActionServer{
		Addr:  addr,
		space: space,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/registry", s.handleRegistry)
	r.POST("/validate", s.handleValidate)
	r.POST("/convert", s.handleConvert)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}

	return s
}

// Handler returns the routing handler, used directly by tests.
func (s *ActionServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *ActionServer) Start() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *ActionServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *ActionServer) handleRegistry(c *gin.Context) {
	reg := s.space.Registry()
	c.JSON(http.StatusOK, gin.H{
		"n_load":          reg.NLoad,
		"n_gen":           reg.NGen,
		"n_storage":       reg.NStorage,
		"n_line":          reg.NLine,
		"dim_topo":        reg.Dim(),
		"vect_size":       grid.VectSize(reg),
		"authorized_keys": s.space.AuthorizedKeys(),
	})
}

func (s *ActionServer) handleValidate(c *gin.Context) {
	dict := make(map[string]any)
	if err := c.ShouldBindJSON(&dict); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}
	a, err := s.space.FromDict(dict)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ambiguous, reason := s.space.Validate(a)
	resp := gin.H{"ambiguous": ambiguous}
	if reason != nil {
		resp["reason"] = reason.Error()
		var ambErr *types.AmbiguousActionError
		if errors.As(reason, &ambErr) {
			resp["kind"] = ambErr.Kind.String()
		}
	}
	c.JSON(http.StatusOK, resp)
}

type convertRequest struct {
	To     string         `json:"to"`
	Action map[string]any `json:"action"`
	Vector []float64      `json:"vector"`
}

func (s *ActionServer) handleConvert(c *gin.Context) {
	req := convertRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}
	var (
		a   *grid.Action
		err error
	)
	switch {
	case req.Action != nil:
		a, err = s.space.FromDict(req.Action)
	case req.Vector != nil:
		a, err = s.space.FromVect(req.Vector)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "either action or vector is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.To {
	case "vector":
		c.JSON(http.StatusOK, gin.H{"vector": a.ToVect()})
	case "dict":
		c.JSON(http.StatusOK, gin.H{"action": a.ToDict()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown target form " + req.To})
	}
}
