package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func formatRootsResult(r RootsResult) string {
	return fmt.Sprintf("roots=%s work_root=%s", strings.Join(r.Roots, ","), r.WorkRoot)
}

func (srv *Server) handleRoots() mcp.StructuredToolHandlerFunc[RootsArgs, RootsResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args RootsArgs) (RootsResult, error) {
		srv.log.Debug().Msg("-> fs_roots")
		res := RootsResult{
			Roots:    srv.bounds.Roots(),
			WorkRoot: srv.bounds.WorkRoot(),
		}
		srv.log.Debug().Int("roots", len(res.Roots)).Msg("<- fs_roots ok")
		return res, nil
	}
}
