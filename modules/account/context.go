package account

import (
	"context"

	"github.com/dmitrymomot/anilink/svc/workspace"
)

type workspaceContextKey struct{}

func withWorkspace(ctx context.Context, ws *workspace.Workspace) context.Context {
	return context.WithValue(ctx, workspaceContextKey{}, ws)
}

// WorkspaceFromContext returns the request's Workspace, or nil outside
// the workspace middleware.
func WorkspaceFromContext(ctx context.Context) *workspace.Workspace {
	ws, _ := ctx.Value(workspaceContextKey{}).(*workspace.Workspace)
	return ws
}
