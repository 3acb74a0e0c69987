package handler

import "github.com/maxviazov/movedex/internal/model"

// APIV1Prefix is the canonical base path for public HTTP API v1.
const APIV1Prefix = "/api/v1"

// kindPath is the route segment for a resource kind; it mirrors the upstream path.
func kindPath(kind model.Kind) string { return "/" + string(kind) }
