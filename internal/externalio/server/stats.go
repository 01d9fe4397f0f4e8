package server

import (
	"context"
	"net/http"
)

// Returns the collector statistics object
func handleStats(baseCtx context.Context, stats StatsReader, serverResponder http.ResponseWriter) {
	jResp(baseCtx, serverResponder, stats())
}
