package controllers

import (
	"net/http"

	"github.com/bildin8/postergram-juice-sub000/api/responses"
	"github.com/bildin8/postergram-juice-sub000/internal/cron"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

// RunSync triggers one transaction-feed sync cycle inline. The watermark and
// the storage-level idempotency make overlap with the scheduled worker
// harmless.
func RunSync(job cron.Job, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := job.Run(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "synced"})
	}
}
