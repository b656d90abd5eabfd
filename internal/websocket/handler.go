package websocket

import (
	"context"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// HouseholdResolver maps an authenticated request to the caller's household.
type HouseholdResolver func(ctx context.Context, r *http.Request) (string, error)

// HandleWebSocket upgrades the connection and subscribes it to its
// household's change feed. Callers without a household are refused before
// the upgrade.
func HandleWebSocket(hub *Hub, resolve HouseholdResolver, originPatterns []string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID, err := resolve(r.Context(), r)
		if err != nil {
			logger.Debug("websocket refused", "error", err)
			http.Error(w, "no household", http.StatusNotFound)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		NewClient(hub, conn, householdID).Run(r.Context())
	}
}
