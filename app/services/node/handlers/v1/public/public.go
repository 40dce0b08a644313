// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ardanlabs/powchain/business/sys/metrics"
	v1 "github.com/ardanlabs/powchain/business/web/v1"
	"github.com/ardanlabs/powchain/foundation/blockchain/archive"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/events"
	"github.com/ardanlabs/powchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxUploadBytes caps the size of an uploaded chain file.
const maxUploadBytes = 16 << 20

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.Genesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Chain returns the full block sequence and a validation verdict over it.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, verdict := h.State.QueryChain()

	records := make([]database.ChainRecord, len(blocks))
	for i, block := range blocks {
		records[i] = block.Record()
	}

	resp := chainResponse{
		Height:  len(records),
		Chain:   records,
		Verdict: verdict,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine triggers one mining round and returns the new block, a summary of
// its transactions, and a refreshed verdict.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNonceExhausted) {
			return v1.NewRequestError(err, http.StatusConflict)
		}
		return err
	}

	metrics.AddBlocks(ctx)
	h.Log.Infow("mined block", "traceid", v.TraceID, "block", block.Hash, "index", block.Header.Index)

	resp := mineResponse{
		Block:        block.Record(),
		Transactions: summarize(h.State.Genesis(), block),
		Verdict:      h.State.Validate(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Export serializes the chain in the requested format.
func (h Handlers) Export(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	format, err := archive.ParseFormat(web.Param(r, "format"))
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	data, err := h.State.ExportChain(format)
	if err != nil {
		return err
	}

	contentType := "text/plain; charset=utf-8"
	switch format {
	case archive.FormatJSON:
		contentType = "application/json"
	case archive.FormatYAML:
		contentType = "application/yaml"
	}

	return web.RespondText(ctx, w, data, contentType, http.StatusOK)
}

// Validate accepts an uploaded chain file in any supported format,
// reconstructs the records, and returns the validator's verdict. The
// transient upload artifact is removed whatever the outcome.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return v1.NewRequestError(fmt.Errorf("parsing upload: %w", err), http.StatusBadRequest)
	}

	file, _, err := r.FormFile("chain")
	if err != nil {
		return v1.NewRequestError(fmt.Errorf("missing chain file: %w", err), http.StatusBadRequest)
	}
	defer file.Close()

	// Spool the upload to a temp file and clean it up regardless of
	// outcome.
	tmp, err := os.CreateTemp("", "powchain-upload-*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, io.LimitReader(file, maxUploadBytes)); err != nil {
		return err
	}

	content, err := os.ReadFile(tmp.Name())
	if err != nil {
		return err
	}

	report, err := h.State.ValidateImport(content)
	if err != nil {
		if errors.Is(err, archive.ErrMalformedInput) {
			return v1.NewRequestError(err, http.StatusUnprocessableEntity)
		}
		return err
	}

	resp := validateResponse{
		Difficulty: report.Difficulty,
		Format:     string(report.Format),
		Chain:      report.Chain,
		Verdict:    report.Verdict,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Unspent returns a snapshot of the currently unspent outputs.
func (h Handlers) Unspent(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryUnspent(), http.StatusOK)
}
