package daemon

import (
	"context"
	"errors"
	"os"
	"time"

	"mediagate/internal/history"
	"mediagate/internal/ipc"
	"mediagate/internal/preflight"
	"mediagate/internal/session"
)

var errNotRunning = errors.New("daemon not running")

// Status implements ipc.Controller.
func (d *Daemon) Status(ctx context.Context) (ipc.StatusResponse, error) {
	d.mu.Lock()
	started := d.started
	transport := d.transport
	ledger := d.ledger
	sessions := d.sessions
	d.mu.Unlock()
	if !started {
		return ipc.StatusResponse{}, errNotRunning
	}

	status := ipc.StatusResponse{
		PID:               os.Getpid(),
		ConnectorAttached: transport.Connected(),
		TransportSocket:   d.cfg.Paths.TransportSocket,
		HistoryDBPath:     ledger.Path(),
		ActiveSessions:    len(sessions.ActiveUsers()),
	}
	counts, err := ledger.Tally(ctx)
	if err != nil {
		return ipc.StatusResponse{}, err
	}
	status.JobsTotal = counts.Total
	status.JobsDone = counts.Done
	status.JobsFailed = counts.Failed

	for _, result := range preflight.RunAll(d.cfg) {
		status.Checks = append(status.Checks, ipc.CheckResult{
			Name:   result.Name,
			Passed: result.Passed,
			Detail: result.Detail,
		})
	}
	return status, nil
}

// History implements ipc.Controller.
func (d *Daemon) History(ctx context.Context, userID int64, limit int) ([]ipc.HistoryRecord, error) {
	d.mu.Lock()
	started := d.started
	ledger := d.ledger
	d.mu.Unlock()
	if !started {
		return nil, errNotRunning
	}

	records, err := ledger.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ipc.HistoryRecord, 0, len(records))
	for _, record := range records {
		out = append(out, ipc.HistoryRecord{
			ID:         record.ID,
			UserID:     record.UserID,
			Flow:       string(record.Flow),
			Action:     record.Action,
			Subject:    record.Subject,
			Outcome:    string(record.Outcome),
			Detail:     record.Detail,
			DurationMS: record.DurationMS,
			CreatedAt:  record.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// Sessions implements ipc.Controller.
func (d *Daemon) Sessions(context.Context) ([]ipc.SessionInfo, error) {
	d.mu.Lock()
	started := d.started
	sessions := d.sessions
	d.mu.Unlock()
	if !started {
		return nil, errNotRunning
	}

	var infos []ipc.SessionInfo
	for _, snap := range sessions.ActiveUsers() {
		info := ipc.SessionInfo{UserID: snap.UserID, Kind: string(snap.Kind)}
		switch snap.Kind {
		case session.HasPendingUpload:
			info.Stage = string(snap.Upload.Stage)
			info.Subject = snap.Upload.FileName
			info.CreatedAt = snap.Upload.CreatedAt.Format(time.RFC3339)
		case session.HasPendingDownload:
			info.Stage = string(snap.Download.Stage)
			info.Subject = snap.Download.URL
			info.CreatedAt = snap.Download.CreatedAt.Format(time.RFC3339)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Sweep implements ipc.Controller.
func (d *Daemon) Sweep(context.Context) (ipc.SweepResponse, error) {
	d.mu.Lock()
	started := d.started
	sweeper := d.sweeper
	d.mu.Unlock()
	if !started {
		return ipc.SweepResponse{}, errNotRunning
	}

	removed, err := sweeper.SweepNow()
	response := ipc.SweepResponse{Removed: removed}
	if err != nil {
		response.Error = err.Error()
	}
	return response, nil
}

// Ledger exposes the history store to in-process callers.
func (d *Daemon) Ledger() *history.Store {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ledger
}

var _ ipc.Controller = (*Daemon)(nil)
