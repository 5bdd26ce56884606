package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/crashdeck/crash-data-service/internal/adapter/csvio"
	"github.com/crashdeck/crash-data-service/internal/aggregate"
	"github.com/crashdeck/crash-data-service/internal/domain"
	"github.com/crashdeck/crash-data-service/internal/store"
)

const (
	filterDateLayout   = "2006-01-02"
	defaultNetworkTopN = 10
	maxUploadBytes     = 32 << 20 // 32 MiB
)

// snapshotMeta is the provenance block included in API responses.
type snapshotMeta struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Records     int       `json:"records"`
	DroppedRows int       `json:"dropped_rows"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

func metaOf(snap *store.Snapshot) snapshotMeta {
	return snapshotMeta{
		ID:          snap.ID,
		Source:      snap.Source,
		Records:     len(snap.Records),
		DroppedRows: snap.Dropped,
		RefreshedAt: snap.RefreshedAt,
	}
}

// recordJSON is the wire form of a normalized record; dates render as
// YYYY-MM-DD and are omitted entirely for dateless records.
type recordJSON struct {
	Date        string            `json:"date,omitempty"`
	Game        string            `json:"game"`
	Platform    string            `json:"platform"`
	CrashCount  int               `json:"crash_count"`
	CrashType   domain.CrashType  `json:"crash_type"`
	NetworkName string            `json:"network_name"`
	YearMonth   string            `json:"year_month,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

func toRecordJSON(records []domain.NormalizedRecord) []recordJSON {
	out := make([]recordJSON, len(records))
	for i, rec := range records {
		rj := recordJSON{
			Game:        rec.Game,
			Platform:    rec.Platform,
			CrashCount:  rec.CrashCount,
			CrashType:   rec.CrashType,
			NetworkName: rec.NetworkName,
			YearMonth:   rec.YearMonth,
			Extra:       rec.Extra,
		}
		if rec.HasDate {
			rj.Date = rec.Date.Format(filterDateLayout)
		}
		out[i] = rj
	}
	return out
}

// parseFilter reads games, platforms, from, and to query parameters. List
// parameters accept repeated keys and comma-separated values.
func parseFilter(r *http.Request) (aggregate.Filter, error) {
	q := r.URL.Query()
	f := aggregate.Filter{
		Games:     splitMulti(q["games"]),
		Platforms: splitMulti(q["platforms"]),
	}

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(filterDateLayout, v)
		if err != nil {
			return aggregate.Filter{}, fmt.Errorf("invalid from date %q: want YYYY-MM-DD", v)
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(filterDateLayout, v)
		if err != nil {
			return aggregate.Filter{}, fmt.Errorf("invalid to date %q: want YYYY-MM-DD", v)
		}
		f.To = t
	}
	return f, nil
}

func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// filteredRecords resolves the current snapshot and applies the request
// filter. A refresh failure with a prior snapshot still serves the stale
// records; the error comes back separately so handlers can report it.
func (s *Server) filteredRecords(w http.ResponseWriter, r *http.Request) (*store.Snapshot, []domain.NormalizedRecord, string, bool) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, nil, "", false
	}

	snap, err := s.store.Current(r.Context())
	if snap == nil {
		if errors.Is(err, store.ErrNoData) {
			writeError(w, http.StatusNotFound, err)
		} else {
			writeError(w, http.StatusBadGateway, err)
		}
		return nil, nil, "", false
	}

	refreshError := ""
	if err != nil {
		refreshError = err.Error()
	}
	return snap, aggregate.Apply(snap.Records, filter), refreshError, true
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	snap, records, refreshErr, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	resp := map[string]any{
		"snapshot": metaOf(snap),
		"count":    len(records),
		"records":  toRecordJSON(records),
	}
	if refreshErr != "" {
		resp["refresh_error"] = refreshErr
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, records, refreshErr, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	resp := map[string]any{
		"snapshot": metaOf(snap),
		"summary":  aggregate.Summarize(records),
	}
	if refreshErr != "" {
		resp["refresh_error"] = refreshErr
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	_, records, _, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, aggregate.CrashesByGame(records))
}

func (s *Server) handleGamePlatforms(w http.ResponseWriter, r *http.Request) {
	_, records, _, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, aggregate.CrashesByGamePlatform(records))
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	_, records, _, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, aggregate.CountByType(records))
}

func (s *Server) handleNetworks(w http.ResponseWriter, r *http.Request) {
	limit := defaultNetworkTopN
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	_, records, _, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, aggregate.TopNetworks(records, limit))
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	_, records, _, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, aggregate.CrashesByMonth(records))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, records, _, ok := s.filteredRecords(w, r)
	if !ok {
		return
	}

	filename := "crash_report_" + time.Now().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := csvio.Encode(w, records); err != nil {
		s.logger.Error("csv export failed", "error", err)
	}
}

// handleUpload ingests a user-supplied CSV, either as a multipart "file"
// part or as a raw text/csv body. A malformed upload leaves any previous
// snapshot untouched.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := uploadBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer body.Close()

	table, err := csvio.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read uploaded table: %w", err))
		return
	}

	snap := s.store.LoadUpload(r.Context(), table)
	writeJSON(w, http.StatusOK, map[string]any{"snapshot": metaOf(snap)})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Refresh(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoData) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		status := http.StatusBadGateway
		resp := map[string]any{"error": err.Error()}
		if snap != nil {
			// The stale snapshot is still being served.
			resp["snapshot"] = metaOf(snap)
		}
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshot": metaOf(snap)})
}

func uploadBody(r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("read multipart file: %w", err)
		}
		return file, nil
	}
	return r.Body, nil
}
