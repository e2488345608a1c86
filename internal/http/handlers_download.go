package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"fuelboard/internal/export"
	"fuelboard/internal/log"
	"fuelboard/internal/middleware/trace"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// downloadName builds the attachment name, tagging filtered exports with
// their year range.
func downloadName(v view, filtered bool, ext string) string {
	if !filtered {
		return "fuel_prices_full." + ext
	}
	return fmt.Sprintf("fuel_prices_%d_%d.%s", v.years.From, v.years.To, ext)
}

// handleDownloadCSV exports the full dataset, or with filtered the records
// inside the from/to range.
func (s *Server) handleDownloadCSV(filtered bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.download(w, r, filtered, "csv", "text/csv; charset=utf-8", export.WriteCSV)
	}
}

func (s *Server) handleDownloadXLSX(filtered bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.download(w, r, filtered, "xlsx", xlsxContentType, export.WriteXLSX)
	}
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, filtered bool, ext, contentType string,
	write func(io.Writer, []export.Row) error) {
	if !filtered {
		// Ignore any range parameters for the full export.
		q := r.URL.Query()
		q.Del("from")
		q.Del("to")
		r.URL.RawQuery = q.Encode()
	}
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}

	rows, err := export.Rows(v.derived)
	if err != nil {
		s.exportFailed(w, r, err)
		return
	}
	// Rendered into memory first so a failure can still produce a 500.
	var buf bytes.Buffer
	if err := write(&buf, rows); err != nil {
		s.exportFailed(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, downloadName(v, filtered, ext)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) exportFailed(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	fields := log.NewFields().WithRequestID(trace.GetRequestID(ctx))
	fields[log.FieldPath] = r.URL.Path
	log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Export failed", err, log.ComponentHTTP, log.OpExport, fields)
	s.writeJSON(w, r, NewJSONResponse().
		Status(http.StatusInternalServerError).
		Body(ErrorBody{Error: "export failed", Kind: "export"}))
}
