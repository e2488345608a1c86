package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet", CredentialsFile: "/does/not/exist.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestReadRows_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	_, err := c.ReadRows(context.Background())
	assert.EqualError(t, err, "sheets service not initialized")
}

func TestReadRows_FromServer(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range":          "Prices!A1:D3",
			"majorDimension": "ROWS",
			"values": [][]any{
				{"date", "gasoline_price", "texas_avg", "national_avg"},
				{"2023-01-01", "3.00", "3.10", "3.20"},
				{"2023-02-01", "3.30", "3.15", "3.25"},
			},
		})
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	c := NewWithService(svc, Config{SpreadsheetID: "abc"})
	tbl, err := c.ReadRows(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.Contains(gotPath, "/spreadsheets/abc/values/Prices"), gotPath)
	assert.Equal(t, "sheets:abc/Prices", tbl.Source)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "3.15", tbl.Rows[1][2])

	v1, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Len(t, v1, 16)
}
