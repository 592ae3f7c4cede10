package upstream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vlaanderen-mow/amsync/auth"
)

func TestEMInfraClient_GetResourcePage_LastPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"from": 0, "size": 2, "totalCount": 2,
			"data": []map[string]string{{"uuid": "a"}, {"uuid": "b"}},
		})
	}))
	defer srv.Close()

	client := &EMInfraClient{baseClient: newBaseClient(srv.URL+"/", auth.NewCookieRequester("x"), 1)}
	page, err := client.GetResourcePage("assettypes", 2, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Nil(t, page.NextFrom)
}

func TestEMSONClient_GetResourceByCursor_AdvancesCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("em-paging-next-cursor", "cursor-2")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"@graph": []map[string]string{{"@id": "asset/1"}},
		})
	}))
	defer srv.Close()

	client := &EMSONClient{baseClient: newBaseClient(srv.URL+"/", auth.NewCookieRequester("x"), 1)}
	page, err := client.GetResourceByCursor("assets", nil, 100, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.NextCursor)
	require.Equal(t, "cursor-2", *page.NextCursor)
}

func TestEMSONClient_GetResourceByCursor_Terminates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"@graph": []map[string]string{}})
	}))
	defer srv.Close()

	client := &EMSONClient{baseClient: newBaseClient(srv.URL+"/", auth.NewCookieRequester("x"), 1)}
	page, err := client.GetResourceByCursor("assets", nil, 100, nil)
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Nil(t, page.NextCursor)
}
