package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeAPI serves the token endpoint and records every other request.
type fakeAPI struct {
	*httptest.Server

	mutex      sync.Mutex
	requests   []recordedRequest
	tokenCalls int
	rejectAuth bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{}
	api.Server = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.Close)

	return api
}

func (a *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if r.URL.Path == "/api/v2/oauth/token" {
		a.tokenCalls++

		if a.rejectAuth {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "cli-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})

		return
	}

	body, _ := io.ReadAll(r.Body)
	a.requests = append(a.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   string(body),
	})

	if r.Method == http.MethodDelete {
		w.WriteHeader(http.StatusNoContent)

		return
	}

	if strings.HasSuffix(r.URL.Path, "/404") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"message":"Not found"}`))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"id":5,"name":"Wholesale"}`))
}

func (a *fakeAPI) Requests() []recordedRequest {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return append([]recordedRequest(nil), a.requests...)
}

// setupViper points the CLI at api with a config file in a temporary directory.
// Tests using it share global viper state and must not run in parallel.
func setupViper(t *testing.T, api *fakeAPI) string {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(path)
	viper.Set("output", "json")

	if api != nil {
		viper.Set("client_id", "id")
		viper.Set("client_secret", "secret")
		viper.Set("base_url", api.URL+"/api/v2")
	}

	return path
}

// execute runs args against a root command holding cmds.
func execute(t *testing.T, args []string, cmds ...*cobra.Command) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "sbapi", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(cmds...)

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}
