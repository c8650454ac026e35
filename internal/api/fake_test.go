package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/statement-desk/internal/backend"
	"github.com/insightdelivered/statement-desk/internal/models"
	"github.com/insightdelivered/statement-desk/internal/notice"
	"github.com/insightdelivered/statement-desk/internal/workspace"
)

type fakeBackend struct {
	mu         sync.Mutex
	clients    []models.Client
	statements map[string]models.Statement
	calls      []string
	puts       []models.Statement
	uploads    []map[string]string
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("GET /client", func(w http.ResponseWriter, r *http.Request) {
		reply(w, f.clients)
	})
	mux.HandleFunc("POST /add-client", func(w http.ResponseWriter, r *http.Request) {
		var c models.Client
		json.NewDecoder(r.Body).Decode(&c)
		c.ID = "9"
		f.clients = append(f.clients, c)
		reply(w, map[string]string{"message": "Client created"})
	})
	mux.HandleFunc("PUT /update-client/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]string{"message": "Client updated"})
	})
	mux.HandleFunc("DELETE /delete/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.clients = slices.DeleteFunc(f.clients, func(c models.Client) bool { return c.ID.String() == r.PathValue("id") })
		reply(w, map[string]string{"message": "Client deleted"})
	})
	mux.HandleFunc("GET /bank-statements", func(w http.ResponseWriter, r *http.Request) {
		list := []models.Statement{}
		for _, s := range f.statements {
			list = append(list, s)
		}
		slices.SortFunc(list, func(a, b models.Statement) int {
			if a.AccountID < b.AccountID {
				return -1
			}
			return 1
		})
		reply(w, map[string]any{"data": list})
	})
	mux.HandleFunc("GET /bank-statements/{acc}", func(w http.ResponseWriter, r *http.Request) {
		s, ok := f.statements[r.PathValue("acc")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			reply(w, map[string]string{"error": "Statement not found"})
			return
		}
		reply(w, map[string]any{"data": s})
	})
	mux.HandleFunc("PUT /bank-statements/{acc}", func(w http.ResponseWriter, r *http.Request) {
		var s models.Statement
		json.NewDecoder(r.Body).Decode(&s)
		f.puts = append(f.puts, s)
		f.statements[r.PathValue("acc")] = s
		reply(w, map[string]string{"message": "Statement updated"})
	})
	mux.HandleFunc("DELETE /transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]string{"message": "Transaction deleted"})
	})
	mux.HandleFunc("GET /classify-transactions", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]bool{"success": true})
	})
	mux.HandleFunc("POST /process-statement", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fields := map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		f.uploads = append(f.uploads, fields)
		reply(w, map[string]any{"databaseOperation": map[string]string{"message": "Statement stored"}})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		mux.ServeHTTP(w, r)
	})
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.calls, call)
}

func (f *fakeBackend) lastPut() models.Statement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts[len(f.puts)-1]
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		clients: []models.Client{
			{ID: "1", ClientName: "Acme Ltd", AccessCode: "AC1", ContactName: "Bob", ContactPhone: "0456", ClientType: models.ClientBusiness},
			{ID: "2", ClientName: "Zenith Bakery", AccessCode: "ZB1", ContactName: "Ann", ContactPhone: "0123", ClientType: models.ClientBusiness},
		},
		statements: map[string]models.Statement{
			"acc-1": {
				AccountID: "acc-1",
				ClientID:  "1",
				CreatedAt: "2024-01-10T09:00:00Z",
				Client:    &models.ClientRef{ClientName: "Acme Ltd", AccessCode: "AC1"},
				AccountInfo: models.AccountInfo{
					BankName:       "Metro Bank",
					AccountNumber:  "12345678",
					MonthReference: "2024-01",
					Balances:       models.Balances{Beginning: 100, Ending: 130},
				},
				Transactions: []models.Transaction{
					{ID: "1", Date: "01/05/2024", Description: "coffee", Amount: 10, Type: models.TypeDebit},
					{ID: "2", Date: "01/06/2024", Description: "salary", Amount: 20, Type: models.TypeCredit},
				},
			},
		},
	}
}

// newTestApp wires every workspace against fb and returns the fiber app.
func newTestApp(t *testing.T, fb *fakeBackend) (*fiber.App, *Handler) {
	t.Helper()
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)

	feed := notice.NewFeed(100)
	deps := workspace.Deps{
		Backend:  backend.New(srv.URL, backend.Options{}),
		Notifier: feed,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		PageSize: 5,
		Now:      func() time.Time { return time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC) },
	}
	dir := workspace.NewDirectory(deps)
	if err := dir.Init(t.Context()); err != nil {
		t.Fatalf("init directory: %v", err)
	}
	history := workspace.NewHistory(deps)
	if err := history.Load(t.Context()); err != nil {
		t.Fatalf("load history: %v", err)
	}
	h := &Handler{
		Directory: dir,
		Sessions:  workspace.NewSessions(deps),
		History:   history,
		Uploader:  workspace.NewUploader(deps, dir, history),
		Feed:      feed,
		Logger:    deps.Logger,
		Version:   "test",
	}
	return h.App(), h
}
