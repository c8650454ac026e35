package workspace

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/insightdelivered/statement-desk/internal/backend"
	"github.com/insightdelivered/statement-desk/internal/models"
	"github.com/insightdelivered/statement-desk/internal/notice"
)

// fakeBackend is an in-memory statement-processing backend.
type fakeBackend struct {
	mu              sync.Mutex
	clients         []models.Client
	statements      map[string]models.Statement
	classifications map[string]models.Classification
	calls           []string
	puts            []models.Statement
	uploads         []map[string]string
	fail            map[string]int
	nextID          int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		statements:      map[string]models.Statement{},
		classifications: map[string]models.Classification{},
		fail:            map[string]int{},
		nextID:          100,
	}
}

func (f *fakeBackend) id() models.ID {
	f.nextID++
	return models.ID(strconv.Itoa(f.nextID))
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
		c.ID = f.id()
		f.clients = append(f.clients, c)
		reply(w, map[string]string{"message": "Client added"})
	})
	mux.HandleFunc("PUT /update-client/{id}", func(w http.ResponseWriter, r *http.Request) {
		var c models.Client
		json.NewDecoder(r.Body).Decode(&c)
		for i := range f.clients {
			if f.clients[i].ID.String() == r.PathValue("id") {
				c.ID = f.clients[i].ID
				f.clients[i] = c
			}
		}
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
		s.Transactions = slices.Clone(s.Transactions)
		for i := range s.Transactions {
			if s.Transactions[i].ID == "" {
				s.Transactions[i].ID = f.id()
			}
		}
		acc := r.PathValue("acc")
		f.statements[acc] = s
		if c, ok := f.classifications[acc]; ok {
			c.Transactions = s.Transactions
			f.classifications[acc] = c
		}
		reply(w, map[string]string{"message": "Statement updated"})
	})
	mux.HandleFunc("DELETE /transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]string{"message": "Transaction deleted"})
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
		if file, hdr, err := r.FormFile("pdfFile"); err == nil {
			data, _ := io.ReadAll(file)
			fields["pdfFile"] = hdr.Filename + ":" + strconv.Itoa(len(data))
		}
		f.uploads = append(f.uploads, fields)
		acc := "acc-" + strconv.Itoa(len(f.uploads)+10)
		f.statements[acc] = models.Statement{
			AccountID:   acc,
			CreatedAt:   "2024-02-03T10:00:00Z",
			Client:      &models.ClientRef{ClientName: fields["clientName"], AccessCode: fields["accessCode"]},
			AccountInfo: models.AccountInfo{BankName: "HSBC", MonthReference: fields["monthReference"], Status: "processed"},
		}
		reply(w, map[string]any{"databaseOperation": map[string]string{"message": "Statement processed"}})
	})
	mux.HandleFunc("GET /classify-transactions", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]bool{"success": true})
	})
	mux.HandleFunc("GET /classify-transactions/{acc}", func(w http.ResponseWriter, r *http.Request) {
		c, ok := f.classifications[r.PathValue("acc")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		reply(w, c)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		call := r.Method + " " + r.URL.Path
		f.calls = append(f.calls, call)
		if status, ok := f.fail[call]; ok {
			w.WriteHeader(status)
			io.WriteString(w, `{"error":"backend failure"}`)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (f *fakeBackend) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) setFail(call string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[call] = status
}

func (f *fakeBackend) lastPut() models.Statement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts[len(f.puts)-1]
}

var fixedNow = time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC)

func newEnv(t *testing.T, fb *fakeBackend) (Deps, *notice.Feed) {
	t.Helper()
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)
	feed := notice.NewFeed(100)
	return Deps{
		Backend:  backend.New(srv.URL, backend.Options{}),
		Notifier: feed,
		PageSize: 5,
		Now:      func() time.Time { return fixedNow },
	}, feed
}

func hasNotice(feed *notice.Feed, level notice.Level, msg string) bool {
	for _, n := range feed.Since(0) {
		if n.Level == level && n.Message == msg {
			return true
		}
	}
	return false
}

func sampleStatement() models.Statement {
	return models.Statement{
		ID:        "st-1",
		AccountID: "acc-1",
		AccountInfo: models.AccountInfo{
			BankName:      "Metro Bank",
			AccountNumber: "12345678",
			Balances:      models.Balances{Beginning: 100, Ending: 130},
		},
		Transactions: []models.Transaction{
			{ID: "1", Date: "01/05/2024", Description: "coffee", Amount: 10, Type: models.TypeDebit},
			{ID: "2", Date: "01/06/2024", Description: "salary", Amount: 20, Type: models.TypeCredit},
		},
	}
}
