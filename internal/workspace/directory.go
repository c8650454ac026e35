package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/btree"

	"github.com/insightdelivered/statement-desk/internal/backend"
	"github.com/insightdelivered/statement-desk/internal/editlist"
	"github.com/insightdelivered/statement-desk/internal/forms"
	"github.com/insightdelivered/statement-desk/internal/models"
	"github.com/insightdelivered/statement-desk/internal/notice"
)

type dirEntry struct {
	key    string
	client models.Client
}

func dirLess(a, b dirEntry) bool { return a.key < b.key }

func dirKey(c models.Client) string {
	return strings.ToLower(strings.TrimSpace(c.ClientName)) + "\x00" + c.ID.String()
}

// Directory is the client registry: the editable client list, a name index
// for search suggestions and the client picked for uploads. It must be
// initialised with Init and released with Dispose.
type Directory struct {
	deps   Deps
	logger *slog.Logger
	guard  *editlist.Guard

	Clients *editlist.List[models.Client]

	mu       sync.RWMutex
	ready    bool
	index    *btree.BTreeG[dirEntry]
	keys     map[string]string
	selected *models.Client
}

func NewDirectory(deps Deps) *Directory {
	deps = deps.withDefaults()
	d := &Directory{
		deps:   deps,
		logger: deps.Logger.With("workspace", "clients"),
		guard:  editlist.NewGuard(),
		index:  btree.NewG(8, dirLess),
		keys:   map[string]string{},
	}
	d.Clients = editlist.New("clients", clientSchema(), clientStore{d}, editlist.Options{
		PageSize:        deps.PageSize,
		Notifier:        deps.Notifier,
		Logger:          d.logger,
		Guard:           d.guard,
		RefetchOnCreate: true,
	})
	return d
}

// Init loads the clients.
func (d *Directory) Init(ctx context.Context) error {
	if err := d.Clients.Load(ctx); err != nil {
		return err
	}
	d.mu.Lock()
	d.ready = true
	d.mu.Unlock()
	return nil
}

// Dispose drops the loaded clients and the selection.
func (d *Directory) Dispose() {
	d.Clients.Seed(nil)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ready = false
	d.index.Clear(false)
	d.keys = map[string]string{}
	d.selected = nil
}

func (d *Directory) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ready
}

func (d *Directory) reindex(clients []models.Client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.index.Clear(false)
	d.keys = make(map[string]string, len(clients))
	for _, c := range clients {
		d.putLocked(c)
	}
	if d.selected != nil {
		if _, ok := d.keys[d.selected.ID.String()]; !ok {
			d.selected = nil
		}
	}
}

func (d *Directory) putLocked(c models.Client) {
	id := c.ID.String()
	if old, ok := d.keys[id]; ok {
		d.index.Delete(dirEntry{key: old})
	}
	k := dirKey(c)
	d.keys[id] = k
	d.index.ReplaceOrInsert(dirEntry{key: k, client: c})
}

func (d *Directory) removeLocked(id string) {
	if k, ok := d.keys[id]; ok {
		d.index.Delete(dirEntry{key: k})
		delete(d.keys, id)
	}
	if d.selected != nil && d.selected.ID.String() == id {
		d.selected = nil
	}
}

// Search returns clients whose name contains q, case-insensitively, in name
// order with prefix matches first. An empty q matches every client.
func (d *Directory) Search(q string, limit int) []models.Client {
	q = strings.ToLower(strings.TrimSpace(q))
	if limit <= 0 {
		limit = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []models.Client{}
	seen := map[string]bool{}
	d.index.AscendGreaterOrEqual(dirEntry{key: q}, func(e dirEntry) bool {
		if !strings.HasPrefix(e.key, q) || len(out) >= limit {
			return false
		}
		seen[e.key] = true
		out = append(out, e.client)
		return true
	})
	d.index.Ascend(func(e dirEntry) bool {
		if len(out) >= limit {
			return false
		}
		name, _, _ := strings.Cut(e.key, "\x00")
		if !seen[e.key] && strings.Contains(name, q) {
			out = append(out, e.client)
		}
		return true
	})
	return out
}

// Select remembers the client for the upload form.
func (d *Directory) Select(id string) (models.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	k, ok := d.keys[id]
	if !ok {
		return models.Client{}, fmt.Errorf("client %s: %w", id, editlist.ErrNotFound)
	}
	e, _ := d.index.Get(dirEntry{key: k})
	c := e.client
	d.selected = &c
	return c, nil
}

// Selected is the client picked for uploads.
func (d *Directory) Selected() (models.Client, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.selected == nil {
		return models.Client{}, false
	}
	return *d.selected, true
}

func (d *Directory) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = nil
}

// Create submits the client form. Validation failures are returned without a
// request; the backend's message becomes the success notice.
func (d *Directory) Create(ctx context.Context, c models.Client) (string, error) {
	return d.submit(ctx, "", c)
}

// Update submits the client form for an existing client.
func (d *Directory) Update(ctx context.Context, id string, c models.Client) (string, error) {
	return d.submit(ctx, id, c)
}

func (d *Directory) submit(ctx context.Context, id string, c models.Client) (string, error) {
	if err := forms.CheckClient(c); err != nil {
		return "", err
	}
	release, err := d.guard.Acquire(editlist.ActionPersist)
	if err != nil {
		return "", err
	}

	var res backend.Result
	op := "create client"
	if id == "" {
		res, err = d.deps.Backend.CreateClient(ctx, c)
	} else {
		op = "update client " + id
		c.ID = models.ID(id)
		res, err = d.deps.Backend.UpdateClient(ctx, id, c)
	}
	release()
	if err != nil {
		d.deps.Notifier.Notify(notice.Failure("clients", backendMessage(err, "Something went wrong"), err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	msg := res.Message
	if msg == "" {
		msg = "Client saved successfully"
	}
	d.deps.Notifier.Notify(notice.Success("clients", msg))
	if err := d.Clients.Load(ctx); err != nil {
		d.logger.Warn("reload after save failed", "err", err)
	}
	return msg, nil
}

type clientStore struct {
	d *Directory
}

func (s clientStore) Fetch(ctx context.Context, key string) ([]models.Client, error) {
	clients, err := s.d.deps.Backend.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	s.d.reindex(clients)
	return clients, nil
}

// PersistAll is unused: the registry saves one client at a time.
func (s clientStore) PersistAll(ctx context.Context, key string, rows []models.Client) error {
	return errors.New("client registry has no bulk save")
}

func (s clientStore) Create(ctx context.Context, key string, c models.Client) (models.Client, error) {
	if _, err := s.d.deps.Backend.CreateClient(ctx, c); err != nil {
		return c, err
	}
	return c, nil
}

func (s clientStore) Update(ctx context.Context, key string, c models.Client) (models.Client, error) {
	if _, err := s.d.deps.Backend.UpdateClient(ctx, c.ID.String(), c); err != nil {
		return c, err
	}
	s.d.mu.Lock()
	s.d.putLocked(c)
	s.d.mu.Unlock()
	return c, nil
}

func (s clientStore) Delete(ctx context.Context, key string, id string) error {
	if _, err := s.d.deps.Backend.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.d.mu.Lock()
	s.d.removeLocked(id)
	s.d.mu.Unlock()
	return nil
}
