package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/model"
)

func clientKey(clientID string) string {
	return strings.ToLower(clientID)
}

func (r *Registry) clientLog() jsonlLog[model.Client] {
	return jsonlLog[model.Client]{path: r.path(clientsDir, clientsFile)}
}

func (r *Registry) loadClients() error {
	log := r.clientLog()
	recs, err := log.Load()
	if err != nil {
		return fmt.Errorf("loading clients: %w", err)
	}
	if recs == nil {
		return nil
	}
	kept := lastWins(recs, func(c model.Client) string { return clientKey(c.ClientID) })
	for _, c := range kept {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("loading client %s: %w", c.ClientID, err)
		}
		r.clients[clientKey(c.ClientID)] = c
	}
	if err := log.Compact(kept); err != nil {
		return fmt.Errorf("compacting clients: %w", err)
	}
	r.log.Debug().Int("lines", len(recs)).Int("clients", len(kept)).Msg("compacted clients")
	return nil
}

// SaveClient inserts or replaces the client with the same id, ignoring
// case. The stored id takes the case of c.ClientID. The whole client file
// is rewritten.
func (r *Registry) SaveClient(c model.Client) error {
	key := clientKey(c.ClientID)
	prev, had := r.clients[key]
	r.clients[key] = c
	if err := r.clientLog().Compact(r.sortedClients()); err != nil {
		if had {
			r.clients[key] = prev
		} else {
			delete(r.clients, key)
		}
		return fmt.Errorf("saving client %s: %w", c.ClientID, err)
	}
	r.log.Debug().Str("client", c.ClientID).Msg("saved client")
	return nil
}

// Client returns the client with the given id, ignoring case.
func (r *Registry) Client(clientID string) (model.Client, error) {
	c, ok := r.clients[clientKey(clientID)]
	if !ok {
		return model.Client{}, fmt.Errorf("client %s: %w", clientID, errs.ErrNotFound)
	}
	return c, nil
}

// ClientExists reports whether a client with the id exists, ignoring case.
func (r *Registry) ClientExists(clientID string) bool {
	_, ok := r.clients[clientKey(clientID)]
	return ok
}

// Clients returns every client ordered by case-folded id.
func (r *Registry) Clients() []model.Client {
	return r.sortedClients()
}

// DeleteClient removes a client and rewrites the client file.
func (r *Registry) DeleteClient(clientID string) error {
	key := clientKey(clientID)
	prev, ok := r.clients[key]
	if !ok {
		return fmt.Errorf("client %s: %w", clientID, errs.ErrNotFound)
	}
	delete(r.clients, key)
	if err := r.clientLog().Compact(r.sortedClients()); err != nil {
		r.clients[key] = prev
		return fmt.Errorf("deleting client %s: %w", clientID, err)
	}
	return nil
}

func (r *Registry) sortedClients() []model.Client {
	keys := make([]string, 0, len(r.clients))
	for k := range r.clients {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.Client, len(keys))
	for i, k := range keys {
		out[i] = r.clients[k]
	}
	return out
}
