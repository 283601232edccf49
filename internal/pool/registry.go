package pool

import "sort"

// RecordVisited stores rawURL as the last visited location for its server.
// Called by the filesystem adapter after every successful navigation,
// whether or not the pool served it. Entries outlive their connections:
// "where was I last" stays answerable after an idle eviction.
func (m *Manager) RecordVisited(rawURL string) error {
	id, err := m.ResolveURL(rawURL)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.visited[id.BaseURL()] = rawURL
	return nil
}

// OpenConnections lists every server with a live pooled session and the
// URL last visited on it. Servers never navigated get baseURL + "/".
func (m *Manager) OpenConnections() []OpenConnection {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	var open []OpenConnection
	for _, e := range m.conns {
		if _, ok := seen[e.baseURL]; ok {
			continue
		}
		seen[e.baseURL] = struct{}{}

		last, ok := m.visited[e.baseURL]
		if !ok {
			last = e.baseURL + "/"
		}
		open = append(open, OpenConnection{BaseURL: e.baseURL, LastVisited: last})
	}

	sort.Slice(open, func(i, j int) bool { return open[i].BaseURL < open[j].BaseURL })
	return open
}

// CloseByBaseURL evicts every session for one server (multiple owners may
// each hold one) and forgets its registry row.
func (m *Manager) CloseByBaseURL(baseURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.conns {
		if e.baseURL == baseURL {
			m.evictLocked(key, "closed by request")
		}
	}
	delete(m.visited, baseURL)
}

// CloseAll evicts every session and clears the registry. This is the
// pool's teardown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.conns {
		m.evictLocked(key, "close all")
	}
	m.visited = make(map[string]string)
}
