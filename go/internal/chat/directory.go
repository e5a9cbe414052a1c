package chat

import "sync"

// UnknownUsername is reported for connections that never set a name
const UnknownUsername = "Unknown"

// Directory tracks connected clients, the usernames they picked and who is
// currently typing.
type Directory struct {
	mu        sync.RWMutex
	connected map[string]bool
	usernames map[string]string // connection id -> username
	users     []string          // unique usernames in join order
	typing    map[string]bool   // usernames currently typing
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{
		connected: make(map[string]bool),
		usernames: make(map[string]string),
		typing:    make(map[string]bool),
	}
}

// Connect registers a connection and returns the number of connections
func (d *Directory) Connect(connID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected[connID] = true
	return len(d.connected)
}

// SetUsername names a connection and returns the current user list
func (d *Directory) SetUsername(connID, username string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.usernames[connID] = username
	if !d.hasUserLocked(username) {
		d.users = append(d.users, username)
	}
	return d.usersLocked()
}

// Departure describes a connection leaving the room
type Departure struct {
	Username string
	Named    bool
	Users    []string
	Count    int
}

// Disconnect removes a connection. When the connection had a username the
// name is dropped from the user list.
func (d *Directory) Disconnect(connID string) Departure {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.connected, connID)
	dep := Departure{}
	if name, ok := d.usernames[connID]; ok {
		delete(d.usernames, connID)
		delete(d.typing, name)
		d.removeUserLocked(name)
		dep.Username = name
		dep.Named = true
	}
	dep.Users = d.usersLocked()
	dep.Count = len(d.connected)
	return dep
}

// Username returns the name picked by a connection or UnknownUsername
func (d *Directory) Username(connID string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if name, ok := d.usernames[connID]; ok {
		return name
	}
	return UnknownUsername
}

// Named reports whether the connection has set a username
func (d *Directory) Named(connID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.usernames[connID]
	return ok
}

// Users returns the user list in join order
func (d *Directory) Users() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.usersLocked()
}

// Count returns the number of connections
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.connected)
}

// StartTyping marks a named connection as typing
func (d *Directory) StartTyping(connID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, ok := d.usernames[connID]
	if !ok {
		return "", false
	}
	d.typing[name] = true
	return name, true
}

// StopTyping clears the typing mark of a named connection
func (d *Directory) StopTyping(connID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, ok := d.usernames[connID]
	if !ok {
		return false
	}
	delete(d.typing, name)
	return true
}

// Typing reports whether username is typing
func (d *Directory) Typing(username string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.typing[username]
}

func (d *Directory) hasUserLocked(username string) bool {
	for _, u := range d.users {
		if u == username {
			return true
		}
	}
	return false
}

func (d *Directory) removeUserLocked(username string) {
	for i, u := range d.users {
		if u == username {
			d.users = append(d.users[:i], d.users[i+1:]...)
			return
		}
	}
}

func (d *Directory) usersLocked() []string {
	out := make([]string, len(d.users))
	copy(out, d.users)
	return out
}
