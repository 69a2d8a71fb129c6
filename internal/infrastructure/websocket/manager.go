package websocket

import (
	"sync"

	"rentalhub/pkg/logger"
)

// Manager tracks live connections and their channel memberships. A channel
// is a named fan-out group such as "chat_<roomId>" or "notifications_<userId>".
type Manager struct {
	clients  map[string]*Client
	channels map[string]map[string]*Client
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:  make(map[string]*Client),
		channels: make(map[string]map[string]*Client),
	}
}

func (m *Manager) Register(client *Client) {
	m.mutex.Lock()
	m.clients[client.ID] = client
	m.mutex.Unlock()
	logger.Info("Client registered: %s (user %s)", client.ID, client.UserID)
}

// Unregister drops the connection from every channel and closes its send
// buffer. Calling it twice is harmless.
func (m *Manager) Unregister(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.removeLocked(client)
}

func (m *Manager) removeLocked(client *Client) {
	if _, ok := m.clients[client.ID]; !ok {
		return
	}
	delete(m.clients, client.ID)
	for channel := range client.channels {
		m.leaveLocked(client.ID, channel)
	}
	client.channels = nil
	close(client.send)
	logger.Info("Client unregistered: %s (user %s)", client.ID, client.UserID)
}

// Join subscribes a connection to channel. Unknown connections are ignored.
func (m *Manager) Join(connectionID, channel string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	client, ok := m.clients[connectionID]
	if !ok {
		return
	}
	members, ok := m.channels[channel]
	if !ok {
		members = make(map[string]*Client)
		m.channels[channel] = members
	}
	members[connectionID] = client
	client.channels[channel] = struct{}{}
}

func (m *Manager) Leave(connectionID, channel string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if client, ok := m.clients[connectionID]; ok {
		delete(client.channels, channel)
	}
	m.leaveLocked(connectionID, channel)
}

func (m *Manager) leaveLocked(connectionID, channel string) {
	members, ok := m.channels[channel]
	if !ok {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(m.channels, channel)
	}
}

// Publish delivers event to every member of channel except exceptConnectionID.
// Members whose send buffer is full are disconnected.
func (m *Manager) Publish(channel, event string, data interface{}, exceptConnectionID string) {
	payload, err := Encode(event, data)
	if err != nil {
		logger.Error("Failed to encode %s for %s: %v", event, channel, err)
		return
	}

	m.mutex.RLock()
	var slow []*Client
	for id, client := range m.channels[channel] {
		if id == exceptConnectionID {
			continue
		}
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	m.mutex.RUnlock()

	m.dropSlow(slow)
}

// Send delivers event to a single connection.
func (m *Manager) Send(connectionID, event string, data interface{}) {
	payload, err := Encode(event, data)
	if err != nil {
		logger.Error("Failed to encode %s for %s: %v", event, connectionID, err)
		return
	}

	m.mutex.RLock()
	client, ok := m.clients[connectionID]
	var slow []*Client
	if ok {
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	m.mutex.RUnlock()

	m.dropSlow(slow)
}

func (m *Manager) dropSlow(clients []*Client) {
	if len(clients) == 0 {
		return
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, client := range clients {
		logger.Warn("Dropping slow client %s (user %s)", client.ID, client.UserID)
		m.removeLocked(client)
	}
}

// Members reports how many connections are subscribed to channel.
func (m *Manager) Members(channel string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.channels[channel])
}

func (m *Manager) ClientCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// Shutdown closes every connection's send buffer, which makes the write
// pumps send a close frame.
func (m *Manager) Shutdown() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, client := range m.clients {
		m.removeLocked(client)
	}
}
