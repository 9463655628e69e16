package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gitlab.com/open-soft/spread-dashboard/src/utils"
)

const DefaultMessageTTL = 5 * time.Second
const socketWriteWait = time.Second

// ChartHub keeps the state of every chart surface and mirrors it to websocket clients.
// New clients receive the current series, stats and messages before live updates.
type ChartHub struct {
	TimeService utils.TimeServiceInterface
	MessageTTL  time.Duration
	Upgrader    websocket.Upgrader
	// Called after a client reported the visible range of a chart.
	OnVisibleRange func(chartName string)

	mu        sync.RWMutex
	clients   map[string]*hubClient
	surfaces  []*HubSurface
	messages  map[string]model.DisplayMessage
	lastStat  *model.SpreadStat
	lastEntry *model.EntryLevel
}

func NewChartHub(timeService utils.TimeServiceInterface) *ChartHub {
	return &ChartHub{
		TimeService: timeService,
		MessageTTL:  DefaultMessageTTL,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:  make(map[string]*hubClient),
		messages: make(map[string]model.DisplayMessage),
	}
}

// Surface creates the surface of a chart, one per chart name.
func (h *ChartHub) Surface(chartName string) *HubSurface {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, surface := range h.surfaces {
		if surface.chart == chartName {
			return surface
		}
	}

	surface := &HubSurface{
		hub:    h,
		chart:  chartName,
		series: make(map[string]*hubSeries),
	}
	h.surfaces = append(h.surfaces, surface)

	return surface
}

func (h *ChartHub) ServeWs(w http.ResponseWriter, req *http.Request) {
	connection, err := h.Upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Warnf("[ws] upgrade failed: %s", err.Error())
		return
	}

	client := &hubClient{id: uuid.NewString(), connection: connection}
	if err = h.register(client); err != nil {
		log.Warnf("[ws] client %s: snapshot failed: %s", client.id, err.Error())
		h.unregister(client)
		return
	}

	go h.read(client)
}

func (h *ChartHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *ChartHub) ShowMessage(text string) {
	now := h.TimeService.GetNow()
	ttl := h.MessageTTL
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}

	message := model.DisplayMessage{
		Id:        uuid.NewString(),
		Text:      text,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}

	h.mu.Lock()
	h.messages[message.Id] = message
	h.mu.Unlock()

	h.broadcast(model.SocketMessage{Type: model.SocketMessageDisplay, Message: &message})

	time.AfterFunc(ttl, func() {
		h.dismiss(message.Id)
	})
}

// Messages returns the messages that are still shown.
func (h *ChartHub) Messages() []model.DisplayMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()

	messages := make([]model.DisplayMessage, 0, len(h.messages))
	for _, message := range h.messages {
		messages = append(messages, message)
	}

	return messages
}

func (h *ChartHub) ShowStats(stat model.SpreadStat) {
	h.mu.Lock()
	h.lastStat = &stat
	h.mu.Unlock()

	h.broadcast(model.SocketMessage{Type: model.SocketMessageStats, Stat: &stat})
}

func (h *ChartHub) ShowEntryLevel(entryLevel model.EntryLevel) {
	h.mu.Lock()
	h.lastEntry = &entryLevel
	h.mu.Unlock()

	h.broadcast(model.SocketMessage{Type: model.SocketMessageEntryLevel, EntryLevel: &entryLevel})
}

func (h *ChartHub) dismiss(messageId string) {
	h.mu.Lock()
	message, exist := h.messages[messageId]
	delete(h.messages, messageId)
	h.mu.Unlock()

	if exist {
		h.broadcast(model.SocketMessage{Type: model.SocketMessageDismiss, Message: &message})
	}
}

func (h *ChartHub) register(client *hubClient) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	frames := make([]model.SocketMessage, 0)
	for _, surface := range h.surfaces {
		frames = append(frames, surface.snapshot()...)
	}
	if h.lastStat != nil {
		frames = append(frames, model.SocketMessage{Type: model.SocketMessageStats, Stat: h.lastStat})
	}
	if h.lastEntry != nil {
		frames = append(frames, model.SocketMessage{Type: model.SocketMessageEntryLevel, EntryLevel: h.lastEntry})
	}
	for _, message := range h.messages {
		shown := message
		frames = append(frames, model.SocketMessage{Type: model.SocketMessageDisplay, Message: &shown})
	}

	for _, frame := range frames {
		if err := client.send(frame); err != nil {
			return err
		}
	}

	h.clients[client.id] = client
	log.Infof("[ws] client %s connected", client.id)

	return nil
}

func (h *ChartHub) unregister(client *hubClient) {
	h.mu.Lock()
	_, exist := h.clients[client.id]
	delete(h.clients, client.id)
	h.mu.Unlock()

	_ = client.connection.Close()
	if exist {
		log.Infof("[ws] client %s disconnected", client.id)
	}
}

func (h *ChartHub) read(client *hubClient) {
	defer h.unregister(client)

	for {
		_, payload, err := client.connection.ReadMessage()
		if err != nil {
			return
		}

		var message model.SocketMessage
		if err = json.Unmarshal(payload, &message); err != nil {
			log.Debugf("[ws] client %s: %s", client.id, err.Error())
			continue
		}

		if message.Type != model.SocketMessageVisibleRange || message.Range == nil {
			continue
		}

		if h.setVisibleRange(message.Chart, *message.Range) && h.OnVisibleRange != nil {
			h.OnVisibleRange(message.Chart)
		}
	}
}

func (h *ChartHub) setVisibleRange(chartName string, timeRange model.TimeRange) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, surface := range h.surfaces {
		if surface.chart == chartName {
			return surface.SetVisibleRange(timeRange)
		}
	}

	return false
}

func (h *ChartHub) broadcast(message model.SocketMessage) {
	h.mu.RLock()
	clients := make([]*hubClient, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.send(message); err != nil {
			log.Debugf("[ws] client %s: %s", client.id, err.Error())
			h.unregister(client)
		}
	}
}

type hubClient struct {
	id         string
	connection *websocket.Conn
	mu         sync.Mutex
}

func (c *hubClient) send(message model.SocketMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.connection.SetWriteDeadline(time.Now().Add(socketWriteWait))

	return c.connection.WriteJSON(message)
}

type hubSeries struct {
	options model.LineSeriesOptions
	data    model.Series
}

// HubSurface is the chart surface of one chart shared by all connected clients.
type HubSurface struct {
	hub   *ChartHub
	chart string

	mu      sync.RWMutex
	order   []string
	series  map[string]*hubSeries
	visible *model.TimeRange
}

func (s *HubSurface) AddLineSeries(options model.LineSeriesOptions) (string, error) {
	seriesId := uuid.NewString()

	s.mu.Lock()
	s.series[seriesId] = &hubSeries{options: options}
	s.order = append(s.order, seriesId)
	s.mu.Unlock()

	s.hub.broadcast(model.SocketMessage{
		Type:     model.SocketMessageSeriesAdd,
		Chart:    s.chart,
		SeriesId: seriesId,
		Options:  &options,
	})

	return seriesId, nil
}

func (s *HubSurface) SetData(seriesId string, points model.Series) error {
	s.mu.Lock()
	series, exist := s.series[seriesId]
	if !exist {
		s.mu.Unlock()
		return fmt.Errorf("series %s is not on chart %s", seriesId, s.chart)
	}
	series.data = points
	s.mu.Unlock()

	s.hub.broadcast(model.SocketMessage{
		Type:     model.SocketMessageSeriesSet,
		Chart:    s.chart,
		SeriesId: seriesId,
		Data:     points,
	})

	return nil
}

func (s *HubSurface) RemoveSeries(seriesId string) {
	s.mu.Lock()
	_, exist := s.series[seriesId]
	delete(s.series, seriesId)
	for index, id := range s.order {
		if id == seriesId {
			s.order = append(s.order[:index], s.order[index+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if exist {
		s.hub.broadcast(model.SocketMessage{Type: model.SocketMessageSeriesRemove, Chart: s.chart, SeriesId: seriesId})
	}
}

func (s *HubSurface) VisibleRange() (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.visible == nil {
		return model.TimeRange{}, false
	}

	return *s.visible, true
}

// SetVisibleRange stores the range reported by the last client that rendered the chart.
func (s *HubSurface) SetVisibleRange(timeRange model.TimeRange) bool {
	if timeRange.To < timeRange.From {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = &timeRange

	return true
}

func (s *HubSurface) snapshot() []model.SocketMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frames := make([]model.SocketMessage, 0, len(s.order))
	for _, seriesId := range s.order {
		series := s.series[seriesId]
		options := series.options
		frames = append(frames, model.SocketMessage{
			Type:     model.SocketMessageSeriesAdd,
			Chart:    s.chart,
			SeriesId: seriesId,
			Options:  &options,
			Data:     series.data,
		})
	}

	return frames
}

func (h *ChartHub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*hubClient)
	h.mu.Unlock()

	for _, client := range clients {
		_ = client.connection.Close()
	}
}
