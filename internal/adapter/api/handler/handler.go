package handler

var (
	chatHandler      *ChatHandler
	webSocketHandler *WebSocketHandler
	healthHandler    *HealthHandler
	devTokenHandler  *DevTokenHandler
)

func Setup(chat *ChatHandler, webSocket *WebSocketHandler, health *HealthHandler, devToken *DevTokenHandler) {
	chatHandler = chat
	webSocketHandler = webSocket
	healthHandler = health
	devTokenHandler = devToken
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}
