package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxPreviewMessageBytes 限制单条预览消息大小，粘贴的记录通常只有几 KB。
const maxPreviewMessageBytes = 1 << 20

// handlePreviewStream 在 WebSocket 上提供即时预览：
// 客户端每发送一帧 {"raw": "..."}，服务端回一帧预览结果。
func (s *Server) handlePreviewStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写回了错误响应。
		s.logger.Warn("preview stream upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxPreviewMessageBytes)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("preview stream closed unexpectedly", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var req previewRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := conn.WriteJSON(map[string]string{"error": "invalid json"}); err != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(newPreviewResponse(s.ledger.Preview(req.Raw))); err != nil {
			s.logger.Warn("preview stream write failed", zap.Error(err))
			return
		}
	}
}
