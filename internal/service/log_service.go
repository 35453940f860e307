package service

import (
	"github.com/Ishagupta145/mcp-server/internal/models"
	"github.com/Ishagupta145/mcp-server/internal/repository"
)

type LogService interface {
	LogAction(requestID, action, description, ipAddress string, metadata map[string]interface{}) error
	GetRecentLogs(page, limit int) ([]*models.LogEntry, error)
}

type logService struct {
	logRepo repository.LogRepository
}

func NewLogService(logRepo repository.LogRepository) LogService {
	return &logService{logRepo: logRepo}
}

func (s *logService) LogAction(requestID, action, description, ipAddress string, metadata map[string]interface{}) error {
	logEntry := &models.LogEntry{
		RequestID:   requestID,
		Action:      action,
		Description: description,
		IPAddress:   ipAddress,
		Metadata:    metadata,
	}
	return s.logRepo.SaveLog(logEntry)
}

func (s *logService) GetRecentLogs(page, limit int) ([]*models.LogEntry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.logRepo.GetRecentLogs(page, limit)
}
