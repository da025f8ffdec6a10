package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/prompt-eval-hub/internal/cache"
	"github.com/azhengyongqin/prompt-eval-hub/internal/poller"
	"github.com/azhengyongqin/prompt-eval-hub/internal/repository"
	"github.com/azhengyongqin/prompt-eval-hub/internal/server/dto"
	"github.com/azhengyongqin/prompt-eval-hub/internal/session"
	"github.com/azhengyongqin/prompt-eval-hub/sdk"
)

// writeError 把领域错误映射为 HTTP 状态码
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var ve *sdk.ValidationError
	if errors.As(err, &ve) {
		details := make(map[string]string, len(ve.Fields))
		for _, f := range ve.Fields {
			details[f] = "invalid"
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Details: details})
		return
	}

	if apiErr, ok := sdk.AsAPIError(err); ok {
		status := http.StatusBadGateway
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			status = http.StatusNotFound
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			status = http.StatusBadRequest
		}
		c.JSON(status, dto.ErrorResponse{Error: apiErr.Detail})
		return
	}

	switch {
	case errors.Is(err, poller.ErrInvalidHandle):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrNoJob),
		errors.Is(err, cache.ErrCacheMiss),
		errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, session.ErrViewClosed),
		errors.Is(err, poller.ErrStopped):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}

// writeBackendError 调用评测后端失败；非应用层错误视为后端不可用
func writeBackendError(c *gin.Context, err error) {
	var ve *sdk.ValidationError
	if _, ok := sdk.AsAPIError(err); ok || errors.As(err, &ve) || isLocal(err) {
		writeError(c, err)
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "评测后端不可用: " + err.Error()})
}

func isLocal(err error) bool {
	return errors.Is(err, session.ErrNoJob) ||
		errors.Is(err, session.ErrViewClosed) ||
		errors.Is(err, poller.ErrStopped) ||
		errors.Is(err, poller.ErrInvalidHandle)
}
