package dto

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string            `json:"error" example:"错误信息"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse 通用成功响应
type SuccessResponse struct {
	Status  string      `json:"status" example:"ok"`
	Message string      `json:"message,omitempty" example:"操作成功"`
	Data    interface{} `json:"data,omitempty"`
}
