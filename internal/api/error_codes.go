// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorUnauthorized  = "UNAUTHORIZED"
	ErrorValidation    = "VALIDATION_ERROR"

	// 操作分发相关错误
	ErrorOperationUnknown = "OPERATION_UNKNOWN"

	// 故事层级相关错误
	ErrorStoryNotFound   = "STORY_NOT_FOUND"
	ErrorActNotFound     = "ACT_NOT_FOUND"
	ErrorChapterNotFound = "CHAPTER_NOT_FOUND"
	ErrorSceneNotFound   = "SCENE_NOT_FOUND"

	// 用户相关错误
	ErrorUserNotFound     = "USER_NOT_FOUND"
	ErrorUserCreateFailed = "USER_CREATE_FAILED"

	// 导出相关错误
	ErrorExportFailed        = "EXPORT_FAILED"
	ErrorExportFormatInvalid = "EXPORT_FORMAT_INVALID"
)
