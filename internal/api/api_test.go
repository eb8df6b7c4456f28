// internal/api/api_test.go
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Corphon/StoryPlannerMCP/internal/api"
	"github.com/Corphon/StoryPlannerMCP/internal/app"
	"github.com/Corphon/StoryPlannerMCP/internal/config"
	"github.com/gin-gonic/gin"
)

// envelope 反序列化用的响应外壳
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Port:          "0",
		DataDir:       dir,
		DBPath:        filepath.Join(dir, "planner.db"),
		LogDir:        dir,
		DebugMode:     true,
		AuthSecretKey: "test_secret_key_32_bytes_long!!!",
	}

	if err := api.InitializeAuth(cfg); err != nil {
		t.Fatalf("初始化认证失败: %v", err)
	}
	if err := app.InitServices(cfg); err != nil {
		t.Fatalf("初始化服务失败: %v", err)
	}
	t.Cleanup(app.CleanupServices)

	router, err := api.SetupRouter(cfg)
	if err != nil {
		t.Fatalf("设置路由失败: %v", err)
	}
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body string) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var resp envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应不是合法JSON: %v\n%s", err, recorder.Body.String())
	}
	return recorder, &resp
}

func registerUser(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	recorder, resp := doJSON(t, router, http.MethodPost, "/api/auth/register", "",
		`{"username":"`+username+`","email":"`+username+`@example.com"}`)
	if recorder.Code != http.StatusCreated || !resp.Success {
		t.Fatalf("注册失败: status=%d body=%s", recorder.Code, recorder.Body.String())
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("解析注册响应失败: %v", err)
	}
	if data.Token == "" {
		t.Fatal("注册应该返回访问令牌")
	}
	return data.Token
}

func TestHealthEndpoint(t *testing.T) {
	router := setupServer(t)

	recorder, resp := doJSON(t, router, http.MethodGet, "/api/health", "", "")
	if recorder.Code != http.StatusOK || !resp.Success {
		t.Fatalf("健康检查失败: status=%d body=%s", recorder.Code, recorder.Body.String())
	}
}

func TestRegisterAndProfile(t *testing.T) {
	router := setupServer(t)
	token := registerUser(t, router, "作者甲")

	recorder, resp := doJSON(t, router, http.MethodGet, "/api/user/profile", token, "")
	if recorder.Code != http.StatusOK || !resp.Success {
		t.Fatalf("读取用户信息失败: status=%d body=%s", recorder.Code, recorder.Body.String())
	}

	var user struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(resp.Data, &user); err != nil {
		t.Fatalf("解析用户信息失败: %v", err)
	}
	if user.Username != "作者甲" {
		t.Fatalf("用户名不匹配: %q", user.Username)
	}
}

func TestProfileWithoutTokenIsUnauthorized(t *testing.T) {
	router := setupServer(t)

	recorder, resp := doJSON(t, router, http.MethodGet, "/api/user/profile", "", "")
	if recorder.Code != http.StatusUnauthorized || resp.Success {
		t.Fatalf("无凭证访问应该返回401: status=%d body=%s", recorder.Code, recorder.Body.String())
	}
	if resp.Error == nil || resp.Error.Code != api.ErrorUnauthorized {
		t.Fatalf("错误代码不正确: %+v", resp.Error)
	}
}

func TestDispatchWithoutTokenIsUnauthorized(t *testing.T) {
	router := setupServer(t)

	recorder, resp := doJSON(t, router, http.MethodPost, "/api/ops/createStory", "", `{"title":"长夜"}`)
	if recorder.Code != http.StatusUnauthorized || resp.Success {
		t.Fatalf("无凭证操作应该返回401: status=%d body=%s", recorder.Code, recorder.Body.String())
	}
}

func TestDispatchCreateAndList(t *testing.T) {
	router := setupServer(t)
	token := registerUser(t, router, "作者甲")

	recorder, resp := doJSON(t, router, http.MethodPost, "/api/ops/createStory", token, `{"title":"长夜"}`)
	if recorder.Code != http.StatusOK || !resp.Success {
		t.Fatalf("创建故事失败: status=%d body=%s", recorder.Code, recorder.Body.String())
	}

	var story struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(resp.Data, &story); err != nil {
		t.Fatalf("解析故事失败: %v", err)
	}
	if !strings.HasPrefix(story.ID, "story_") {
		t.Fatalf("故事ID前缀不正确: %q", story.ID)
	}

	recorder, resp = doJSON(t, router, http.MethodPost, "/api/ops/listStories", token, `{}`)
	if recorder.Code != http.StatusOK || !resp.Success {
		t.Fatalf("查询故事列表失败: status=%d body=%s", recorder.Code, recorder.Body.String())
	}

	var list struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}
	if err := json.Unmarshal(resp.Data, &list); err != nil {
		t.Fatalf("解析列表失败: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("列表结果不正确: total=%d items=%d", list.Total, len(list.Items))
	}
}

func TestDispatchUnknownOperationIsBadRequest(t *testing.T) {
	router := setupServer(t)
	token := registerUser(t, router, "作者甲")

	recorder, resp := doJSON(t, router, http.MethodPost, "/api/ops/destroyStory", token, `{}`)
	if recorder.Code != http.StatusBadRequest || resp.Success {
		t.Fatalf("未知操作应该返回400: status=%d body=%s", recorder.Code, recorder.Body.String())
	}
	if resp.Error == nil || resp.Error.Code != api.ErrorValidation {
		t.Fatalf("错误代码不正确: %+v", resp.Error)
	}
}

func TestDispatchCrossUserIsNotFound(t *testing.T) {
	router := setupServer(t)
	owner := registerUser(t, router, "作者甲")
	intruder := registerUser(t, router, "作者乙")

	recorder, resp := doJSON(t, router, http.MethodPost, "/api/ops/createStory", owner, `{"title":"长夜"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("创建故事失败: %s", recorder.Body.String())
	}
	var story struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &story); err != nil {
		t.Fatalf("解析故事失败: %v", err)
	}

	recorder, resp = doJSON(t, router, http.MethodPost, "/api/ops/updateStory", intruder,
		`{"id":"`+story.ID+`","title":"占为己有"}`)
	if recorder.Code != http.StatusNotFound || resp.Success {
		t.Fatalf("跨用户更新应该返回404: status=%d body=%s", recorder.Code, recorder.Body.String())
	}
}
